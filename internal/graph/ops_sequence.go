package graph

import (
	"fmt"

	"github.com/tern-mt/tern/internal/tensor"
)

// Embedding declares a lookup of weight rows (vocab, dim) for an int32
// index tensor (batch, seqLen), producing (batch, seqLen, dim). The
// receiver is the weight table; the result inherits the layout of the
// index tensor.
func (t *Tensor) Embedding(indices *Tensor) *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("graph: Embedding weight must be 2D, got %v", t.shape))
	}
	if len(indices.shape) != 2 || indices.dtype != tensor.Int32 {
		panic(fmt.Sprintf("graph: Embedding indices must be 2D int32, got %v %v", indices.shape, indices.dtype))
	}
	out := tensor.Shape{indices.shape[0], indices.shape[1], t.shape[1]}
	return newOp(&embeddingOp{}, tensor.Float32, out, indices.layout, t, indices)
}

// SequenceReverse declares a length-masked time reversal of a
// time-major tensor: each example's valid prefix is reversed while
// padded positions stay trailing. The operation is an involution for
// fixed lengths.
func (t *Tensor) SequenceReverse(lengths *Tensor) *Tensor {
	if t.layout != TimeMajor {
		panic(fmt.Sprintf("graph: SequenceReverse requires time-major input, got layout %q", t.layout))
	}
	if len(t.shape) != 3 {
		panic(fmt.Sprintf("graph: SequenceReverse requires 3D input, got %v", t.shape))
	}
	if lengths.dtype != tensor.Int32 || len(lengths.shape) != 1 || lengths.shape[0] != t.shape[1] {
		panic(fmt.Sprintf("graph: SequenceReverse lengths must be int32 (%d), got %v %v",
			t.shape[1], lengths.shape, lengths.dtype))
	}
	return newOp(&sequenceReverseOp{}, tensor.Float32, t.shape, TimeMajor, t, lengths)
}

// AttentionLengthMask declares an additive mask (batch, 1, 1, seqLen)
// built from a lengths vector: zero inside each example's valid length,
// a large negative constant beyond it. Added to attention scores before
// softmax so padded keys receive vanishing weight.
func AttentionLengthMask(lengths *Tensor, seqLen int) *Tensor {
	if lengths.dtype != tensor.Int32 || len(lengths.shape) != 1 {
		panic(fmt.Sprintf("graph: AttentionLengthMask lengths must be an int32 vector, got %v %v",
			lengths.shape, lengths.dtype))
	}
	out := tensor.Shape{lengths.shape[0], 1, 1, seqLen}
	return newOp(&lengthMaskOp{seqLen: seqLen}, tensor.Float32, out, LayoutNone, lengths)
}

type embeddingOp struct{}

func (o *embeddingOp) name() string { return "Embedding" }
func (o *embeddingOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.EmbeddingLookup(in[0], in[1]), nil
}

type sequenceReverseOp struct{}

func (o *sequenceReverseOp) name() string { return "SequenceReverse" }
func (o *sequenceReverseOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.SequenceReverse(in[0], in[1]), nil
}

type lengthMaskOp struct {
	seqLen int
}

func (o *lengthMaskOp) name() string { return "AttentionLengthMask" }
func (o *lengthMaskOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.LengthMask(in[0], o.seqLen), nil
}
