package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/rnn"
	"github.com/tern-mt/tern/internal/tensor"
)

// MaxSupportedSeqLen caps the precomputed positional-encoding table.
// Batches longer than this are rejected by the embedding stage when
// positional encoding is enabled.
const MaxSupportedSeqLen = 500

// Embedding turns a batch-major int32 index tensor (batch, seqLen) into
// dense vectors (batch, seqLen, NumEmbed), optionally adding a slice of
// the fixed sinusoidal positional table and applying dropout.
type Embedding struct {
	numEmbed int
	dropout  float64
	weight   *graph.Tensor
	posTable *graph.Tensor // nil when positional encoding is disabled
}

// NewEmbedding declares the embedding weight table and, when requested,
// the fixed positional-encoding table.
func NewEmbedding(g *graph.Graph, prefix string, cfg EmbeddingConfig, addPositionalEncoding bool) (*Embedding, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Embedding{
		numEmbed: cfg.NumEmbed,
		dropout:  cfg.Dropout,
		weight:   g.Parameter(prefix+"weight", tensor.Shape{cfg.VocabSize, cfg.NumEmbed}, nninit.Xavier{}),
	}
	if addPositionalEncoding {
		e.posTable = g.Fixed(prefix+"positional_encoding",
			tensor.Shape{MaxSupportedSeqLen, cfg.NumEmbed},
			nninit.PositionalEncoding{MaxSeqLen: MaxSupportedSeqLen, NumEmbed: cfg.NumEmbed})
	}
	return e, nil
}

// Encode implements Encoder. data must be a batch-major int32 tensor of
// shape (batch, seqLen).
func (e *Embedding) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	shape := data.Shape()
	if len(shape) != 2 || data.DType() != tensor.Int32 {
		return nil, fmt.Errorf("encoder: embedding expects 2D int32 indices, got %v %v", shape, data.DType())
	}
	if shape[1] != seqLen {
		return nil, fmt.Errorf("encoder: embedding indices have %d time steps, want %d", shape[1], seqLen)
	}
	out := e.weight.Embedding(data)
	if e.posTable != nil {
		if seqLen > MaxSupportedSeqLen {
			return nil, fmt.Errorf("encoder: sequence length %d exceeds positional encoding cap %d",
				seqLen, MaxSupportedSeqLen)
		}
		out = out.Add(e.posTable.SliceAxis(0, 0, seqLen))
	}
	if e.dropout > 0 {
		out = out.Dropout(e.dropout)
	}
	return out, nil
}

// NumHidden implements Encoder.
func (e *Embedding) NumHidden() int {
	return e.numEmbed
}

// Cells implements Encoder.
func (e *Embedding) Cells() []rnn.Cell {
	return nil
}
