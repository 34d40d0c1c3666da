package layers

import (
	"fmt"
	"math"

	"github.com/tern-mt/tern/internal/graph"
)

// MultiHeadSelfAttention lets every position of a batch-major sequence
// attend to every other position through numHeads independent heads.
// Scores for padded key positions are pushed to negative infinity by an
// additive length mask before the softmax.
type MultiHeadSelfAttention struct {
	modelSize int
	numHeads  int
	headDim   int
	dropout   float64

	query linear
	key   linear
	value linear
	out   linear
}

// NewMultiHeadSelfAttention declares the four projection matrices of an
// attention block. The model size must divide evenly into the heads.
func NewMultiHeadSelfAttention(g *graph.Graph, prefix string, modelSize, numHeads int, dropout float64) (*MultiHeadSelfAttention, error) {
	if numHeads <= 0 {
		return nil, fmt.Errorf("layers: attention %q: numHeads must be positive, got %d", prefix, numHeads)
	}
	if modelSize%numHeads != 0 {
		return nil, fmt.Errorf("layers: attention %q: model size %d not divisible by %d heads", prefix, modelSize, numHeads)
	}
	return &MultiHeadSelfAttention{
		modelSize: modelSize,
		numHeads:  numHeads,
		headDim:   modelSize / numHeads,
		dropout:   dropout,
		query:     newLinear(g, prefix+"q_", modelSize, modelSize, false),
		key:       newLinear(g, prefix+"k_", modelSize, modelSize, false),
		value:     newLinear(g, prefix+"v_", modelSize, modelSize, false),
		out:       newLinear(g, prefix+"o_", modelSize, modelSize, false),
	}, nil
}

// Apply attends x (batch, seq, modelSize) to itself. mask, if non-nil,
// is an additive (batch, 1, 1, seq) tensor broadcast over heads and
// query positions.
func (a *MultiHeadSelfAttention) Apply(x, mask *graph.Tensor) *graph.Tensor {
	shape := x.Shape()
	batch, seq := shape[0], shape[1]

	q := a.splitHeads(a.query.apply(x), batch, seq)
	k := a.splitHeads(a.key.apply(x), batch, seq)
	v := a.splitHeads(a.value.apply(x), batch, seq)

	// (batch, heads, seq, seq)
	scores := q.BatchMatMul(k.Transpose(0, 1, 3, 2)).
		MulScalar(float32(1 / math.Sqrt(float64(a.headDim))))
	if mask != nil {
		scores = scores.Add(mask)
	}
	probs := scores.Softmax()
	if a.dropout > 0 {
		probs = probs.Dropout(a.dropout)
	}

	ctx := probs.BatchMatMul(v).
		Transpose(0, 2, 1, 3).
		Reshape(batch, seq, a.modelSize)
	return a.out.apply(ctx)
}

// splitHeads reshapes (batch, seq, modelSize) to (batch, heads, seq,
// headDim).
func (a *MultiHeadSelfAttention) splitHeads(x *graph.Tensor, batch, seq int) *graph.Tensor {
	return x.Reshape(batch, seq, a.numHeads, a.headDim).Transpose(0, 2, 1, 3)
}
