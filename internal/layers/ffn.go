package layers

import (
	"github.com/tern-mt/tern/internal/graph"
)

// FFNRelu is the position-wise feed-forward sublayer of a transformer
// block: expand to the inner width, ReLU, dropout, project back to the
// model size. Applied independently at every sequence position.
type FFNRelu struct {
	dropout float64
	expand  linear
	project linear
}

// NewFFNRelu declares the two projections of the feed-forward sublayer.
func NewFFNRelu(g *graph.Graph, prefix string, modelSize, innerSize int, dropout float64) *FFNRelu {
	return &FFNRelu{
		dropout: dropout,
		expand:  newLinear(g, prefix+"i2h_", modelSize, innerSize, true),
		project: newLinear(g, prefix+"h2o_", innerSize, modelSize, true),
	}
}

// Apply transforms x (batch, seq, modelSize) position-wise, preserving
// the shape.
func (f *FFNRelu) Apply(x *graph.Tensor) *graph.Tensor {
	h := f.expand.apply(x).Relu()
	if f.dropout > 0 {
		h = h.Dropout(f.dropout)
	}
	return f.project.apply(h)
}
