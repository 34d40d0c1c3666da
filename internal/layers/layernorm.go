// Package layers holds the transformer building blocks shared by the
// encoder stages: layer normalization, multi-head self-attention and
// the position-wise feed-forward network.
package layers

import (
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// LayerNormEpsilon stabilizes the variance denominator.
const LayerNormEpsilon = 1e-6

// LayerNormalization normalizes the trailing channel dimension of its
// input and applies a learned scale and shift. Scale starts at one,
// shift at zero.
type LayerNormalization struct {
	gamma *graph.Tensor
	beta  *graph.Tensor
}

// NewLayerNormalization declares the scale and shift parameters for a
// channel width.
func NewLayerNormalization(g *graph.Graph, prefix string, numHidden int) *LayerNormalization {
	return &LayerNormalization{
		gamma: g.Parameter(prefix+"gamma", tensor.Shape{numHidden}, nninit.Constant{Value: 1}),
		beta:  g.Parameter(prefix+"beta", tensor.Shape{numHidden}, nninit.Zeros{}),
	}
}

// Normalize applies layer normalization over the last dimension of x.
func (l *LayerNormalization) Normalize(x *graph.Tensor) *graph.Tensor {
	return x.LayerNorm(l.gamma, l.beta, LayerNormEpsilon)
}
