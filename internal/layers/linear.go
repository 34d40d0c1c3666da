package layers

import (
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// linear is a dense projection applied position-wise to sequence
// tensors. Weights are stored (out, in) and used transposed so the
// forward pass is a plain flattened matrix product.
type linear struct {
	weightT *graph.Tensor // (in, out)
	bias    *graph.Tensor // (out), nil when the layer has no bias
	out     int
}

func newLinear(g *graph.Graph, prefix string, in, out int, withBias bool) linear {
	w := g.Parameter(prefix+"weight", tensor.Shape{out, in}, nninit.Xavier{})
	l := linear{weightT: w.Transpose(1, 0), out: out}
	if withBias {
		l.bias = g.Parameter(prefix+"bias", tensor.Shape{out}, nninit.Zeros{})
	}
	return l
}

// apply projects (batch, seq, in) to (batch, seq, out).
func (l linear) apply(x *graph.Tensor) *graph.Tensor {
	shape := x.Shape()
	batch, seq := shape[0], shape[1]
	y := x.Reshape(batch*seq, shape[2]).MatMul(l.weightT)
	if l.bias != nil {
		y = y.Add(l.bias)
	}
	return y.Reshape(batch, seq, l.out)
}
