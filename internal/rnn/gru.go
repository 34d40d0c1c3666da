package rnn

import (
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// gruCell is a gated recurrent unit with fused gate matrices in the
// order reset, update, candidate. Input and recurrent contributions are
// kept separate so the reset gate can scale only the recurrent part of
// the candidate, matching the standard formulation.
type gruCell struct {
	g         *graph.Graph
	prefix    string
	numHidden int
	h2hInit   nninit.Initializer

	i2hT     *graph.Tensor // (inWidth, 3*numHidden)
	h2hT     *graph.Tensor // (numHidden, 3*numHidden)
	i2hBias  *graph.Tensor // (3*numHidden)
	h2hBias  *graph.Tensor // (3*numHidden)
	declared bool
}

func (c *gruCell) Name() string {
	return c.prefix
}

func (c *gruCell) NumHidden() int {
	return c.numHidden
}

func (c *gruCell) StateSize() int {
	return 1
}

func (c *gruCell) BeginState(batch int) []*graph.Tensor {
	return []*graph.Tensor{c.g.Zeros(tensor.Shape{batch, c.numHidden})}
}

func (c *gruCell) declare(inWidth int) {
	n := c.numHidden
	i2h := c.g.Parameter(c.prefix+"i2h_weight", tensor.Shape{3 * n, inWidth}, nninit.Xavier{})
	h2h := c.g.Parameter(c.prefix+"h2h_weight", tensor.Shape{3 * n, n}, c.h2hInit)
	c.i2hBias = c.g.Parameter(c.prefix+"i2h_bias", tensor.Shape{3 * n}, nninit.Zeros{})
	c.h2hBias = c.g.Parameter(c.prefix+"h2h_bias", tensor.Shape{3 * n}, nninit.Zeros{})
	c.i2hT = i2h.Transpose(1, 0)
	c.h2hT = h2h.Transpose(1, 0)
	c.declared = true
}

func (c *gruCell) Step(x *graph.Tensor, states []*graph.Tensor) (*graph.Tensor, []*graph.Tensor) {
	if !c.declared {
		c.declare(x.Shape()[len(x.Shape())-1])
	}
	h := states[0]
	n := c.numHidden

	gx := x.MatMul(c.i2hT).Add(c.i2hBias) // (batch, 3n)
	gh := h.MatMul(c.h2hT).Add(c.h2hBias) // (batch, 3n)

	reset := gx.SliceAxis(1, 0, n).Add(gh.SliceAxis(1, 0, n)).Sigmoid()
	update := gx.SliceAxis(1, n, 2*n).Add(gh.SliceAxis(1, n, 2*n)).Sigmoid()
	cand := gx.SliceAxis(1, 2*n, 3*n).Add(reset.Mul(gh.SliceAxis(1, 2*n, 3*n))).Tanh()

	// h' = h + update * (cand - h)
	next := h.Add(update.Mul(cand.Sub(h)))
	return next, []*graph.Tensor{next}
}
