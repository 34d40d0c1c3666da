package rnn

import (
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// lstmCell is a long short-term memory cell with a fused gate matrix in
// the order input, forget, candidate, output. The forget-gate bias is
// initialized to the configured value; the hidden-to-hidden weight uses
// the stacked orthogonal initializer so each gate block starts
// orthogonal.
type lstmCell struct {
	g          *graph.Graph
	prefix     string
	numHidden  int
	forgetBias float32
	h2hInit    nninit.Initializer

	params   linearParams
	declared bool
}

func (c *lstmCell) Name() string {
	return c.prefix
}

func (c *lstmCell) NumHidden() int {
	return c.numHidden
}

func (c *lstmCell) StateSize() int {
	return 2 // hidden and cell state
}

func (c *lstmCell) BeginState(batch int) []*graph.Tensor {
	shape := tensor.Shape{batch, c.numHidden}
	return []*graph.Tensor{c.g.Zeros(shape), c.g.Zeros(shape)}
}

func (c *lstmCell) Step(x *graph.Tensor, states []*graph.Tensor) (*graph.Tensor, []*graph.Tensor) {
	if !c.declared {
		inWidth := x.Shape()[len(x.Shape())-1]
		c.params = declareLinearParams(c.g, c.prefix, 4, c.numHidden, inWidth,
			c.h2hInit, nninit.LSTMBias{NumHidden: c.numHidden, ForgetBias: c.forgetBias})
		c.declared = true
	}
	h, cell := states[0], states[1]
	n := c.numHidden

	gates := c.params.gatePreactivations(x, h)
	in := gates.SliceAxis(1, 0, n).Sigmoid()
	forget := gates.SliceAxis(1, n, 2*n).Sigmoid()
	cand := gates.SliceAxis(1, 2*n, 3*n).Tanh()
	out := gates.SliceAxis(1, 3*n, 4*n).Sigmoid()

	nextCell := forget.Mul(cell).Add(in.Mul(cand))
	nextHidden := out.Mul(nextCell.Tanh())
	return nextHidden, []*graph.Tensor{nextHidden, nextCell}
}
