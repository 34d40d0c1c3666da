package graph

import (
	"fmt"
	"math/rand"

	"github.com/tern-mt/tern/internal/tensor"
)

// op is one node kind in the symbolic graph. eval receives the already
// evaluated input tensors in declaration order.
type op interface {
	name() string
	eval(ctx *evalContext, inputs []*tensor.Tensor) (*tensor.Tensor, error)
}

// evalContext carries per-run execution state.
type evalContext struct {
	exec  *Executor
	feeds map[string]*tensor.Tensor
	memo  map[*Tensor]*tensor.Tensor
	rng   *rand.Rand
}

type inputOp struct {
	id string
}

func (o *inputOp) name() string { return "input:" + o.id }

func (o *inputOp) eval(ctx *evalContext, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	fed, ok := ctx.feeds[o.id]
	if !ok {
		return nil, fmt.Errorf("graph: no binding for placeholder %q", o.id)
	}
	return fed, nil
}

type zerosOp struct {
	shape tensor.Shape
}

func (o *zerosOp) name() string { return "Zeros" }

func (o *zerosOp) eval(_ *evalContext, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Zeros(o.shape), nil
}

type paramOp struct {
	spec *paramSpec
}

func (o *paramOp) name() string { return "param:" + o.spec.name }

func (o *paramOp) eval(ctx *evalContext, _ []*tensor.Tensor) (*tensor.Tensor, error) {
	p, ok := ctx.exec.params[o.spec.name]
	if !ok {
		return nil, fmt.Errorf("graph: parameter %q not materialized", o.spec.name)
	}
	return p, nil
}
