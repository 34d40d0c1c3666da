package graph

import (
	"fmt"
	"math/rand"

	"github.com/tern-mt/tern/internal/tensor"
)

// Mode selects train or inference semantics for mode-dependent ops
// (dropout).
type Mode int

const (
	// Inference disables dropout.
	Inference Mode = iota
	// Train enables dropout with the executor's seeded stream.
	Train
)

// Executor materializes a graph's parameters and evaluates tensor
// handles on the CPU.
//
// Parameters are initialized once, in declaration order, from a single
// random stream seeded with the executor seed; evaluation memoizes each
// node once per run. Together this makes results deterministic for a
// fixed graph, seed, and bindings, independent of traversal order.
type Executor struct {
	graph  *Graph
	mode   Mode
	seed   int64
	params map[string]*tensor.Tensor
}

// NewExecutor creates an executor and materializes every parameter
// declared on the graph so far. Create it only after the full pipeline
// has been built.
func NewExecutor(g *Graph, mode Mode, seed int64) (*Executor, error) {
	e := &Executor{
		graph:  g,
		mode:   mode,
		seed:   seed,
		params: make(map[string]*tensor.Tensor, len(g.params)),
	}
	rng := rand.New(rand.NewSource(seed))
	for _, spec := range g.params {
		value, err := spec.init.Init(spec.shape, rng)
		if err != nil {
			return nil, fmt.Errorf("materialize parameter %q: %w", spec.name, err)
		}
		if !value.Shape().Equal(spec.shape) {
			return nil, fmt.Errorf("initializer for %q produced shape %v, want %v", spec.name, value.Shape(), spec.shape)
		}
		e.params[spec.name] = value
	}
	return e, nil
}

// Parameter returns the materialized value of a named parameter.
func (e *Executor) Parameter(name string) (*tensor.Tensor, error) {
	p, ok := e.params[name]
	if !ok {
		return nil, fmt.Errorf("unknown parameter %q", name)
	}
	return p, nil
}

// Run evaluates the given handle under the supplied placeholder
// bindings. Dropout draws from a stream seeded per run, so repeated
// runs with identical inputs produce identical results.
func (e *Executor) Run(out *Tensor, feeds map[string]*tensor.Tensor) (*tensor.Tensor, error) {
	if out.graph != e.graph {
		return nil, fmt.Errorf("graph: output handle belongs to a different graph")
	}
	if err := e.checkFeeds(feeds); err != nil {
		return nil, err
	}
	ctx := &evalContext{
		exec:  e,
		feeds: feeds,
		memo:  make(map[*Tensor]*tensor.Tensor),
		rng:   rand.New(rand.NewSource(e.seed + 1)),
	}
	return eval(ctx, out)
}

func (e *Executor) checkFeeds(feeds map[string]*tensor.Tensor) error {
	for name, fed := range feeds {
		decl, ok := e.graph.inputs[name]
		if !ok {
			return fmt.Errorf("graph: binding for undeclared placeholder %q", name)
		}
		if !fed.Shape().Equal(decl.shape) {
			return fmt.Errorf("graph: placeholder %q expects shape %v, got %v", name, decl.shape, fed.Shape())
		}
		if fed.DType() != decl.dtype {
			return fmt.Errorf("graph: placeholder %q expects dtype %v, got %v", name, decl.dtype, fed.DType())
		}
	}
	return nil
}

func eval(ctx *evalContext, t *Tensor) (*tensor.Tensor, error) {
	if cached, ok := ctx.memo[t]; ok {
		return cached, nil
	}
	inputs := make([]*tensor.Tensor, len(t.inputs))
	for i, in := range t.inputs {
		value, err := eval(ctx, in)
		if err != nil {
			return nil, err
		}
		inputs[i] = value
	}
	value, err := t.op.eval(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("eval %s: %w", t.op.name(), err)
	}
	if !value.Shape().Equal(t.shape) {
		return nil, fmt.Errorf("eval %s: declared shape %v but produced %v", t.op.name(), t.shape, value.Shape())
	}
	ctx.memo[t] = value
	return value, nil
}
