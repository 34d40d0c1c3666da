// Package graph implements the symbolic computation-graph surface that
// encoder stages build against.
//
// Building a graph declares transformations only: every operation
// returns a new immutable *Tensor handle carrying a statically inferred
// shape and a layout tag, and records its inputs. Nothing executes until
// an Executor materializes the declared parameters (deterministically,
// from a seed) and evaluates a handle under concrete input bindings.
package graph

import (
	"fmt"

	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// Layout tags the axis ordering convention of a sequence tensor.
type Layout string

const (
	// BatchMajor is (batch, time, channels).
	BatchMajor Layout = "NTC"
	// TimeMajor is (time, batch, channels).
	TimeMajor Layout = "TNC"
	// LayoutNone marks tensors without a sequence interpretation
	// (lengths vectors, weights, masks).
	LayoutNone Layout = ""
)

// Tensor is an immutable symbolic tensor handle. Operations never
// mutate a handle; they produce new ones referencing their inputs.
type Tensor struct {
	graph  *Graph
	shape  tensor.Shape
	dtype  tensor.DataType
	layout Layout
	op     op
	inputs []*Tensor
}

// Shape returns the declared shape of the handle.
func (t *Tensor) Shape() tensor.Shape {
	return t.shape
}

// DType returns the element type the handle will evaluate to.
func (t *Tensor) DType() tensor.DataType {
	return t.dtype
}

// Layout returns the axis-ordering tag.
func (t *Tensor) Layout() Layout {
	return t.layout
}

// Graph returns the graph this handle belongs to.
func (t *Tensor) Graph() *Graph {
	return t.graph
}

func (t *Tensor) String() string {
	return fmt.Sprintf("%s%v", t.op.name(), t.shape)
}

// paramSpec records a declared learnable (or fixed) parameter.
type paramSpec struct {
	name     string
	shape    tensor.Shape
	init     nninit.Initializer
	constant bool
}

// Graph is the namespace in which placeholders and parameters are
// declared. Construction is single-threaded and performs no I/O.
type Graph struct {
	params    []*paramSpec
	paramSet  map[string]*paramSpec
	inputs    map[string]*Tensor
	paramRefs map[string]*Tensor
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		paramSet:  make(map[string]*paramSpec),
		inputs:    make(map[string]*Tensor),
		paramRefs: make(map[string]*Tensor),
	}
}

// Input declares a float32 placeholder with the given shape and layout.
func (g *Graph) Input(name string, shape tensor.Shape, layout Layout) *Tensor {
	return g.placeholder(name, shape, tensor.Float32, layout)
}

// IntInput declares an int32 placeholder (token indices).
func (g *Graph) IntInput(name string, shape tensor.Shape, layout Layout) *Tensor {
	return g.placeholder(name, shape, tensor.Int32, layout)
}

// Lengths declares the per-example valid-length vector for a batch.
func (g *Graph) Lengths(name string, batch int) *Tensor {
	return g.placeholder(name, tensor.Shape{batch}, tensor.Int32, LayoutNone)
}

func (g *Graph) placeholder(name string, shape tensor.Shape, dtype tensor.DataType, layout Layout) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("graph: placeholder %q: %v", name, err))
	}
	if _, exists := g.inputs[name]; exists {
		panic(fmt.Sprintf("graph: duplicate placeholder %q", name))
	}
	t := &Tensor{
		graph:  g,
		shape:  shape.Clone(),
		dtype:  dtype,
		layout: layout,
		op:     &inputOp{id: name},
	}
	g.inputs[name] = t
	return t
}

// Parameter declares a named learnable parameter with its initializer.
// Each parameter is owned by exactly one declaring stage; redeclaring a
// name is a programming error.
func (g *Graph) Parameter(name string, shape tensor.Shape, init nninit.Initializer) *Tensor {
	return g.declare(name, shape, init, false)
}

// Fixed declares a named non-trainable parameter (a precomputed table).
// It participates in materialization like any parameter but is excluded
// from gradient-bearing introspection.
func (g *Graph) Fixed(name string, shape tensor.Shape, init nninit.Initializer) *Tensor {
	return g.declare(name, shape, init, true)
}

func (g *Graph) declare(name string, shape tensor.Shape, init nninit.Initializer, constant bool) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("graph: parameter %q: %v", name, err))
	}
	if _, exists := g.paramSet[name]; exists {
		panic(fmt.Sprintf("graph: duplicate parameter %q", name))
	}
	spec := &paramSpec{name: name, shape: shape.Clone(), init: init, constant: constant}
	g.params = append(g.params, spec)
	g.paramSet[name] = spec
	t := &Tensor{
		graph:  g,
		shape:  spec.shape,
		dtype:  tensor.Float32,
		layout: LayoutNone,
		op:     &paramOp{spec: spec},
	}
	g.paramRefs[name] = t
	return t
}

// Zeros declares a constant zero tensor, used for initial recurrent
// states.
func (g *Graph) Zeros(shape tensor.Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("graph: zeros: %v", err))
	}
	return &Tensor{
		graph:  g,
		shape:  shape.Clone(),
		dtype:  tensor.Float32,
		layout: LayoutNone,
		op:     &zerosOp{shape: shape.Clone()},
	}
}

// ParameterNames returns the declared parameter names in declaration
// order.
func (g *Graph) ParameterNames() []string {
	names := make([]string, len(g.params))
	for i, spec := range g.params {
		names[i] = spec.name
	}
	return names
}

// newOp builds a derived handle. All inputs must belong to the same
// graph.
func newOp(o op, dtype tensor.DataType, shape tensor.Shape, layout Layout, inputs ...*Tensor) *Tensor {
	if len(inputs) == 0 {
		panic("graph: derived op without inputs")
	}
	g := inputs[0].graph
	for _, in := range inputs[1:] {
		if in.graph != g {
			panic(fmt.Sprintf("graph: op %q mixes tensors from different graphs", o.name()))
		}
	}
	return &Tensor{
		graph:  g,
		shape:  shape.Clone(),
		dtype:  dtype,
		layout: layout,
		op:     o,
		inputs: inputs,
	}
}
