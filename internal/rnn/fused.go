package rnn

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
)

// FusedCell is a single multi-layer recurrent cell that computes the
// same function as an equally configured StackedCell but with a
// different unroll strategy: each layer is unrolled across the full
// sequence before the next layer starts, the pattern fused multi-layer
// kernels use. It does not support residual wiring.
//
// Hidden-to-hidden weights use the plain uniform orthogonal
// initializer; callers that care are told through a diagnostic event at
// the encoder level.
type FusedCell struct {
	prefix  string
	cells   []Cell
	dropout float64
}

// NewFused builds a fused multi-layer recurrent cell.
func NewFused(g *graph.Graph, cellType, prefix string, numHidden, numLayers int,
	dropout float64, forgetBias float64) (*FusedCell, error) {
	if numLayers <= 0 {
		return nil, fmt.Errorf("rnn: fused cell %q needs at least one layer, got %d", prefix, numLayers)
	}
	uniform := nninit.StackedOrthogonal{Scale: 1.414, RandType: nninit.RandUniform}
	cells := make([]Cell, numLayers)
	for i := range cells {
		cell, err := NewCell(g, cellType, fmt.Sprintf("%sl%d_", prefix, i), numHidden, forgetBias, uniform)
		if err != nil {
			return nil, err
		}
		cells[i] = cell
	}
	return &FusedCell{prefix: prefix, cells: cells, dropout: dropout}, nil
}

// Name returns the fused cell's parameter name prefix.
func (f *FusedCell) Name() string {
	return f.prefix
}

// NumHidden returns the output width of the top layer.
func (f *FusedCell) NumHidden() int {
	return f.cells[len(f.cells)-1].NumHidden()
}

// Cells returns the primitive per-layer cells for introspection.
func (f *FusedCell) Cells() []Cell {
	return f.cells
}

// StateSize sums the state arity of every layer.
func (f *FusedCell) StateSize() int {
	total := 0
	for _, cell := range f.cells {
		total += cell.StateSize()
	}
	return total
}

// BeginState concatenates the per-layer initial states.
func (f *FusedCell) BeginState(batch int) []*graph.Tensor {
	states := make([]*graph.Tensor, 0, f.StateSize())
	for _, cell := range f.cells {
		states = append(states, cell.BeginState(batch)...)
	}
	return states
}

// Step advances all layers by one time step. Present so FusedCell
// satisfies Cell for introspection; Unroll is the intended entry point.
func (f *FusedCell) Step(x *graph.Tensor, states []*graph.Tensor) (*graph.Tensor, []*graph.Tensor) {
	next := make([]*graph.Tensor, 0, len(states))
	offset := 0
	out := x
	for i, cell := range f.cells {
		arity := cell.StateSize()
		var stepped []*graph.Tensor
		out, stepped = cell.Step(out, states[offset:offset+arity])
		if f.dropout > 0 && i < len(f.cells)-1 {
			out = out.Dropout(f.dropout)
		}
		next = append(next, stepped...)
		offset += arity
	}
	return out, next
}

// Unroll runs each layer over the whole sequence before ascending to
// the next layer. Mathematically identical to interleaved unrolling;
// only the declared evaluation order differs.
func (f *FusedCell) Unroll(data *graph.Tensor, seqLen int, layout graph.Layout) (*graph.Tensor, error) {
	out := data
	for i, cell := range f.cells {
		layerOut, err := Unroll(cell, out, seqLen, layout)
		if err != nil {
			return nil, fmt.Errorf("rnn: fused layer %d: %w", i, err)
		}
		if f.dropout > 0 && i < len(f.cells)-1 {
			layerOut = layerOut.Dropout(f.dropout)
		}
		out = layerOut
	}
	return out, nil
}
