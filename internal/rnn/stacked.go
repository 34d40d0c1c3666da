package rnn

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
)

// StackedCell runs several primitive cells as one multi-layer cell.
// Each Step advances every layer by one time step (interleaved
// execution), with optional dropout between layers and optional
// residual connections from the second layer upward.
type StackedCell struct {
	prefix   string
	cells    []Cell
	dropout  float64
	residual bool
}

// NewStacked builds a multi-layer recurrent cell of the given type.
// Residual wiring requires at least two layers; the per-layer widths
// always match because every layer shares numHidden.
func NewStacked(g *graph.Graph, cellType, prefix string, numHidden, numLayers int,
	dropout float64, residual bool, forgetBias float64, h2hInit nninit.Initializer) (*StackedCell, error) {
	if numLayers <= 0 {
		return nil, fmt.Errorf("rnn: stacked cell %q needs at least one layer, got %d", prefix, numLayers)
	}
	if residual && numLayers < 2 {
		return nil, fmt.Errorf("rnn: stacked cell %q: residual connections need at least two layers", prefix)
	}
	cells := make([]Cell, numLayers)
	for i := range cells {
		cell, err := NewCell(g, cellType, fmt.Sprintf("%sl%d_", prefix, i), numHidden, forgetBias, h2hInit)
		if err != nil {
			return nil, err
		}
		cells[i] = cell
	}
	return &StackedCell{prefix: prefix, cells: cells, dropout: dropout, residual: residual}, nil
}

// Name returns the stack's parameter name prefix.
func (s *StackedCell) Name() string {
	return s.prefix
}

// NumHidden returns the output width of the top layer.
func (s *StackedCell) NumHidden() int {
	return s.cells[len(s.cells)-1].NumHidden()
}

// Cells returns the primitive per-layer cells for introspection.
func (s *StackedCell) Cells() []Cell {
	return s.cells
}

// StateSize sums the state arity of every layer.
func (s *StackedCell) StateSize() int {
	total := 0
	for _, cell := range s.cells {
		total += cell.StateSize()
	}
	return total
}

// BeginState concatenates the per-layer initial states.
func (s *StackedCell) BeginState(batch int) []*graph.Tensor {
	states := make([]*graph.Tensor, 0, s.StateSize())
	for _, cell := range s.cells {
		states = append(states, cell.BeginState(batch)...)
	}
	return states
}

// Step advances all layers by one time step. Dropout is applied to the
// output of every layer but the last; residual connections add each
// layer's input to its output starting from the second layer.
func (s *StackedCell) Step(x *graph.Tensor, states []*graph.Tensor) (*graph.Tensor, []*graph.Tensor) {
	next := make([]*graph.Tensor, 0, len(states))
	offset := 0
	out := x
	for i, cell := range s.cells {
		in := out
		arity := cell.StateSize()
		var stepped []*graph.Tensor
		out, stepped = cell.Step(in, states[offset:offset+arity])
		if s.residual && i > 0 {
			out = out.Add(in)
		}
		if s.dropout > 0 && i < len(s.cells)-1 {
			out = out.Dropout(s.dropout)
		}
		next = append(next, stepped...)
		offset += arity
	}
	return out, next
}
