package encoder

import (
	"errors"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/rnn"
)

// Sequence composes stages into one encoder: Encode folds the input
// through every stage in order, threading lengths and the sequence
// length unchanged. Stage order is fixed at construction.
type Sequence struct {
	stages []Encoder
}

// NewSequence builds a pipeline from at least one stage.
func NewSequence(stages ...Encoder) (*Sequence, error) {
	if len(stages) == 0 {
		return nil, errors.New("encoder: pipeline needs at least one stage")
	}
	return &Sequence{stages: stages}, nil
}

// Encode implements Encoder.
func (s *Sequence) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	out := data
	var err error
	for _, stage := range s.stages {
		out, err = stage.Encode(out, lengths, seqLen)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NumHidden implements Encoder, delegating to the last stage.
func (s *Sequence) NumHidden() int {
	return s.stages[len(s.stages)-1].NumHidden()
}

// Cells implements Encoder, concatenating per-stage cells in stage
// order.
func (s *Sequence) Cells() []rnn.Cell {
	var cells []rnn.Cell
	for _, stage := range s.stages {
		cells = append(cells, stage.Cells()...)
	}
	return cells
}

// Stages returns the composed stages in order.
func (s *Sequence) Stages() []Encoder {
	return s.stages
}
