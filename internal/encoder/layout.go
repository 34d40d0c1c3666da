package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/rnn"
)

// BatchMajorToTimeMajor swaps the first two axes of a batch-major
// sequence tensor, producing the time-major layout the recurrent stages
// operate in. Pure and parameterless; numHidden is a pass-through value
// for pipelines that end with this stage.
type BatchMajorToTimeMajor struct {
	numHidden int
}

// NewBatchMajorToTimeMajor builds the layout converter. numHidden may
// be 0 when the converted width is not meaningful to the caller.
func NewBatchMajorToTimeMajor(numHidden int) *BatchMajorToTimeMajor {
	return &BatchMajorToTimeMajor{numHidden: numHidden}
}

// Encode implements Encoder.
func (c *BatchMajorToTimeMajor) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	if data.Layout() != graph.BatchMajor {
		return nil, fmt.Errorf("encoder: layout conversion expects batch-major input, got %q", data.Layout())
	}
	return data.SwapAxes01(), nil
}

// NumHidden implements Encoder.
func (c *BatchMajorToTimeMajor) NumHidden() int {
	return c.numHidden
}

// Cells implements Encoder.
func (c *BatchMajorToTimeMajor) Cells() []rnn.Cell {
	return nil
}
