// Package rnn provides the recurrent-cell library consumed by the
// encoder stages: LSTM and GRU cells selected by a string tag, stacked
// multi-layer cells with optional residual wiring, and a fused
// multi-layer variant with a different unroll strategy.
//
// Cells declare their parameters on the symbolic graph lazily at the
// first Step call, once the input width is known; graph construction is
// single-threaded so this is safe.
package rnn

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

// Cell type tags accepted by NewCell.
const (
	LSTMType = "lstm"
	GRUType  = "gru"
)

// Cell is a single recurrent transition: given the input at one time
// step and the previous state, it produces the output and next state.
// Cell handles are also returned by encoder introspection so optimizers
// can treat recurrent parameters specially.
type Cell interface {
	// Name returns the parameter name prefix of the cell.
	Name() string

	// NumHidden returns the output width of the cell.
	NumHidden() int

	// StateSize returns how many state tensors the cell carries.
	StateSize() int

	// BeginState returns the zero-filled initial state tensors for a
	// batch.
	BeginState(batch int) []*graph.Tensor

	// Step consumes input (batch, inWidth) and the previous state,
	// returning output (batch, NumHidden) and the next state.
	Step(x *graph.Tensor, states []*graph.Tensor) (*graph.Tensor, []*graph.Tensor)
}

// NewCell creates a primitive recurrent cell of the given type.
// Unknown cell types are rejected, never silently defaulted.
func NewCell(g *graph.Graph, cellType, name string, numHidden int, forgetBias float64, h2hInit nninit.Initializer) (Cell, error) {
	if numHidden <= 0 {
		return nil, fmt.Errorf("rnn: cell %q: numHidden must be positive, got %d", name, numHidden)
	}
	if h2hInit == nil {
		h2hInit = nninit.StackedOrthogonal{Scale: 1.414, RandType: nninit.RandUniform}
	}
	switch cellType {
	case LSTMType:
		return &lstmCell{g: g, prefix: name, numHidden: numHidden, forgetBias: float32(forgetBias), h2hInit: h2hInit}, nil
	case GRUType:
		return &gruCell{g: g, prefix: name, numHidden: numHidden, h2hInit: h2hInit}, nil
	default:
		return nil, fmt.Errorf("rnn: unknown cell type %q", cellType)
	}
}

// Unroll steps a cell over the time axis of data for seqLen steps and
// merges the per-step outputs back into a sequence tensor with the same
// layout as the input.
func Unroll(cell Cell, data *graph.Tensor, seqLen int, layout graph.Layout) (*graph.Tensor, error) {
	if data.Layout() != layout {
		return nil, fmt.Errorf("rnn: unroll expects %q data, got %q", layout, data.Layout())
	}
	shape := data.Shape()
	if len(shape) != 3 {
		return nil, fmt.Errorf("rnn: unroll expects 3D input, got %v", shape)
	}

	timeAxis := 0
	batchAxis := 1
	if layout == graph.BatchMajor {
		timeAxis, batchAxis = 1, 0
	}
	if shape[timeAxis] != seqLen {
		return nil, fmt.Errorf("rnn: unroll over %d steps but time axis has %d", seqLen, shape[timeAxis])
	}

	states := cell.BeginState(shape[batchAxis])
	outputs := make([]*graph.Tensor, seqLen)
	for t := 0; t < seqLen; t++ {
		step := data.SliceIndex(timeAxis, t)
		outputs[t], states = cell.Step(step, states)
	}
	return graph.Stack(timeAxis, layout, outputs...), nil
}

// linearParams declares an input-to-hidden / hidden-to-hidden parameter
// group shared by the primitive cells: weights are stored (gates*H, in)
// and used transposed, biases are fused over the gates.
type linearParams struct {
	i2hT *graph.Tensor // (inWidth, gates*numHidden)
	h2hT *graph.Tensor // (numHidden, gates*numHidden)
	bias *graph.Tensor // (gates*numHidden)
}

func declareLinearParams(g *graph.Graph, prefix string, gates, numHidden, inWidth int,
	h2hInit, biasInit nninit.Initializer) linearParams {
	i2h := g.Parameter(prefix+"i2h_weight", tensor.Shape{gates * numHidden, inWidth}, nninit.Xavier{})
	h2h := g.Parameter(prefix+"h2h_weight", tensor.Shape{gates * numHidden, numHidden}, h2hInit)
	bias := g.Parameter(prefix+"bias", tensor.Shape{gates * numHidden}, biasInit)
	return linearParams{
		i2hT: i2h.Transpose(1, 0),
		h2hT: h2h.Transpose(1, 0),
		bias: bias,
	}
}

// gatePreactivations computes x@i2h' + h@h2h' + bias for a step.
func (p linearParams) gatePreactivations(x, h *graph.Tensor) *graph.Tensor {
	return x.MatMul(p.i2hT).Add(h.MatMul(p.h2hT)).Add(p.bias)
}
