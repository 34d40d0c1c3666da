package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/rnn"
)

// Recurrent unrolls a stack of recurrent cells over a time-major input,
// producing (seqLen, batch, NumHidden) with the per-step outputs merged
// across time.
type Recurrent struct {
	cell *rnn.StackedCell
}

// NewRecurrent builds a unidirectional multi-layer recurrent stage.
func NewRecurrent(g *graph.Graph, cfg RNNConfig, prefix string) (*Recurrent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	h2hInit, err := resolveInit(cfg.InitType)
	if err != nil {
		return nil, err
	}
	cell, err := rnn.NewStacked(g, cfg.CellType, prefix, cfg.NumHidden, cfg.NumLayers,
		cfg.Dropout, cfg.Residual, cfg.ForgetBias, h2hInit)
	if err != nil {
		return nil, err
	}
	return &Recurrent{cell: cell}, nil
}

// Encode implements Encoder. data must be time-major.
func (r *Recurrent) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	return rnn.Unroll(r.cell, data, seqLen, graph.TimeMajor)
}

// NumHidden implements Encoder.
func (r *Recurrent) NumHidden() int {
	return r.cell.NumHidden()
}

// Cells implements Encoder.
func (r *Recurrent) Cells() []rnn.Cell {
	return r.cell.Cells()
}

// FusedRecurrent is the layer-outer unroll variant of Recurrent. It
// computes the same function as an equally configured Recurrent stage
// but unrolls each layer across the full sequence before ascending.
// Residual wiring is not supported, and a custom hidden-to-hidden
// initializer tag is ignored in favor of the default orthogonal one;
// the latter is reported as a diagnostic, not an error.
type FusedRecurrent struct {
	cell *rnn.FusedCell
}

// NewFusedRecurrent builds a fused unidirectional recurrent stage.
func NewFusedRecurrent(g *graph.Graph, cfg RNNConfig, prefix string, sink DiagnosticSink) (*FusedRecurrent, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Residual {
		return nil, fmt.Errorf("encoder: fused recurrent stage %q does not support residual connections", prefix)
	}
	if sink == nil {
		sink = Discard
	}
	if cfg.InitType != "" {
		if _, err := nninit.Get(cfg.InitType); err != nil {
			return nil, err
		}
		sink.Emit(Diagnostic{
			Component: "fused_rnn",
			Message: fmt.Sprintf("fused cells always use the default orthogonal initializer; ignoring init type %q",
				cfg.InitType),
		})
	}
	cell, err := rnn.NewFused(g, cfg.CellType, prefix, cfg.NumHidden, cfg.NumLayers,
		cfg.Dropout, cfg.ForgetBias)
	if err != nil {
		return nil, err
	}
	return &FusedRecurrent{cell: cell}, nil
}

// Encode implements Encoder. data must be time-major.
func (r *FusedRecurrent) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	return r.cell.Unroll(data, seqLen, graph.TimeMajor)
}

// NumHidden implements Encoder.
func (r *FusedRecurrent) NumHidden() int {
	return r.cell.NumHidden()
}

// Cells implements Encoder.
func (r *FusedRecurrent) Cells() []rnn.Cell {
	return r.cell.Cells()
}

// resolveInit maps a configuration tag to a hidden-to-hidden
// initializer; the empty tag selects the cell default.
func resolveInit(tag string) (nninit.Initializer, error) {
	if tag == "" {
		return nil, nil
	}
	return nninit.Get(tag)
}
