package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/rnn"
)

// BiDirectional runs two independently parameterized half-width
// recurrent stages, one over the sequence as given and one over its
// length-masked time reversal, and concatenates their outputs along the
// channel axis. The reversal respects each example's valid length so
// padding stays trailing on both passes.
type BiDirectional struct {
	forward   Encoder
	reverse   Encoder
	numHidden int
	sink      DiagnosticSink
}

// NewBiDirectional builds a bidirectional recurrent stage of total
// width cfg.NumHidden, which must be even so the forward and reverse
// halves match.
func NewBiDirectional(g *graph.Graph, cfg RNNConfig, prefix string, sink DiagnosticSink) (*BiDirectional, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.NumHidden%2 != 0 {
		return nil, fmt.Errorf("encoder: bidirectional stage %q needs an even hidden size, got %d",
			prefix, cfg.NumHidden)
	}
	if sink == nil {
		sink = Discard
	}

	half := cfg
	half.NumHidden = cfg.NumHidden / 2

	var forward, reverse Encoder
	var err error
	if cfg.Fused {
		forward, err = NewFusedRecurrent(g, half, prefix+"forward_", sink)
		if err == nil {
			reverse, err = NewFusedRecurrent(g, half, prefix+"reverse_", sink)
		}
	} else {
		forward, err = NewRecurrent(g, half, prefix+"forward_")
		if err == nil {
			reverse, err = NewRecurrent(g, half, prefix+"reverse_")
		}
	}
	if err != nil {
		return nil, err
	}
	return &BiDirectional{forward: forward, reverse: reverse, numHidden: cfg.NumHidden, sink: sink}, nil
}

// Encode implements Encoder. Time-major input is processed directly;
// batch-major input is converted in and back out, which costs two
// transposes per batch and is reported as a diagnostic.
func (b *BiDirectional) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	converted := false
	if data.Layout() == graph.BatchMajor {
		b.sink.Emit(Diagnostic{
			Component: "bidirectional_rnn",
			Message:   "received batch-major input; converting to time-major and back adds two transposes per batch",
		})
		data = data.SwapAxes01()
		converted = true
	}
	if data.Layout() != graph.TimeMajor {
		return nil, fmt.Errorf("encoder: bidirectional stage expects a sequence layout, got %q", data.Layout())
	}

	forwardOut, err := b.forward.Encode(data, lengths, seqLen)
	if err != nil {
		return nil, err
	}
	reverseOut, err := b.reverse.Encode(data.SequenceReverse(lengths), lengths, seqLen)
	if err != nil {
		return nil, err
	}
	reverseOut = reverseOut.SequenceReverse(lengths)

	out := graph.Concat(2, forwardOut, reverseOut)
	if converted {
		out = out.SwapAxes01()
	}
	return out, nil
}

// NumHidden implements Encoder.
func (b *BiDirectional) NumHidden() int {
	return b.numHidden
}

// Cells implements Encoder.
func (b *BiDirectional) Cells() []rnn.Cell {
	return append(b.forward.Cells(), b.reverse.Cells()...)
}
