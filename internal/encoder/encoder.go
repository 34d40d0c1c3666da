// Package encoder implements the sequence encoders of the translation
// model as composable graph-building stages: embedding with optional
// sinusoidal positional encoding, layout conversion, unidirectional and
// bidirectional recurrent stages, a transformer self-attention stack,
// and the pipeline type that composes them behind one contract.
//
// Stages only declare computation on a graph; nothing executes until an
// executor evaluates the returned handles. Stage construction validates
// its configuration and fails fast with a descriptive error.
package encoder

import (
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/rnn"
)

// Encoder is the contract every pipeline stage exposes. Encode consumes
// the stage input, the per-example valid-length vector and the padded
// sequence length, and returns a new handle. NumHidden reports the
// trailing channel width of that handle. Cells returns the recurrent
// cells owned by the stage, empty for non-recurrent stages, so
// optimizers can treat recurrent parameters specially.
type Encoder interface {
	Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error)
	NumHidden() int
	Cells() []rnn.Cell
}

// Diagnostic is a structured advisory event produced during stage
// construction or graph building, e.g. a performance note about layout
// conversion. Diagnostics never indicate failure.
type Diagnostic struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// DiagnosticSink receives diagnostics from the stages it is injected
// into. Implementations must be safe for single-threaded graph
// construction; no other guarantee is required.
type DiagnosticSink interface {
	Emit(d Diagnostic)
}

type discardSink struct{}

func (discardSink) Emit(Diagnostic) {}

// Discard drops all diagnostics. Used when no sink is injected.
var Discard DiagnosticSink = discardSink{}

// Collector is a DiagnosticSink that records every event in order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Emit implements DiagnosticSink.
func (c *Collector) Emit(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}
