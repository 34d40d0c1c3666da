package nninit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tern-mt/tern/internal/tensor"
)

// PositionalEncoding initializes a table of shape (maxSeqLen, numEmbed)
// with fixed sinusoidal position encodings: even positions hold sine
// values, odd positions cosine values, with channel c of position p set
// to sin(p / 10000^(2c/numEmbed)) resp. cos of the same angle.
//
// The table is deterministic: rebuilding with the same dimensions yields
// an identical tensor regardless of the random source.
type PositionalEncoding struct {
	MaxSeqLen int
	NumEmbed  int
}

// Init implements Initializer.
func (p PositionalEncoding) Init(shape tensor.Shape, _ *rand.Rand) (*tensor.Tensor, error) {
	expected := tensor.Shape{p.MaxSeqLen, p.NumEmbed}
	if !shape.Equal(expected) {
		return nil, fmt.Errorf("positional encoding: expected shape %v, got %v", expected, shape)
	}
	out := tensor.Zeros(shape)
	data := out.Float32s()
	for pos := 0; pos < p.MaxSeqLen; pos++ {
		for c := 0; c < p.NumEmbed; c++ {
			angle := float64(pos) / math.Pow(10000, float64(2*c)/float64(p.NumEmbed))
			if pos%2 == 0 {
				data[pos*p.NumEmbed+c] = float32(math.Sin(angle))
			} else {
				data[pos*p.NumEmbed+c] = float32(math.Cos(angle))
			}
		}
	}
	return out, nil
}
