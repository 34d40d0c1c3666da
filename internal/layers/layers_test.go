package layers_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/layers"
	"github.com/tern-mt/tern/internal/tensor"
)

func TestLayerNormalizationNumeric(t *testing.T) {
	g := graph.New()
	norm := layers.NewLayerNormalization(g, "norm_", 4)

	x := g.Input("x", tensor.Shape{1, 2, 4}, graph.BatchMajor)
	out := norm.Normalize(x)
	assert.Equal(t, tensor.Shape{1, 2, 4}, out.Shape())

	feed, err := tensor.FromFloat32([]float32{
		1, 2, 3, 4,
		10, 10, 10, 10,
	}, tensor.Shape{1, 2, 4})
	require.NoError(t, err)

	exec, err := graph.NewExecutor(g, graph.Inference, 1)
	require.NoError(t, err)
	result, err := exec.Run(out, map[string]*tensor.Tensor{"x": feed})
	require.NoError(t, err)

	// First position: zero mean, unit variance under the initial
	// gamma=1, beta=0 parameters.
	var mean float64
	for c := 0; c < 4; c++ {
		mean += float64(result.At(0, 0, c))
	}
	assert.InDelta(t, 0, mean/4, 1e-5)

	// Constant position normalizes to zero.
	for c := 0; c < 4; c++ {
		assert.InDelta(t, 0, float64(result.At(0, 1, c)), 1e-2)
	}
}

func TestAttentionHeadDivisibility(t *testing.T) {
	g := graph.New()
	_, err := layers.NewMultiHeadSelfAttention(g, "att_", 6, 4, 0)
	assert.ErrorContains(t, err, "not divisible")

	_, err = layers.NewMultiHeadSelfAttention(g, "att2_", 8, 0, 0)
	assert.ErrorContains(t, err, "numHeads must be positive")
}

func TestAttentionShapePreserved(t *testing.T) {
	g := graph.New()
	att, err := layers.NewMultiHeadSelfAttention(g, "att_", 8, 2, 0)
	require.NoError(t, err)

	x := g.Input("x", tensor.Shape{2, 5, 8}, graph.BatchMajor)
	lengths := g.Lengths("len", 2)
	out := att.Apply(x, graph.AttentionLengthMask(lengths, 5))
	assert.Equal(t, tensor.Shape{2, 5, 8}, out.Shape())
}

// Padded key positions carry a -1e9 additive mask, so changing their
// content must not change any valid position's attention output.
func TestAttentionMaskExcludesPadding(t *testing.T) {
	const (
		batch   = 1
		seqLen  = 4
		model   = 4
		valid   = 2
		channel = model
	)
	g := graph.New()
	att, err := layers.NewMultiHeadSelfAttention(g, "att_", model, 2, 0)
	require.NoError(t, err)

	x := g.Input("x", tensor.Shape{batch, seqLen, model}, graph.BatchMajor)
	lengths := g.Lengths("len", batch)
	out := att.Apply(x, graph.AttentionLengthMask(lengths, seqLen))

	exec, err := graph.NewExecutor(g, graph.Inference, 5)
	require.NoError(t, err)

	lens, err := tensor.FromInt32([]int32{valid}, tensor.Shape{batch})
	require.NoError(t, err)

	base := make([]float32, batch*seqLen*model)
	for i := range base {
		base[i] = float32(i) * 0.01
	}
	altered := append([]float32(nil), base...)
	for p := valid; p < seqLen; p++ {
		for c := 0; c < channel; c++ {
			altered[p*model+c] = 99
		}
	}

	run := func(data []float32) *tensor.Tensor {
		feed, err := tensor.FromFloat32(data, tensor.Shape{batch, seqLen, model})
		require.NoError(t, err)
		result, err := exec.Run(out, map[string]*tensor.Tensor{"x": feed, "len": lens})
		require.NoError(t, err)
		return result
	}

	first := run(base)
	second := run(altered)
	for p := 0; p < valid; p++ {
		for c := 0; c < model; c++ {
			a := float64(first.At(0, p, c))
			b := float64(second.At(0, p, c))
			if math.Abs(a-b) > 1e-5 {
				t.Fatalf("valid position %d channel %d changed: %v vs %v", p, c, a, b)
			}
		}
	}
}

func TestFFNShapePreserved(t *testing.T) {
	g := graph.New()
	ffn := layers.NewFFNRelu(g, "ffn_", 6, 24, 0)

	x := g.Input("x", tensor.Shape{2, 3, 6}, graph.BatchMajor)
	out := ffn.Apply(x)
	assert.Equal(t, tensor.Shape{2, 3, 6}, out.Shape())
}
