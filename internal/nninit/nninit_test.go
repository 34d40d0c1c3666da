package nninit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-mt/tern/internal/tensor"
)

// blockGram computes (QᵀQ)[i][j] for the square block starting at row
// blockRow of a stacked (k*n, n) weight.
func blockGram(t *tensor.Tensor, blockRow, n, i, j int) float64 {
	var sum float64
	for k := 0; k < n; k++ {
		sum += float64(t.At(blockRow+k, i)) * float64(t.At(blockRow+k, j))
	}
	return sum
}

func TestStackedOrthogonalBlocksAreOrthogonal(t *testing.T) {
	const n = 8
	for _, randType := range []string{RandUniform, RandNormal} {
		t.Run(randType, func(t *testing.T) {
			init := StackedOrthogonal{Scale: 1.0, RandType: randType}
			w, err := init.Init(tensor.Shape{3 * n, n}, rand.New(rand.NewSource(7)))
			require.NoError(t, err)

			for block := 0; block < 3; block++ {
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						want := 0.0
						if i == j {
							want = 1.0
						}
						got := blockGram(w, block*n, n, i, j)
						assert.InDeltaf(t, want, got, 1e-5,
							"block %d gram[%d][%d]", block, i, j)
					}
				}
			}
		})
	}
}

func TestStackedOrthogonalScale(t *testing.T) {
	const n = 4
	init := StackedOrthogonal{Scale: 1.414, RandType: RandUniform}
	w, err := init.Init(tensor.Shape{n, n}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// QᵀQ of a scaled orthogonal matrix is scale² on the diagonal.
	for i := 0; i < n; i++ {
		assert.InDelta(t, 1.414*1.414, blockGram(w, 0, n, i, i), 1e-5)
	}
}

func TestStackedOrthogonalEyeIsExact(t *testing.T) {
	const n = 5
	init := StackedOrthogonal{Scale: 1.0, RandType: RandEye}
	w, err := init.Init(tensor.Shape{2 * n, n}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for block := 0; block < 2; block++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := float32(0)
				if i == j {
					want = 1
				}
				assert.Equal(t, want, w.At(block*n+i, j))
			}
		}
	}
}

func TestStackedOrthogonalRejectsBadShapes(t *testing.T) {
	init := StackedOrthogonal{Scale: 1.0, RandType: RandUniform}
	_, err := init.Init(tensor.Shape{7, 3}, rand.New(rand.NewSource(1)))
	assert.Error(t, err, "dim0 not a multiple of dim1")

	_, err = init.Init(tensor.Shape{8}, rand.New(rand.NewSource(1)))
	assert.Error(t, err, "1d shape")
}

func TestPositionalEncodingDeterministic(t *testing.T) {
	init := PositionalEncoding{MaxSeqLen: 10, NumEmbed: 6}
	a, err := init.Init(tensor.Shape{10, 6}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	b, err := init.Init(tensor.Shape{10, 6}, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	assert.Equal(t, a.Float32s(), b.Float32s(), "table must not depend on the random source")

	// Position 0 is sin(0) = 0 across all channels.
	for c := 0; c < 6; c++ {
		assert.Zero(t, a.At(0, c))
	}
	// Position 1 is a cosine row; channel 0 is cos(1).
	assert.InDelta(t, math.Cos(1), float64(a.At(1, 0)), 1e-6)
}

func TestLSTMBiasForgetGate(t *testing.T) {
	const h = 3
	init := LSTMBias{NumHidden: h, ForgetBias: 1.0}
	b, err := init.Init(tensor.Shape{4 * h}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	data := b.Float32s()
	for i, v := range data {
		if i >= h && i < 2*h {
			assert.Equal(t, float32(1.0), v, "forget segment index %d", i)
		} else {
			assert.Zero(t, v, "non-forget segment index %d", i)
		}
	}
}

func TestXavierBound(t *testing.T) {
	init := Xavier{}
	w, err := init.Init(tensor.Shape{16, 9}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	bound := math.Sqrt(3 * DefaultXavierMagnitude / 9)
	for _, v := range w.Float32s() {
		assert.LessOrEqual(t, math.Abs(float64(v)), bound)
	}
}

func TestGetUnknownTag(t *testing.T) {
	_, err := Get("svd")
	assert.ErrorContains(t, err, "unknown rnn initialization type")

	for _, tag := range []string{"orthogonal", "orthogonal_stacked"} {
		init, err := Get(tag)
		require.NoError(t, err)
		assert.NotNil(t, init)
	}
}
