package nninit

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tern-mt/tern/internal/tensor"
)

// Rand types accepted by StackedOrthogonal.
const (
	RandUniform = "uniform"
	RandNormal  = "normal"
	RandEye     = "eye"
)

// StackedOrthogonal initializes a weight as stacked square orthogonal
// matrices. The weight shape must be (k*n, n): k square blocks of size
// n, each set to an independent (scaled) orthogonal matrix. This arises
// in recurrent layers where several hidden-to-hidden transformations are
// fused into a single matrix multiplication.
//
// Reference: Saxe et al., "Exact solutions to the nonlinear dynamics of
// learning in deep linear neural networks" (arXiv:1312.6120).
type StackedOrthogonal struct {
	// Scale multiplies the orthogonal block.
	Scale float64
	// RandType selects the noise source: RandUniform, RandNormal, or
	// RandEye for an exact identity block.
	RandType string
}

// Init implements Initializer.
func (s StackedOrthogonal) Init(shape tensor.Shape, rng *rand.Rand) (*tensor.Tensor, error) {
	if len(shape) != 2 {
		return nil, fmt.Errorf("stacked orthogonal: only 2d weight matrices supported, got %v", shape)
	}
	baseDim := shape[1]
	stackedDim := shape[0]
	if stackedDim%baseDim != 0 {
		return nil, fmt.Errorf("stacked orthogonal: dim0 (%d) must be a multiple of dim1 (%d)", stackedDim, baseDim)
	}

	out := tensor.Zeros(shape)
	data := out.Float32s()
	numBlocks := stackedDim / baseDim
	for block := 0; block < numBlocks; block++ {
		q, err := s.orthogonalBlock(baseDim, rng)
		if err != nil {
			return nil, err
		}
		copy(data[block*baseDim*baseDim:(block+1)*baseDim*baseDim], q)
	}
	return out, nil
}

// orthogonalBlock returns a flattened (n, n) matrix whose rows are
// orthonormal, multiplied by the scale factor.
func (s StackedOrthogonal) orthogonalBlock(n int, rng *rand.Rand) ([]float32, error) {
	scale := float32(s.Scale)
	block := make([]float32, n*n)

	if s.RandType == RandEye {
		for i := 0; i < n; i++ {
			block[i*n+i] = scale
		}
		return block, nil
	}

	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			switch s.RandType {
			case RandUniform:
				m[i][j] = rng.Float64()*2 - 1
			case RandNormal:
				m[i][j] = rng.NormFloat64()
			default:
				return nil, fmt.Errorf("unknown rand_type %q", s.RandType)
			}
		}
	}

	// Modified Gram-Schmidt over rows.
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			var dot float64
			for k := 0; k < n; k++ {
				dot += m[i][k] * m[j][k]
			}
			for k := 0; k < n; k++ {
				m[i][k] -= dot * m[j][k]
			}
		}
		var norm float64
		for k := 0; k < n; k++ {
			norm += m[i][k] * m[i][k]
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			return nil, fmt.Errorf("stacked orthogonal: degenerate random matrix (row %d)", i)
		}
		for k := 0; k < n; k++ {
			m[i][k] /= norm
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			block[i*n+j] = scale * float32(m[i][j])
		}
	}
	return block, nil
}
