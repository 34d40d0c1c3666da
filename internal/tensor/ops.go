package tensor

import (
	"fmt"
	"math"
)

// Add computes a + b with NumPy-style broadcasting.
func Add(a, b *Tensor) *Tensor {
	return broadcastBinary(a, b, func(x, y float32) float32 { return x + y })
}

// Sub computes a - b with NumPy-style broadcasting.
func Sub(a, b *Tensor) *Tensor {
	return broadcastBinary(a, b, func(x, y float32) float32 { return x - y })
}

// Mul computes the elementwise product a * b with NumPy-style broadcasting.
func Mul(a, b *Tensor) *Tensor {
	return broadcastBinary(a, b, func(x, y float32) float32 { return x * y })
}

// Scale multiplies every element by the given scalar.
func Scale(a *Tensor, s float32) *Tensor {
	return apply(a, func(x float32) float32 { return x * s })
}

// Sigmoid applies the logistic function elementwise.
func Sigmoid(a *Tensor) *Tensor {
	return apply(a, func(x float32) float32 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	})
}

// Tanh applies the hyperbolic tangent elementwise.
func Tanh(a *Tensor) *Tensor {
	return apply(a, func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	})
}

// Relu applies max(0, x) elementwise.
func Relu(a *Tensor) *Tensor {
	return apply(a, func(x float32) float32 {
		if x < 0 {
			return 0
		}
		return x
	})
}

// MatMul computes the 2-D matrix product of a (m, k) and b (k, n).
func MatMul(a, b *Tensor) *Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("tensor.MatMul: expected 2D operands, got %v x %v", as, bs))
	}
	if as[1] != bs[0] {
		panic(fmt.Sprintf("tensor.MatMul: inner dimensions do not match: %v x %v", as, bs))
	}
	m, k, n := as[0], as[1], bs[1]
	out := Zeros(Shape{m, n})
	ad, bd, od := a.Float32s(), b.Float32s(), out.Float32s()
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := ad[i*k+p]
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				od[i*n+j] += av * bd[p*n+j]
			}
		}
	}
	return out
}

// BatchMatMul multiplies two tensors of shape (..., m, k) and (..., k, n)
// with identical leading (batch) dimensions.
func BatchMatMul(a, b *Tensor) *Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) < 3 || len(as) != len(bs) {
		panic(fmt.Sprintf("tensor.BatchMatMul: expected matching >=3D operands, got %v x %v", as, bs))
	}
	batch := 1
	for i := 0; i < len(as)-2; i++ {
		if as[i] != bs[i] {
			panic(fmt.Sprintf("tensor.BatchMatMul: batch dimensions do not match: %v x %v", as, bs))
		}
		batch *= as[i]
	}
	m, k, n := as[len(as)-2], as[len(as)-1], bs[len(bs)-1]
	if bs[len(bs)-2] != k {
		panic(fmt.Sprintf("tensor.BatchMatMul: inner dimensions do not match: %v x %v", as, bs))
	}

	outShape := as.Clone()
	outShape[len(outShape)-1] = n
	out := Zeros(outShape)
	ad, bd, od := a.Float32s(), b.Float32s(), out.Float32s()
	for bi := 0; bi < batch; bi++ {
		ao, bo, oo := bi*m*k, bi*k*n, bi*m*n
		for i := 0; i < m; i++ {
			for p := 0; p < k; p++ {
				av := ad[ao+i*k+p]
				if av == 0 {
					continue
				}
				for j := 0; j < n; j++ {
					od[oo+i*n+j] += av * bd[bo+p*n+j]
				}
			}
		}
	}
	return out
}

// Softmax normalizes the last dimension into a probability distribution,
// subtracting the row maximum for numerical stability.
func Softmax(a *Tensor) *Tensor {
	shape := a.Shape()
	n := shape[len(shape)-1]
	rows := a.NumElements() / n
	out := New(shape, Float32)
	in, od := a.Float32s(), out.Float32s()
	for r := 0; r < rows; r++ {
		row := in[r*n : (r+1)*n]
		maxVal := row[0]
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			od[r*n+i] = float32(e)
			sum += e
		}
		for i := 0; i < n; i++ {
			od[r*n+i] = float32(float64(od[r*n+i]) / sum)
		}
	}
	return out
}

// LayerNorm normalizes the last dimension of x to zero mean and unit
// variance, then rescales with gamma and shifts with beta (both of
// length equal to the last dimension).
func LayerNorm(x, gamma, beta *Tensor, eps float32) *Tensor {
	shape := x.Shape()
	n := shape[len(shape)-1]
	if gamma.NumElements() != n || beta.NumElements() != n {
		panic(fmt.Sprintf("tensor.LayerNorm: gamma/beta must have %d elements", n))
	}
	rows := x.NumElements() / n
	out := New(shape, Float32)
	in, od := x.Float32s(), out.Float32s()
	gd, bd := gamma.Float32s(), beta.Float32s()
	for r := 0; r < rows; r++ {
		row := in[r*n : (r+1)*n]
		var mean float64
		for _, v := range row {
			mean += float64(v)
		}
		mean /= float64(n)
		var variance float64
		for _, v := range row {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(n)
		inv := 1 / math.Sqrt(variance+float64(eps))
		for i, v := range row {
			od[r*n+i] = gd[i]*float32((float64(v)-mean)*inv) + bd[i]
		}
	}
	return out
}

func apply(a *Tensor, f func(float32) float32) *Tensor {
	out := New(a.Shape(), Float32)
	in, od := a.Float32s(), out.Float32s()
	for i, v := range in {
		od[i] = f(v)
	}
	return out
}

func broadcastBinary(a, b *Tensor, f func(x, y float32) float32) *Tensor {
	outShape, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	out := New(outShape, Float32)
	od := out.Float32s()
	ad, bd := a.Float32s(), b.Float32s()

	// Fast path: identical shapes.
	if a.Shape().Equal(b.Shape()) {
		for i := range od {
			od[i] = f(ad[i], bd[i])
		}
		return out
	}

	rank := len(outShape)
	idx := make([]int, rank)
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	for i := range od {
		var ao, bo int
		for d := 0; d < rank; d++ {
			ao += idx[d] * aStrides[d]
			bo += idx[d] * bStrides[d]
		}
		od[i] = f(ad[ao], bd[bo])
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// broadcastStrides returns per-output-dimension strides into a tensor of
// shape `in` broadcast to shape `out`; broadcast dimensions get stride 0.
func broadcastStrides(in, out Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for d := range out {
		if d < offset {
			continue
		}
		if in[d-offset] == 1 && out[d] != 1 {
			continue
		}
		strides[d] = inStrides[d-offset]
	}
	return strides
}
