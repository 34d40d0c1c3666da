package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a float32 tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return New(shape, Float32)
}

// Ones creates a float32 tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a float32 tensor filled with the given value.
func Full(shape Shape, value float32) *Tensor {
	t := New(shape, Float32)
	data := t.Float32s()
	for i := range data {
		data[i] = value
	}
	return t
}

// Eye creates an identity matrix of size n x n.
func Eye(n int) *Tensor {
	t := New(Shape{n, n}, Float32)
	for i := 0; i < n; i++ {
		t.Set(1, i, i)
	}
	return t
}

// FromFloat32 creates a float32 tensor from a slice.
// The slice is copied into the tensor's memory.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape, Float32)
	copy(t.Float32s(), data)
	return t, nil
}

// FromInt32 creates an int32 tensor from a slice.
// The slice is copied into the tensor's memory.
func FromInt32(data []int32, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := New(shape, Int32)
	copy(t.Int32s(), data)
	return t, nil
}

// Uniform creates a float32 tensor with values drawn from U(low, high)
// using the supplied random source.
func Uniform(rng *rand.Rand, shape Shape, low, high float32) *Tensor {
	t := New(shape, Float32)
	data := t.Float32s()
	for i := range data {
		data[i] = low + rng.Float32()*(high-low)
	}
	return t
}

// Randn creates a float32 tensor with values drawn from N(0, 1)
// using the supplied random source.
func Randn(rng *rand.Rand, shape Shape) *Tensor {
	t := New(shape, Float32)
	data := t.Float32s()
	for i := range data {
		data[i] = float32(rng.NormFloat64())
	}
	return t
}
