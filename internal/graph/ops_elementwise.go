package graph

import (
	"fmt"

	"github.com/tern-mt/tern/internal/tensor"
)

// Add declares elementwise addition with NumPy-style broadcasting.
// The result carries the receiver's layout.
func (t *Tensor) Add(other *Tensor) *Tensor {
	shape := mustBroadcast("Add", t, other)
	return newOp(&addOp{}, tensor.Float32, shape, t.layout, t, other)
}

// Sub declares elementwise subtraction with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	shape := mustBroadcast("Sub", t, other)
	return newOp(&subOp{}, tensor.Float32, shape, t.layout, t, other)
}

// Mul declares the elementwise (Hadamard) product with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	shape := mustBroadcast("Mul", t, other)
	return newOp(&mulOp{}, tensor.Float32, shape, t.layout, t, other)
}

// MulScalar declares multiplication by a compile-time scalar.
func (t *Tensor) MulScalar(s float32) *Tensor {
	return newOp(&scaleOp{factor: s}, tensor.Float32, t.shape, t.layout, t)
}

// Relu declares max(0, x).
func (t *Tensor) Relu() *Tensor {
	return newOp(&unaryOp{kind: "Relu", f: tensor.Relu}, tensor.Float32, t.shape, t.layout, t)
}

// Sigmoid declares the logistic function.
func (t *Tensor) Sigmoid() *Tensor {
	return newOp(&unaryOp{kind: "Sigmoid", f: tensor.Sigmoid}, tensor.Float32, t.shape, t.layout, t)
}

// Tanh declares the hyperbolic tangent.
func (t *Tensor) Tanh() *Tensor {
	return newOp(&unaryOp{kind: "Tanh", f: tensor.Tanh}, tensor.Float32, t.shape, t.layout, t)
}

// Softmax declares normalization of the last dimension into a
// probability distribution.
func (t *Tensor) Softmax() *Tensor {
	return newOp(&softmaxOp{}, tensor.Float32, t.shape, t.layout, t)
}

// Dropout declares elementwise zeroing with probability rate during
// training; at inference (and for rate 0) it is the identity. Each
// element is sampled independently from the executor's seeded stream.
func (t *Tensor) Dropout(rate float64) *Tensor {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("graph: dropout rate %v out of range [0, 1)", rate))
	}
	return newOp(&dropoutOp{rate: rate}, tensor.Float32, t.shape, t.layout, t)
}

// LayerNorm declares per-position normalization of the trailing channel
// dimension followed by a learned scale (gamma) and shift (beta).
func (t *Tensor) LayerNorm(gamma, beta *Tensor, eps float32) *Tensor {
	n := t.shape[len(t.shape)-1]
	if gamma.shape.NumElements() != n || beta.shape.NumElements() != n {
		panic(fmt.Sprintf("graph: LayerNorm gamma/beta must have %d elements, got %v/%v", n, gamma.shape, beta.shape))
	}
	return newOp(&layerNormOp{eps: eps}, tensor.Float32, t.shape, t.layout, t, gamma, beta)
}

// MatMul declares a 2-D matrix product (m, k) x (k, n) -> (m, n).
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	a, b := t.shape, other.shape
	if len(a) != 2 || len(b) != 2 || a[1] != b[0] {
		panic(fmt.Sprintf("graph: MatMul shape mismatch %v x %v", a, b))
	}
	return newOp(&matMulOp{}, tensor.Float32, tensor.Shape{a[0], b[1]}, LayoutNone, t, other)
}

// BatchMatMul declares a batched matrix product over tensors with equal
// leading dimensions: (..., m, k) x (..., k, n) -> (..., m, n).
func (t *Tensor) BatchMatMul(other *Tensor) *Tensor {
	a, b := t.shape, other.shape
	if len(a) < 3 || len(a) != len(b) || a[len(a)-1] != b[len(b)-2] {
		panic(fmt.Sprintf("graph: BatchMatMul shape mismatch %v x %v", a, b))
	}
	for i := 0; i < len(a)-2; i++ {
		if a[i] != b[i] {
			panic(fmt.Sprintf("graph: BatchMatMul batch dims differ: %v x %v", a, b))
		}
	}
	out := a.Clone()
	out[len(out)-1] = b[len(b)-1]
	return newOp(&batchMatMulOp{}, tensor.Float32, out, t.layout, t, other)
}

func mustBroadcast(opName string, a, b *Tensor) tensor.Shape {
	shape, err := tensor.BroadcastShapes(a.shape, b.shape)
	if err != nil {
		panic(fmt.Sprintf("graph: %s: %v", opName, err))
	}
	return shape
}

type addOp struct{}

func (o *addOp) name() string { return "Add" }
func (o *addOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Add(in[0], in[1]), nil
}

type subOp struct{}

func (o *subOp) name() string { return "Sub" }
func (o *subOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Sub(in[0], in[1]), nil
}

type mulOp struct{}

func (o *mulOp) name() string { return "Mul" }
func (o *mulOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Mul(in[0], in[1]), nil
}

type scaleOp struct {
	factor float32
}

func (o *scaleOp) name() string { return "MulScalar" }
func (o *scaleOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Scale(in[0], o.factor), nil
}

type unaryOp struct {
	kind string
	f    func(*tensor.Tensor) *tensor.Tensor
}

func (o *unaryOp) name() string { return o.kind }
func (o *unaryOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return o.f(in[0]), nil
}

type softmaxOp struct{}

func (o *softmaxOp) name() string { return "Softmax" }
func (o *softmaxOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Softmax(in[0]), nil
}

type dropoutOp struct {
	rate float64
}

func (o *dropoutOp) name() string { return "Dropout" }
func (o *dropoutOp) eval(ctx *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	if ctx.exec.mode == Inference || o.rate == 0 {
		return in[0], nil
	}
	keep := float32(1 / (1 - o.rate))
	out := in[0].Clone()
	data := out.Float32s()
	for i := range data {
		if ctx.rng.Float64() < o.rate {
			data[i] = 0
		} else {
			data[i] *= keep
		}
	}
	return out, nil
}

type layerNormOp struct {
	eps float32
}

func (o *layerNormOp) name() string { return "LayerNorm" }
func (o *layerNormOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.LayerNorm(in[0], in[1], in[2], o.eps), nil
}

type matMulOp struct{}

func (o *matMulOp) name() string { return "MatMul" }
func (o *matMulOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.MatMul(in[0], in[1]), nil
}

type batchMatMulOp struct{}

func (o *batchMatMulOp) name() string { return "BatchMatMul" }
func (o *batchMatMulOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.BatchMatMul(in[0], in[1]), nil
}
