package graph

import (
	"fmt"

	"github.com/tern-mt/tern/internal/tensor"
)

// SwapAxes01 declares a transpose of the first two axes, flipping the
// layout tag between batch-major and time-major. Self-inverse.
func (t *Tensor) SwapAxes01() *Tensor {
	if len(t.shape) < 2 {
		panic(fmt.Sprintf("graph: SwapAxes01 requires rank >= 2, got %v", t.shape))
	}
	perm := make([]int, len(t.shape))
	for i := range perm {
		perm[i] = i
	}
	perm[0], perm[1] = 1, 0
	out := t.shape.Clone()
	out[0], out[1] = out[1], out[0]

	layout := t.layout
	switch layout {
	case BatchMajor:
		layout = TimeMajor
	case TimeMajor:
		layout = BatchMajor
	}
	return newOp(&transposeOp{perm: perm}, t.dtype, out, layout, t)
}

// Transpose declares a general axis permutation. The resulting tensor
// has no layout interpretation.
func (t *Tensor) Transpose(perm ...int) *Tensor {
	if len(perm) != len(t.shape) {
		panic(fmt.Sprintf("graph: Transpose permutation %v does not match shape %v", perm, t.shape))
	}
	out := make(tensor.Shape, len(perm))
	for i, p := range perm {
		out[i] = t.shape[p]
	}
	return newOp(&transposeOp{perm: append([]int(nil), perm...)}, t.dtype, out, LayoutNone, t)
}

// Reshape declares a view with a new shape over the same elements.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := tensor.Shape(dims)
	if newShape.NumElements() != t.shape.NumElements() {
		panic(fmt.Sprintf("graph: cannot reshape %v to %v", t.shape, newShape))
	}
	return newOp(&reshapeOp{shape: newShape.Clone()}, t.dtype, newShape, LayoutNone, t)
}

// SliceAxis declares the sub-tensor [begin, end) along an axis.
func (t *Tensor) SliceAxis(axis, begin, end int) *Tensor {
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Sprintf("graph: SliceAxis axis %d out of range for %v", axis, t.shape))
	}
	if begin < 0 || end > t.shape[axis] || begin >= end {
		panic(fmt.Sprintf("graph: SliceAxis range [%d, %d) invalid for axis size %d", begin, end, t.shape[axis]))
	}
	out := t.shape.Clone()
	out[axis] = end - begin
	return newOp(&sliceAxisOp{axis: axis, begin: begin, end: end}, t.dtype, out, t.layout, t)
}

// SliceIndex declares picking one position along an axis, squeezing the
// axis away.
func (t *Tensor) SliceIndex(axis, index int) *Tensor {
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Sprintf("graph: SliceIndex axis %d out of range for %v", axis, t.shape))
	}
	if index < 0 || index >= t.shape[axis] {
		panic(fmt.Sprintf("graph: SliceIndex %d out of range for axis size %d", index, t.shape[axis]))
	}
	out := make(tensor.Shape, 0, len(t.shape)-1)
	for d, s := range t.shape {
		if d == axis {
			continue
		}
		out = append(out, s)
	}
	return newOp(&sliceIndexOp{axis: axis, index: index}, t.dtype, out, LayoutNone, t)
}

// ExpandDims declares insertion of a size-1 axis at the given position.
func (t *Tensor) ExpandDims(axis int) *Tensor {
	if axis < 0 || axis > len(t.shape) {
		panic(fmt.Sprintf("graph: ExpandDims axis %d out of range for %v", axis, t.shape))
	}
	out := make(tensor.Shape, 0, len(t.shape)+1)
	out = append(out, t.shape[:axis]...)
	out = append(out, 1)
	out = append(out, t.shape[axis:]...)
	return newOp(&reshapeOp{shape: out}, t.dtype, out, LayoutNone, t)
}

// Concat declares concatenation along an existing dimension. All
// operands must agree on every other dimension; the result carries the
// first operand's layout.
func Concat(dim int, tensors ...*Tensor) *Tensor {
	if len(tensors) == 0 {
		panic("graph: Concat requires at least one tensor")
	}
	first := tensors[0]
	out := first.shape.Clone()
	for _, t := range tensors[1:] {
		if len(t.shape) != len(first.shape) {
			panic(fmt.Sprintf("graph: Concat rank mismatch %v vs %v", first.shape, t.shape))
		}
		for d := range t.shape {
			if d == dim {
				continue
			}
			if t.shape[d] != first.shape[d] {
				panic(fmt.Sprintf("graph: Concat shape mismatch %v vs %v along dim %d", first.shape, t.shape, dim))
			}
		}
		out[dim] += t.shape[dim]
	}
	return newOp(&concatOp{dim: dim}, first.dtype, out, first.layout, tensors...)
}

// Stack declares joining same-shape tensors along a new axis at
// position dim. Used to reassemble per-step recurrent outputs into a
// sequence tensor.
func Stack(dim int, layout Layout, tensors ...*Tensor) *Tensor {
	if len(tensors) == 0 {
		panic("graph: Stack requires at least one tensor")
	}
	first := tensors[0]
	for _, t := range tensors[1:] {
		if !t.shape.Equal(first.shape) {
			panic(fmt.Sprintf("graph: Stack shape mismatch %v vs %v", first.shape, t.shape))
		}
	}
	out := make(tensor.Shape, 0, len(first.shape)+1)
	out = append(out, first.shape[:dim]...)
	out = append(out, len(tensors))
	out = append(out, first.shape[dim:]...)
	return newOp(&stackOp{dim: dim}, first.dtype, out, layout, tensors...)
}

type transposeOp struct {
	perm []int
}

func (o *transposeOp) name() string { return "Transpose" }
func (o *transposeOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Transpose(in[0], o.perm...), nil
}

type reshapeOp struct {
	shape tensor.Shape
}

func (o *reshapeOp) name() string { return "Reshape" }
func (o *reshapeOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return in[0].Reshape(o.shape...), nil
}

type sliceAxisOp struct {
	axis, begin, end int
}

func (o *sliceAxisOp) name() string { return "SliceAxis" }
func (o *sliceAxisOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.SliceAxis(in[0], o.axis, o.begin, o.end), nil
}

type sliceIndexOp struct {
	axis, index int
}

func (o *sliceIndexOp) name() string { return "SliceIndex" }
func (o *sliceIndexOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.SliceIndex(in[0], o.axis, o.index), nil
}

type concatOp struct {
	dim int
}

func (o *concatOp) name() string { return "Concat" }
func (o *concatOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Cat(in, o.dim), nil
}

type stackOp struct {
	dim int
}

func (o *stackOp) name() string { return "Stack" }
func (o *stackOp) eval(_ *evalContext, in []*tensor.Tensor) (*tensor.Tensor, error) {
	return tensor.Stack(in, o.dim), nil
}
