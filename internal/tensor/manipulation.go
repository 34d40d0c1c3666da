package tensor

import "fmt"

// Transpose permutes the axes of the tensor. The permutation must name
// every axis exactly once.
func Transpose(t *Tensor, perm ...int) *Tensor {
	shape := t.Shape()
	if len(perm) != len(shape) {
		panic(fmt.Sprintf("tensor.Transpose: permutation %v does not match rank %d", perm, len(shape)))
	}
	seen := make([]bool, len(shape))
	newShape := make(Shape, len(shape))
	for i, p := range perm {
		if p < 0 || p >= len(shape) || seen[p] {
			panic(fmt.Sprintf("tensor.Transpose: invalid permutation %v for shape %v", perm, shape))
		}
		seen[p] = true
		newShape[i] = shape[p]
	}

	out := New(newShape, t.DType())
	inStrides := shape.ComputeStrides()
	idx := make([]int, len(newShape))
	n := t.NumElements()
	switch t.DType() {
	case Float32:
		in, od := t.Float32s(), out.Float32s()
		for i := 0; i < n; i++ {
			src := 0
			for d, p := range perm {
				src += idx[d] * inStrides[p]
			}
			od[i] = in[src]
			advance(idx, newShape)
		}
	case Int32:
		in, od := t.Int32s(), out.Int32s()
		for i := 0; i < n; i++ {
			src := 0
			for d, p := range perm {
				src += idx[d] * inStrides[p]
			}
			od[i] = in[src]
			advance(idx, newShape)
		}
	}
	return out
}

// Cat concatenates tensors along an existing dimension.
// All tensors must agree on every other dimension and on dtype.
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("tensor.Cat: no tensors")
	}
	first := tensors[0]
	rank := len(first.Shape())
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("tensor.Cat: dim %d out of range for rank %d", dim, rank))
	}
	outShape := first.Shape().Clone()
	for _, t := range tensors[1:] {
		s := t.Shape()
		if len(s) != rank || t.DType() != first.DType() {
			panic("tensor.Cat: mismatched operands")
		}
		for d := 0; d < rank; d++ {
			if d == dim {
				continue
			}
			if s[d] != outShape[d] {
				panic(fmt.Sprintf("tensor.Cat: shape %v incompatible with %v along dim %d", s, first.Shape(), dim))
			}
		}
		outShape[dim] += s[dim]
	}

	out := New(outShape, first.DType())
	// Copy block-wise: outer = product of dims before `dim`,
	// inner = product of dims after it.
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}
	inner := 1
	for d := dim + 1; d < rank; d++ {
		inner *= outShape[d]
	}
	outRow := outShape[dim] * inner
	offset := 0
	for _, t := range tensors {
		rows := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			dst := o*outRow + offset
			src := o * rows
			switch first.DType() {
			case Float32:
				copy(out.Float32s()[dst:dst+rows], t.Float32s()[src:src+rows])
			case Int32:
				copy(out.Int32s()[dst:dst+rows], t.Int32s()[src:src+rows])
			}
		}
		offset += rows
	}
	return out
}

// Stack joins tensors of identical shape along a new leading axis at
// position dim.
func Stack(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("tensor.Stack: no tensors")
	}
	expanded := make([]*Tensor, len(tensors))
	for i, t := range tensors {
		if !t.Shape().Equal(tensors[0].Shape()) {
			panic("tensor.Stack: mismatched shapes")
		}
		newShape := make(Shape, 0, len(t.Shape())+1)
		newShape = append(newShape, t.Shape()[:dim]...)
		newShape = append(newShape, 1)
		newShape = append(newShape, t.Shape()[dim:]...)
		expanded[i] = t.Reshape(newShape...)
	}
	return Cat(expanded, dim)
}

// SliceAxis returns the sub-tensor [begin, end) along the given axis.
func SliceAxis(t *Tensor, axis, begin, end int) *Tensor {
	shape := t.Shape()
	if axis < 0 || axis >= len(shape) {
		panic(fmt.Sprintf("tensor.SliceAxis: axis %d out of range for rank %d", axis, len(shape)))
	}
	if begin < 0 || end > shape[axis] || begin >= end {
		panic(fmt.Sprintf("tensor.SliceAxis: range [%d, %d) invalid for axis size %d", begin, end, shape[axis]))
	}
	outShape := shape.Clone()
	outShape[axis] = end - begin
	out := New(outShape, t.DType())

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= shape[d]
	}
	inner := 1
	for d := axis + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	inRow := shape[axis] * inner
	outRow := (end - begin) * inner
	for o := 0; o < outer; o++ {
		src := o*inRow + begin*inner
		dst := o * outRow
		switch t.DType() {
		case Float32:
			copy(out.Float32s()[dst:dst+outRow], t.Float32s()[src:src+outRow])
		case Int32:
			copy(out.Int32s()[dst:dst+outRow], t.Int32s()[src:src+outRow])
		}
	}
	return out
}

// SliceIndex picks a single position along the given axis and squeezes
// that axis away.
func SliceIndex(t *Tensor, axis, index int) *Tensor {
	sliced := SliceAxis(t, axis, index, index+1)
	shape := sliced.Shape()
	squeezed := make(Shape, 0, len(shape)-1)
	for d, s := range shape {
		if d == axis {
			continue
		}
		squeezed = append(squeezed, s)
	}
	return sliced.Reshape(squeezed...)
}

func advance(idx []int, shape Shape) {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < shape[d] {
			return
		}
		idx[d] = 0
	}
}
