package tensor

import "fmt"

// DataType identifies the element type of a tensor.
type DataType int

const (
	// Float32 is the default element type for activations and weights.
	Float32 DataType = iota
	// Int32 is used for token indices and sequence lengths.
	Int32
)

// String returns the name of the data type.
func (d DataType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Tensor is a dense row-major multi-dimensional array on the CPU.
//
// Exactly one of the two backing slices is non-nil, selected by dtype.
// Tensors own their data; kernels always allocate fresh outputs and
// never alias their inputs.
type Tensor struct {
	shape   Shape
	strides []int
	dtype   DataType
	f32     []float32
	i32     []int32
}

// New allocates a zero-filled tensor of the given shape and type.
func New(shape Shape, dtype DataType) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	t := &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
	}
	switch dtype {
	case Float32:
		t.f32 = make([]float32, shape.NumElements())
	case Int32:
		t.i32 = make([]int32, shape.NumElements())
	default:
		panic(fmt.Sprintf("tensor.New: unsupported dtype %v", dtype))
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Float32s returns the backing float32 slice.
// Panics if the tensor holds int32 data.
func (t *Tensor) Float32s() []float32 {
	if t.dtype != Float32 {
		panic(fmt.Sprintf("tensor: Float32s on %v tensor", t.dtype))
	}
	return t.f32
}

// Int32s returns the backing int32 slice.
// Panics if the tensor holds float32 data.
func (t *Tensor) Int32s() []int32 {
	if t.dtype != Int32 {
		panic(fmt.Sprintf("tensor: Int32s on %v tensor", t.dtype))
	}
	return t.i32
}

// At returns the float32 element at the given indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.Float32s()[t.offset(indices)]
}

// Set assigns the float32 element at the given indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.Float32s()[t.offset(indices)] = value
}

// IntAt returns the int32 element at the given indices.
func (t *Tensor) IntAt(indices ...int) int32 {
	return t.Int32s()[t.offset(indices)]
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	out := New(t.shape, t.dtype)
	switch t.dtype {
	case Float32:
		copy(out.f32, t.f32)
	case Int32:
		copy(out.i32, t.i32)
	}
	return out
}

// String returns a human-readable description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.dtype, t.shape)
}

// Reshape returns a copy of the tensor with a new shape.
// The number of elements must not change.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	newShape := Shape(dims)
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v", t.shape, newShape))
	}
	out := t.Clone()
	out.shape = newShape.Clone()
	out.strides = newShape.ComputeStrides()
	return out
}
