package tensor_test

import (
	"math"
	"testing"

	"github.com/tern-mt/tern/internal/tensor"
)

func floats(t *testing.T, data []float32, shape ...int) *tensor.Tensor {
	t.Helper()
	out, err := tensor.FromFloat32(data, tensor.Shape(shape))
	if err != nil {
		t.Fatalf("FromFloat32 failed: %v", err)
	}
	return out
}

func ints(t *testing.T, data []int32, shape ...int) *tensor.Tensor {
	t.Helper()
	out, err := tensor.FromInt32(data, tensor.Shape(shape))
	if err != nil {
		t.Fatalf("FromInt32 failed: %v", err)
	}
	return out
}

func TestTransposeRoundTrip(t *testing.T) {
	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	x := floats(t, data, 2, 3, 4)

	swapped := tensor.Transpose(x, 1, 0, 2)
	if !swapped.Shape().Equal(tensor.Shape{3, 2, 4}) {
		t.Fatalf("Transpose shape = %v, want [3 2 4]", swapped.Shape())
	}
	if got, want := swapped.At(2, 1, 3), x.At(1, 2, 3); got != want {
		t.Errorf("swapped element = %v, want %v", got, want)
	}

	// Swapping the same axes twice restores the element ordering.
	back := tensor.Transpose(swapped, 1, 0, 2)
	for i, v := range back.Float32s() {
		if v != data[i] {
			t.Fatalf("round trip element %d = %v, want %v", i, v, data[i])
		}
	}
}

func TestCat(t *testing.T) {
	a := floats(t, []float32{1, 2, 3, 4}, 2, 2)
	b := floats(t, []float32{5, 6, 7, 8}, 2, 2)

	cols := tensor.Cat([]*tensor.Tensor{a, b}, 1)
	if !cols.Shape().Equal(tensor.Shape{2, 4}) {
		t.Fatalf("Cat shape = %v, want [2 4]", cols.Shape())
	}
	want := []float32{1, 2, 5, 6, 3, 4, 7, 8}
	for i, v := range cols.Float32s() {
		if v != want[i] {
			t.Errorf("Cat element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestMatMul(t *testing.T) {
	a := floats(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := floats(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	c := tensor.MatMul(a, b)
	want := []float32{58, 64, 139, 154}
	for i, v := range c.Float32s() {
		if v != want[i] {
			t.Errorf("MatMul element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestSoftmax(t *testing.T) {
	x := floats(t, []float32{1, 2, 3, 1000, 1001, 1002}, 2, 3)
	s := tensor.Softmax(x)

	rows := s.Float32s()
	for r := 0; r < 2; r++ {
		sum := float32(0)
		for c := 0; c < 3; c++ {
			sum += rows[r*3+c]
		}
		if math.Abs(float64(sum-1)) > 1e-5 {
			t.Errorf("row %d sums to %v, want 1", r, sum)
		}
	}
	// Shift invariance: both rows differ by a constant, so the
	// distributions must match.
	for c := 0; c < 3; c++ {
		if math.Abs(float64(rows[c]-rows[3+c])) > 1e-5 {
			t.Errorf("column %d: %v vs %v after shift", c, rows[c], rows[3+c])
		}
	}
}

func TestLayerNorm(t *testing.T) {
	x := floats(t, []float32{1, 2, 3, 4}, 1, 4)
	gamma := tensor.Ones(tensor.Shape{4})
	beta := tensor.Zeros(tensor.Shape{4})

	y := tensor.LayerNorm(x, gamma, beta, 1e-6)
	data := y.Float32s()
	mean := float64(0)
	for _, v := range data {
		mean += float64(v)
	}
	mean /= 4
	variance := float64(0)
	for _, v := range data {
		variance += (float64(v) - mean) * (float64(v) - mean)
	}
	variance /= 4
	if math.Abs(mean) > 1e-5 {
		t.Errorf("normalized mean = %v, want 0", mean)
	}
	if math.Abs(variance-1) > 1e-3 {
		t.Errorf("normalized variance = %v, want 1", variance)
	}
}

func TestBroadcastAdd(t *testing.T) {
	x := floats(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	bias := floats(t, []float32{10, 20, 30}, 3)

	y := tensor.Add(x, bias)
	want := []float32{11, 22, 33, 14, 25, 36}
	for i, v := range y.Float32s() {
		if v != want[i] {
			t.Errorf("element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestBroadcastShapesMismatch(t *testing.T) {
	if _, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{4, 3}); err == nil {
		t.Fatal("expected broadcast error for [2 3] vs [4 3]")
	}
}

func TestEmbeddingLookup(t *testing.T) {
	weight := floats(t, []float32{
		0, 0,
		1, 10,
		2, 20,
	}, 3, 2)
	indices := ints(t, []int32{2, 1, 0, 2}, 2, 2)

	out := tensor.EmbeddingLookup(weight, indices)
	if !out.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("lookup shape = %v, want [2 2 2]", out.Shape())
	}
	if out.At(0, 0, 1) != 20 || out.At(1, 1, 0) != 2 {
		t.Errorf("lookup values wrong: %v", out.Float32s())
	}
}

func TestSequenceReverseRespectsLengths(t *testing.T) {
	// Time-major (4, 2, 1): example 0 has length 4, example 1 length 2
	// with padding markers 90/91 at its trailing steps.
	x := floats(t, []float32{
		1, 5,
		2, 6,
		3, 90,
		4, 91,
	}, 4, 2, 1)
	lengths := ints(t, []int32{4, 2}, 2)

	rev := tensor.SequenceReverse(x, lengths)
	want := []float32{
		4, 6,
		3, 5,
		2, 90,
		1, 91,
	}
	for i, v := range rev.Float32s() {
		if v != want[i] {
			t.Fatalf("reversed element %d = %v, want %v", i, v, want[i])
		}
	}

	// Involution: reversing again restores the input exactly,
	// padding included.
	back := tensor.SequenceReverse(rev, lengths)
	for i, v := range back.Float32s() {
		if v != x.Float32s()[i] {
			t.Fatalf("double reverse element %d = %v, want %v", i, v, x.Float32s()[i])
		}
	}
}

func TestLengthMask(t *testing.T) {
	lengths := ints(t, []int32{3, 1}, 2)
	mask := tensor.LengthMask(lengths, 3)

	if !mask.Shape().Equal(tensor.Shape{2, 1, 1, 3}) {
		t.Fatalf("mask shape = %v, want [2 1 1 3]", mask.Shape())
	}
	if mask.At(0, 0, 0, 2) != 0 {
		t.Errorf("valid position masked: %v", mask.At(0, 0, 0, 2))
	}
	if mask.At(1, 0, 0, 1) > -1e8 {
		t.Errorf("padded position not masked: %v", mask.At(1, 0, 0, 1))
	}
}
