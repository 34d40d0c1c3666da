package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/nninit"
	"github.com/tern-mt/tern/internal/tensor"
)

func runGraph(t *testing.T, g *graph.Graph, out *graph.Tensor, mode graph.Mode, feeds map[string]*tensor.Tensor) *tensor.Tensor {
	t.Helper()
	exec, err := graph.NewExecutor(g, mode, 42)
	require.NoError(t, err)
	result, err := exec.Run(out, feeds)
	require.NoError(t, err)
	return result
}

func TestSwapAxes01SelfInverse(t *testing.T) {
	g := graph.New()
	x := g.Input("x", tensor.Shape{2, 3, 4}, graph.BatchMajor)

	swapped := x.SwapAxes01()
	assert.Equal(t, graph.TimeMajor, swapped.Layout())
	assert.Equal(t, tensor.Shape{3, 2, 4}, swapped.Shape())

	back := swapped.SwapAxes01()
	assert.Equal(t, graph.BatchMajor, back.Layout())
	assert.Equal(t, tensor.Shape{2, 3, 4}, back.Shape())

	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	feed, err := tensor.FromFloat32(data, tensor.Shape{2, 3, 4})
	require.NoError(t, err)

	result := runGraph(t, g, back, graph.Inference, map[string]*tensor.Tensor{"x": feed})
	assert.Equal(t, data, result.Float32s(), "double swap must restore element order")
}

func TestSequenceReverseInvolution(t *testing.T) {
	g := graph.New()
	x := g.Input("x", tensor.Shape{4, 2, 1}, graph.TimeMajor)
	lengths := g.Lengths("len", 2)

	twice := x.SequenceReverse(lengths).SequenceReverse(lengths)
	assert.Equal(t, graph.TimeMajor, twice.Layout())

	data := []float32{1, 5, 2, 6, 3, 90, 4, 91}
	feed, err := tensor.FromFloat32(data, tensor.Shape{4, 2, 1})
	require.NoError(t, err)
	lens, err := tensor.FromInt32([]int32{4, 2}, tensor.Shape{2})
	require.NoError(t, err)

	result := runGraph(t, g, twice, graph.Inference, map[string]*tensor.Tensor{"x": feed, "len": lens})
	assert.Equal(t, data, result.Float32s())
}

func TestExecutorDeterministicForSeed(t *testing.T) {
	build := func() (*graph.Graph, *graph.Tensor) {
		g := graph.New()
		w := g.Parameter("w", tensor.Shape{6, 6}, nninit.Xavier{})
		return g, w
	}

	g1, w1 := build()
	exec1, err := graph.NewExecutor(g1, graph.Inference, 7)
	require.NoError(t, err)
	r1, err := exec1.Run(w1, nil)
	require.NoError(t, err)

	g2, w2 := build()
	exec2, err := graph.NewExecutor(g2, graph.Inference, 7)
	require.NoError(t, err)
	r2, err := exec2.Run(w2, nil)
	require.NoError(t, err)

	assert.Equal(t, r1.Float32s(), r2.Float32s(), "same seed must materialize identical parameters")

	g3, w3 := build()
	exec3, err := graph.NewExecutor(g3, graph.Inference, 8)
	require.NoError(t, err)
	r3, err := exec3.Run(w3, nil)
	require.NoError(t, err)
	assert.NotEqual(t, r1.Float32s(), r3.Float32s(), "different seeds should differ")
}

func TestDropoutModes(t *testing.T) {
	g := graph.New()
	x := g.Input("x", tensor.Shape{1000}, graph.LayoutNone)
	dropped := x.Dropout(0.5)

	data := make([]float32, 1000)
	for i := range data {
		data[i] = 1
	}
	feed, err := tensor.FromFloat32(data, tensor.Shape{1000})
	require.NoError(t, err)
	feeds := map[string]*tensor.Tensor{"x": feed}

	inference := runGraph(t, g, dropped, graph.Inference, feeds)
	assert.Equal(t, data, inference.Float32s(), "dropout must be the identity at inference")

	train := runGraph(t, g, dropped, graph.Train, feeds)
	zeros := 0
	for _, v := range train.Float32s() {
		switch v {
		case 0:
			zeros++
		case 2:
			// kept and rescaled by 1/(1-rate)
		default:
			t.Fatalf("unexpected dropout output %v", v)
		}
	}
	assert.Greater(t, zeros, 300, "roughly half the elements should be dropped")
	assert.Less(t, zeros, 700)

	// Same executor seed, same mask.
	again := runGraph(t, g, dropped, graph.Train, feeds)
	assert.Equal(t, train.Float32s(), again.Float32s())
}

func TestDuplicateParameterPanics(t *testing.T) {
	g := graph.New()
	g.Parameter("w", tensor.Shape{2, 2}, nninit.Zeros{})
	assert.Panics(t, func() {
		g.Parameter("w", tensor.Shape{2, 2}, nninit.Zeros{})
	})
}

func TestRunRejectsBadFeeds(t *testing.T) {
	g := graph.New()
	x := g.Input("x", tensor.Shape{2, 2}, graph.LayoutNone)
	out := x.Relu()

	exec, err := graph.NewExecutor(g, graph.Inference, 1)
	require.NoError(t, err)

	wrong, err := tensor.FromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	_, err = exec.Run(out, map[string]*tensor.Tensor{"x": wrong})
	assert.ErrorContains(t, err, "expects shape")

	_, err = exec.Run(out, map[string]*tensor.Tensor{"y": wrong})
	assert.ErrorContains(t, err, "undeclared placeholder")
}

func TestConcatAndStackShapes(t *testing.T) {
	g := graph.New()
	a := g.Input("a", tensor.Shape{3, 2, 4}, graph.TimeMajor)
	b := g.Input("b", tensor.Shape{3, 2, 4}, graph.TimeMajor)

	cat := graph.Concat(2, a, b)
	assert.Equal(t, tensor.Shape{3, 2, 8}, cat.Shape())
	assert.Equal(t, graph.TimeMajor, cat.Layout())

	step := a.SliceIndex(0, 1)
	assert.Equal(t, tensor.Shape{2, 4}, step.Shape())

	stacked := graph.Stack(0, graph.TimeMajor, step, step, step)
	assert.Equal(t, tensor.Shape{3, 2, 4}, stacked.Shape())
	assert.Equal(t, graph.TimeMajor, stacked.Layout())
}
