package tensor

import "fmt"

// EmbeddingLookup gathers rows of weight (vocab, dim) for every index in
// indices (batch, seqLen), producing (batch, seqLen, dim).
func EmbeddingLookup(weight, indices *Tensor) *Tensor {
	ws := weight.Shape()
	if len(ws) != 2 {
		panic(fmt.Sprintf("tensor.EmbeddingLookup: weight must be 2D, got %v", ws))
	}
	is := indices.Shape()
	if len(is) != 2 {
		panic(fmt.Sprintf("tensor.EmbeddingLookup: indices must be 2D, got %v", is))
	}
	vocab, dim := ws[0], ws[1]
	out := Zeros(Shape{is[0], is[1], dim})
	wd, od := weight.Float32s(), out.Float32s()
	for i, idx := range indices.Int32s() {
		if idx < 0 || int(idx) >= vocab {
			panic(fmt.Sprintf("tensor.EmbeddingLookup: index %d out of range [0, %d)", idx, vocab))
		}
		copy(od[i*dim:(i+1)*dim], wd[int(idx)*dim:(int(idx)+1)*dim])
	}
	return out
}

// SequenceReverse reverses the valid prefix of every example in a
// time-major tensor (seqLen, batch, channels). Position t of example n
// maps to position lengths[n]-1-t while t < lengths[n]; padded positions
// beyond the valid length stay where they are. Applying the operation
// twice with the same lengths restores the input.
func SequenceReverse(x, lengths *Tensor) *Tensor {
	shape := x.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("tensor.SequenceReverse: expected time-major 3D input, got %v", shape))
	}
	seqLen, batch, channels := shape[0], shape[1], shape[2]
	ls := lengths.Int32s()
	if len(ls) != batch {
		panic(fmt.Sprintf("tensor.SequenceReverse: %d lengths for batch of %d", len(ls), batch))
	}

	out := x.Clone()
	in, od := x.Float32s(), out.Float32s()
	for n := 0; n < batch; n++ {
		length := int(ls[n])
		if length < 0 || length > seqLen {
			panic(fmt.Sprintf("tensor.SequenceReverse: length %d out of range [0, %d]", length, seqLen))
		}
		for t := 0; t < length; t++ {
			src := ((length-1-t)*batch + n) * channels
			dst := (t*batch + n) * channels
			copy(od[dst:dst+channels], in[src:src+channels])
		}
	}
	return out
}

// LengthMask builds an additive attention mask of shape
// (batch, 1, 1, seqLen): zero for positions inside each example's valid
// length and a large negative value for padded key positions, so softmax
// assigns them vanishing weight.
func LengthMask(lengths *Tensor, seqLen int) *Tensor {
	const negInf = float32(-1e9)
	ls := lengths.Int32s()
	batch := len(ls)
	out := Zeros(Shape{batch, 1, 1, seqLen})
	od := out.Float32s()
	for n := 0; n < batch; n++ {
		for j := int(ls[n]); j < seqLen; j++ {
			od[n*seqLen+j] = negInf
		}
	}
	return out
}
