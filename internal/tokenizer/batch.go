package tokenizer

import (
	"errors"
	"fmt"

	"github.com/tern-mt/tern/internal/tensor"
)

// PadID is the index used for positions beyond a sentence's length.
const PadID int32 = 0

// Batch is a padded batch of token sequences: Indices is a batch-major
// (batch, seqLen) int32 tensor, Lengths the per-sentence valid lengths.
type Batch struct {
	Indices *tensor.Tensor
	Lengths *tensor.Tensor
	SeqLen  int
}

// MakeBatch tokenizes the sentences and pads them to the longest one.
// Sentences longer than maxSeqLen are truncated.
func (t *Tokenizer) MakeBatch(sentences []string, maxSeqLen int) (*Batch, error) {
	if len(sentences) == 0 {
		return nil, errors.New("tokenizer: batch needs at least one sentence")
	}
	encoded := make([][]int32, len(sentences))
	seqLen := 0
	for i, s := range sentences {
		ids := t.Encode(s)
		if len(ids) == 0 {
			return nil, fmt.Errorf("tokenizer: sentence %d produced no tokens", i)
		}
		if maxSeqLen > 0 && len(ids) > maxSeqLen {
			ids = ids[:maxSeqLen]
		}
		encoded[i] = ids
		if len(ids) > seqLen {
			seqLen = len(ids)
		}
	}

	indices := make([]int32, len(encoded)*seqLen)
	lengths := make([]int32, len(encoded))
	for i := range indices {
		indices[i] = PadID
	}
	for i, ids := range encoded {
		copy(indices[i*seqLen:], ids)
		lengths[i] = int32(len(ids))
	}

	indicesT, err := tensor.FromInt32(indices, tensor.Shape{len(encoded), seqLen})
	if err != nil {
		return nil, err
	}
	lengthsT, err := tensor.FromInt32(lengths, tensor.Shape{len(encoded)})
	if err != nil {
		return nil, err
	}
	return &Batch{Indices: indicesT, Lengths: lengthsT, SeqLen: seqLen}, nil
}
