package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-mt/tern/internal/tensor"
)

// loadTokenizer skips the test when the BPE ranks cannot be fetched,
// e.g. in offline environments.
func loadTokenizer(t *testing.T, vocabSize int) *Tokenizer {
	t.Helper()
	tok, err := New(DefaultEncoding, vocabSize)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	return tok
}

func TestNewRejectsBadVocab(t *testing.T) {
	_, err := New(DefaultEncoding, 0)
	assert.ErrorContains(t, err, "vocab size must be positive")
}

func TestEncodeClampsToVocab(t *testing.T) {
	tok := loadTokenizer(t, 100)

	ids := tok.Encode("The quick brown fox jumps over the lazy dog.")
	assert.NotEmpty(t, ids)
	for i, id := range ids {
		assert.GreaterOrEqual(t, id, int32(0), "token %d", i)
		assert.Less(t, id, int32(100), "token %d", i)
	}
}

func TestMakeBatchPadsToLongest(t *testing.T) {
	tok := loadTokenizer(t, 1000)

	batch, err := tok.MakeBatch([]string{
		"a much longer sentence with several tokens in it",
		"short",
	}, 0)
	require.NoError(t, err)

	shape := batch.Indices.Shape()
	require.Len(t, shape, 2)
	assert.Equal(t, 2, shape[0])
	assert.Equal(t, batch.SeqLen, shape[1])
	assert.Equal(t, tensor.Shape{2}, batch.Lengths.Shape())

	long := int(batch.Lengths.IntAt(0))
	short := int(batch.Lengths.IntAt(1))
	assert.Equal(t, batch.SeqLen, long)
	assert.Less(t, short, long)

	// Padding beyond the short sentence's length is PadID.
	for p := short; p < batch.SeqLen; p++ {
		assert.Equal(t, PadID, batch.Indices.IntAt(1, p))
	}
}

func TestMakeBatchTruncates(t *testing.T) {
	tok := loadTokenizer(t, 1000)

	batch, err := tok.MakeBatch([]string{
		"one two three four five six seven eight nine ten",
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, batch.SeqLen)
	assert.Equal(t, int32(3), batch.Lengths.IntAt(0))
}

func TestMakeBatchRejectsEmpty(t *testing.T) {
	tok := loadTokenizer(t, 1000)
	_, err := tok.MakeBatch(nil, 0)
	assert.ErrorContains(t, err, "at least one sentence")
}
