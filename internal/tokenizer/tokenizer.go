// Package tokenizer turns raw text into the padded index batches the
// encoder consumes. It wraps the tiktoken BPE encodings and clamps
// token IDs into a model vocabulary.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Tokenizer converts text to int32 token IDs within a fixed vocabulary.
// IDs beyond the vocabulary are folded back in with a modulo, which
// keeps demo batches valid for any embedding table size.
type Tokenizer struct {
	encoding  *tiktoken.Tiktoken
	name      string
	vocabSize int32
}

// New loads a tiktoken encoding by name.
func New(encodingName string, vocabSize int) (*Tokenizer, error) {
	if vocabSize <= 0 {
		return nil, fmt.Errorf("tokenizer: vocab size must be positive, got %d", vocabSize)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding, name: encodingName, vocabSize: int32(vocabSize)}, nil
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}

// Encode converts text to vocabulary-clamped token IDs.
func (t *Tokenizer) Encode(text string) []int32 {
	tokens := t.encoding.Encode(text, nil, nil)
	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) % t.vocabSize
	}
	return result
}
