package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tern-mt/tern/internal/graph"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "rnn", cfg.Encoder)
	assert.Equal(t, 32000, cfg.Embedding.VocabSize)
	assert.Equal(t, "lstm", cfg.RNN.CellType)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
encoder: transformer
embedding:
  vocab_size: 500
  num_embed: 64
transformer:
  model_size: 64
  num_layers: 1
  attention_heads: 4
  feed_forward_num_hidden: 128
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "transformer", cfg.Encoder)
	assert.Equal(t, 500, cfg.Embedding.VocabSize)
	assert.Equal(t, 64, cfg.Transformer.ModelSize)
	// Untouched sections keep their defaults.
	assert.Equal(t, "lstm", cfg.RNN.CellType)
}

func TestBuildPipelineUnknownEncoder(t *testing.T) {
	cfg := defaultConfig()
	cfg.Encoder = "convolutional"
	_, err := buildPipeline(graph.New(), cfg, nil)
	assert.ErrorContains(t, err, "unknown encoder type")
}

func TestBuildPipelineBothTypes(t *testing.T) {
	for _, kind := range []string{"rnn", "transformer"} {
		cfg := defaultConfig()
		cfg.Encoder = kind
		pipeline, err := buildPipeline(graph.New(), cfg, nil)
		require.NoErrorf(t, err, "encoder %s", kind)
		assert.Equal(t, 128, pipeline.NumHidden())
	}
}
