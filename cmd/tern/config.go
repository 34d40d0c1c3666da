package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tern-mt/tern/internal/encoder"
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/tokenizer"
)

// modelConfig is the YAML configuration of an encoder pipeline. Fields
// absent from the file keep their defaults.
type modelConfig struct {
	Encoder     string                    `yaml:"encoder"`
	Seed        int64                     `yaml:"seed"`
	Tokenizer   string                    `yaml:"tokenizer"`
	Embedding   encoder.EmbeddingConfig   `yaml:"embedding"`
	RNN         encoder.RNNConfig         `yaml:"rnn"`
	Transformer encoder.TransformerConfig `yaml:"transformer"`
}

func defaultConfig() modelConfig {
	return modelConfig{
		Encoder:   "rnn",
		Seed:      13,
		Tokenizer: tokenizer.DefaultEncoding,
		Embedding: encoder.EmbeddingConfig{
			VocabSize: 32000,
			NumEmbed:  128,
		},
		RNN: encoder.RNNConfig{
			CellType:   "lstm",
			NumHidden:  128,
			NumLayers:  2,
			ForgetBias: 1.0,
		},
		Transformer: encoder.TransformerConfig{
			ModelSize:            128,
			NumLayers:            2,
			AttentionHeads:       8,
			FeedForwardNumHidden: 512,
		},
	}
}

// loadConfig reads the YAML file at path over the defaults. An empty
// path returns the defaults unchanged.
func loadConfig(path string) (modelConfig, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// buildPipeline assembles the configured encoder on the given graph.
func buildPipeline(g *graph.Graph, cfg modelConfig, sink encoder.DiagnosticSink) (*encoder.Sequence, error) {
	switch cfg.Encoder {
	case "rnn":
		return encoder.NewRecurrentEncoder(g, cfg.Embedding, cfg.RNN, sink)
	case "transformer":
		return encoder.NewTransformerEncoder(g, cfg.Embedding, cfg.Transformer, sink)
	default:
		return nil, fmt.Errorf("unknown encoder type %q (want rnn or transformer)", cfg.Encoder)
	}
}
