package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
)

// NewRecurrentEncoder assembles the recurrent encoder pipeline:
// embedding, conversion to time-major, a single bidirectional layer
// over two half-width stages, and, for deeper models, a unidirectional
// stack of the remaining layers carrying the residual and fused
// options. The pipeline output is time-major.
func NewRecurrentEncoder(g *graph.Graph, embCfg EmbeddingConfig, rnnCfg RNNConfig, sink DiagnosticSink) (*Sequence, error) {
	if sink == nil {
		sink = Discard
	}
	if err := rnnCfg.validate(); err != nil {
		return nil, err
	}

	embedding, err := NewEmbedding(g, "source_embed_", embCfg, false)
	if err != nil {
		return nil, err
	}

	biCfg := rnnCfg
	biCfg.NumLayers = 1
	biCfg.Residual = false
	bidirectional, err := NewBiDirectional(g, biCfg, "encoder_birnn_", sink)
	if err != nil {
		return nil, err
	}

	stages := []Encoder{
		embedding,
		NewBatchMajorToTimeMajor(embCfg.NumEmbed),
		bidirectional,
	}

	if rnnCfg.NumLayers > 1 {
		restCfg := rnnCfg
		restCfg.NumLayers = rnnCfg.NumLayers - 1
		var rest Encoder
		if rnnCfg.Fused {
			rest, err = NewFusedRecurrent(g, restCfg, "encoder_rnn_", sink)
		} else {
			rest, err = NewRecurrent(g, restCfg, "encoder_rnn_")
		}
		if err != nil {
			return nil, err
		}
		stages = append(stages, rest)
	}

	return NewSequence(stages...)
}

// NewTransformerEncoder assembles the transformer encoder pipeline:
// embedding with positional encoding, the self-attention stack, and a
// final conversion to time-major carrying the model size. The embedding
// width must equal the transformer model size.
func NewTransformerEncoder(g *graph.Graph, embCfg EmbeddingConfig, cfg TransformerConfig, sink DiagnosticSink) (*Sequence, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if embCfg.NumEmbed != cfg.ModelSize {
		return nil, fmt.Errorf("encoder: embedding width %d must equal transformer model size %d",
			embCfg.NumEmbed, cfg.ModelSize)
	}

	embedding, err := NewEmbedding(g, "source_embed_", embCfg, true)
	if err != nil {
		return nil, err
	}
	transformer, err := NewTransformer(g, cfg, "encoder_transformer_")
	if err != nil {
		return nil, err
	}

	return NewSequence(
		embedding,
		transformer,
		NewBatchMajorToTimeMajor(cfg.ModelSize),
	)
}
