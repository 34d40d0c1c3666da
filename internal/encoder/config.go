package encoder

import "fmt"

// EmbeddingConfig configures the token embedding stage.
type EmbeddingConfig struct {
	VocabSize int     `yaml:"vocab_size"`
	NumEmbed  int     `yaml:"num_embed"`
	Dropout   float64 `yaml:"dropout"`
}

func (c EmbeddingConfig) validate() error {
	if c.VocabSize <= 0 {
		return fmt.Errorf("encoder: vocab size must be positive, got %d", c.VocabSize)
	}
	if c.NumEmbed <= 0 {
		return fmt.Errorf("encoder: embedding width must be positive, got %d", c.NumEmbed)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("encoder: embedding dropout %v out of range [0, 1)", c.Dropout)
	}
	return nil
}

// RNNConfig configures the recurrent encoder stages. InitType selects
// the hidden-to-hidden initializer by tag; empty means the default
// orthogonal initializer. Fused selects the layer-outer unroll variant,
// which cannot be combined with residual wiring.
type RNNConfig struct {
	CellType   string  `yaml:"cell_type"`
	NumHidden  int     `yaml:"num_hidden"`
	NumLayers  int     `yaml:"num_layers"`
	Dropout    float64 `yaml:"dropout"`
	Residual   bool    `yaml:"residual"`
	ForgetBias float64 `yaml:"forget_bias"`
	Fused      bool    `yaml:"fused"`
	InitType   string  `yaml:"init_type"`
}

func (c RNNConfig) validate() error {
	if c.NumHidden <= 0 {
		return fmt.Errorf("encoder: rnn hidden size must be positive, got %d", c.NumHidden)
	}
	if c.NumLayers <= 0 {
		return fmt.Errorf("encoder: rnn layer count must be positive, got %d", c.NumLayers)
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("encoder: rnn dropout %v out of range [0, 1)", c.Dropout)
	}
	return nil
}

// TransformerConfig configures the self-attention encoder stage. All
// layers of the stack share the same configuration.
type TransformerConfig struct {
	ModelSize            int     `yaml:"model_size"`
	NumLayers            int     `yaml:"num_layers"`
	AttentionHeads       int     `yaml:"attention_heads"`
	FeedForwardNumHidden int     `yaml:"feed_forward_num_hidden"`
	Dropout              float64 `yaml:"dropout"`
}

func (c TransformerConfig) validate() error {
	if c.ModelSize <= 0 {
		return fmt.Errorf("encoder: transformer model size must be positive, got %d", c.ModelSize)
	}
	if c.NumLayers < 0 {
		return fmt.Errorf("encoder: transformer layer count must not be negative, got %d", c.NumLayers)
	}
	if c.NumLayers > 0 {
		if c.AttentionHeads <= 0 {
			return fmt.Errorf("encoder: attention heads must be positive, got %d", c.AttentionHeads)
		}
		if c.ModelSize%c.AttentionHeads != 0 {
			return fmt.Errorf("encoder: model size %d not divisible by %d attention heads",
				c.ModelSize, c.AttentionHeads)
		}
		if c.FeedForwardNumHidden <= 0 {
			return fmt.Errorf("encoder: feed-forward width must be positive, got %d", c.FeedForwardNumHidden)
		}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("encoder: transformer dropout %v out of range [0, 1)", c.Dropout)
	}
	return nil
}
