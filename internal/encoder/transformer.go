package encoder

import (
	"fmt"

	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/layers"
	"github.com/tern-mt/tern/internal/rnn"
)

// transformerLayer groups the parameter sets of one self-attention
// block: attention, feed-forward, and the two post-sublayer norms.
type transformerLayer struct {
	attention     *layers.MultiHeadSelfAttention
	normAttention *layers.LayerNormalization
	ffn           *layers.FFNRelu
	normFFN       *layers.LayerNormalization
}

// Transformer is a stack of identically configured self-attention
// layers over a batch-major input, post-norm pattern: each sublayer's
// input is added to its output before normalization. Zero layers make
// the stage an identity.
type Transformer struct {
	modelSize int
	stack     []transformerLayer
}

// NewTransformer declares the parameters of all layers up front, one
// explicit group per layer.
func NewTransformer(g *graph.Graph, cfg TransformerConfig, prefix string) (*Transformer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	stack := make([]transformerLayer, cfg.NumLayers)
	for i := range stack {
		layerPrefix := fmt.Sprintf("%sl%d_", prefix, i)
		attention, err := layers.NewMultiHeadSelfAttention(g, layerPrefix+"att_",
			cfg.ModelSize, cfg.AttentionHeads, cfg.Dropout)
		if err != nil {
			return nil, err
		}
		stack[i] = transformerLayer{
			attention:     attention,
			normAttention: layers.NewLayerNormalization(g, layerPrefix+"att_norm_", cfg.ModelSize),
			ffn: layers.NewFFNRelu(g, layerPrefix+"ffn_",
				cfg.ModelSize, cfg.FeedForwardNumHidden, cfg.Dropout),
			normFFN: layers.NewLayerNormalization(g, layerPrefix+"ffn_norm_", cfg.ModelSize),
		}
	}
	return &Transformer{modelSize: cfg.ModelSize, stack: stack}, nil
}

// Encode implements Encoder. data must be batch-major with trailing
// width equal to the model size; padded key positions are excluded from
// attention through an additive length mask.
func (t *Transformer) Encode(data, lengths *graph.Tensor, seqLen int) (*graph.Tensor, error) {
	if data.Layout() != graph.BatchMajor {
		return nil, fmt.Errorf("encoder: transformer stage expects batch-major input, got %q", data.Layout())
	}
	shape := data.Shape()
	if len(shape) != 3 || shape[2] != t.modelSize {
		return nil, fmt.Errorf("encoder: transformer stage expects (batch, %d, %d) input, got %v",
			seqLen, t.modelSize, shape)
	}
	if len(t.stack) == 0 {
		return data, nil
	}

	mask := graph.AttentionLengthMask(lengths, seqLen)
	x := data
	for _, layer := range t.stack {
		x = layer.normAttention.Normalize(x.Add(layer.attention.Apply(x, mask)))
		x = layer.normFFN.Normalize(x.Add(layer.ffn.Apply(x)))
	}
	return x, nil
}

// NumHidden implements Encoder.
func (t *Transformer) NumHidden() int {
	return t.modelSize
}

// Cells implements Encoder.
func (t *Transformer) Cells() []rnn.Cell {
	return nil
}
