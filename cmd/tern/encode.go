package main

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tern-mt/tern/internal/encoder"
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/tensor"
	"github.com/tern-mt/tern/internal/tokenizer"
)

type sentenceOutput struct {
	Tokens    int     `json:"tokens"`
	FinalNorm float64 `json:"final_state_norm"`
}

type encodeOutput struct {
	Encoder     string               `json:"encoder"`
	SeqLen      int                  `json:"seq_len"`
	OutputShape []int                `json:"output_shape"`
	Layout      string               `json:"layout"`
	Sentences   []sentenceOutput     `json:"sentences"`
	Diagnostics []encoder.Diagnostic `json:"diagnostics"`
}

func encodeCmd() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode sentences and print the resulting representation summary",
		ArgsUsage: "SENTENCE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
			&cli.IntFlag{Name: "max-len", Value: 64, Usage: "truncate sentences to this many tokens"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			sentences := cmd.Args().Slice()
			if len(sentences) == 0 {
				return errors.New("encode needs at least one sentence argument")
			}
			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			tok, err := tokenizer.New(cfg.Tokenizer, cfg.Embedding.VocabSize)
			if err != nil {
				return err
			}
			batch, err := tok.MakeBatch(sentences, int(cmd.Int("max-len")))
			if err != nil {
				return err
			}

			g := graph.New()
			sink := &encoder.Collector{}
			pipeline, err := buildPipeline(g, cfg, sink)
			if err != nil {
				return err
			}

			data := g.IntInput("source", batch.Indices.Shape(), graph.BatchMajor)
			lengths := g.Lengths("source_length", len(sentences))
			out, err := pipeline.Encode(data, lengths, batch.SeqLen)
			if err != nil {
				return err
			}

			exec, err := graph.NewExecutor(g, graph.Inference, cfg.Seed)
			if err != nil {
				return err
			}
			result, err := exec.Run(out, map[string]*tensor.Tensor{
				"source":        batch.Indices,
				"source_length": batch.Lengths,
			})
			if err != nil {
				return err
			}

			// Both pipelines end time-major: (time, batch, channels).
			summary := encodeOutput{
				Encoder:     cfg.Encoder,
				SeqLen:      batch.SeqLen,
				OutputShape: []int(result.Shape()),
				Layout:      string(out.Layout()),
				Diagnostics: sink.Diagnostics,
			}
			channels := result.Shape()[2]
			for i := range sentences {
				last := int(batch.Lengths.IntAt(i)) - 1
				sum := 0.0
				for c := 0; c < channels; c++ {
					v := float64(result.At(last, i, c))
					sum += v * v
				}
				summary.Sentences = append(summary.Sentences, sentenceOutput{
					Tokens:    int(batch.Lengths.IntAt(i)),
					FinalNorm: math.Sqrt(sum),
				})
			}

			encoded, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}
