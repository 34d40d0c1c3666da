package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tern-mt/tern/internal/encoder"
	"github.com/tern-mt/tern/internal/graph"
	"github.com/tern-mt/tern/internal/tensor"
)

type describeOutput struct {
	Encoder     string               `json:"encoder"`
	HiddenSize  int                  `json:"hidden_size"`
	Cells       []string             `json:"recurrent_cells"`
	Parameters  []string             `json:"parameters"`
	Diagnostics []encoder.Diagnostic `json:"diagnostics"`
}

func describeCmd() *cli.Command {
	return &cli.Command{
		Name:  "describe",
		Usage: "Build the configured encoder and print its parameters as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}

			g := graph.New()
			sink := &encoder.Collector{}
			pipeline, err := buildPipeline(g, cfg, sink)
			if err != nil {
				return err
			}

			// Recurrent cells declare their parameters at first
			// graph use, so drive a minimal batch through the
			// pipeline before listing them.
			data := g.IntInput("source", tensor.Shape{1, 4}, graph.BatchMajor)
			lengths := g.Lengths("source_length", 1)
			if _, err := pipeline.Encode(data, lengths, 4); err != nil {
				return err
			}

			out := describeOutput{
				Encoder:     cfg.Encoder,
				HiddenSize:  pipeline.NumHidden(),
				Cells:       []string{},
				Parameters:  g.ParameterNames(),
				Diagnostics: sink.Diagnostics,
			}
			for _, cell := range pipeline.Cells() {
				out.Cells = append(out.Cells, cell.Name())
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			return nil
		},
	}
}
