package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = ""
)

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Printf("version: %s\n", version)
			if commit != "" {
				fmt.Printf("commit:  %s\n", commit)
			}
			return nil
		},
	}
}
