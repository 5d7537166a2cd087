package main

import (
	"fmt"
	"os"

	"github.com/kantord/blogwarrior-go/internal/vcs"
	"github.com/spf13/cobra"
)

var gitCmd = &cobra.Command{
	Use:                "git -- [args...]",
	GroupID:            "sync",
	Short:              "Run a git command against the store directory",
	DisableFlagParsing: true,
	Run: func(cmd *cobra.Command, args []string) {
		out, err := vcs.Passthrough(resolveStoreDir(), args)
		os.Stdout.Write(out)
		if err != nil {
			FatalError("%v", fmt.Errorf("git %v: %w", args, err))
		}
	},
}
