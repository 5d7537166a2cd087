package main

import (
	"fmt"
	"os"

	"github.com/kantord/blogwarrior-go/internal/vcs"
	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:     "clone <url> [dir]",
	GroupID: "sync",
	Short:   "Clone an existing store from a remote",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		url := args[0]
		dir := resolveStoreDir()
		if len(args) == 2 {
			dir = args[1]
		}

		if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
			FatalError("target directory %s is not empty", dir)
		}

		if err := vcs.Clone(url, dir); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("cloned into %s\n", dir)
	},
}
