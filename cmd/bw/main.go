package main

import (
	"fmt"
	"os"

	"github.com/kantord/blogwarrior-go/internal/bwconfig"
)

func main() {
	if err := bwconfig.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "blogwarrior: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
