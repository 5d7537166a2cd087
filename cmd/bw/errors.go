package main

import (
	"fmt"
	"os"
)

// FatalError prints a human-readable message to stderr and exits non-zero.
func FatalError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "blogwarrior: "+format+"\n", args...)
	os.Exit(1)
}
