// Package diag is the module's debug-gated logging collaborator: a single
// environment variable turns on diagnostic output, and the rest of the
// codebase calls Logf instead of reaching for fmt.Fprintf(os.Stderr, ...)
// directly.
package diag

import (
	"fmt"
	"os"
)

const envVar = "BW_DEBUG"

// Enabled reports whether diagnostic logging is turned on for this process.
func Enabled() bool {
	v := os.Getenv(envVar)
	return v != "" && v != "0" && v != "false"
}

// Logf writes a formatted diagnostic line to stderr if diagnostics are
// enabled. It is a no-op otherwise.
func Logf(format string, args ...any) {
	if !Enabled() {
		return
	}
	fmt.Fprintf(os.Stderr, "blogwarrior: "+format+"\n", args...)
}
