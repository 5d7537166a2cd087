package vcs

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/kantord/blogwarrior-go/internal/storeerr"
)

// shorthandPattern recognizes "user/repo"-style GitHub shorthand for the
// clone command.
var shorthandPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// ExpandShorthand turns a bare "owner/repo" argument into a full git SSH
// URL. Relative paths (leading "." or "/") and anything already looking
// like a URL (contains "://" or an "@") pass through unchanged.
func ExpandShorthand(arg string) string {
	if strings.HasPrefix(arg, ".") || strings.HasPrefix(arg, "/") {
		return arg
	}
	if strings.Contains(arg, "://") || strings.Contains(arg, "@") {
		return arg
	}
	if shorthandPattern.MatchString(arg) {
		return fmt.Sprintf("git@github.com:%s.git", arg)
	}
	return arg
}

// Fetch runs `git fetch origin` against the repository at dir, delegating
// credential handling to the user's git configuration rather than
// reimplementing transport auth in-process.
func Fetch(dir string) error {
	cmd := exec.Command("git", "fetch", "origin")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &storeerr.FetchFailed{Stderr: string(out), Err: err}
	}
	return nil
}

// Push runs `git push origin <branch>` against the repository at dir.
func Push(dir, branch string) error {
	cmd := exec.Command("git", "push", "origin", branch) // #nosec G204 -- branch is a locally-resolved ref name
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &storeerr.PushFailed{Stderr: string(out), Err: err}
	}
	return nil
}

// Clone shallow-clones url (expanding shorthand first) into dir via the
// host git binary rather than go-git's clone path, since network auth
// belongs to the user's git config.
func Clone(url, dir string) error {
	full := ExpandShorthand(url)
	cmd := exec.Command("git", "clone", "--depth", "1", full, dir) // #nosec G204 -- url comes from an operator-provided CLI argument
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cloning %s: %w\n%s", full, err, string(out))
	}
	return nil
}

// RemoteURLSubprocess reads the configured origin URL via the git CLI, used
// by callers that want it without an in-process *Repo (e.g. before Open
// succeeds).
func RemoteURLSubprocess(dir string) (string, error) {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("reading origin url: %w\n%s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// Passthrough execs the host git binary with dir as its working directory
// and args verbatim, for the "anything else, hand it straight to git"
// escape hatch.
func Passthrough(dir string, args []string) ([]byte, error) {
	cmd := exec.Command("git", args...) // #nosec G204 -- args come from an operator-invoked CLI pass-through, equivalent to running git directly
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
