// Package storeerr declares the error kinds the store surfaces: NotFound,
// ParseError, DirtyTree, FetchFailed and PushFailed. A missing remote is
// deliberately not an error here: it is a warn-and-stop condition in the
// sync state machine, reported through sync.Outcome instead. Merge
// conflicts are also absent: merges are resolved by timestamp order and
// never produce a conflict at this layer.
package storeerr

import (
	"errors"
	"strconv"
)

// ErrNotFound is returned by Table.Delete on an absent key. Shorthand
// resolution does not return it: shorthand.Resolve reports an unknown
// shorthand through its boolean result.
var ErrNotFound = errors.New("not found")

// ErrDirtyTree is returned by sync.Run when the working tree has
// uncommitted shard-file changes. Database.Transaction does not check the
// working tree and never returns it.
var ErrDirtyTree = errors.New("working tree has uncommitted shard changes")

// ParseError names the file whose content failed to parse as a row.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return e.Path + ": line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchFailed wraps a failed `git fetch` subprocess invocation, preserving
// its standard error output.
type FetchFailed struct {
	Stderr string
	Err    error
}

func (e *FetchFailed) Error() string { return "git fetch failed: " + e.Err.Error() + "\n" + e.Stderr }
func (e *FetchFailed) Unwrap() error { return e.Err }

// PushFailed wraps a failed `git push` subprocess invocation, preserving its
// standard error output.
type PushFailed struct {
	Stderr string
	Err    error
}

func (e *PushFailed) Error() string { return "git push failed: " + e.Err.Error() + "\n" + e.Stderr }
func (e *PushFailed) Unwrap() error { return e.Err }

