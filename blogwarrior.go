// Package blogwarrior provides a minimal public API for embedding the
// store in other Go programs.
//
// Most callers should use the bw CLI. This package exports only the
// essential types and functions a Go program needs to open a store,
// read or write its feeds and posts inside a transaction, and trigger a
// git sync, without reaching into internal packages.
package blogwarrior

import (
	"context"

	"github.com/kantord/blogwarrior-go/internal/feedmodel"
	"github.com/kantord/blogwarrior-go/internal/ids"
	"github.com/kantord/blogwarrior-go/internal/shorthand"
	"github.com/kantord/blogwarrior-go/internal/storedb"
	"github.com/kantord/blogwarrior-go/internal/sync"
)

// Database is a store directory's loaded tables, ready for transactions.
// Use Open to obtain one.
type Database = storedb.Database

// Tx is the mutable view a Transaction callback receives.
type Tx = storedb.Tx

// Open loads a store directory's tables and takes an advisory lock on it.
func Open(dir string) (*Database, error) {
	return storedb.Open(dir)
}

// Feed and Post are the store's two record types.
type (
	Feed = feedmodel.Feed
	Post = feedmodel.Post
)

// Collector fetches new posts for a feed during Sync. A nil Collector
// skips fetching and only reconciles local state against the remote.
type Collector = sync.Collector

// Outcome describes what Sync did.
type Outcome = sync.Outcome

// Sync outcomes.
const (
	OutcomeOffline        = sync.OutcomeOffline
	OutcomeNoRemote       = sync.OutcomeNoRemote
	OutcomeFirstPush      = sync.OutcomeFirstPush
	OutcomeUpToDate       = sync.OutcomeUpToDate
	OutcomePushedAhead    = sync.OutcomePushedAhead
	OutcomeMerged         = sync.OutcomeMerged
	OutcomeNothingToFetch = sync.OutcomeNothingToFetch
)

// Sync runs one fetch/apply/commit/push cycle against the store directory,
// per the reconciliation procedure the CLI's sync subcommand drives.
func Sync(ctx context.Context, dir string, collector Collector) (Outcome, error) {
	return sync.Run(ctx, dir, collector)
}

// HashID returns the content-addressed id a row's natural key hashes to at
// the given length, the same derivation the table layer uses internally.
func HashID(key string, length int) string {
	return ids.HashID(key, length)
}

// ComputeShorthands returns the shortest unique home-row prefix for each id,
// in the same order as idList. It is the mechanism behind the CLI's
// @shorthand feed references.
func ComputeShorthands(idList []string) []string {
	return shorthand.ComputeShorthands(idList)
}
