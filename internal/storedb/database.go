// Package storedb bundles the store's named tables behind a transaction
// scope that saves every table atomically from the caller's point of view.
package storedb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/kantord/blogwarrior-go/internal/feedmodel"
	"github.com/kantord/blogwarrior-go/internal/table"
)

// FeedsSchema and PostsSchema are the two built-in tables' registration
// constants. Expected capacities are generous defaults for a personal
// feed reader; OpenWithSchemas lets a caller override them before first
// write (changing them after data exists orphans rows).
var (
	FeedsSchema = table.Schema{TableName: "feeds", ShardCharacters: 0, ExpectedCapacity: 500}
	PostsSchema = table.Schema{TableName: "posts", ShardCharacters: 2, ExpectedCapacity: 50_000}
)

const lockFileName = ".blogwarrior.lock"

// Database bundles the feeds and posts tables loaded from one store
// directory. A store directory is owned by exactly one Database instance
// at a time; Open takes a best-effort advisory lock to catch the common
// case of two processes racing on the same directory.
type Database struct {
	dir  string
	lock *flock.Flock

	Feeds *table.Table[feedmodel.Feed]
	Posts *table.Table[feedmodel.Post]
}

// Tx is the mutable view a Transaction callback receives: the same table
// instances as the Database. Database exports those tables as well, mutating
// methods and Save included, so access outside Transaction is not limited to
// reads; Transaction is the path that saves both tables together.
type Tx struct {
	Feeds *table.Table[feedmodel.Feed]
	Posts *table.Table[feedmodel.Post]
}

// Open loads every table from dir with the built-in schemas, creating the
// directory if absent, and takes an advisory lock on it. Lazily-created
// tables (an absent table directory) load as empty.
func Open(dir string) (*Database, error) {
	return OpenWithSchemas(dir, FeedsSchema, PostsSchema)
}

// OpenWithSchemas is Open with caller-supplied registration constants, for
// operators who size their tables through configuration. The supplied
// schemas must match whatever the store was first written with.
func OpenWithSchemas(dir string, feedsSchema, postsSchema table.Schema) (*Database, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking store directory %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("store directory %s is locked by another process", dir)
	}

	feeds, err := table.Load[feedmodel.Feed](dir, feedsSchema)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("loading feeds table: %w", err)
	}
	posts, err := table.Load[feedmodel.Post](dir, postsSchema)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("loading posts table: %w", err)
	}

	return &Database{dir: dir, lock: lock, Feeds: feeds, Posts: posts}, nil
}

// Close releases the store directory's advisory lock. It does not save:
// any uncommitted in-memory mutation is simply lost, and the on-disk state
// stays at the previous successful save.
func (db *Database) Close() error {
	return db.lock.Unlock()
}

// Dir returns the store directory this database was opened against.
func (db *Database) Dir() string { return db.dir }

// Transaction runs f against a view of every table, then saves all of them
// on successful return. If any table's save fails, the error is surfaced
// immediately; tables already saved before the failing one keep their new
// on-disk state — atomicity across tables is best-effort, not guaranteed by
// the filesystem.
//
// If f itself returns an error, no save happens at all — but f's mutations
// already landed in the in-memory tables (Tx shares Database's table
// instances), so the caller must discard this Database rather than retry
// Transaction on it.
func (db *Database) Transaction(f func(tx *Tx) error) error {
	tx := &Tx{Feeds: db.Feeds, Posts: db.Posts}
	if err := f(tx); err != nil {
		return err
	}
	if err := db.Feeds.Save(db.dir); err != nil {
		return fmt.Errorf("saving feeds table: %w", err)
	}
	if err := db.Posts.Save(db.dir); err != nil {
		return fmt.Errorf("saving posts table: %w", err)
	}
	return nil
}
