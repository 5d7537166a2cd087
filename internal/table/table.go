// Package table implements a typed, in-memory mapping from
// content-addressed id to row (live or tombstone), loaded from and saved
// to a directory of shard files.
package table

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/kantord/blogwarrior-go/internal/ids"
	"github.com/kantord/blogwarrior-go/internal/storeerr"
)

const shardFilePrefix = "items_"
const shardFileSuffix = ".jsonl"

// Schema declares a table's fixed registration constants. ShardCharacters
// and ExpectedCapacity must not change once a table has been written to a
// store; doing so orphans existing rows.
type Schema struct {
	TableName        string
	ShardCharacters  int
	ExpectedCapacity int
}

// Table owns an in-memory id -> Row map for one record type, plus enough of
// the schema to load, save and address shard files under a store directory.
type Table[T Payload] struct {
	dir      string // store directory the table was loaded from/will save to
	schema   Schema
	idLength int
	rows     map[string]Row[T]
}

// New returns an empty table for schema, not yet associated with a store
// directory. Use Load to populate a table from disk.
func New[T Payload](schema Schema) *Table[T] {
	return &Table[T]{
		schema:   schema,
		idLength: ids.IDLengthForCapacity(schema.ExpectedCapacity),
		rows:     make(map[string]Row[T]),
	}
}

// dirFor returns the table's own subdirectory within a store directory.
func dirFor(storeDir string, schema Schema) string {
	return filepath.Join(storeDir, schema.TableName)
}

// Load reads every items_<prefix>.jsonl file under storeDir/<TableName> and
// returns a populated Table. A missing table directory is not an error and
// yields an empty table.
func Load[T Payload](storeDir string, schema Schema) (*Table[T], error) {
	t := New[T](schema)
	t.dir = storeDir

	tableDir := dirFor(storeDir, schema)
	entries, err := os.ReadDir(tableDir)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading table directory %s: %w", tableDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, shardFilePrefix) || !strings.HasSuffix(name, shardFileSuffix) {
			continue // lock files, temp files and unrelated files are ignored
		}
		path := filepath.Join(tableDir, name)
		if err := t.loadShardFile(path); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table[T]) loadShardFile(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path built from the table's own directory listing
	if err != nil {
		return fmt.Errorf("opening shard file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row Row[T]
		if err := row.UnmarshalJSON([]byte(line)); err != nil {
			return &storeerr.ParseError{Path: path, Line: lineNum, Err: err}
		}
		// Duplicates across shards are abnormal; last one wins.
		t.rows[row.ID] = row
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading shard file %s: %w", path, err)
	}
	return nil
}

// IDOf deterministically computes the id a value would have, without
// mutating the table.
func (t *Table[T]) IDOf(value T) string {
	return ids.HashID(value.NaturalKey(), t.idLength)
}

// Upsert inserts or replaces the live row for value's natural key. If the
// table already holds an equal live payload at that id, this is a no-op
// that preserves the existing UpdatedAt. Equality is
// structural over the payload only, so resurrecting a tombstone or
// replacing a differing payload always advances UpdatedAt.
func (t *Table[T]) Upsert(value T) {
	id := t.IDOf(value)
	if existing, ok := t.rows[id]; ok && !existing.IsTombstone() && reflect.DeepEqual(existing.Value, value) {
		return
	}
	t.rows[id] = newLive(id, value, time.Now())
}

// Delete replaces the live row at naturalKey's hash with a tombstone and
// returns its id. If no live row exists there — including when the row is
// already a tombstone — Delete is a no-op and returns storeerr.ErrNotFound;
// no tombstone is created for an absent row.
func (t *Table[T]) Delete(naturalKey string) (string, error) {
	id := ids.HashID(naturalKey, t.idLength)
	existing, ok := t.rows[id]
	if !ok || existing.IsTombstone() {
		return "", storeerr.ErrNotFound
	}
	t.rows[id] = newTombstone[T](id, time.Now())
	return id, nil
}

// Items returns the payloads of all live rows, in unspecified order.
// Tombstones are never observable through this method.
func (t *Table[T]) Items() []T {
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if !row.IsTombstone() {
			out = append(out, row.Value)
		}
	}
	return out
}

// Len returns the total number of rows held in memory, live and tombstoned.
func (t *Table[T]) Len() int { return len(t.rows) }

// Save persists the table's in-memory state via a three-phase protocol. A
// failure or crash during phase 1 leaves the final shard files untouched, so
// the pre-save state stays loadable. A crash between phases 2 and 3 leaves
// only the .tmp files, which Load ignores, so the table loads as empty until
// the next successful save.
func (t *Table[T]) Save(storeDir string) error {
	t.dir = storeDir
	tableDir := dirFor(storeDir, t.schema)
	if err := os.MkdirAll(tableDir, 0o750); err != nil {
		return fmt.Errorf("creating table directory %s: %w", tableDir, err)
	}

	groups := t.groupByShard()

	// Phase 1: write every shard's rows to a .tmp file. On any failure,
	// remove every temporary written so far and return — no final file has
	// been touched yet.
	written := make([]string, 0, len(groups))
	for shardKey, rows := range groups {
		tmpPath := filepath.Join(tableDir, shardFileName(shardKey)+".tmp")
		if err := writeShardFile(tmpPath, rows); err != nil {
			for _, p := range written {
				_ = os.Remove(p)
			}
			_ = os.Remove(tmpPath)
			return fmt.Errorf("writing shard %s: %w", tmpPath, err)
		}
		written = append(written, tmpPath)
	}

	// Phase 2: remove every existing final shard file, including shards that
	// no longer have rows — this is how deletion of an emptied shard
	// propagates to disk.
	existingFinals, err := filepath.Glob(filepath.Join(tableDir, shardFilePrefix+"*"+shardFileSuffix))
	if err != nil {
		return fmt.Errorf("listing existing shard files: %w", err)
	}
	for _, final := range existingFinals {
		if err := os.Remove(final); err != nil {
			return fmt.Errorf("removing stale shard file %s: %w", final, err)
		}
	}

	// Phase 3: rename every temporary into place.
	for _, tmpPath := range written {
		finalPath := strings.TrimSuffix(tmpPath, ".tmp")
		if err := os.Rename(tmpPath, finalPath); err != nil {
			return fmt.Errorf("renaming %s to %s: %w", tmpPath, finalPath, err)
		}
	}

	return nil
}

func shardFileName(shardKey string) string {
	return shardFilePrefix + shardKey + shardFileSuffix
}

// groupByShard partitions all rows (live and tombstone) by shard key, each
// group sorted by id ascending so that saves are deterministic and diffs
// stay minimal.
func (t *Table[T]) groupByShard() map[string][]Row[T] {
	groups := make(map[string][]Row[T])
	for id, row := range t.rows {
		key := ids.ShardKey(id, t.schema.ShardCharacters)
		groups[key] = append(groups[key], row)
	}
	for key := range groups {
		sort.Slice(groups[key], func(i, j int) bool {
			return groups[key][i].ID < groups[key][j].ID
		})
	}
	return groups
}

func writeShardFile[T Payload](path string, rows []Row[T]) error {
	f, err := os.Create(path) // #nosec G304 -- path built from the table's own directory
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, row := range rows {
		line, err := row.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

// MergeRemote reconciles remoteRows into the table using last-writer-wins:
// for each id present remotely, the row with the larger of
// UpdatedAt/DeletedAt wins, ties breaking toward the local row, except that
// a tombstone wins a tie against a live row (see remoteWins). Entries
// present only remotely are adopted; entries present only locally are kept
// untouched. The comparison commutes and is idempotent.
func (t *Table[T]) MergeRemote(remoteRows map[string]Row[T]) {
	for id, remote := range remoteRows {
		local, ok := t.rows[id]
		if !ok {
			t.rows[id] = remote
			continue
		}
		if remoteWins(remote, local) {
			t.rows[id] = remote
		}
	}
}

// remoteWins reports whether remote should replace local under last-writer-
// wins. Same-kind comparisons (live-vs-live, tombstone-vs-tombstone) break
// ties toward local. Mixed-kind comparisons are deletion-biased: a
// tombstone beats a live row iff its deleted_at is not earlier than the
// live row's updated_at, so on a tie between a tombstone's deleted_at and
// a live row's updated_at the tombstone wins, not local.
func remoteWins[T Payload](remote, local Row[T]) bool {
	remoteTomb, localTomb := remote.IsTombstone(), local.IsTombstone()
	if remoteTomb != localTomb {
		if remoteTomb {
			return !remote.DeletedAt.Before(local.UpdatedAt)
		}
		return remote.UpdatedAt.After(local.DeletedAt)
	}
	return timestampOf(remote).After(timestampOf(local))
}

func timestampOf[T Payload](r Row[T]) time.Time {
	if r.IsTombstone() {
		return r.DeletedAt
	}
	return r.UpdatedAt
}

// ParseShardBlobs parses a set of shard-file contents (as read from a git
// tree rather than the filesystem) into an id -> Row map, suitable as
// MergeRemote's input. It applies the same last-duplicate-wins rule Load
// uses across shard files.
func ParseShardBlobs[T Payload](blobs map[string][]byte) (map[string]Row[T], error) {
	rows := make(map[string]Row[T])
	for name, data := range blobs {
		lineNum := 0
		for _, line := range strings.Split(string(data), "\n") {
			lineNum++
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var row Row[T]
			if err := row.UnmarshalJSON([]byte(line)); err != nil {
				return nil, &storeerr.ParseError{Path: name, Line: lineNum, Err: err}
			}
			rows[row.ID] = row
		}
	}
	return rows, nil
}

// Rows exposes the full id -> Row map, live and tombstoned, for callers that
// need to walk raw rows. It is not a copy; callers must not
// mutate the returned map's entries outside the table's own methods.
func (t *Table[T]) Rows() map[string]Row[T] {
	return t.rows
}

// Schema returns the table's registration constants.
func (t *Table[T]) Schema() Schema { return t.schema }
