package table

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// testItem is a minimal Payload used across table tests: its natural key is
// its Key field, and V is an arbitrary payload value used to exercise
// upsert idempotence/monotonicity.
type testItem struct {
	Key string `json:"key"`
	V   string `json:"v"`
}

func (i testItem) NaturalKey() string { return i.Key }

func testSchema() Schema {
	return Schema{TableName: "t", ShardCharacters: 2, ExpectedCapacity: 1000}
}

// Upsert three rows, save, load into a fresh instance.
func TestUpsertSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tbl := New[testItem](testSchema())

	tbl.Upsert(testItem{Key: "a", V: "1"})
	tbl.Upsert(testItem{Key: "b", V: "2"})
	tbl.Upsert(testItem{Key: "c", V: "3"})

	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load[testItem](dir, testSchema())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	items := loaded.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	keys := map[string]string{}
	for _, it := range items {
		keys[it.Key] = it.V
	}
	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		if keys[k] != v {
			t.Fatalf("item %q = %q, want %q", k, keys[k], v)
		}
	}

	// Shard files should sit under t/ named items_<first-two-hex>.jsonl.
	tableDir := filepath.Join(dir, "t")
	entries, err := os.ReadDir(tableDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		name := e.Name()
		if filepath.Ext(name) != ".jsonl" {
			t.Fatalf("unexpected file in table dir: %s", name)
		}
		if len(name) != len(shardFilePrefix)+2+len(shardFileSuffix) {
			t.Fatalf("shard file name %q doesn't match items_<2 hex>.jsonl", name)
		}
	}
}

// A delete must survive a save/load round-trip as a tombstone.
func TestDeleteSurvivesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tbl := New[testItem](testSchema())
	tbl.Upsert(testItem{Key: "x", V: "1"})
	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tbl, err := Load[testItem](dir, testSchema())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := tbl.Delete("x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tbl, err = Load[testItem](dir, testSchema())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(tbl.Items()); got != 0 {
		t.Fatalf("Items() = %d entries, want 0", got)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (tombstone retained)", tbl.Len())
	}
}

// Upsert after delete resurrects the row with the new payload.
func TestResurrectAfterDelete(t *testing.T) {
	dir := t.TempDir()
	tbl := New[testItem](testSchema())
	tbl.Upsert(testItem{Key: "x", V: "1"})
	if _, err := tbl.Delete("x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	tbl.Upsert(testItem{Key: "x", V: "2"})
	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load[testItem](dir, testSchema())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := loaded.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].V != "2" {
		t.Fatalf("resurrected value = %q, want %q", items[0].V, "2")
	}
}

func TestUpsertIdempotence(t *testing.T) {
	tbl := New[testItem](testSchema())
	tbl.Upsert(testItem{Key: "a", V: "1"})
	id := tbl.IDOf(testItem{Key: "a", V: "1"})
	first := tbl.rows[id].UpdatedAt

	time.Sleep(time.Millisecond)
	tbl.Upsert(testItem{Key: "a", V: "1"})
	second := tbl.rows[id].UpdatedAt

	if !first.Equal(second) {
		t.Fatalf("UpdatedAt changed on idempotent upsert: %v vs %v", first, second)
	}
}

func TestUpsertMonotonicity(t *testing.T) {
	tbl := New[testItem](testSchema())
	tbl.Upsert(testItem{Key: "a", V: "1"})
	id := tbl.IDOf(testItem{Key: "a", V: "1"})
	first := tbl.rows[id].UpdatedAt

	time.Sleep(time.Millisecond)
	tbl.Upsert(testItem{Key: "a", V: "2"})
	second := tbl.rows[id].UpdatedAt

	if !second.After(first) {
		t.Fatalf("UpdatedAt did not advance on differing upsert: %v -> %v", first, second)
	}
}

func TestDeleteNotFound(t *testing.T) {
	tbl := New[testItem](testSchema())
	if _, err := tbl.Delete("missing"); err == nil {
		t.Fatal("expected error deleting absent key")
	}
	tbl.Upsert(testItem{Key: "a", V: "1"})
	if _, err := tbl.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting an already-tombstoned row is a no-op returning not-found.
	if _, err := tbl.Delete("a"); err == nil {
		t.Fatal("expected not-found deleting an already-tombstoned row")
	}
}

func TestShardAssignment(t *testing.T) {
	tbl := New[testItem](testSchema())
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tbl.Upsert(testItem{Key: k, V: k})
	}
	for id := range tbl.rows {
		shard := id[:tbl.schema.ShardCharacters]
		groups := tbl.groupByShard()
		found := false
		for _, row := range groups[shard] {
			if row.ID == id {
				found = true
			}
		}
		if !found {
			t.Fatalf("id %s not found in its own shard group %q", id, shard)
		}
	}
}

func TestSaveDeterministicSortedByID(t *testing.T) {
	dir := t.TempDir()
	tbl := New[testItem](Schema{TableName: "t", ShardCharacters: 0, ExpectedCapacity: 100})
	for _, k := range []string{"z", "m", "a", "q"} {
		tbl.Upsert(testItem{Key: k, V: k})
	}
	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "t", "items_.jsonl"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := splitNonEmptyLines(string(data))
	ids := make([]string, len(lines))
	for i, l := range lines {
		var row Row[testItem]
		if err := row.UnmarshalJSON([]byte(l)); err != nil {
			t.Fatalf("UnmarshalJSON: %v", err)
		}
		ids[i] = row.ID
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatalf("shard lines not sorted by id: %v", ids)
	}
}

func TestSaveSameStateIsByteIdentical(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	build := func() *Table[testItem] {
		tbl := New[testItem](testSchema())
		tbl.Upsert(testItem{Key: "a", V: "1"})
		tbl.Upsert(testItem{Key: "b", V: "2"})
		tbl.rows[tbl.IDOf(testItem{Key: "a", V: "1"})] = newLive(tbl.IDOf(testItem{Key: "a", V: "1"}), testItem{Key: "a", V: "1"}, time.Unix(1000, 0).UTC())
		tbl.rows[tbl.IDOf(testItem{Key: "b", V: "2"})] = newLive(tbl.IDOf(testItem{Key: "b", V: "2"}), testItem{Key: "b", V: "2"}, time.Unix(2000, 0).UTC())
		return tbl
	}
	if err := build().Save(dir1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := build().Save(dir2); err != nil {
		t.Fatalf("Save: %v", err)
	}

	e1, _ := os.ReadDir(filepath.Join(dir1, "t"))
	for _, e := range e1 {
		b1, err := os.ReadFile(filepath.Join(dir1, "t", e.Name()))
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		b2, err := os.ReadFile(filepath.Join(dir2, "t", e.Name()))
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(b1) != string(b2) {
			t.Fatalf("shard %s differs between identical saves", e.Name())
		}
	}
}

func TestAtomicSaveFailureLeavesPreSaveStateLoadable(t *testing.T) {
	dir := t.TempDir()
	tbl := New[testItem](testSchema())
	tbl.Upsert(testItem{Key: "a", V: "1"})
	if err := tbl.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate a mid-save failure by making the table directory read-only so
	// that writing new .tmp files fails before any final file is touched.
	tableDir := filepath.Join(dir, "t")
	if err := os.Chmod(tableDir, 0o500); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	tbl.Upsert(testItem{Key: "b", V: "2"})
	err := tbl.Save(dir)
	_ = os.Chmod(tableDir, 0o750)
	if err == nil {
		t.Fatal("expected Save to fail under a read-only table directory")
	}

	reloaded, err := Load[testItem](dir, testSchema())
	if err != nil {
		t.Fatalf("Load after failed save: %v", err)
	}
	items := reloaded.Items()
	if len(items) != 1 || items[0].Key != "a" {
		t.Fatalf("expected pre-save state {a:1} preserved, got %+v", items)
	}
}

func TestMergeRemoteLastWriterWins(t *testing.T) {
	tbl := New[testItem](testSchema())
	id := tbl.IDOf(testItem{Key: "h", V: "A"})
	t1 := time.Unix(1000, 0).UTC()
	t2 := time.Unix(2000, 0).UTC()

	tbl.rows[id] = newLive(id, testItem{Key: "h", V: "A"}, t1)
	remote := map[string]Row[testItem]{
		id: newLive(id, testItem{Key: "h", V: "B"}, t2),
	}
	tbl.MergeRemote(remote)
	if tbl.rows[id].Value.V != "B" {
		t.Fatalf("expected remote (later) value to win, got %q", tbl.rows[id].Value.V)
	}

	// Now remote is older: local should be unchanged.
	tbl.rows[id] = newLive(id, testItem{Key: "h", V: "A"}, t2)
	remote = map[string]Row[testItem]{
		id: newLive(id, testItem{Key: "h", V: "B"}, t1),
	}
	tbl.MergeRemote(remote)
	if tbl.rows[id].Value.V != "A" {
		t.Fatalf("expected local (later) value to be kept, got %q", tbl.rows[id].Value.V)
	}
}

func TestMergeRemoteTombstoneTieBreaksToTombstone(t *testing.T) {
	tbl := New[testItem](testSchema())
	id := tbl.IDOf(testItem{Key: "h", V: "A"})
	tie := time.Unix(1000, 0).UTC()

	// Remote tombstone's deleted_at exactly equals local live row's
	// updated_at: the tombstone wins on this tie, not local.
	tbl.rows[id] = newLive(id, testItem{Key: "h", V: "A"}, tie)
	remote := map[string]Row[testItem]{
		id: newTombstone[testItem](id, tie),
	}
	tbl.MergeRemote(remote)
	if !tbl.rows[id].IsTombstone() {
		t.Fatalf("expected tombstone to win tie against local live row, got live %q", tbl.rows[id].Value.V)
	}

	// Symmetric case: local tombstone's deleted_at exactly equals remote
	// live row's updated_at. The tombstone still wins the tie.
	tbl.rows[id] = newTombstone[testItem](id, tie)
	remote = map[string]Row[testItem]{
		id: newLive(id, testItem{Key: "h", V: "B"}, tie),
	}
	tbl.MergeRemote(remote)
	if !tbl.rows[id].IsTombstone() {
		t.Fatalf("expected local tombstone to win tie against remote live row, got live %q", tbl.rows[id].Value.V)
	}

	// A live row strictly after the tombstone's deleted_at still wins.
	after := tie.Add(time.Second)
	tbl.rows[id] = newTombstone[testItem](id, tie)
	remote = map[string]Row[testItem]{
		id: newLive(id, testItem{Key: "h", V: "C"}, after),
	}
	tbl.MergeRemote(remote)
	if tbl.rows[id].IsTombstone() || tbl.rows[id].Value.V != "C" {
		t.Fatalf("expected strictly-later live row to beat tombstone, got %+v", tbl.rows[id])
	}
}

func TestMergeRemoteIsIdempotentAndCommutes(t *testing.T) {
	base := func() *Table[testItem] {
		tbl := New[testItem](testSchema())
		tbl.Upsert(testItem{Key: "a", V: "1"})
		return tbl
	}
	idB := base().IDOf(testItem{Key: "b", V: "1"})
	idC := base().IDOf(testItem{Key: "c", V: "1"})

	bRows := map[string]Row[testItem]{
		idB: newLive(idB, testItem{Key: "b", V: "1"}, time.Unix(10, 0).UTC()),
	}
	cRows := map[string]Row[testItem]{
		idC: newLive(idC, testItem{Key: "c", V: "1"}, time.Unix(20, 0).UTC()),
	}

	left := base()
	left.MergeRemote(bRows)
	left.MergeRemote(cRows)

	right := base()
	right.MergeRemote(cRows)
	right.MergeRemote(bRows)

	if len(left.rows) != len(right.rows) {
		t.Fatalf("merge order changed row count: %d vs %d", len(left.rows), len(right.rows))
	}
	for id, row := range left.rows {
		other, ok := right.rows[id]
		if !ok || other.Value.V != row.Value.V {
			t.Fatalf("merge order changed result at id %s", id)
		}
	}

	// Merging the same map twice is a no-op.
	before := len(left.rows)
	left.MergeRemote(bRows)
	left.MergeRemote(cRows)
	if len(left.rows) != before {
		t.Fatalf("re-merge changed row count: %d -> %d", before, len(left.rows))
	}
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if line := s[start:i]; line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
