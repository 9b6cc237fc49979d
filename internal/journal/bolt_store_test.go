package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "journal", "failures.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecordsAndListsInOrder(t *testing.T) {
	store := openTestStore(t, Options{TTL: time.Hour})

	base := time.Now()
	for i, id := range []string{"zz", "aa", "mm"} {
		at := base.Add(time.Duration(i) * time.Second)
		store.now = func() time.Time { return at }
		if err := store.Record(id, []byte(`{"id":"`+id+`"}`)); err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	store.now = func() time.Time { return base.Add(time.Minute) }
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"zz", "aa", "mm"}
	for i, e := range entries {
		if e.ID != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], e.ID)
		}
		if string(e.Payload) != `{"id":"`+want[i]+`"}` {
			t.Fatalf("entry %d payload mismatch: %s", i, e.Payload)
		}
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	store := openTestStore(t, Options{TTL: time.Minute, CleanupInterval: time.Minute})

	now := time.Now()
	store.now = func() time.Time { return now }
	if err := store.Record("old", []byte("{}")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	later := now.Add(2 * time.Minute)
	store.now = func() time.Time { return later }
	if err := store.Record("new", []byte("{}")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "new" {
		t.Fatalf("expected only the fresh entry, got %#v", entries)
	}
}

func TestBoltStoreRejectsEmptyID(t *testing.T) {
	store := openTestStore(t, Options{})
	if err := store.Record("", []byte("{}")); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record("x", nil); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	entries, err := store.List()
	if err != nil || entries != nil {
		t.Fatalf("noop store List: %v %v", entries, err)
	}
}

func TestNewStoreValidation(t *testing.T) {
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if _, err := NewStore("redis", "x", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
