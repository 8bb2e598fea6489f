package storage

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]Database {
	t.Helper()
	bolt, err := NewBoltDB(filepath.Join(t.TempDir(), "gig.db"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	level, err := NewLevelDB(filepath.Join(t.TempDir(), "leveldb"))
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	return map[string]Database{
		"memory":  NewMemDB(),
		"bolt":    bolt,
		"leveldb": level,
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for name, db := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			key := []byte("gigs/record/1")
			value := []byte("payload")
			if err := db.Put(key, value); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := db.Get(key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !bytes.Equal(got, value) {
				t.Fatalf("get = %q, want %q", got, value)
			}
			if err := db.Put(key, []byte("updated")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err = db.Get(key)
			if err != nil {
				t.Fatalf("get after overwrite: %v", err)
			}
			if !bytes.Equal(got, []byte("updated")) {
				t.Fatalf("overwrite lost: %q", got)
			}
		})
	}
}

func TestBackendsMissReportsError(t *testing.T) {
	for name, db := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			if _, err := db.Get([]byte("missing")); err == nil {
				t.Fatalf("missing key must surface an error")
			}
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gig.db")
	db, err := NewBoltDB(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Put([]byte("chain/height"), []byte{0x07}); err != nil {
		t.Fatalf("put: %v", err)
	}
	db.Close()

	reopened, err := NewBoltDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get([]byte("chain/height"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte{0x07}) {
		t.Fatalf("persisted value lost: %x", got)
	}
}
