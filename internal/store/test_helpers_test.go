package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/bookcat/internal/catalog"
	"github.com/roach88/bookcat/internal/pdate"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record with a purchase date given as text;
// "" leaves it absent.
func createTestRecord(id int64, title, purchased string) catalog.Record {
	rec := catalog.Record{ID: id, Title: title}
	if purchased != "" {
		d, ok := pdate.Parse(purchased)
		if !ok {
			panic("bad test date " + purchased)
		}
		rec.PurchaseDate = d
	}
	return rec
}
