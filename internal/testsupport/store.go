package testsupport

import (
	"testing"

	"kbmatch/internal/record"
	"kbmatch/internal/store"
)

// MustOpenStore opens a record store for tests and registers cleanup.
func MustOpenStore(t testing.TB, path string, kind record.Kind) *store.Store {
	t.Helper()

	s, err := store.Open(path, kind, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// SeedStore writes records to path in order.
func SeedStore(t testing.TB, path string, kind record.Kind, recs ...record.Record) {
	t.Helper()

	s, err := store.Open(path, kind, nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()
	for _, rec := range recs {
		s.Put(rec)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
}
