package cache

import (
	"path/filepath"
	"testing"
)

// TestBogusCleanupRemovesPreExistingMatchingTiles simulates a database that
// already contains a known-bad tile before the worker is ever started
// (cleanup is a one-time migration applied at startup, not an ongoing
// filter on newly saved tiles).
func TestBogusCleanupRemovesPreExistingMatchingTiles(t *testing.T) {
	bogus := []byte("bogus-tile-bytes")
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	seed := New(Config{DatabasePath: dbPath, URLEngine: fixedGridEngine{}})
	save := NewCacheTileTask("bogus-hash", "png", bogus, 1, nil)
	if err := Do(seed, save); err != nil {
		t.Fatalf("seed bogus tile: %v", err)
	}
	good := NewCacheTileTask("good-hash", "png", []byte("real-data"), 1, nil)
	if err := Do(seed, good); err != nil {
		t.Fatalf("seed good tile: %v", err)
	}
	seed.Stop()

	w := New(Config{
		DatabasePath:   dbPath,
		URLEngine:      fixedGridEngine{},
		BogusTileBytes: bogus,
	})
	t.Cleanup(w.Stop)

	fetchBogus := NewFetchTileTask("bogus-hash")
	if err := Do(w, fetchBogus); err != ErrTileNotFound {
		t.Errorf("bogus tile err = %v, want ErrTileNotFound", err)
	}

	fetchGood := NewFetchTileTask("good-hash")
	if err := Do(w, fetchGood); err != nil {
		t.Errorf("good tile should survive cleanup, err = %v", err)
	}
}

func TestBogusCleanupDisabledWhenBytesNil(t *testing.T) {
	w := New(Config{
		DatabasePath: filepath.Join(t.TempDir(), "cache.db"),
		URLEngine:    fixedGridEngine{},
	})
	t.Cleanup(w.Stop)

	save := NewCacheTileTask("any-hash", "png", []byte("any-data"), 1, nil)
	if err := Do(w, save); err != nil {
		t.Fatalf("save: %v", err)
	}

	fetch := NewFetchTileTask("any-hash")
	if err := Do(w, fetch); err != nil {
		t.Errorf("tile should survive when cleanup is disabled, err = %v", err)
	}
}
