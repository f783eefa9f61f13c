package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/avery/tilecache/internal/provider"
)

// fixedGridEngine is a minimal URLEngine covering a 2x2 grid at every zoom,
// used to keep tile-set fixtures small and deterministic in tests.
type fixedGridEngine struct{}

func (fixedGridEngine) TileRange(zoom int, box provider.BoundingBox) (x0, x1, y0, y1 int) {
	return 0, 1, 0, 1
}

func (fixedGridEngine) Hash(providerType provider.Type, x, y, z int) string {
	return provider.NewSlippyEngine().Hash(providerType, x, y, z)
}

func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	w := New(Config{
		DatabasePath: dbPath,
		URLEngine:    fixedGridEngine{},
		ShortTimeout: 10 * time.Millisecond,
		LongTimeout:  20 * time.Millisecond,
	})
	t.Cleanup(w.Stop)
	return w
}

func TestSaveAndFetchTile(t *testing.T) {
	w := newTestWorker(t)

	save := NewCacheTileTask("hash-1", "png", []byte("tile-bytes"), 1, nil)
	if err := Do(w, save); err != nil {
		t.Fatalf("save: %v", err)
	}

	fetch := NewFetchTileTask("hash-1")
	if err := Do(w, fetch); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(fetch.Tile.Bytes) != "tile-bytes" {
		t.Errorf("fetched bytes = %q, want %q", fetch.Tile.Bytes, "tile-bytes")
	}
}

func TestFetchMissingTileReturnsErrTileNotFound(t *testing.T) {
	w := newTestWorker(t)

	fetch := NewFetchTileTask("does-not-exist")
	err := Do(w, fetch)
	if err != ErrTileNotFound {
		t.Fatalf("err = %v, want ErrTileNotFound", err)
	}
}

func TestSaveTileIsIdempotentOnDuplicateHash(t *testing.T) {
	w := newTestWorker(t)

	for i := 0; i < 2; i++ {
		save := NewCacheTileTask("dup-hash", "png", []byte("data"), 1, nil)
		if err := Do(w, save); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	fetch := NewFetchTileTask("dup-hash")
	if err := Do(w, fetch); err != nil {
		t.Fatalf("fetch: %v", err)
	}
}

func TestCreateTileSetPlansEveryGridTile(t *testing.T) {
	w := newTestWorker(t)

	spec := TileSetSpec{
		Name:         "test-set",
		MinZoom:      1,
		MaxZoom:      2,
		ProviderType: provider.OSM,
	}
	create := NewCreateTileSetTask(spec)
	if err := Do(w, create); err != nil {
		t.Fatalf("create: %v", err)
	}

	want := uint64(2 * 2 * 2) // 2 zoom levels * 2x2 grid
	if create.Set.NumTiles != want {
		t.Errorf("NumTiles = %d, want %d", create.Set.NumTiles, want)
	}

	fetch := NewFetchTileSetsTask()
	if err := Do(w, fetch); err != nil {
		t.Fatalf("fetch sets: %v", err)
	}

	var found bool
	for _, s := range fetch.Sets {
		if s.Name == "test-set" {
			found = true
		}
	}
	if !found {
		t.Error("created set not present in FetchTileSets result")
	}
}

func TestRenameTileSet(t *testing.T) {
	w := newTestWorker(t)

	create := NewCreateTileSetTask(TileSetSpec{Name: "old-name", MinZoom: 1, MaxZoom: 1, ProviderType: provider.OSM})
	if err := Do(w, create); err != nil {
		t.Fatalf("create: %v", err)
	}

	rename := NewRenameTileSetTask(create.Set.ID, "new-name")
	if err := Do(w, rename); err != nil {
		t.Fatalf("rename: %v", err)
	}

	fetch := NewFetchTileSetsTask()
	if err := Do(w, fetch); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, s := range fetch.Sets {
		if s.ID == create.Set.ID && s.Name != "new-name" {
			t.Errorf("set name = %q, want %q", s.Name, "new-name")
		}
	}
}

func TestDeleteTileSetRemovesUniqueTilesOnly(t *testing.T) {
	w := newTestWorker(t)

	// A default-set tile on the new set's grid is linked into the set when
	// the set is created, so it is shared rather than unique.
	sharedHash := fixedGridEngine{}.Hash(provider.OSM, 0, 0, 1)
	saveShared := NewCacheTileTask(sharedHash, "png", []byte("shared"), 1, nil)
	if err := Do(w, saveShared); err != nil {
		t.Fatalf("save shared: %v", err)
	}

	create := NewCreateTileSetTask(TileSetSpec{Name: "deletable", MinZoom: 1, MaxZoom: 1, ProviderType: provider.OSM})
	if err := Do(w, create); err != nil {
		t.Fatalf("create: %v", err)
	}

	saveUnique := NewCacheTileTask("unique-to-deletable", "png", []byte("unique"), 1, &create.Set.ID)
	if err := Do(w, saveUnique); err != nil {
		t.Fatalf("save unique: %v", err)
	}

	del := NewDeleteTileSetTask(create.Set.ID)
	if err := Do(w, del); err != nil {
		t.Fatalf("delete: %v", err)
	}

	fetch := NewFetchTileSetsTask()
	if err := Do(w, fetch); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, s := range fetch.Sets {
		if s.ID == create.Set.ID {
			t.Error("deleted set still present")
		}
	}

	if err := Do(w, NewFetchTileTask("unique-to-deletable")); err != ErrTileNotFound {
		t.Errorf("unique tile err = %v, want ErrTileNotFound", err)
	}
	if err := Do(w, NewFetchTileTask(sharedHash)); err != nil {
		t.Errorf("shared tile should survive the delete, err = %v", err)
	}
}

func TestGetDownloadListMarksRowsDownloading(t *testing.T) {
	w := newTestWorker(t)

	create := NewCreateTileSetTask(TileSetSpec{Name: "dl-set", MinZoom: 1, MaxZoom: 1, ProviderType: provider.OSM})
	if err := Do(w, create); err != nil {
		t.Fatalf("create: %v", err)
	}

	list := NewGetDownloadListTask(create.Set.ID, 10)
	if err := Do(w, list); err != nil {
		t.Fatalf("download list: %v", err)
	}
	if len(list.Tiles) == 0 {
		t.Fatal("expected pending download rows, got none")
	}

	second := NewGetDownloadListTask(create.Set.ID, 10)
	if err := Do(w, second); err != nil {
		t.Fatalf("second download list: %v", err)
	}
	if len(second.Tiles) != 0 {
		t.Error("rows already marked downloading should not be returned again")
	}
}

func TestUpdateDownloadStateCompleteDeletesRow(t *testing.T) {
	w := newTestWorker(t)

	create := NewCreateTileSetTask(TileSetSpec{Name: "complete-set", MinZoom: 1, MaxZoom: 1, ProviderType: provider.OSM})
	if err := Do(w, create); err != nil {
		t.Fatalf("create: %v", err)
	}

	list := NewGetDownloadListTask(create.Set.ID, 1)
	if err := Do(w, list); err != nil {
		t.Fatalf("download list: %v", err)
	}
	if len(list.Tiles) == 0 {
		t.Fatal("expected at least one pending tile")
	}

	complete := NewUpdateDownloadStateTask(create.Set.ID, list.Tiles[0].Hash, StateComplete)
	if err := Do(w, complete); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Put every remaining row back to pending: a completed row that was
	// still present would be listed again.
	reset := NewUpdateDownloadStateTask(create.Set.ID, "*", StatePending)
	if err := Do(w, reset); err != nil {
		t.Fatalf("reset to pending: %v", err)
	}
	rest := NewGetDownloadListTask(create.Set.ID, 10)
	if err := Do(w, rest); err != nil {
		t.Fatalf("second download list: %v", err)
	}
	if len(rest.Tiles) != 3 {
		t.Errorf("remaining download rows = %d, want 3 of the 4 planned", len(rest.Tiles))
	}
	for _, tile := range rest.Tiles {
		if tile.Hash == list.Tiles[0].Hash {
			t.Errorf("completed tile %s still has a download row", tile.Hash)
		}
	}
}

func TestResetDropsDataButKeepsDefaultSet(t *testing.T) {
	w := newTestWorker(t)

	save := NewCacheTileTask("hash-reset", "png", []byte("x"), 1, nil)
	if err := Do(w, save); err != nil {
		t.Fatalf("save: %v", err)
	}

	reset := NewResetTask()
	if err := Do(w, reset); err != nil {
		t.Fatalf("reset: %v", err)
	}

	fetch := NewFetchTileTask("hash-reset")
	if err := Do(w, fetch); err != ErrTileNotFound {
		t.Errorf("err after reset = %v, want ErrTileNotFound", err)
	}

	sets := NewFetchTileSetsTask()
	if err := Do(w, sets); err != nil {
		t.Fatalf("fetch sets after reset: %v", err)
	}
	var hasDefault bool
	for _, s := range sets.Sets {
		if s.DefaultSet {
			hasDefault = true
		}
	}
	if !hasDefault {
		t.Error("reset should preserve the default tile set")
	}
}

func TestPruneCacheReclaimsBytes(t *testing.T) {
	w := newTestWorker(t)

	for i := 0; i < 3; i++ {
		hash := string(rune('a' + i))
		save := NewCacheTileTask(hash, "png", make([]byte, 100), 1, nil)
		if err := Do(w, save); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	prune := NewPruneCacheTask(150)
	if err := Do(w, prune); err != nil {
		t.Fatalf("prune: %v", err)
	}

	// Two 100-byte tiles are needed to free 150 bytes, leaving one.
	sets := NewFetchTileSetsTask()
	if err := Do(w, sets); err != nil {
		t.Fatalf("fetch sets: %v", err)
	}
	for _, s := range sets.Sets {
		if s.DefaultSet && s.SavedCount != 1 {
			t.Errorf("tiles left after pruning 150 of 300 bytes = %d, want 1", s.SavedCount)
		}
	}
}

func TestEnqueueAfterInitFailureFailsFast(t *testing.T) {
	w := New(Config{DatabasePath: filepath.Join(t.TempDir(), "nested", "does-not-exist", "cache.db")})
	t.Cleanup(w.Stop)

	save := NewCacheTileTask("hash", "png", []byte("x"), 1, nil)
	err := Do(w, save)
	if err != ErrDatabaseNotInitialized {
		t.Errorf("err = %v, want ErrDatabaseNotInitialized", err)
	}

	second := NewCacheTileTask("hash-2", "png", []byte("y"), 1, nil)
	if err := Do(w, second); err != ErrDatabaseNotInitialized {
		t.Errorf("second enqueue err = %v, want ErrDatabaseNotInitialized (fast path)", err)
	}
}
