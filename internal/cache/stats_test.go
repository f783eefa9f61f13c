package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestUpdateTotalsReflectsSavedTiles(t *testing.T) {
	w := newTestWorker(t)

	for i, hash := range []string{"a", "b", "c"} {
		_ = i
		save := NewCacheTileTask(hash, "png", []byte("xxxx"), 1, nil)
		if err := Do(w, save); err != nil {
			t.Fatalf("save %s: %v", hash, err)
		}
	}

	var gotTotal, gotDefault uint64
	w.cfg.OnTotals = func(totalCount, totalSize, defaultCount, defaultSize uint64) {
		gotTotal = totalCount
		gotDefault = defaultCount
	}
	w.updateTotals()

	if gotTotal != 3 {
		t.Errorf("totalCount = %d, want 3", gotTotal)
	}
	if gotDefault != 3 {
		t.Errorf("defaultCount = %d, want 3 (all tiles unique to default set)", gotDefault)
	}
}

func TestOnTotalsCallbackFiresAfterQueueDrains(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	fired := make(chan struct{}, 1)

	w := New(Config{
		DatabasePath: dbPath,
		URLEngine:    fixedGridEngine{},
		OnTotals: func(totalCount, totalSize, defaultCount, defaultSize uint64) {
			select {
			case fired <- struct{}{}:
			default:
			}
		},
	})
	t.Cleanup(w.Stop)

	save := NewCacheTileTask("hash", "png", []byte("data"), 1, nil)
	if err := Do(w, save); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Error("expected OnTotals to fire once the queue drained to zero")
	}
}
