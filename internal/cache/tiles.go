package cache

import (
	"database/sql"
	"time"

	"github.com/avery/tilecache/internal/logx"
)

// defaultSetID returns the cached default-set id, populated on first read
// and invalidated by Reset (§9 lazy default-set id cache). Unlike the
// original source, a missing default-set row is an error rather than a
// silent fallback to 1.
func (w *Worker) defaultSetID() (uint64, error) {
	if w.defaultSetIDCache != nil {
		return *w.defaultSetIDCache, nil
	}

	var id uint64
	err := w.db.QueryRow(`SELECT setID FROM TileSets WHERE defaultSet = 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrSchemaNotInitialized
	}
	if err != nil {
		return 0, err
	}

	w.defaultSetIDCache = &id
	return id, nil
}

func (w *Worker) invalidateDefaultSetID() {
	w.defaultSetIDCache = nil
}

// saveTile inserts a tile into Tiles (unique on hash), silently ignoring a
// hash collision — the mapping layer may double-request identical tiles
// (§4.3 SaveTile). On success it links the tile into the target set, or
// the default set when SetID is nil.
func (w *Worker) saveTile(task *CacheTileTask) {
	result, err := w.db.Exec(
		`INSERT INTO Tiles(hash, format, tile, size, type, date) VALUES(?, ?, ?, ?, ?, ?)`,
		task.Hash, task.Format, task.Bytes, len(task.Bytes), task.Type, time.Now().Unix(),
	)
	if err != nil {
		// Tile already present: this is the expected no-op path, not an error.
		return
	}

	tileID, err := result.LastInsertId()
	if err != nil {
		logx.Warnf("saveTile: could not read inserted tile id: %v", err)
		return
	}

	setID := task.SetID
	var targetSet uint64
	if setID == nil {
		var err error
		targetSet, err = w.defaultSetID()
		if err != nil {
			logx.Warnf("saveTile: %v", err)
			return
		}
	} else {
		targetSet = *setID
	}

	if _, err := w.db.Exec(
		`INSERT OR IGNORE INTO SetTiles(tileID, setID) VALUES(?, ?)`,
		tileID, targetSet,
	); err != nil {
		logx.Warnf("saveTile: add tile into SetTiles: %v", err)
	}
}

// fetchTile looks a tile up by hash (§4.3 FetchTile).
func (w *Worker) fetchTile(task *FetchTileTask) {
	var t Tile
	t.Hash = task.Hash
	err := w.db.QueryRow(
		`SELECT tileID, tile, format, type FROM Tiles WHERE hash = ?`, task.Hash,
	).Scan(&t.ID, &t.Bytes, &t.Format, &t.Type)
	if err == sql.ErrNoRows {
		task.setErr(ErrTileNotFound)
		return
	}
	if err != nil {
		task.setErr(err)
		return
	}
	t.Size = int64(len(t.Bytes))
	task.Tile = &t
}
