package cache

import (
	"time"

	"github.com/avery/tilecache/internal/logx"
)

// fetchTileSets returns every set ordered default-first, name-ascending,
// with derived stats attached (§4.3 FetchTileSets).
func (w *Worker) fetchTileSets(task *FetchTileSetsTask) {
	rows, err := w.db.Query(`SELECT setID, name, COALESCE(typeStr, ''), topleftLat, topleftLon,
		bottomRightLat, bottomRightLon, minZoom, maxZoom, type, numTiles, defaultSet, date
		FROM TileSets ORDER BY defaultSet DESC, name ASC`)
	if err != nil {
		task.setErr(ErrNoTileSetsFound)
		return
	}
	defer rows.Close()

	var sets []*TileSet
	for rows.Next() {
		set := &TileSet{}
		var defaultSet int
		if err := rows.Scan(&set.ID, &set.Name, &set.TypeStr, &set.Box.TopLeftLat, &set.Box.TopLeftLon,
			&set.Box.BottomRightLat, &set.Box.BottomRightLon, &set.MinZoom, &set.MaxZoom,
			&set.ProviderType, &set.NumTiles, &defaultSet, &set.Date); err != nil {
			logx.Warnf("fetchTileSets: scan: %v", err)
			continue
		}
		set.DefaultSet = defaultSet != 0
		set.TotalCount = set.NumTiles
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		task.setErr(err)
		return
	}
	// The pool holds a single connection, which the open result set keeps
	// busy; the per-set stats queries run only once it is closed.
	rows.Close()

	for _, set := range sets {
		w.updateSetTotals(set)
	}
	task.Sets = sets
}

// createTileSet persists the set row, then enumerates every (x,y,z) in the
// plan inside one transaction: tiles already present are linked directly;
// absent tiles are queued in TilesDownload (§4.3 CreateTileSet).
func (w *Worker) createTileSet(task *CreateTileSetTask) {
	spec := task.Spec
	providerID := w.cfg.Catalog.IDFromType(spec.ProviderType)

	tx, err := w.db.Begin()
	if err != nil {
		task.setErr(ErrSetInsertFailure)
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO TileSets(
		name, typeStr, topleftLat, topleftLon, bottomRightLat, bottomRightLon,
		minZoom, maxZoom, type, numTiles, date
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		spec.Name, spec.TypeStr, spec.Box.TopLeftLat, spec.Box.TopLeftLon,
		spec.Box.BottomRightLat, spec.Box.BottomRightLon, spec.MinZoom, spec.MaxZoom,
		providerID, 0, time.Now().Unix(),
	)
	if err != nil {
		task.setErr(ErrSetInsertFailure)
		return
	}

	setID64, err := res.LastInsertId()
	if err != nil {
		task.setErr(ErrSetInsertFailure)
		return
	}
	setID := uint64(setID64)

	var planned uint64
	for z := spec.MinZoom; z <= spec.MaxZoom; z++ {
		x0, x1, y0, y1 := w.cfg.URLEngine.TileRange(z, spec.Box)
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				planned++
				hash := w.cfg.URLEngine.Hash(spec.ProviderType, x, y, z)

				var tileID int64
				err := tx.QueryRow(`SELECT tileID FROM Tiles WHERE hash = ?`, hash).Scan(&tileID)
				switch {
				case err == nil:
					if _, err := tx.Exec(`INSERT OR IGNORE INTO SetTiles(tileID, setID) VALUES(?, ?)`, tileID, setID); err != nil {
						logx.Warnf("createTileSet: link existing tile: %v", err)
					}
				default:
					if _, err := tx.Exec(
						`INSERT OR IGNORE INTO TilesDownload(setID, hash, type, x, y, z, state) VALUES(?, ?, ?, ?, ?, ?, ?)`,
						setID, hash, providerID, x, y, z, StatePending,
					); err != nil {
						task.setErr(ErrDownloadListInsertFailure)
						return
					}
				}
			}
		}
	}

	if _, err := tx.Exec(`UPDATE TileSets SET numTiles = ? WHERE setID = ?`, planned, setID); err != nil {
		task.setErr(ErrSetInsertFailure)
		return
	}

	if err := tx.Commit(); err != nil {
		task.setErr(ErrSetInsertFailure)
		return
	}

	set := &TileSet{
		ID:           setID,
		Name:         spec.Name,
		TypeStr:      spec.TypeStr,
		Box:          spec.Box,
		MinZoom:      spec.MinZoom,
		MaxZoom:      spec.MaxZoom,
		ProviderType: providerID,
		NumTiles:     planned,
		TotalCount:   planned,
		Date:         time.Now().Unix(),
	}
	w.updateSetTotals(set)
	task.Set = set
}

// renameTileSet is a single parameterized UPDATE (§4.3 Rename; §9 flags
// the original's string-interpolated name as injection-prone).
func (w *Worker) renameTileSet(task *RenameTileSetTask) {
	if _, err := w.db.Exec(`UPDATE TileSets SET name = ? WHERE setID = ?`, task.NewName, task.SetID); err != nil {
		task.setErr(ErrRenameFailure)
	}
}

// deleteTileSetTask removes a set, then unblocks task completion.
func (w *Worker) deleteTileSetTask(task *DeleteTileSetTask) {
	w.deleteTileSet(task.SetID)
}

// deleteTileSet removes tiles unique to the set, the set's download rows,
// the set row, and its membership rows, then recomputes totals (§4.3
// Delete).
func (w *Worker) deleteTileSet(setID uint64) {
	if _, err := w.db.Exec(`DELETE FROM Tiles WHERE tileID IN (
		SELECT A.tileID FROM SetTiles A JOIN SetTiles B ON A.tileID = B.tileID
		WHERE B.setID = ? GROUP BY A.tileID HAVING COUNT(A.tileID) = 1
	)`, setID); err != nil {
		logx.Warnf("deleteTileSet: remove unique tiles: %v", err)
	}
	if _, err := w.db.Exec(`DELETE FROM TilesDownload WHERE setID = ?`, setID); err != nil {
		logx.Warnf("deleteTileSet: remove download rows: %v", err)
	}
	if _, err := w.db.Exec(`DELETE FROM TileSets WHERE setID = ?`, setID); err != nil {
		logx.Warnf("deleteTileSet: remove set row: %v", err)
	}
	if _, err := w.db.Exec(`DELETE FROM SetTiles WHERE setID = ?`, setID); err != nil {
		logx.Warnf("deleteTileSet: remove membership rows: %v", err)
	}
	w.updateTotals()
}
