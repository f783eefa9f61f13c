package cache

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/avery/tilecache/internal/logx"
)

// exportSets writes the requested sets, their tiles and their tile/set
// linkage into a fresh database file at task.Path. Progress is reported as
// a percentage of sets copied (§4.4 Export).
func (w *Worker) exportSets(task *ExportTask) {
	os.Remove(task.Path)

	out, err := openDatabase(task.Path)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrExportCreateFailure, err))
		return
	}
	defer out.Close()

	if err := createSchema(out, task.Path, false); err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrExportCreateFailure, err))
		return
	}

	total := len(task.Sets)
	if total == 0 {
		if task.Progress != nil {
			task.Progress(100)
		}
		return
	}

	for i, set := range task.Sets {
		if err := w.exportOneSet(out, set); err != nil {
			logx.Warnf("export: set %q: %v", set.Name, err)
		}
		if task.Progress != nil {
			task.Progress((i + 1) * 100 / total)
		}
	}
}

func (w *Worker) exportOneSet(out *sql.DB, set *TileSet) error {
	tx, err := out.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO TileSets(
		name, typeStr, topleftLat, topleftLon, bottomRightLat, bottomRightLon,
		minZoom, maxZoom, type, numTiles, defaultSet, date
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		set.Name, set.TypeStr, set.Box.TopLeftLat, set.Box.TopLeftLon,
		set.Box.BottomRightLat, set.Box.BottomRightLon, set.MinZoom, set.MaxZoom,
		set.ProviderType, set.NumTiles, set.DefaultSet, set.Date,
	)
	if err != nil {
		return err
	}
	newSetID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	rows, err := w.db.Query(`
		SELECT T.tileID, T.hash, T.format, T.tile, T.size, T.type, T.date
		FROM Tiles T JOIN SetTiles S ON T.tileID = S.tileID WHERE S.setID = ?`, set.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var hash, format string
		var data []byte
		var size, tileType, date int64
		var oldTileID int64
		if err := rows.Scan(&oldTileID, &hash, &format, &data, &size, &tileType, &date); err != nil {
			logx.Warnf("export: scan tile: %v", err)
			continue
		}

		var newTileID int64
		err := tx.QueryRow(`SELECT tileID FROM Tiles WHERE hash = ?`, hash).Scan(&newTileID)
		if err != nil {
			res, err := tx.Exec(
				`INSERT INTO Tiles(hash, format, tile, size, type, date) VALUES(?, ?, ?, ?, ?, ?)`,
				hash, format, data, size, tileType, date,
			)
			if err != nil {
				logx.Warnf("export: insert tile: %v", err)
				continue
			}
			newTileID, _ = res.LastInsertId()
		}

		if _, err := tx.Exec(`INSERT OR IGNORE INTO SetTiles(tileID, setID) VALUES(?, ?)`, newTileID, newSetID); err != nil {
			logx.Warnf("export: link tile: %v", err)
		}
	}

	return tx.Commit()
}

// importSets merges an exported database into the live cache, or (Replace)
// swaps it in wholesale (§4.4 Import).
func (w *Worker) importSets(task *ImportTask) {
	if task.Replace {
		w.importReplace(task)
		return
	}
	w.importMerge(task)
}

// importReplace closes the live database, substitutes the import file in
// its place, and reopens with a fresh schema check. Progress moves in the
// three original coarse steps: validated, swapped, reopened.
func (w *Worker) importReplace(task *ImportTask) {
	in, err := openDatabase(task.Path)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrImportOpenFailure, err))
		return
	}
	in.Close()
	if task.Progress != nil {
		task.Progress(25)
	}

	if w.db != nil {
		w.db.Close()
		w.db = nil
		w.valid = false
	}

	data, err := os.ReadFile(task.Path)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrImportOpenFailure, err))
		return
	}
	if err := os.WriteFile(w.cfg.DatabasePath, data, 0o644); err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrImportOpenFailure, err))
		return
	}
	if task.Progress != nil {
		task.Progress(50)
	}

	db, err := openDatabase(w.cfg.DatabasePath)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrOpenFailure, err))
		return
	}
	if err := createSchema(db, w.cfg.DatabasePath, true); err != nil {
		task.setErr(err)
		return
	}

	w.db = db
	w.valid = true
	w.invalidateDefaultSetID()
	w.updateTotals()

	if task.Progress != nil {
		task.Progress(100)
	}
}

// importMerge copies only the tiles unique to each source set — the same
// self-join HAVING-COUNT=1 restriction deleteTileSet/pruneCache use —
// into either a newly created, name-collision-avoided set, or, for the
// source's own default set, into our default set (§4.4 Import-merge: "If it
// is the default set, merge into our default"). A newly created set left
// empty (every one of its unique tiles already existed here) is dropped. If
// nothing new was saved across all sets, the task fails with
// ErrImportNoUniqueTiles.
func (w *Worker) importMerge(task *ImportTask) {
	secondary, err := openSecondary(task.Path)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrImportOpenFailure, err))
		return
	}
	defer secondary.Close()

	rows, err := secondary.db.Query(`SELECT setID, name, COALESCE(typeStr, ''), topleftLat, topleftLon,
		bottomRightLat, bottomRightLon, minZoom, maxZoom, type, numTiles, defaultSet, date
		FROM TileSets ORDER BY defaultSet DESC`)
	if err != nil {
		task.setErr(fmt.Errorf("%w: %v", ErrImportOpenFailure, err))
		return
	}

	type importedSet struct {
		id                                        int64
		name, typeStr                             string
		box                                       BoundingBox
		minZoom, maxZoom, providerType, numTiles  int
		defaultSet                                bool
		date                                       int64
	}
	var sets []importedSet
	for rows.Next() {
		var s importedSet
		if err := rows.Scan(&s.id, &s.name, &s.typeStr, &s.box.TopLeftLat, &s.box.TopLeftLon,
			&s.box.BottomRightLat, &s.box.BottomRightLon, &s.minZoom, &s.maxZoom,
			&s.providerType, &s.numTiles, &s.defaultSet, &s.date); err != nil {
			logx.Warnf("import: scan set: %v", err)
			continue
		}
		sets = append(sets, s)
	}
	rows.Close()

	// Progress is measured against every tile row in the source, so the
	// unique tiles processed across all sets never pass 100%.
	var totalTiles int
	if err := secondary.db.QueryRow(`SELECT COUNT(*) FROM Tiles`).Scan(&totalTiles); err != nil {
		logx.Warnf("import: count tiles: %v", err)
	}

	var savedAny bool
	var tilesProcessed, lastPercent int

	for _, set := range sets {
		var newSetID int64
		var tx *sql.Tx
		creatingSet := !set.defaultSet

		if creatingSet {
			name := w.uniqueSetName(set.name)
			tx, err = w.db.Begin()
			if err != nil {
				logx.Warnf("import: set %q: %v", set.name, err)
				continue
			}
			res, err := tx.Exec(`INSERT INTO TileSets(
				name, typeStr, topleftLat, topleftLon, bottomRightLat, bottomRightLon,
				minZoom, maxZoom, type, numTiles, defaultSet, date
			) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
				name, set.typeStr, set.box.TopLeftLat, set.box.TopLeftLon,
				set.box.BottomRightLat, set.box.BottomRightLon, set.minZoom, set.maxZoom,
				set.providerType, set.numTiles, set.date,
			)
			if err != nil {
				tx.Rollback()
				logx.Warnf("import: insert set %q: %v", name, err)
				continue
			}
			newSetID, _ = res.LastInsertId()
		} else {
			var defaultID uint64
			defaultID, err = w.defaultSetID()
			newSetID = int64(defaultID)
			if err != nil {
				logx.Warnf("import: default set: %v", err)
				continue
			}
			tx, err = w.db.Begin()
			if err != nil {
				logx.Warnf("import: default set: %v", err)
				continue
			}
		}

		tileRows, err := secondary.db.Query(`
			SELECT T.hash, T.format, T.tile, T.size, T.type, T.date
			FROM Tiles T WHERE T.tileID IN (
				SELECT A.tileID FROM SetTiles A JOIN SetTiles B ON A.tileID = B.tileID
				WHERE B.setID = ? GROUP BY A.tileID HAVING COUNT(A.tileID) = 1
			)`, set.id)
		if err != nil {
			tx.Rollback()
			logx.Warnf("import: read tiles for set %q: %v", set.name, err)
			continue
		}

		var savedInSet int
		for tileRows.Next() {
			var hash, format string
			var data []byte
			var size, tileType, date int64
			if err := tileRows.Scan(&hash, &format, &data, &size, &tileType, &date); err != nil {
				logx.Warnf("import: scan tile: %v", err)
				continue
			}

			tilesProcessed++
			if task.Progress != nil && totalTiles > 0 {
				if percent := tilesProcessed * 100 / totalTiles; percent != lastPercent {
					lastPercent = percent
					task.Progress(percent)
				}
			}

			var existingID int64
			err := tx.QueryRow(`SELECT tileID FROM Tiles WHERE hash = ?`, hash).Scan(&existingID)
			if err == nil {
				continue // already present: not unique, not counted
			}

			res, err := tx.Exec(
				`INSERT INTO Tiles(hash, format, tile, size, type, date) VALUES(?, ?, ?, ?, ?, ?)`,
				hash, format, data, size, tileType, date,
			)
			if err != nil {
				logx.Warnf("import: insert tile: %v", err)
				continue
			}
			tileID, _ := res.LastInsertId()
			if _, err := tx.Exec(`INSERT OR IGNORE INTO SetTiles(tileID, setID) VALUES(?, ?)`, tileID, newSetID); err != nil {
				logx.Warnf("import: link tile: %v", err)
				continue
			}
			savedInSet++
		}
		tileRows.Close()

		if creatingSet && savedInSet == 0 {
			tx.Exec(`DELETE FROM TileSets WHERE setID = ?`, newSetID)
			tx.Rollback()
			continue
		}

		if creatingSet {
			if _, err := tx.Exec(`UPDATE TileSets SET numTiles = ? WHERE setID = ?`, savedInSet, newSetID); err != nil {
				logx.Warnf("import: update numTiles: %v", err)
			}
		} else if savedInSet > 0 {
			if _, err := tx.Exec(`UPDATE TileSets SET numTiles = numTiles + ? WHERE setID = ?`, savedInSet, newSetID); err != nil {
				logx.Warnf("import: update default set numTiles: %v", err)
			}
		}

		if err := tx.Commit(); err != nil {
			logx.Warnf("import: commit set %q: %v", set.name, err)
			continue
		}
		if savedInSet > 0 {
			savedAny = true
		}
	}

	if task.Progress != nil && lastPercent != 100 {
		task.Progress(100)
	}

	if !savedAny {
		task.setErr(ErrImportNoUniqueTiles)
		return
	}

	w.invalidateDefaultSetID()
	w.updateTotals()
}

// uniqueSetName appends " 01".." 99" until the name is free, matching the
// original source's collision-avoidance scheme for merged imports.
func (w *Worker) uniqueSetName(name string) string {
	var exists int
	if err := w.db.QueryRow(`SELECT COUNT(*) FROM TileSets WHERE name = ?`, name).Scan(&exists); err != nil || exists == 0 {
		return name
	}
	for n := 1; n <= 99; n++ {
		candidate := fmt.Sprintf("%s %02d", name, n)
		if err := w.db.QueryRow(`SELECT COUNT(*) FROM TileSets WHERE name = ?`, candidate).Scan(&exists); err != nil || exists == 0 {
			return candidate
		}
	}
	return name
}
