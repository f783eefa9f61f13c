package cache

import "time"

// refreshTotals recomputes the global aggregates and emits them through
// Config.OnTotals (§6 Events: updateTotals). It is called after the queue
// drains to zero or the adaptive timer expires (§4.1).
func (w *Worker) refreshTotals() {
	w.updateTotals()
	w.lastUpdate = time.Now()
	w.updateStarted = true
}

// updateTotals recomputes _totalCount/_totalSize (every tile in the cache)
// and _defaultCount/_defaultSize (tiles unique to the default set).
func (w *Worker) updateTotals() {
	row := w.db.QueryRow(`SELECT COUNT(size), COALESCE(SUM(size), 0) FROM Tiles`)
	_ = row.Scan(&w.totalCount, &w.totalSize)

	defaultID, err := w.defaultSetID()
	if err != nil {
		return
	}

	row = w.db.QueryRow(uniqueToSetQuery, defaultID)
	_ = row.Scan(&w.defaultCount, &w.defaultSize)

	if w.cfg.OnTotals != nil {
		w.cfg.OnTotals(w.totalCount, w.totalSize, w.defaultCount, w.defaultSize)
	}
}

// uniqueToSetQuery selects COUNT(size), SUM(size) over tiles whose only
// SetTiles membership row is the given set.
const uniqueToSetQuery = `
SELECT COUNT(size), COALESCE(SUM(size), 0) FROM Tiles WHERE tileID IN (
	SELECT A.tileID FROM SetTiles A JOIN SetTiles B ON A.tileID = B.tileID
	WHERE B.setID = ? GROUP BY A.tileID HAVING COUNT(A.tileID) = 1
)`

// updateSetTotals attaches derived statistics to a TileSet (§4.3
// _updateSetTotals).
func (w *Worker) updateSetTotals(set *TileSet) {
	if set.DefaultSet {
		w.updateTotals()
		set.SavedCount = w.totalCount
		set.SavedSize = w.totalSize
		set.TotalCount = w.defaultCount
		set.TotalSize = w.defaultSize
		return
	}

	row := w.db.QueryRow(
		`SELECT COUNT(size), COALESCE(SUM(size), 0) FROM Tiles A INNER JOIN SetTiles B ON A.tileID = B.tileID WHERE B.setID = ?`,
		set.ID,
	)
	if err := row.Scan(&set.SavedCount, &set.SavedSize); err != nil {
		return
	}

	avg := uint64(w.cfg.Catalog.AverageBytes(w.cfg.Catalog.TypeFromID(set.ProviderType)))
	if set.SavedCount > 10 && set.SavedSize > 0 {
		avg = set.SavedSize / set.SavedCount
	}

	if set.TotalCount <= set.SavedCount {
		set.TotalSize = set.SavedSize
	} else {
		set.TotalSize = avg * set.TotalCount
	}

	var uniqueCount, uniqueSize uint64
	row = w.db.QueryRow(uniqueToSetQuery, set.ID)
	_ = row.Scan(&uniqueCount, &uniqueSize)

	expectedUnique := set.TotalCount - set.SavedCount
	if uniqueCount == 0 {
		uniqueSize = expectedUnique * avg
	} else {
		expectedUnique = uniqueCount
	}
	set.UniqueCount = expectedUnique
	set.UniqueSize = uniqueSize
}
