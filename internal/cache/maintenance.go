package cache

import (
	"bytes"

	"go.uber.org/multierr"

	"github.com/avery/tilecache/internal/logx"
)

const pruneBatchSize = 128

// runBogusCleanup deletes every tile byte-identical to Config.BogusTileBytes,
// once per installation. The flag lives in Settings so it survives Reset
// (§4.5). A nil BogusTileBytes disables the whole pass.
func (w *Worker) runBogusCleanup() {
	if w.cfg.BogusTileBytes == nil {
		return
	}
	if settingBool(w.db, settingBogusCleanupDone) {
		return
	}

	rows, err := w.db.Query(`SELECT tileID, tile FROM Tiles`)
	if err != nil {
		logx.Warnf("bogus cleanup: %v", err)
		return
	}

	var bogus []int64
	var scanErr error
	for rows.Next() {
		var id int64
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			scanErr = multierr.Append(scanErr, err)
			continue
		}
		if bytes.Equal(data, w.cfg.BogusTileBytes) {
			bogus = append(bogus, id)
		}
	}
	rows.Close()
	if scanErr != nil {
		logx.Warnf("bogus cleanup: %v", scanErr)
	}

	var delErr error
	for _, id := range bogus {
		if _, err := w.db.Exec(`DELETE FROM SetTiles WHERE tileID = ?`, id); err != nil {
			delErr = multierr.Append(delErr, err)
		}
		if _, err := w.db.Exec(`DELETE FROM Tiles WHERE tileID = ?`, id); err != nil {
			delErr = multierr.Append(delErr, err)
		}
	}
	if delErr != nil {
		logx.Warnf("bogus cleanup: %v", delErr)
	}
	if len(bogus) > 0 {
		logx.Infof("bogus cleanup: removed %d tile(s)", len(bogus))
	}

	if err := setSettingBool(w.db, settingBogusCleanupDone, true); err != nil {
		logx.Warnf("bogus cleanup: could not persist completion flag: %v", err)
	}
}

// pruneCache reclaims the oldest tiles unique to the default set, oldest
// first, stopping once task.Bytes has been freed. A single pass considers
// at most pruneBatchSize candidates, matching the original's single
// LIMIT-128 query (§4.5 Prune) — a request larger than one batch's bytes
// is satisfied as far as that batch allows and no further.
func (w *Worker) pruneCache(task *PruneCacheTask) {
	defaultID, err := w.defaultSetID()
	if err != nil {
		task.setErr(err)
		return
	}

	rows, err := w.db.Query(`
		SELECT tileID, size FROM Tiles WHERE tileID IN (
			SELECT A.tileID FROM SetTiles A JOIN SetTiles B ON A.tileID = B.tileID
			WHERE B.setID = ? GROUP BY A.tileID HAVING COUNT(A.tileID) = 1
		) ORDER BY date ASC LIMIT ?`, defaultID, pruneBatchSize)
	if err != nil {
		task.setErr(err)
		return
	}

	type candidate struct {
		id   int64
		size int64
	}
	var batch []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.size); err != nil {
			logx.Warnf("prune: scan: %v", err)
			continue
		}
		batch = append(batch, c)
	}
	rows.Close()

	var freed int64
	for _, c := range batch {
		if freed >= task.Bytes {
			break
		}
		if _, err := w.db.Exec(`DELETE FROM SetTiles WHERE tileID = ?`, c.id); err != nil {
			logx.Warnf("prune: unlink tile %d: %v", c.id, err)
			break
		}
		if _, err := w.db.Exec(`DELETE FROM Tiles WHERE tileID = ?`, c.id); err != nil {
			logx.Warnf("prune: delete tile %d: %v", c.id, err)
			break
		}
		freed += c.size
	}

	w.updateTotals()
}

// resetCache drops and recreates the four data tables and invalidates the
// cached default-set id (§4.5 Reset).
func (w *Worker) resetCache(task *ResetTask) {
	if err := resetSchema(w.db, w.cfg.DatabasePath); err != nil {
		task.setErr(err)
		return
	}
	w.invalidateDefaultSetID()
	w.updateTotals()
}
