package cache

import (
	"strings"

	"github.com/avery/tilecache/internal/logx"
)

// getDownloadList selects up to Count pending tiles for a set and marks
// them Downloading in one batch UPDATE (§9 — the original source loops one
// UPDATE per hash; this module folds that into a single statement over the
// selected hashes).
func (w *Worker) getDownloadList(task *GetDownloadListTask) {
	rows, err := w.db.Query(
		`SELECT hash, type, x, y, z FROM TilesDownload WHERE setID = ? AND state = ? LIMIT ?`,
		task.SetID, StatePending, task.Count,
	)
	if err != nil {
		logx.Warnf("getDownloadList: %v", err)
		return
	}
	defer rows.Close()

	var tiles []*DownloadTile
	var hashes []string
	for rows.Next() {
		dt := &DownloadTile{}
		if err := rows.Scan(&dt.Hash, &dt.ProviderType, &dt.X, &dt.Y, &dt.Z); err != nil {
			logx.Warnf("getDownloadList: scan: %v", err)
			continue
		}
		tiles = append(tiles, dt)
		hashes = append(hashes, dt.Hash)
	}
	if err := rows.Err(); err != nil {
		logx.Warnf("getDownloadList: %v", err)
	}

	task.Tiles = tiles

	if len(hashes) == 0 {
		return
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(hashes)), ",")
	args := make([]any, 0, len(hashes)+2)
	args = append(args, StateDownloading, task.SetID)
	for _, h := range hashes {
		args = append(args, h)
	}
	query := `UPDATE TilesDownload SET state = ? WHERE setID = ? AND hash IN (` + placeholders + `)`
	if _, err := w.db.Exec(query, args...); err != nil {
		logx.Warnf("getDownloadList: mark downloading: %v", err)
	}
}

// updateDownloadState transitions one or all rows for a set. Complete
// deletes the row instead of storing a state value (§4.3).
func (w *Worker) updateDownloadState(task *UpdateDownloadStateTask) {
	var err error
	switch {
	case task.State == StateComplete:
		_, err = w.db.Exec(`DELETE FROM TilesDownload WHERE setID = ? AND hash = ?`, task.SetID, task.Hash)
	case task.Hash == "*":
		_, err = w.db.Exec(`UPDATE TilesDownload SET state = ? WHERE setID = ?`, task.State, task.SetID)
	default:
		_, err = w.db.Exec(`UPDATE TilesDownload SET state = ? WHERE setID = ? AND hash = ?`, task.State, task.SetID, task.Hash)
	}
	if err != nil {
		task.setErr(err)
	}
}
