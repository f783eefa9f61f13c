package cache

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/avery/tilecache/internal/logx"
)

// openDatabase opens (creating if absent) a shared-cache SQLite file and
// applies the pragmas a single-writer embedded cache wants: WAL so readers
// never block the worker's writes, and a busy timeout so a lingering
// external reader (e.g. a backup tool) doesn't surface as a hard failure.
func openDatabase(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailure, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// createSchema is idempotent: CREATE TABLE IF NOT EXISTS for all five
// relations, plus the (hash,size,type) index, and — when createDefaultSet —
// ensures exactly one row with defaultSet=1 named "Default Tile Set".
// On any failure the database file is deleted so the next attempt starts
// clean (§4.2).
func createSchema(db *sql.DB, path string, createDefaultSet bool) error {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrSchemaFailure, err)
	}

	if !createDefaultSet {
		return nil
	}

	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM TileSets WHERE name = ?`, defaultSetName).Scan(&exists)
	if err != nil {
		db.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrSchemaFailure, err)
	}

	if exists > 0 {
		return nil
	}

	_, err = db.Exec(
		`INSERT INTO TileSets(name, defaultSet, date) VALUES(?, 1, strftime('%s','now'))`,
		defaultSetName,
	)
	if err != nil {
		db.Close()
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrSchemaFailure, err)
	}

	return nil
}

// resetSchema drops the four data tables (Settings, holding per-installation
// flags like the bogus-cleanup marker, survives a reset) and recreates them.
func resetSchema(db *sql.DB, path string) error {
	for _, table := range []string{"Tiles", "TileSets", "SetTiles", "TilesDownload"} {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("%w: %v", ErrSchemaFailure, err)
		}
	}
	return createSchema(db, path, true)
}

func settingBool(db *sql.DB, key string) bool {
	var value string
	err := db.QueryRow(`SELECT value FROM Settings WHERE key = ?`, key).Scan(&value)
	return err == nil && value == "true"
}

func setSettingBool(db *sql.DB, key string, value bool) error {
	v := "false"
	if value {
		v = "true"
	}
	_, err := db.Exec(`INSERT INTO Settings(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, v)
	return err
}

// secondarySession is a transient second connection used by export/import
// against a file other than the worker's own. It is tagged with a random
// session id purely for log correlation, mirroring the named secondary
// QSqlDatabase session the original source opens and removes around each
// import/export.
type secondarySession struct {
	id string
	db *sql.DB
}

func openSecondary(path string) (*secondarySession, error) {
	id := uuid.NewString()
	db, err := openDatabase(path)
	if err != nil {
		return nil, err
	}
	logx.Debugf("secondary session %s opened against %s", id, path)
	return &secondarySession{id: id, db: db}, nil
}

func (s *secondarySession) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
	logx.Debugf("secondary session %s closed", s.id)
}
