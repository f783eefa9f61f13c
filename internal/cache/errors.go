package cache

import "errors"

// Sentinel errors matching the error kinds enumerated in §7 of the spec.
// All of them surface as the Err() of a completed task; none unwind across
// the worker loop.
var (
	ErrDatabaseNotInitialized  = errors.New("database not initialized")
	ErrOpenFailure             = errors.New("failed to open cache database")
	ErrSchemaFailure           = errors.New("failed to create cache schema")
	ErrSchemaNotInitialized    = errors.New("schema missing default tile set")
	ErrNoTileSetsFound         = errors.New("no tile set in database")
	ErrTileNotFound            = errors.New("tile not in cache database")
	ErrSetInsertFailure        = errors.New("error saving tile set")
	ErrDownloadListInsertFailure = errors.New("error creating tile set download list")
	ErrRenameFailure           = errors.New("error renaming tile set")
	ErrImportOpenFailure       = errors.New("error opening import database")
	ErrImportNoUniqueTiles     = errors.New("no unique tiles in imported database")
	ErrExportOpenFailure       = errors.New("error opening export database")
	ErrExportCreateFailure     = errors.New("error creating export database")
)
