package cache

// Task is a tagged sum over the task variants below (§9 design notes prefer
// this over a base type with dynamic dispatch). The worker's dispatch is a
// type switch on the concrete variant.
type Task interface {
	kind() taskKind
	setErr(error)
	Err() error
	Done() <-chan struct{}
}

type taskKind int

const (
	kindInit taskKind = iota
	kindCacheTile
	kindFetchTile
	kindFetchTileSets
	kindCreateTileSet
	kindGetDownloadList
	kindUpdateDownloadState
	kindDeleteTileSet
	kindRenameTileSet
	kindPruneCache
	kindReset
	kindExport
	kindImport
)

// base is embedded by every task variant. It owns the completion signal and
// the error result mutator. A task is handed to the worker exactly once;
// the worker closes done after dispatch so a consumer can receive the
// completion signal before the task is eligible for garbage collection.
type base struct {
	done chan struct{}
	err  error
}

func newBase() base {
	return base{done: make(chan struct{})}
}

func (b *base) setErr(err error)      { b.err = err }
func (b *base) Err() error            { return b.err }
func (b *base) Done() <-chan struct{} { return b.done }
func (b *base) complete()             { close(b.done) }

// InitTask forces the worker to initialize (open + schema + bogus cleanup)
// without performing any other work. Enqueuing it is the only thing that
// succeeds even when the worker has already failed to initialize once.
type InitTask struct{ base }

func NewInitTask() *InitTask { return &InitTask{base: newBase()} }
func (*InitTask) kind() taskKind { return kindInit }

// CacheTileTask is the spontaneous "save this tile" request. SetID is an
// explicit optional field: nil means "use the default set" (§9 — the
// sentinel max-uint64 of the original source becomes this).
type CacheTileTask struct {
	base
	Hash   string
	Format string
	Bytes  []byte
	Type   int
	SetID  *uint64
}

func NewCacheTileTask(hash, format string, data []byte, providerType int, setID *uint64) *CacheTileTask {
	return &CacheTileTask{base: newBase(), Hash: hash, Format: format, Bytes: data, Type: providerType, SetID: setID}
}
func (*CacheTileTask) kind() taskKind { return kindCacheTile }

// FetchTileTask looks a tile up by hash.
type FetchTileTask struct {
	base
	Hash string
	Tile *Tile
}

func NewFetchTileTask(hash string) *FetchTileTask {
	return &FetchTileTask{base: newBase(), Hash: hash}
}
func (*FetchTileTask) kind() taskKind { return kindFetchTile }

// FetchTileSetsTask returns every tile set, default first, with derived
// stats attached.
type FetchTileSetsTask struct {
	base
	Sets []*TileSet
}

func NewFetchTileSetsTask() *FetchTileSetsTask { return &FetchTileSetsTask{base: newBase()} }
func (*FetchTileSetsTask) kind() taskKind      { return kindFetchTileSets }

// CreateTileSetTask plans and persists a new tile set.
type CreateTileSetTask struct {
	base
	Spec TileSetSpec
	Set  *TileSet
}

func NewCreateTileSetTask(spec TileSetSpec) *CreateTileSetTask {
	return &CreateTileSetTask{base: newBase(), Spec: spec}
}
func (*CreateTileSetTask) kind() taskKind { return kindCreateTileSet }

// GetDownloadListTask pulls up to Count pending tiles for a set and marks
// them Downloading.
type GetDownloadListTask struct {
	base
	SetID uint64
	Count int
	Tiles []*DownloadTile
}

func NewGetDownloadListTask(setID uint64, count int) *GetDownloadListTask {
	return &GetDownloadListTask{base: newBase(), SetID: setID, Count: count}
}
func (*GetDownloadListTask) kind() taskKind { return kindGetDownloadList }

// UpdateDownloadStateTask transitions one (or, with Hash == "*", every) row
// of TilesDownload for a set. Complete deletes the row instead of storing
// a state value; it always targets the single row named by Hash, so "*"
// is not expanded for it.
type UpdateDownloadStateTask struct {
	base
	SetID uint64
	Hash  string
	State DownloadState
}

func NewUpdateDownloadStateTask(setID uint64, hash string, state DownloadState) *UpdateDownloadStateTask {
	return &UpdateDownloadStateTask{base: newBase(), SetID: setID, Hash: hash, State: state}
}
func (*UpdateDownloadStateTask) kind() taskKind { return kindUpdateDownloadState }

// DeleteTileSetTask removes a set, its unique tiles, its download rows and
// its membership rows.
type DeleteTileSetTask struct {
	base
	SetID uint64
}

func NewDeleteTileSetTask(setID uint64) *DeleteTileSetTask {
	return &DeleteTileSetTask{base: newBase(), SetID: setID}
}
func (*DeleteTileSetTask) kind() taskKind { return kindDeleteTileSet }

// RenameTileSetTask renames a set in place.
type RenameTileSetTask struct {
	base
	SetID   uint64
	NewName string
}

func NewRenameTileSetTask(setID uint64, newName string) *RenameTileSetTask {
	return &RenameTileSetTask{base: newBase(), SetID: setID, NewName: newName}
}
func (*RenameTileSetTask) kind() taskKind { return kindRenameTileSet }

// PruneCacheTask reclaims the oldest tiles unique to the default set until
// at least Bytes has been freed or the pass's 128 candidate tiles are used
// up, whichever comes first.
type PruneCacheTask struct {
	base
	Bytes int64
}

func NewPruneCacheTask(bytes int64) *PruneCacheTask {
	return &PruneCacheTask{base: newBase(), Bytes: bytes}
}
func (*PruneCacheTask) kind() taskKind { return kindPruneCache }

// ResetTask drops and rebuilds the schema.
type ResetTask struct{ base }

func NewResetTask() *ResetTask  { return &ResetTask{base: newBase()} }
func (*ResetTask) kind() taskKind { return kindReset }

// ExportTask streams the given sets into a fresh database file at Path.
// Progress, if non-nil, is invoked with 0-100 once after each set is
// copied; there is no finer, per-tile progress within a set.
type ExportTask struct {
	base
	Path     string
	Sets     []*TileSet
	Progress func(percent int)
}

func NewExportTask(path string, sets []*TileSet, progress func(int)) *ExportTask {
	return &ExportTask{base: newBase(), Path: path, Sets: sets, Progress: progress}
}
func (*ExportTask) kind() taskKind { return kindExport }

// ImportTask merges (or, if Replace, swaps in wholesale) the database at
// Path. Progress, if non-nil, is invoked with 0-100.
type ImportTask struct {
	base
	Path     string
	Replace  bool
	Progress func(percent int)
}

func NewImportTask(path string, replace bool, progress func(int)) *ImportTask {
	return &ImportTask{base: newBase(), Path: path, Replace: replace, Progress: progress}
}
func (*ImportTask) kind() taskKind { return kindImport }
