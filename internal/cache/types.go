package cache

import "github.com/avery/tilecache/internal/provider"

// DownloadState mirrors TilesDownload.state. Complete is represented by row
// absence rather than a stored value; it exists here only so callers can
// request the transition.
type DownloadState int

const (
	StatePending DownloadState = iota
	StateDownloading
	StateComplete
	StateError
)

// Tile is a detached descriptor handed to a foreground caller. It has no
// further tie to the worker-owned database connection.
type Tile struct {
	ID     int64
	Hash   string
	Format string
	Bytes  []byte
	Size   int64
	Type   int
	Date   int64
}

// BoundingBox is re-exported for callers that only import the cache package.
type BoundingBox = provider.BoundingBox

// TileSetSpec is the plan a caller submits to CreateTileSet: a bounding box,
// a zoom range and a provider.
type TileSetSpec struct {
	Name         string
	TypeStr      string
	Box          BoundingBox
	MinZoom      int
	MaxZoom      int
	ProviderType provider.Type
}

// TileSet is a detached, derived-stats-attached descriptor returned by
// FetchTileSets and CreateTileSet. Stats (Saved/Total/Unique counts and
// sizes) are computed fresh on every fetch; they are never persisted.
type TileSet struct {
	ID             uint64
	Name           string
	TypeStr        string
	Box            BoundingBox
	MinZoom        int
	MaxZoom        int
	ProviderType   int
	NumTiles       uint64
	DefaultSet     bool
	Date           int64

	SavedCount  uint64
	SavedSize   uint64
	TotalCount  uint64
	TotalSize   uint64
	UniqueCount uint64
	UniqueSize  uint64
}

// DownloadTile is one pending/in-flight row of TilesDownload handed to a
// caller by GetDownloadList.
type DownloadTile struct {
	Hash         string
	ProviderType int
	X, Y, Z      int
}
