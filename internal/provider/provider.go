// Package provider stands in for the HTTP tile downloader, URL-hashing and
// provider catalog that §1 of the spec places out of scope. The tile-set
// engine only needs two things from that collaborator: a way to enumerate
// the tile grid covered by a bounding box at a given zoom, and a canonical
// hash identifying a (provider, x, y, z) tile. This package supplies both
// behind the URLEngine interface so the cache engine never depends on a
// concrete downloader.
package provider

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Type identifies a map tile provider.
type Type string

const (
	OSM    Type = "osm"
	Bing   Type = "bing"
	Google Type = "google"
	Custom Type = "custom"
)

// BoundingBox is a lat/lon rectangle, matching TileSets.topleftLat/Lon and
// bottomRightLat/Lon.
type BoundingBox struct {
	TopLeftLat     float64
	TopLeftLon     float64
	BottomRightLat float64
	BottomRightLon float64
}

// URLEngine is the seam a real provider-catalog/URL-hashing implementation
// plugs into. The default SlippyEngine below is sufficient to exercise the
// full tile-set lifecycle without any network access.
type URLEngine interface {
	// TileRange returns the inclusive x/y tile index range covering box at
	// the given zoom level.
	TileRange(zoom int, box BoundingBox) (x0, x1, y0, y1 int)
	// Hash returns the canonical cache key for a single tile.
	Hash(providerType Type, x, y, z int) string
}

// Catalog holds the provider type <-> persisted id mapping and the
// per-provider average tile size baseline used to estimate undownloaded
// set sizes (§4.3 _updateSetTotals).
type Catalog struct {
	typeToID     map[Type]int
	idToType     map[int]Type
	averageBytes map[Type]int64
}

// DefaultCatalog returns the catalog seeded with the well-known providers.
func DefaultCatalog() *Catalog {
	c := &Catalog{
		typeToID:     make(map[Type]int),
		idToType:     make(map[int]Type),
		averageBytes: make(map[Type]int64),
	}
	c.register(OSM, 1, 12*1024)
	c.register(Bing, 2, 18*1024)
	c.register(Google, 3, 18*1024)
	c.register(Custom, 99, 15*1024)
	return c
}

func (c *Catalog) register(t Type, id int, avgBytes int64) {
	c.typeToID[t] = id
	c.idToType[id] = t
	c.averageBytes[t] = avgBytes
}

// IDFromType returns the persisted integer id for a provider type.
func (c *Catalog) IDFromType(t Type) int {
	if id, ok := c.typeToID[t]; ok {
		return id
	}
	return c.typeToID[Custom]
}

// TypeFromID returns the provider type for a persisted integer id.
func (c *Catalog) TypeFromID(id int) Type {
	if t, ok := c.idToType[id]; ok {
		return t
	}
	return Custom
}

// AverageBytes returns the baseline average tile size for a provider,
// overridden by _updateSetTotals once enough real tiles have been saved.
func (c *Catalog) AverageBytes(t Type) int64 {
	if v, ok := c.averageBytes[t]; ok {
		return v
	}
	return c.averageBytes[Custom]
}

// SlippyEngine implements URLEngine using the standard Web Mercator / slippy
// map tile numbering shared by OSM, Bing and Google.
type SlippyEngine struct{}

// NewSlippyEngine constructs the default URLEngine.
func NewSlippyEngine() *SlippyEngine {
	return &SlippyEngine{}
}

func lonToTileX(lon float64, zoom int) int {
	n := math.Exp2(float64(zoom))
	x := (lon + 180.0) / 360.0 * n
	return clampTile(int(math.Floor(x)), zoom)
}

func latToTileY(lat float64, zoom int) int {
	n := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180.0
	y := (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return clampTile(int(math.Floor(y)), zoom)
}

func clampTile(v, zoom int) int {
	max := int(math.Exp2(float64(zoom))) - 1
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// TileRange implements URLEngine.
func (SlippyEngine) TileRange(zoom int, box BoundingBox) (x0, x1, y0, y1 int) {
	x0 = lonToTileX(box.TopLeftLon, zoom)
	x1 = lonToTileX(box.BottomRightLon, zoom)
	y0 = latToTileY(box.TopLeftLat, zoom)
	y1 = latToTileY(box.BottomRightLat, zoom)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return x0, x1, y0, y1
}

// Hash implements URLEngine using an FNV-1a digest of the tile coordinates.
// It is deterministic and collision-resistant enough to stand in for a real
// provider URL hash without needing network access to compute it.
func (SlippyEngine) Hash(providerType Type, x, y, z int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d/%d/%d", providerType, z, x, y)
	return fmt.Sprintf("%016x", h.Sum64())
}
