package provider

import "testing"

func TestCatalogRoundTrip(t *testing.T) {
	c := DefaultCatalog()

	for _, typ := range []Type{OSM, Bing, Google, Custom} {
		id := c.IDFromType(typ)
		if got := c.TypeFromID(id); got != typ {
			t.Errorf("TypeFromID(%d) = %q, want %q", id, got, typ)
		}
		if c.AverageBytes(typ) <= 0 {
			t.Errorf("AverageBytes(%q) <= 0", typ)
		}
	}
}

func TestCatalogUnknownFallsBackToCustom(t *testing.T) {
	c := DefaultCatalog()

	if id := c.IDFromType(Type("unknown")); id != c.IDFromType(Custom) {
		t.Errorf("IDFromType(unknown) = %d, want custom id %d", id, c.IDFromType(Custom))
	}
	if typ := c.TypeFromID(12345); typ != Custom {
		t.Errorf("TypeFromID(12345) = %q, want custom", typ)
	}
}

func TestSlippyEngineTileRangeOrdering(t *testing.T) {
	e := NewSlippyEngine()
	box := BoundingBox{TopLeftLat: 10, TopLeftLon: -10, BottomRightLat: -10, BottomRightLon: 10}

	x0, x1, y0, y1 := e.TileRange(4, box)
	if x0 > x1 {
		t.Errorf("x0 (%d) > x1 (%d)", x0, x1)
	}
	if y0 > y1 {
		t.Errorf("y0 (%d) > y1 (%d)", y0, y1)
	}
}

func TestSlippyEngineTileRangeClampsToValidRange(t *testing.T) {
	e := NewSlippyEngine()
	box := BoundingBox{TopLeftLat: 89, TopLeftLon: -179, BottomRightLat: -89, BottomRightLon: 179}

	zoom := 3
	max := (1 << uint(zoom)) - 1

	x0, x1, y0, y1 := e.TileRange(zoom, box)
	for _, v := range []int{x0, x1, y0, y1} {
		if v < 0 || v > max {
			t.Errorf("tile index %d out of range [0, %d]", v, max)
		}
	}
}

func TestSlippyEngineHashIsDeterministicAndDistinct(t *testing.T) {
	e := NewSlippyEngine()

	h1 := e.Hash(OSM, 1, 2, 3)
	h2 := e.Hash(OSM, 1, 2, 3)
	if h1 != h2 {
		t.Errorf("Hash is not deterministic: %q != %q", h1, h2)
	}

	if e.Hash(OSM, 1, 2, 3) == e.Hash(Bing, 1, 2, 3) {
		t.Error("Hash collided across providers for the same coordinates")
	}
	if e.Hash(OSM, 1, 2, 3) == e.Hash(OSM, 1, 2, 4) {
		t.Error("Hash collided across zoom levels")
	}
}
