package cache

// schema is the full five-relation cache schema (§3). It is intentionally a
// single idempotent block rather than a versioned migration chain: unlike
// the teacher's on-disk audio library state, this schema has never changed
// shape across a release, so there is nothing to migrate between.
const schema = `
CREATE TABLE IF NOT EXISTS Tiles (
	tileID INTEGER PRIMARY KEY AUTOINCREMENT,
	hash   TEXT NOT NULL UNIQUE,
	format TEXT NOT NULL,
	tile   BLOB,
	size   INTEGER,
	type   INTEGER,
	date   INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tiles_hash_size_type ON Tiles(hash, size, type);

CREATE TABLE IF NOT EXISTS TileSets (
	setID          INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL UNIQUE,
	typeStr        TEXT,
	topleftLat     REAL DEFAULT 0.0,
	topleftLon     REAL DEFAULT 0.0,
	bottomRightLat REAL DEFAULT 0.0,
	bottomRightLon REAL DEFAULT 0.0,
	minZoom        INTEGER DEFAULT 3,
	maxZoom        INTEGER DEFAULT 3,
	type           INTEGER DEFAULT -1,
	numTiles       INTEGER DEFAULT 0,
	defaultSet     INTEGER DEFAULT 0,
	date           INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS SetTiles (
	setID  INTEGER,
	tileID INTEGER
);

CREATE INDEX IF NOT EXISTS idx_settiles_tileid ON SetTiles(tileID);
CREATE INDEX IF NOT EXISTS idx_settiles_setid ON SetTiles(setID);

CREATE TABLE IF NOT EXISTS TilesDownload (
	setID  INTEGER,
	hash   TEXT NOT NULL UNIQUE,
	type   INTEGER,
	x      INTEGER,
	y      INTEGER,
	z      INTEGER,
	state  INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_tilesdownload_set_state ON TilesDownload(setID, state);

CREATE TABLE IF NOT EXISTS Settings (
	key   TEXT PRIMARY KEY,
	value TEXT
);
`

const defaultSetName = "Default Tile Set"

const settingBogusCleanupDone = "bogus_tile_cleanup_done"
