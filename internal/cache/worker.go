// Package cache implements the persistent, disk-backed map-tile cache and
// tile-set manager: a single-consumer task queue drained by one background
// worker, a SQLite database façade, the tile-set engine, the import/export
// engine and maintenance (§2 of the spec).
package cache

import (
	"database/sql"
	"sync"
	"time"

	"github.com/avery/tilecache/internal/logx"
	"github.com/avery/tilecache/internal/provider"
)

const (
	defaultShortTimeout = 1500 * time.Millisecond
	defaultLongTimeout  = 4000 * time.Millisecond
	idleTimeout         = 5 * time.Second
	shortQueueDepth     = 25
	longQueueDepth      = 100
)

// Config configures a Worker.
type Config struct {
	// DatabasePath is the path to the cache's SQLite file. Required.
	DatabasePath string

	// URLEngine computes tile hashes and tile-grid ranges. Defaults to
	// provider.NewSlippyEngine() (standard Web Mercator tile numbering).
	URLEngine provider.URLEngine

	// Catalog maps provider type <-> persisted id and average tile size.
	// Defaults to provider.DefaultCatalog().
	Catalog *provider.Catalog

	// BogusTileBytes is a known-bad "no data at this zoom" tile blob. When
	// non-nil, the worker deletes every Tiles row whose bytes match it,
	// once per installation (§4.5). Nil disables the cleanup.
	BogusTileBytes []byte

	// ShortTimeout/LongTimeout bound the adaptive totals-refresh timer
	// (§4.1). Zero values take the package defaults.
	ShortTimeout time.Duration
	LongTimeout  time.Duration

	// OnTotals is invoked after every totals recomputation with the four
	// aggregate counters (§6 Events: updateTotals).
	OnTotals func(totalCount, totalSize, defaultCount, defaultSize uint64)
}

func (c *Config) setDefaults() {
	if c.URLEngine == nil {
		c.URLEngine = provider.NewSlippyEngine()
	}
	if c.Catalog == nil {
		c.Catalog = provider.DefaultCatalog()
	}
	if c.ShortTimeout <= 0 {
		c.ShortTimeout = defaultShortTimeout
	}
	if c.LongTimeout <= 0 {
		c.LongTimeout = defaultLongTimeout
	}
}

// Worker is the single-consumer FIFO task queue and its background
// executor. Database access only ever happens on the worker's own
// goroutine; callers only ever touch the typed task descriptors.
type Worker struct {
	cfg Config

	mu      sync.Mutex
	queue   []Task
	wake    chan struct{}
	running bool

	db     *sql.DB
	valid  bool
	failed bool

	defaultSetIDCache *uint64

	totalCount, totalSize     uint64
	defaultCount, defaultSize uint64

	updateThreshold time.Duration
	lastUpdate      time.Time
	updateStarted   bool
}

// New constructs a Worker. The worker does not start until the first task
// is enqueued.
func New(cfg Config) *Worker {
	cfg.setDefaults()
	return &Worker{
		cfg:             cfg,
		wake:            make(chan struct{}, 1),
		updateThreshold: cfg.ShortTimeout,
	}
}

// Enqueue adds a task to the FIFO and starts the worker if it is not
// running. It returns false (completing the task immediately with
// ErrDatabaseNotInitialized) if the worker previously failed to initialize
// and the task is not an InitTask.
func (w *Worker) Enqueue(t Task) bool {
	w.mu.Lock()
	if w.failed && t.kind() != kindInit {
		w.mu.Unlock()
		t.setErr(ErrDatabaseNotInitialized)
		t.(interface{ complete() }).complete()
		return false
	}

	w.queue = append(w.queue, t)
	wasRunning := w.running
	if !wasRunning {
		w.running = true
	}
	w.mu.Unlock()

	if wasRunning {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	} else {
		go w.run()
	}

	return true
}

// Stop discards every queued, unstarted task without completing it (the
// caller must not be waiting synchronously on Done() across a Stop) and
// signals the worker to exit on its next wake. An in-flight task runs to
// completion.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.queue = nil
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.mu.Unlock()
			select {
			case <-w.wake:
				// Stop leaves the queue nil. A leftover Enqueue signal whose
				// task was already taken finds it empty but non-nil and only
				// resumes the wait.
				w.mu.Lock()
				stopped := w.queue == nil
				if stopped {
					w.running = false
					w.shutdown()
				}
				w.mu.Unlock()
				if stopped {
					return
				}
				continue
			case <-time.After(idleTimeout):
				w.mu.Lock()
				if len(w.queue) == 0 {
					w.running = false
					w.shutdown()
					w.mu.Unlock()
					return
				}
				w.mu.Unlock()
				continue
			}
		}

		task := w.queue[0]
		w.queue = w.queue[1:]
		depth := len(w.queue)
		w.mu.Unlock()

		w.ensureInitialized(task)
		w.dispatch(task)
		task.(interface{ complete() }).complete()

		if depth > longQueueDepth {
			w.updateThreshold = w.cfg.LongTimeout
		} else if depth < shortQueueDepth {
			w.updateThreshold = w.cfg.ShortTimeout
		}

		if w.valid && (depth == 0 || !w.updateStarted || time.Since(w.lastUpdate) >= w.updateThreshold) {
			w.refreshTotals()
		}
	}
}

func (w *Worker) shutdown() {
	if w.db != nil {
		w.db.Close()
		w.db = nil
	}
	w.valid = false
	logx.Debugf("cache worker idle, database closed")
}

// ensureInitialized opens the database and creates the schema before any
// non-init task runs. A failed open/schema-create is fatal for the
// lifetime of this Worker instance: every subsequent non-init task is
// completed with ErrDatabaseNotInitialized in Enqueue before it ever
// reaches the queue.
func (w *Worker) ensureInitialized(t Task) {
	if w.valid || w.failed {
		return
	}

	var db *sql.DB
	err := retry(defaultRetryConfig(), func() error {
		var openErr error
		db, openErr = openDatabase(w.cfg.DatabasePath)
		if openErr != nil {
			return openErr
		}
		return createSchema(db, w.cfg.DatabasePath, true)
	})
	if err != nil {
		logx.Errorf("init: %v", err)
		w.failed = true
		return
	}

	w.db = db
	w.valid = true
	w.runBogusCleanup()
}

func (w *Worker) dispatch(t Task) {
	if t.kind() != kindInit && !w.valid {
		t.setErr(ErrDatabaseNotInitialized)
		return
	}

	switch task := t.(type) {
	case *InitTask:
		// initialization already happened in ensureInitialized
	case *CacheTileTask:
		w.saveTile(task)
	case *FetchTileTask:
		w.fetchTile(task)
	case *FetchTileSetsTask:
		w.fetchTileSets(task)
	case *CreateTileSetTask:
		w.createTileSet(task)
	case *GetDownloadListTask:
		w.getDownloadList(task)
	case *UpdateDownloadStateTask:
		w.updateDownloadState(task)
	case *DeleteTileSetTask:
		w.deleteTileSetTask(task)
	case *RenameTileSetTask:
		w.renameTileSet(task)
	case *PruneCacheTask:
		w.pruneCache(task)
	case *ResetTask:
		w.resetCache(task)
	case *ExportTask:
		w.exportSets(task)
	case *ImportTask:
		w.importSets(task)
	default:
		logx.Warnf("unhandled task kind %T", t)
	}
}
