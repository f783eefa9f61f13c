package main

import (
	"github.com/avery/tilecache/internal/cache"
)

// newWorker builds a Worker against the resolved database path. Each CLI
// invocation owns exactly one worker for the lifetime of the command and
// never calls Stop; the process exits as soon as the command's task
// completes, before the worker's idle timeout would close the database.
func newWorker() *cache.Worker {
	return cache.New(cache.Config{
		DatabasePath: databasePath(),
	})
}
