package cache

import "time"

// retryConfig controls the exponential backoff used when opening the cache
// database, adapted from the teacher's generic retry helper to the one
// transient failure this package actually sees: a schema-creation failure
// deletes the half-written file and is worth one immediate retry before it
// is treated as fatal.
type retryConfig struct {
	maxAttempts int
	initialWait time.Duration
	maxWait     time.Duration
}

func defaultRetryConfig() retryConfig {
	return retryConfig{maxAttempts: 2, initialWait: 50 * time.Millisecond, maxWait: time.Second}
}

// retry runs operation up to cfg.maxAttempts times, doubling the wait after
// each failure, and returns the last error if every attempt fails.
func retry(cfg retryConfig, operation func() error) error {
	wait := cfg.initialWait
	var err error
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if attempt == cfg.maxAttempts {
			return err
		}
		time.Sleep(wait)
		wait *= 2
		if wait > cfg.maxWait {
			wait = cfg.maxWait
		}
	}
	return err
}
