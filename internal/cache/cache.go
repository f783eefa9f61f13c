package cache

// Do enqueues t on w and blocks until it completes, returning its error.
// It is the synchronous convenience wrapper CLI commands use; the worker
// itself never blocks a caller beyond the single task handed to it.
func Do(w *Worker, t Task) error {
	w.Enqueue(t)
	<-t.Done()
	return t.Err()
}
