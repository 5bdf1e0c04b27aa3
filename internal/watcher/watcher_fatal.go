package watcher

// fatal shuts the watcher down after an unrecoverable error and reports it
// once. Errors after Stop are swallowed.
func (w *Watcher) fatal(err error) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.cancelPending()
	onError := w.onError
	w.mu.Unlock()

	w.log.Error("watcher stopped", "err", err)
	if onError != nil {
		onError(err)
	}
	w.fsw.Close() //nolint:errcheck // already failing
	return err
}
