// Package watcher reloads the knowledge base when its source directories change.
//
// A [Watcher] subscribes to the document and pack directories with fsnotify,
// drops events for files that are not knowledge sources, and coalesces bursts
// through a [Debouncer]. Each debounced batch is delivered on [Watcher.Events].
// [RunReloader] consumes those batches and rebuilds the index once per batch.
//
// Usage:
//
//	w, err := watcher.New(watcher.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx, kbDir, packsDir) }()
//	watcher.RunReloader(ctx, w.Events(), engine.Reload, logger)
package watcher
