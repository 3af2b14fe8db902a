package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new source file appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing source file was written.
	OpModify
	// OpDelete indicates a source file was removed.
	OpDelete
	// OpRename indicates a source file was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is a change to one knowledge source file.
type FileEvent struct {
	// Path is the absolute path of the file.
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// Debounce is the quiet period before a batch is emitted.
	// Default: 500ms
	Debounce time.Duration

	// EventBufferSize is the number of batches buffered on Events.
	// Default: 16
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Debounce:        500 * time.Millisecond,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Debounce <= 0 {
		o.Debounce = d.Debounce
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}

// ErrNoDirectories is returned by Start when none of the directories could be watched.
var ErrNoDirectories = errors.New("watcher: no directories to watch")

// sourceSuffixes are the file names that feed the index.
var sourceSuffixes = []string{".md", ".txt", ".jsonl", ".jsonl.gz"}

// IsSourceFile reports whether path names a file the index reads.
// Hidden files and editor temporaries are excluded.
func IsSourceFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	lower := strings.ToLower(base)
	for _, s := range sourceSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Watcher watches knowledge source directories and emits debounced batches.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger
	events    chan []FileEvent
	stopCh    chan struct{}
	mu        sync.RWMutex
	stopped   bool
	dirs      []string
	dropped   atomic.Uint64
}

// New creates a watcher. Call Start to begin watching.
func New(opts Options, logger *slog.Logger) (*Watcher, error) {
	opts = opts.WithDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.Debounce),
		logger:    logger,
		events:    make(chan []FileEvent, opts.EventBufferSize),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start watches dirs until ctx is cancelled or Stop is called.
// Directories that do not exist are skipped with a warning; Start fails only
// when no directory could be watched.
func (w *Watcher) Start(ctx context.Context, dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve absolute path: %w", err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			w.logger.Warn("watch_dir_missing", slog.String("dir", abs))
			continue
		}
		if err := w.fs.Add(abs); err != nil {
			w.logger.Warn("watch_dir_failed",
				slog.String("dir", abs),
				slog.String("error", err.Error()))
			continue
		}
		w.mu.Lock()
		w.dirs = append(w.dirs, abs)
		w.mu.Unlock()
	}

	if len(w.Dirs()) == 0 {
		_ = w.Stop()
		return ErrNoDirectories
	}

	w.logger.Info("watch_started", slog.Any("dirs", w.Dirs()))

	go w.forward(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// handle converts an fsnotify event and hands it to the debouncer.
func (w *Watcher) handle(ev fsnotify.Event) {
	if !IsSourceFile(ev.Name) {
		return
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpModify
	case ev.Has(fsnotify.Remove):
		op = OpDelete
	case ev.Has(fsnotify.Rename):
		op = OpRename
	default:
		// chmod only
		return
	}

	w.debouncer.Add(FileEvent{Path: ev.Name, Operation: op, Timestamp: time.Now()})
}

func (w *Watcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			if len(batch) > 0 {
				w.emit(batch)
			}
		}
	}
}

func (w *Watcher) emit(batch []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}

	select {
	case w.events <- batch:
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("watch_batch_dropped",
			slog.Int("batch_size", len(batch)),
			slog.Uint64("total_dropped", n))
	}
}

// Events returns the channel of debounced batches. It is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Dirs returns the directories being watched.
func (w *Watcher) Dirs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.dirs...)
}

// DroppedBatches returns the number of batches dropped because Events was full.
func (w *Watcher) DroppedBatches() uint64 {
	return w.dropped.Load()
}

// Stop stops the watcher and releases resources. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	err := w.fs.Close()
	close(w.events)
	return err
}
