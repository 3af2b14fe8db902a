package watcher

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/kbsearch/internal/index"
)

// ReloadFunc rebuilds the index and returns the new snapshot.
type ReloadFunc func() *index.Index

// RunReloader calls reload once for every batch received on events until ctx
// is cancelled or events is closed. It returns the number of reloads performed.
func RunReloader(ctx context.Context, events <-chan []FileEvent, reload ReloadFunc, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}

	reloads := 0
	for {
		select {
		case <-ctx.Done():
			return reloads
		case batch, ok := <-events:
			if !ok {
				return reloads
			}
			ix := reload()
			reloads++

			attrs := []any{slog.Int("changed_files", len(batch))}
			if len(batch) > 0 {
				attrs = append(attrs,
					slog.String("first_path", batch[0].Path),
					slog.String("first_op", batch[0].Operation.String()))
			}
			if ix != nil {
				attrs = append(attrs,
					slog.Uint64("generation", ix.Generation()),
					slog.Int("chunks", ix.Len()))
			}
			logger.Info("watch_reload", attrs...)
		}
	}
}
