package worker

import (
	"context"
	"log/slog"
	"time"
)

// DirectoryRefresher defines the interface for refreshing the CVM
// registrant directory.
type DirectoryRefresher interface {
	RefreshDirectory(ctx context.Context) error
}

// DirectoryWorker periodically refreshes the brokerage registrant directory.
type DirectoryWorker struct {
	refresher DirectoryRefresher
	interval  time.Duration
}

// NewDirectoryWorker creates a new DirectoryWorker.
func NewDirectoryWorker(refresher DirectoryRefresher, interval time.Duration) *DirectoryWorker {
	return &DirectoryWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *DirectoryWorker) Run(ctx context.Context) {
	slog.Info("DirectoryWorker: starting")

	// Refresh immediately on startup
	if err := w.refresher.RefreshDirectory(ctx); err != nil {
		slog.Error("DirectoryWorker: initial refresh failed", "error", err)
	} else {
		slog.Info("DirectoryWorker: initial refresh completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("DirectoryWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.refresher.RefreshDirectory(ctx); err != nil {
				slog.Error("DirectoryWorker: refresh failed", "error", err)
			} else {
				slog.Info("DirectoryWorker: refresh completed")
			}
		}
	}
}
