package cli

import (
	"context"
	"sync"
	"time"

	"stillreel/logger"
)

const cleanupInterval = 24 * time.Hour

type cleaner interface {
	CleanupOlderThan(maxAge time.Duration) (int, error)
}

// startCleanup runs cleanupRoutine in the background. The returned stop
// cancels it and blocks until it has returned.
func startCleanup(ctx context.Context, store cleaner, maxAge time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cleanupRoutine(ctx, store, maxAge)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

// cleanupRoutine prunes run history older than maxAge once at start and then
// every 24 hours. A zero maxAge keeps history forever.
func cleanupRoutine(ctx context.Context, store cleaner, maxAge time.Duration) {
	if maxAge <= 0 {
		logger.Info("History retention disabled, cleanup routine not started")
		return
	}
	logger.Infof("Cleanup routine started, keeping %v of history", maxAge)
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		runCleanup(store, maxAge)
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
		}
	}
}

func runCleanup(store cleaner, maxAge time.Duration) {
	logger.Debugf("Cleaning up run records older than %v", maxAge)
	removed, err := store.CleanupOlderThan(maxAge)
	if err != nil {
		logger.Errorf("Failed to cleanup old run records: %v", err)
		return
	}
	logger.Infof("Cleanup removed %d run records", removed)
}
