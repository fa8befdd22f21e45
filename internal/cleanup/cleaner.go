package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cleaner handles periodic cleanup of spooled document copies. Every
// dashboard download leaves a PDF in the spool directory; the janitor
// removes copies older than the configured age.
type Cleaner struct {
	spoolDir string
	interval time.Duration
	maxAge   time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(spoolDir string, interval, maxAge time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	return &Cleaner{
		spoolDir: spoolDir,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	if c.spoolDir == "" {
		slog.Info("spool cleanup disabled, no spool directory configured")
		return
	}
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "max_age", c.maxAge, "dir", c.spoolDir)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes spooled documents older than maxAge
func (c *Cleaner) cleanup() {
	slog.Debug("running cleanup cycle")

	entries, err := os.ReadDir(c.spoolDir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("spool directory not created yet")
			return
		}
		slog.Error("failed to read spool directory", "error", err)
		return
	}

	cutoff := time.Now().Add(-c.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Error("failed to stat spooled document", "error", err, "name", entry.Name())
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(c.spoolDir, entry.Name())); err != nil {
			slog.Error("failed to remove spooled document", "error", err, "name", entry.Name())
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("removed expired spooled documents", "count", removed)
	}
}
