package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/logging"
)

// Watcher polls the storage_changes row and republishes writes made by other
// processes on its Hub.
type Watcher struct {
	*Hub

	db       *sql.DB
	origin   string
	interval time.Duration
	logger   logging.Logger

	last int64
}

// NewWatcher creates a watcher for the context identified by origin; changes
// recorded with that origin are not republished.
func NewWatcher(db *sql.DB, origin string, interval time.Duration, logger logging.Logger) *Watcher {
	return &Watcher{
		Hub:      NewHub(),
		db:       db,
		origin:   origin,
		interval: interval,
		logger:   logger,
		last:     -1,
	}
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	if _, err := w.Poll(ctx); err != nil {
		w.logger.Warn(ctx, "storage watcher baseline failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn(ctx, "storage watcher poll failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Poll checks the change row once and reports whether a change was published.
// The first successful poll only records a baseline.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	var (
		revision int64
		origin   string
		keys     string
	)
	err := w.db.QueryRowContext(ctx,
		`SELECT revision, origin, keys FROM storage_changes WHERE id = 1`,
	).Scan(&revision, &origin, &keys)
	if errors.Is(err, sql.ErrNoRows) {
		revision, err = 0, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read storage changes: %w", err)
	}

	prev := w.last
	w.last = revision
	if prev < 0 || revision == prev {
		return false, nil
	}

	c := Change{Origin: origin, Revision: revision}
	if keys != "" {
		c.Keys = strings.Split(keys, ",")
	}

	if origin == w.origin {
		if revision-prev == 1 {
			return false, nil
		}
		// several writes happened since the last poll and some of them may be
		// foreign; the writer is unknown
		c.Origin = ""
		c.Keys = nil
	}

	w.Publish(c)
	return true, nil
}
