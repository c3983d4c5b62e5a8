// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

// CounterReconciler periodically recomputes the cached scan counters on
// qr_codes from the scan_events log. Counter updates on the scan path
// are best-effort, so drift accumulates whenever an increment fails
// after a recorded event; this job repairs it.
type CounterReconciler struct {
	db       *gorm.DB
	logger   *log.Logger
	interval time.Duration
	// lookback bounds the repair window so each pass only touches
	// codes scanned recently.
	lookback time.Duration
}

func NewCounterReconciler(db *gorm.DB, logger *log.Logger, interval, lookback time.Duration) *CounterReconciler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CounterReconciler{
		db:       db,
		logger:   logger,
		interval: interval,
		lookback: lookback,
	}
}

// Start launches the reconciliation loop in a background goroutine and
// returns a stop function
func (r *CounterReconciler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (r *CounterReconciler) runOnce(ctx context.Context) {
	start := time.Now()
	since := time.Now().UTC().Add(-r.lookback)

	// One statement repairs every code with recent activity. Unique
	// counts are re-derived from the is_unique flags on the log.
	res := r.db.WithContext(ctx).Exec(`
		UPDATE qr_codes q
		SET total_scans  = agg.total,
		    unique_scans = agg.uniq,
		    last_scan_at = agg.last_at
		FROM (
			SELECT qr_code_id,
			       COUNT(*)                         AS total,
			       COUNT(*) FILTER (WHERE is_unique) AS uniq,
			       MAX(scanned_at)                  AS last_at
			FROM scan_events
			WHERE qr_code_id IN (
				SELECT DISTINCT qr_code_id FROM scan_events WHERE scanned_at >= ?
			)
			GROUP BY qr_code_id
		) agg
		WHERE q.id = agg.qr_code_id
		  AND (q.total_scans <> agg.total OR q.unique_scans <> agg.uniq)
	`, since)

	if res.Error != nil {
		r.logger.Printf("reconciler: counter repair failed: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		r.logger.Printf("reconciler: repaired counters on %d qr codes in %s", res.RowsAffected, time.Since(start).Round(time.Millisecond))
	}
}
