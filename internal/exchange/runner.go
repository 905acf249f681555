// internal/exchange/runner.go
package exchange

import (
	"context"
	"time"
)

// Run ticks until terminated and returns the run counters.
// One goroutine. No overlap. No retries beyond the next tick.
// The channel is closed on every exit path, panics included.
// Context cancellation counts as Terminate.
func (l *Loop) Run(ctx context.Context) (stats Stats, err error) {
	defer func() {
		l.deliver(l.tracker.Disable())
		if cerr := l.ch.Close(); cerr != nil {
			l.logger.Warn("channel close failed", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
		stats = l.stats
	}()

	// Full block write on start (identity re-assert).
	l.deliver(l.tracker.Snapshot())

	// The wait starts after each tick, so a slow tick never shortens the next gap.
	wait := time.NewTimer(l.cfg.Interval)
	defer wait.Stop()

	for {
		if !l.Tick(ctx) {
			return l.stats, nil
		}

		wait.Reset(l.cfg.Interval)
		select {
		case <-ctx.Done():
			l.logger.Info("context done", "cause", context.Cause(ctx))
			return l.stats, nil
		case <-wait.C:
		}
	}
}
