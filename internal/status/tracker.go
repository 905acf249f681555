// internal/status/tracker.go
package status

import (
	"errors"
	"math"
	"sync"
	"time"
)

// Tracker derives the exchange status from per-cycle outcomes.
//
// Health moves to OK on a successful cycle and to Error on a failed one.
// Ticks without reads leave it untouched.
// SecondsInError counts from the first failure of the current error run and
// saturates at 65535. A successful cycle resets both the error code and the counter.
type Tracker struct {
	mu         sync.Mutex
	snap       Snapshot
	errorSince time.Time
	seen       bool
	now        func() time.Time
}

// NewTracker returns a tracker in the Unknown state.
func NewTracker() *Tracker {
	return &Tracker{
		snap: Snapshot{Health: HealthUnknown},
		now:  time.Now,
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// OK records a successful cycle read carrying watchdog wd.
// A watchdog that did not move since the previous good cycle marks the exchange stale.
func (t *Tracker) OK(wd uint16) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.snap
	t.snap.Cycles++

	t.snap.Health = HealthOK
	if t.seen && wd == t.snap.Watchdog {
		t.snap.Health = HealthStale
	}
	t.snap.LastErrorCode = 0
	t.snap.SecondsInError = 0
	t.snap.Watchdog = wd
	t.seen = true
	t.errorSince = time.Time{}

	return t.snap, changed(prev, t.snap)
}

// Fail records a failed cycle.
func (t *Tracker) Fail(err error) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.snap
	t.snap.Cycles++

	now := t.now()
	if t.errorSince.IsZero() {
		t.errorSince = now
	}
	t.snap.Health = HealthError
	t.snap.LastErrorCode = ErrorCode(err)
	t.snap.SecondsInError = saturate(now.Sub(t.errorSince))

	return t.snap, changed(prev, t.snap)
}

// Disable marks the exchange closed.
func (t *Tracker) Disable() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Health = HealthDisabled
	return t.snap
}

// changed ignores the cycle counter so that a steady state does not cause writes.
func changed(a, b Snapshot) bool {
	a.Cycles, b.Cycles = 0, 0
	return a != b
}

func saturate(d time.Duration) uint16 {
	s := d / time.Second
	if s < 0 {
		return 0
	}
	if s > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(s)
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		if c := b.ErrorCode(); c != 0 {
			return c
		}
	}

	return 1
}
