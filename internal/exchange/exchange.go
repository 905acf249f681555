// internal/exchange/exchange.go
package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/profibus-exchange/internal/control"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/session"
	"github.com/tamzrod/profibus-exchange/internal/status"
)

const (
	DefaultInterval  = 3 * time.Second
	DefaultIOTimeout = 10 * time.Millisecond
)

// Channel is the part of a session the loop drives.
// The loop owns it from New until Run returns, and closes it on every exit path.
type Channel interface {
	Read(timeout time.Duration) ([]byte, error)
	Write(out []byte, timeout time.Duration) error
	Close() error
}

var _ Channel = (*session.Session)(nil)

// Config is the minimal runtime config the loop needs.
type Config struct {
	Interval  time.Duration
	IOTimeout time.Duration
	// Verify reads the input area back after every successful write.
	Verify bool
}

// DefaultConfig returns the reference pacing with verification on.
func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		IOTimeout: DefaultIOTimeout,
		Verify:    true,
	}
}

// Loop is a single-threaded, clock-paced exchange over one channel.
type Loop struct {
	cfg      Config
	ch       Channel
	ctl      control.Source
	consumer forward.Fanout
	sinks    []forward.StatusSink
	tracker  *status.Tracker
	logger   logger.Logger
	now      func() time.Time

	// last successfully decoded record, held only to answer WriteNow
	last  *record.InputRecord
	stats Stats
}

// Option configures a Loop.
type Option func(*Loop)

// WithConsumers adds consumers of decoded records.
func WithConsumers(cs ...forward.Consumer) Option {
	return func(l *Loop) { l.consumer = append(l.consumer, cs...) }
}

// WithStatusSinks adds receivers of status snapshots.
func WithStatusSinks(ss ...forward.StatusSink) Option {
	return func(l *Loop) { l.sinks = append(l.sinks, ss...) }
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loop) { l.logger = lg }
}

// WithTracker sets the status tracker.
func WithTracker(t *status.Tracker) Option {
	return func(l *Loop) { l.tracker = t }
}

// New creates a loop. Zero durations take the defaults.
func New(cfg Config, ch Channel, ctl control.Source, opts ...Option) (*Loop, error) {
	if ch == nil {
		return nil, errors.New("exchange: channel required")
	}
	if ctl == nil {
		return nil, errors.New("exchange: control source required")
	}
	if cfg.Interval < 0 || cfg.IOTimeout < 0 {
		return nil, errors.New("exchange: durations must not be negative")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.IOTimeout == 0 {
		cfg.IOTimeout = DefaultIOTimeout
	}

	l := &Loop{
		cfg: cfg,
		ch:  ch,
		ctl: ctl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.GetLogger()
	}
	l.logger = l.logger.With("component", "exchange")
	if l.tracker == nil {
		l.tracker = status.NewTracker()
	}
	return l, nil
}

// Stats returns the counters so far.
func (l *Loop) Stats() Stats {
	return l.stats
}

// Tick performs exactly one cycle: read, then one control poll.
// It reports false when the loop must end.
// Cycle failures are logged and absorbed.
func (l *Loop) Tick(ctx context.Context) bool {
	l.stats.Cycles++

	if rec, ok := l.read(ctx, false); ok {
		l.last = &rec
	}

	if ctx.Err() != nil {
		return false
	}

	req := l.ctl.Poll()
	switch req.Signal {
	case control.Terminate:
		l.logger.Info("terminate requested")
		return false
	case control.WriteNow:
		l.writeNow(ctx, req.View)
	}
	return true
}

// read performs one read, decode and delivery.
func (l *Loop) read(ctx context.Context, verify bool) (record.InputRecord, bool) {
	buf, err := l.ch.Read(l.cfg.IOTimeout)
	if err != nil {
		l.stats.ReadsFailed++
		l.logger.Warn("read failed", append(failAttrs(err), "verify", verify)...)
		l.publish(l.tracker.Fail(err))
		return record.InputRecord{}, false
	}

	rec, err := record.Decode(buf)
	if err != nil {
		l.stats.ReadsFailed++
		l.logger.Warn("decode failed", "len", len(buf), "error", err)
		l.publish(l.tracker.Fail(err))
		return record.InputRecord{}, false
	}

	if verify {
		l.stats.Verifies++
	} else {
		l.stats.ReadsOK++
		l.publish(l.tracker.OK(rec.Watchdog()))
	}

	l.logger.Debug("record read",
		"verify", verify,
		"watchdog", rec.Watchdog(),
		"state1", rec.StateBits1,
		"state2", rec.StateBits2,
	)

	res := forward.Result{Record: rec, Verify: verify, At: l.now()}
	if err := l.consumer.Consume(ctx, res); err != nil {
		l.logger.Warn("consumer failed", "error", err)
	}
	return rec, true
}

// writeNow derives the output record for view from the last input and writes it.
func (l *Loop) writeNow(ctx context.Context, view int) {
	if l.last == nil {
		l.logger.Warn("write requested before any successful read", "view", view)
		return
	}

	out, err := record.Derive(*l.last, view)
	if err != nil {
		l.logger.Warn("write rejected", "view", view, "error", err)
		return
	}

	buf, err := record.Encode(out)
	if err != nil {
		// codec contract violation, nothing reached the wire
		l.stats.WritesFailed++
		l.logger.Error("encode failed", "view", view, "error", err)
		return
	}

	if err := l.ch.Write(buf, l.cfg.IOTimeout); err != nil {
		l.stats.WritesFailed++
		l.logger.Warn("write failed", append(failAttrs(err), "view", view)...)
		l.publish(l.tracker.Fail(err))
		return
	}
	l.stats.WritesOK++
	l.logger.Info("write ok", "view", view, "state1", out.StateBits1, "state2", out.StateBits2)

	if !l.cfg.Verify {
		return
	}

	back, ok := l.read(ctx, true)
	if !ok {
		return
	}
	if back.StateBits1 != out.StateBits1 || back.StateBits2 != out.StateBits2 {
		l.logger.Warn("read-back state mismatch",
			"sent1", out.StateBits1, "sent2", out.StateBits2,
			"got1", back.StateBits1, "got2", back.StateBits2,
		)
	}
	l.last = &back
}

// publish delivers a changed status snapshot to every sink.
func (l *Loop) publish(s status.Snapshot, changed bool) {
	if !changed {
		return
	}
	l.deliver(s)
}

func (l *Loop) deliver(s status.Snapshot) {
	for _, sink := range l.sinks {
		if err := sink.WriteStatus(s); err != nil {
			l.logger.Warn("status write failed", "error", err)
		}
	}
}

// failAttrs renders the driver code and its description for a log line.
func failAttrs(err error) []any {
	attrs := []any{"error", err}

	var se *session.Error
	if errors.As(err, &se) {
		attrs = append(attrs, "code", se.Code.String(), "desc", se.Description)
	}
	return attrs
}
