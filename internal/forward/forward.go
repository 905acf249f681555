// internal/forward/forward.go
package forward

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/status"
)

// Result is one decoded input record handed to consumers.
type Result struct {
	Record record.InputRecord
	// Verify marks the read-back that follows a successful write.
	Verify bool
	At     time.Time
}

// Consumer receives every decoded input record.
// A consumer error is reported by the loop and never stops it.
type Consumer interface {
	Consume(ctx context.Context, res Result) error
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(ctx context.Context, res Result) error

func (f ConsumerFunc) Consume(ctx context.Context, res Result) error {
	return f(ctx, res)
}

// StatusSink is the delivery-only contract for exchange status.
// It receives a snapshot and writes it verbatim.
type StatusSink interface {
	WriteStatus(s status.Snapshot) error
}

// Fanout delivers to every consumer in order and joins their errors.
type Fanout []Consumer

func (f Fanout) Consume(ctx context.Context, res Result) error {
	var errs []error
	for _, c := range f {
		if err := c.Consume(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
