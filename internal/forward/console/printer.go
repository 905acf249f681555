// Package console prints input records for an operator watching the terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/record"
)

// Printer writes each record in a fixed human readable layout.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Consume(_ context.Context, res forward.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if res.Verify {
		if _, err := fmt.Fprint(p.w, "READ Buffer back from Master:\n"); err != nil {
			return err
		}
	}
	return Print(p.w, res.Record)
}

// Print writes rec to w.
func Print(w io.Writer, rec record.InputRecord) error {
	ts := rec.Timestamp
	h := rec.Header

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("\nDate: %04d-%02d-%02d %02d:%02d:%02d\n",
		ts.Year, ts.Month, ts.Day, ts.Hours, ts.Minutes, ts.Seconds)

	printf("\nIntervals:\n%d %d %d %d\n",
		h.Interval[0], h.Interval[1], h.Interval[2], h.Interval[3])

	printf("\nUnused values:\n%d %d %d %d\n",
		h.Reserved[0], h.Reserved[1], h.Reserved[2], h.Reserved[3])

	printf("\n")
	for v := 0; v < record.ViewCount; v++ {
		printf("Setpoint%d (sp) values:\n", v+1)
		for i, sp := range rec.Setpoint[v] {
			printf("sp%d[%d]: %d\n", v+1, i, sp)
		}
	}
	return err
}
