// Package control carries operator commands to the exchange loop.
//
// Producers (a line reader or the interactive shell) push requests onto a Queue.
// The loop polls the queue once per tick without blocking.
package control

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tamzrod/profibus-exchange/internal/record"
)

// Signal is an operator command.
type Signal int

const (
	// Continue is the default when no command is pending.
	Continue Signal = iota
	// Read starts the read cycle. Inside a running loop it behaves like Continue.
	Read
	// WriteNow writes the last result for the requested view.
	WriteNow
	// Terminate ends the loop.
	Terminate
)

func (s Signal) String() string {
	switch s {
	case Continue:
		return "continue"
	case Read:
		return "read"
	case WriteNow:
		return "write"
	case Terminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Request is one command. View is set for WriteNow only (1..4).
type Request struct {
	Signal Signal
	View   int
}

// Source is polled once per tick by the exchange loop.
type Source interface {
	// Poll returns the next pending request, or Continue when none is pending. It never blocks.
	Poll() Request
}

// Escape is the key that terminates like q.
const Escape = "\x1b"

var (
	// ErrUnknownCommand indicates an unrecognized command line.
	ErrUnknownCommand = errors.New("control: unknown command")

	// ErrViewRequired indicates a write command without a view.
	ErrViewRequired = errors.New("control: view required")
)

// Parse converts one command line.
//
//	r          read
//	w [view]   write, view 1..4; ErrViewRequired when omitted
//	q, ESC     terminate
func Parse(line string) (Request, error) {
	if strings.HasPrefix(line, Escape) {
		return Request{Signal: Terminate}, nil
	}

	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Request{Signal: Continue}, nil
	}

	switch fields[0] {
	case "r":
		return Request{Signal: Read}, nil
	case "q":
		return Request{Signal: Terminate}, nil
	case "w":
		if len(fields) < 2 {
			return Request{Signal: WriteNow}, ErrViewRequired
		}
		view, err := ParseView(fields[1])
		if err != nil {
			return Request{}, err
		}
		return Request{Signal: WriteNow, View: view}, nil
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

// ParseView parses a view number in 1..4.
func ParseView(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 || v > record.ViewCount {
		return 0, fmt.Errorf("%w: %q", record.ErrInvalidView, raw)
	}
	return v, nil
}

// ---- queue ----

// Queue is a buffered request channel.
//
// Terminate never occupies a slot: it is latched and reported once every
// request pushed before it has been taken, and on every poll after that.
type Queue struct {
	ch   chan Request
	done chan struct{}
	once sync.Once
}

// NewQueue creates a queue holding up to size pending requests.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{
		ch:   make(chan Request, size),
		done: make(chan struct{}),
	}
}

// Push enqueues r. It reports false when the queue is full and r was dropped.
// Terminate is always accepted.
func (q *Queue) Push(r Request) bool {
	if r.Signal == Terminate {
		q.once.Do(func() { close(q.done) })
		return true
	}
	select {
	case q.ch <- r:
		return true
	default:
		return false
	}
}

func (q *Queue) terminated() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Poll implements Source.
func (q *Queue) Poll() Request {
	select {
	case r := <-q.ch:
		return r
	default:
	}
	if q.terminated() {
		return Request{Signal: Terminate}
	}
	return Request{Signal: Continue}
}

// Wait blocks until a request arrives. Context cancellation yields Terminate.
func (q *Queue) Wait(ctx context.Context) Request {
	select {
	case r := <-q.ch:
		return r
	default:
	}
	select {
	case r := <-q.ch:
		return r
	case <-q.done:
		return Request{Signal: Terminate}
	case <-ctx.Done():
		return Request{Signal: Terminate}
	}
}

// AwaitStart blocks until the operator begins the read cycle.
// It reports false when the operator terminated first or ctx ended.
// Write requests before the start have nothing to write and are dropped.
func (q *Queue) AwaitStart(ctx context.Context) bool {
	for {
		switch q.Wait(ctx).Signal {
		case Read:
			return true
		case Terminate:
			return false
		}
	}
}
