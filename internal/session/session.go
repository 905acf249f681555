// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
)

// Driver is the subset of the driver a session needs.
type Driver interface {
	OpenChannel(board string, ch uint32) (cifx.Handle, error)
	CloseChannel(ch cifx.Handle) error
	SetHostState(ch cifx.Handle, state uint32, timeout time.Duration) error
	SetBusState(ch cifx.Handle, state uint32, timeout time.Duration) error
	Read(ch cifx.Handle, area, offset uint32, buf []byte, timeout time.Duration) error
	Write(ch cifx.Handle, area, offset uint32, buf []byte, timeout time.Duration) error
	Describe(code cifx.Code) string
}

var _ Driver = (*cifx.Driver)(nil)

// DefaultStateTimeout bounds each negotiation step.
const DefaultStateTimeout = 1000 * time.Millisecond

// Config is the immutable session config.
type Config struct {
	Channel      uint32
	Area         uint32
	StateTimeout time.Duration
}

// Session owns one communication channel.
//
// The channel handle is exclusively owned by the session and is released by Close,
// which is safe from any state and any number of times.
// Only Open and Negotiate change the state forward; no step is retried here.
type Session struct {
	mu       sync.Mutex
	drv      Driver
	cfg      Config
	state    atomic.Uint32
	board    string
	handle   cifx.Handle
	logger   logger.Logger
	handlers []StateChangeHandler
}

// New creates a session in the Closed state.
func New(drv Driver, cfg Config, l logger.Logger, handlers ...StateChangeHandler) *Session {
	if cfg.StateTimeout <= 0 {
		cfg.StateTimeout = DefaultStateTimeout
	}
	if l == nil {
		l = logger.GetLogger()
	}

	s := &Session{
		drv:    drv,
		cfg:    cfg,
		logger: l.With("component", "session"),
	}
	s.handlers = append(s.handlers, handlers...)
	s.state.Store(uint32(Closed))
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Board returns the board the session was opened on.
func (s *Session) Board() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// AddHandler adds state change handlers.
func (s *Session) AddHandler(handlers ...StateChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handlers...)
}

// ---- lifecycle ----

// Open requests a channel handle on the named board.
// On failure the session stays Closed.
func (s *Session) Open(board string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.State(); cur != Closed {
		return fmt.Errorf("open from %s: %w", cur, ErrInvalidTransition)
	}

	h, err := s.drv.OpenChannel(board, s.cfg.Channel)
	if err != nil {
		e := newError(ErrOpenFailed, PhaseOpen, err)
		s.logger.Error("channel open failed", "board", board, "channel", s.cfg.Channel,
			"code", e.Code.String(), "desc", e.Description)
		return e
	}
	if h == 0 {
		e := newError(ErrOpenFailed, PhaseOpen, ErrInvalidHandle)
		e.Code = cifx.InvalidHandle
		e.Description = s.drv.Describe(e.Code)
		s.logger.Error("channel open returned invalid handle", "board", board, "channel", s.cfg.Channel,
			"code", e.Code.String(), "desc", e.Description)
		return e
	}

	s.board = board
	s.handle = h
	s.setState(Opened)
	s.logger.Info("channel opened", "board", board, "channel", s.cfg.Channel)
	return nil
}

// Negotiate sets host state Ready, then bus state On.
// Either step failing closes the handle and returns the session to Closed.
func (s *Session) Negotiate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.State(); cur != Opened {
		return fmt.Errorf("negotiate from %s: %w", cur, ErrInvalidTransition)
	}

	s.logger.Info("setting host state", "state", "ready", "timeout", s.cfg.StateTimeout)
	if err := s.drv.SetHostState(s.handle, cifx.HostStateReady, s.cfg.StateTimeout); err != nil {
		return s.abort(newError(ErrNegotiationFailed, PhaseHostState, err))
	}
	s.setState(HostReady)

	s.logger.Info("setting bus state", "state", "on", "timeout", s.cfg.StateTimeout)
	if err := s.drv.SetBusState(s.handle, cifx.BusStateOn, s.cfg.StateTimeout); err != nil {
		return s.abort(newError(ErrNegotiationFailed, PhaseBusState, err))
	}
	s.setState(BusOn)

	return nil
}

// abort releases the handle after a negotiation failure. Caller holds mu.
func (s *Session) abort(e *Error) error {
	s.logger.Error("negotiation failed", "phase", e.Phase.String(),
		"code", e.Code.String(), "desc", e.Description)
	s.release()
	return e
}

// Close releases the channel handle. Safe to call from any state, more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.release()
}

// release closes the handle if held and moves to Closed. Caller holds mu.
func (s *Session) release() error {
	if s.handle == 0 {
		s.setState(Closed)
		return nil
	}

	err := s.drv.CloseChannel(s.handle)
	s.handle = 0
	s.setState(Closed)

	if err != nil {
		s.logger.Warn("channel close reported error", "board", s.board, "error", err)
		return err
	}
	s.logger.Info("channel closed", "board", s.board)
	return nil
}

// ---- cyclic I/O ----

// Read performs one bounded read of the full input area.
// A failure leaves state and handle untouched.
func (s *Session) Read(timeout time.Duration) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.State().CanExchange() {
		return nil, ErrNotActive
	}

	buf := make([]byte, record.InputAreaSize)
	if err := s.drv.Read(s.handle, s.cfg.Area, 0, buf, timeout); err != nil {
		return nil, newError(ErrReadFailed, PhaseRead, err)
	}

	if s.State() == BusOn {
		s.setState(Active)
	}
	return buf, nil
}

// Write performs one bounded write of the output area.
// Buffers longer than the output area are rejected before any driver call;
// shorter ones are zero padded.
func (s *Session) Write(out []byte, timeout time.Duration) error {
	if len(out) > record.OutputAreaSize {
		return fmt.Errorf("session: write of %d bytes: %w", len(out), record.ErrBufferOverflow)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.State().CanExchange() {
		return ErrNotActive
	}

	buf := make([]byte, record.OutputAreaSize)
	copy(buf, out)
	if err := s.drv.Write(s.handle, s.cfg.Area, 0, buf, timeout); err != nil {
		return newError(ErrWriteFailed, PhaseWrite, err)
	}
	return nil
}

// ---- state ----

// setState stores the new state and notifies handlers. Caller holds mu.
func (s *Session) setState(next State) {
	prev := State(s.state.Swap(uint32(next)))
	if prev == next {
		return
	}

	s.logger.Debug("state change", "prev", prev.String(), "next", next.String())
	for _, h := range s.handlers {
		if h != nil {
			h(prev, next)
		}
	}
}

// IsLifecycleError reports whether err ends the session (open or negotiation failure).
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrOpenFailed) || errors.Is(err, ErrNegotiationFailed)
}
