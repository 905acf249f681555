// internal/exchange/exchange_test.go
package exchange

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
	"github.com/tamzrod/profibus-exchange/internal/control"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/session"
	"github.com/tamzrod/profibus-exchange/internal/status"
)

type fakeChannel struct {
	input    record.InputRecord
	readErr  error
	writeErr error
	panicMsg string
	delay    time.Duration

	readAt []time.Time
	reads  int
	writes [][]byte
	closes int
}

func (f *fakeChannel) Read(time.Duration) ([]byte, error) {
	f.readAt = append(f.readAt, time.Now())
	time.Sleep(f.delay)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	f.reads++
	buf := make([]byte, record.InputAreaSize)
	if err := record.EncodeInput(buf, f.input); err != nil {
		return nil, err
	}
	return buf, nil
}

func (f *fakeChannel) Write(out []byte, _ time.Duration) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), out...))
	return nil
}

func (f *fakeChannel) Close() error {
	f.closes++
	return nil
}

type collector struct {
	results []forward.Result
}

func (c *collector) Consume(_ context.Context, res forward.Result) error {
	c.results = append(c.results, res)
	return nil
}

type sinkRecorder struct {
	snaps []status.Snapshot
}

func (s *sinkRecorder) WriteStatus(snap status.Snapshot) error {
	s.snaps = append(s.snaps, snap)
	return nil
}

func quietLogger() logger.Logger {
	return logger.NewSlogWriter(io.Discard, logger.DebugLevel, logger.FormatJSON, false)
}

func sampleInput() record.InputRecord {
	var in record.InputRecord
	in.StateBits1 = 0x0102
	in.Interval = [4]uint16{10, 20, 30, 40}
	in.Setpoint[2] = record.Sequence{9, 8, 7, 6, 5, 4, 3, 2}
	return in
}

func newLoop(t *testing.T, cfg Config, ch Channel, q *control.Queue, opts ...Option) *Loop {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	l, err := New(cfg, ch, q, opts...)
	require.NoError(t, err)
	return l
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, nil, control.NewQueue(1))
	require.Error(t, err)

	_, err = New(Config{}, &fakeChannel{}, nil)
	require.Error(t, err)

	_, err = New(Config{Interval: -time.Second}, &fakeChannel{}, control.NewQueue(1))
	require.Error(t, err)

	l, err := New(Config{}, &fakeChannel{}, control.NewQueue(1), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Equal(t, DefaultInterval, l.cfg.Interval)
	require.Equal(t, DefaultIOTimeout, l.cfg.IOTimeout)
}

func TestTick_ReadDeliversRecord(t *testing.T) {
	ch := &fakeChannel{input: sampleInput()}
	c := &collector{}
	l := newLoop(t, DefaultConfig(), ch, control.NewQueue(1), WithConsumers(c))

	require.True(t, l.Tick(context.Background()))

	require.Len(t, c.results, 1)
	require.False(t, c.results[0].Verify)
	require.Equal(t, uint16(20), c.results[0].Record.Interval[1])
	require.Equal(t, Stats{Cycles: 1, ReadsOK: 1}, l.Stats())
}

func TestTick_ReadFailureContinues(t *testing.T) {
	ch := &fakeChannel{readErr: errors.New("timeout")}
	c := &collector{}
	l := newLoop(t, DefaultConfig(), ch, control.NewQueue(1), WithConsumers(c))

	require.True(t, l.Tick(context.Background()))
	require.True(t, l.Tick(context.Background()))

	require.Empty(t, c.results)
	require.Equal(t, 2, l.Stats().ReadsFailed)
	require.Zero(t, ch.closes, "a failed read must not close the channel")
}

func TestTick_ReadFailureLogsCode(t *testing.T) {
	ml := logger.NewMockLogger()
	ml.On("With", "component", "exchange").Return(ml)
	ml.On("Warn", "read failed", mock.MatchedBy(func(kv []any) bool {
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i] == "code" && kv[i+1] == cifx.DevNoComFlag.String() {
				return true
			}
		}
		return false
	})).Once()

	readErr := &session.Error{
		Kind:        session.ErrReadFailed,
		Phase:       session.PhaseRead,
		Code:        cifx.DevNoComFlag,
		Description: "Communication flag not set",
		Err:         errors.New("driver"),
	}
	l, err := New(DefaultConfig(), &fakeChannel{readErr: readErr}, control.NewQueue(1), WithLogger(ml))
	require.NoError(t, err)

	require.True(t, l.Tick(context.Background()))
	ml.AssertExpectations(t)
}

func TestTick_Terminate(t *testing.T) {
	q := control.NewQueue(1)
	q.Push(control.Request{Signal: control.Terminate})
	l := newLoop(t, DefaultConfig(), &fakeChannel{}, q)

	require.False(t, l.Tick(context.Background()))
}

func TestTick_WriteNowDerivesFromLastRecord(t *testing.T) {
	in := sampleInput()
	ch := &fakeChannel{input: in}
	c := &collector{}
	q := control.NewQueue(1)
	l := newLoop(t, DefaultConfig(), ch, q, WithConsumers(c))

	q.Push(control.Request{Signal: control.WriteNow, View: 3})
	require.True(t, l.Tick(context.Background()))

	require.Len(t, ch.writes, 1)
	require.Len(t, ch.writes[0], record.OutputAreaSize)

	out, err := record.DecodeOutput(ch.writes[0])
	require.NoError(t, err)
	require.Equal(t, in.Header, out.Header)
	require.Equal(t, in.Setpoint[2], out.Value[2])
	require.Equal(t, record.Sequence{1, 1, 1, 1, 1, 1, 1, 1}, out.Quality[2])
	require.Equal(t, record.Sequence{}, out.Value[0])

	// tick read + verification read
	require.Len(t, c.results, 2)
	require.True(t, c.results[1].Verify)
	require.Equal(t, Stats{Cycles: 1, ReadsOK: 1, WritesOK: 1, Verifies: 1}, l.Stats())
}

func TestTick_WriteNowWithoutVerify(t *testing.T) {
	ch := &fakeChannel{input: sampleInput()}
	q := control.NewQueue(1)
	l := newLoop(t, Config{Verify: false}, ch, q)

	q.Push(control.Request{Signal: control.WriteNow, View: 1})
	require.True(t, l.Tick(context.Background()))

	require.Equal(t, 1, ch.reads)
	require.Len(t, ch.writes, 1)
}

func TestTick_WriteNowBeforeAnyRead(t *testing.T) {
	ch := &fakeChannel{readErr: errors.New("timeout")}
	q := control.NewQueue(1)
	l := newLoop(t, DefaultConfig(), ch, q)

	q.Push(control.Request{Signal: control.WriteNow, View: 1})
	require.True(t, l.Tick(context.Background()))

	require.Empty(t, ch.writes)
	require.Zero(t, l.Stats().WritesFailed)
}

func TestTick_WriteFailureContinues(t *testing.T) {
	ch := &fakeChannel{input: sampleInput(), writeErr: errors.New("bus off")}
	sink := &sinkRecorder{}
	q := control.NewQueue(1)
	l := newLoop(t, DefaultConfig(), ch, q, WithStatusSinks(sink))

	q.Push(control.Request{Signal: control.WriteNow, View: 2})
	require.True(t, l.Tick(context.Background()))

	require.Equal(t, 1, l.Stats().WritesFailed)
	require.Equal(t, 1, ch.reads, "no verification read after a failed write")
	require.Equal(t, status.HealthError, sink.snaps[len(sink.snaps)-1].Health)
}

func TestTick_InvalidViewRejected(t *testing.T) {
	ch := &fakeChannel{input: sampleInput()}
	q := control.NewQueue(1)
	l := newLoop(t, DefaultConfig(), ch, q)

	q.Push(control.Request{Signal: control.WriteNow, View: 5})
	require.True(t, l.Tick(context.Background()))
	require.Empty(t, ch.writes)
}

func TestRun_ClosesOnTerminate(t *testing.T) {
	ch := &fakeChannel{input: sampleInput()}
	sink := &sinkRecorder{}
	q := control.NewQueue(2)
	l := newLoop(t, Config{Interval: time.Millisecond}, ch, q, WithStatusSinks(sink))

	q.Push(control.Request{Signal: control.Continue})
	q.Push(control.Request{Signal: control.Terminate})

	stats, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Cycles)
	require.Equal(t, 2, stats.ReadsOK)
	require.Equal(t, 1, ch.closes)

	require.Equal(t, status.HealthUnknown, sink.snaps[0].Health)
	require.Equal(t, status.HealthDisabled, sink.snaps[len(sink.snaps)-1].Health)
}

func TestRun_WaitsFullIntervalAfterSlowTick(t *testing.T) {
	const interval = 30 * time.Millisecond
	ch := &fakeChannel{input: sampleInput(), delay: 2 * interval}
	q := control.NewQueue(2)
	l := newLoop(t, Config{Interval: interval}, ch, q)

	q.Push(control.Request{Signal: control.Continue})
	q.Push(control.Request{Signal: control.Terminate})

	_, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, ch.readAt, 2)

	// the gap covers the slow read plus a whole interval
	require.GreaterOrEqual(t, ch.readAt[1].Sub(ch.readAt[0]), ch.delay+interval)
}

func TestRun_ContextCancelCloses(t *testing.T) {
	ch := &fakeChannel{input: sampleInput()}
	ctx, cancel := context.WithCancel(context.Background())
	c := forward.ConsumerFunc(func(context.Context, forward.Result) error {
		cancel()
		return nil
	})
	l := newLoop(t, Config{Interval: time.Hour}, ch, control.NewQueue(1), WithConsumers(c))

	_, err := l.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ch.closes)
}

func TestRun_ClosesOnPanic(t *testing.T) {
	ch := &fakeChannel{panicMsg: "driver crashed"}
	l := newLoop(t, DefaultConfig(), ch, control.NewQueue(1))

	require.PanicsWithValue(t, "driver crashed", func() {
		_, _ = l.Run(context.Background())
	})
	require.Equal(t, 1, ch.closes)
}
