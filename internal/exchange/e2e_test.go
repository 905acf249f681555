// internal/exchange/e2e_test.go
package exchange_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
	"github.com/tamzrod/profibus-exchange/internal/cifx/sim"
	"github.com/tamzrod/profibus-exchange/internal/control"
	"github.com/tamzrod/profibus-exchange/internal/exchange"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/session"
)

func TestExchange_EndToEnd(t *testing.T) {
	log := logger.NewSlogWriter(io.Discard, logger.DebugLevel, logger.FormatJSON, false)

	var in record.InputRecord
	in.StateBits1 = 0x0042
	in.StateBits2 = 0x0007
	in.Reserved[record.WatchdogIndex] = 100
	in.Setpoint[1] = record.Sequence{1, 2, 3, 4, 5, 6, 7, 8}

	dev := sim.New()
	dev.SetInput(in)

	drv, err := cifx.OpenDriver(dev)
	require.NoError(t, err)
	defer drv.Close()

	// open → negotiate
	sess := session.New(drv, session.Config{}, log)
	require.NoError(t, sess.Open(sim.DefaultBoard))
	require.NoError(t, sess.Negotiate())
	require.Equal(t, session.BusOn, sess.State())

	var results []forward.Result
	collect := forward.ConsumerFunc(func(_ context.Context, res forward.Result) error {
		results = append(results, res)
		return nil
	})

	// operator writes view 2 after the first read, then quits
	q := control.NewQueue(4)
	q.Push(control.Request{Signal: control.WriteNow, View: 2})
	q.Push(control.Request{Signal: control.Terminate})

	loop, err := exchange.New(
		exchange.Config{Interval: time.Millisecond, IOTimeout: 10 * time.Millisecond, Verify: true},
		sess,
		q,
		exchange.WithConsumers(collect),
		exchange.WithLogger(log),
	)
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.NoError(t, err)

	// read, verification read, second tick read
	require.Len(t, results, 3)
	first, verify := results[0], results[1]
	require.False(t, first.Verify)
	require.True(t, verify.Verify)

	// watchdog incremented by the peer
	require.Equal(t, uint16(101), first.Record.Watchdog())
	require.Greater(t, verify.Record.Watchdog(), first.Record.Watchdog())

	// write carried view 2 with good quality
	out := dev.Output()
	require.Equal(t, in.Setpoint[1], out.Value[1])
	require.Equal(t, record.Sequence{1, 1, 1, 1, 1, 1, 1, 1}, out.Quality[1])
	require.Equal(t, record.Sequence{}, out.Value[0])

	// verification read shows the same state bits
	require.Equal(t, first.Record.StateBits1, verify.Record.StateBits1)
	require.Equal(t, first.Record.StateBits2, verify.Record.StateBits2)

	require.Equal(t, exchange.Stats{Cycles: 2, ReadsOK: 2, WritesOK: 1, Verifies: 1}, stats)

	// terminate → handle closed exactly once, second close is a no-op
	require.Equal(t, session.Closed, sess.State())
	require.Equal(t, 1, dev.Counters().ChannelCloses)
	require.NoError(t, sess.Close())
	require.Equal(t, 1, dev.Counters().ChannelCloses)
	require.Zero(t, dev.OpenChannels())
}
