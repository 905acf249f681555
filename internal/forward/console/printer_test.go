package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/record"
)

func TestPrint(t *testing.T) {
	var rec record.InputRecord
	rec.Timestamp = record.Timestamp{Year: 2024, Month: 3, Day: 7, Hours: 9, Minutes: 5, Seconds: 1}
	rec.Interval = [4]uint16{10, 20, 30, 40}
	rec.Reserved = [4]uint16{0, 0, 0, 17}
	rec.Setpoint[1][2] = 555

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, rec))

	out := buf.String()
	require.Contains(t, out, "Date: 2024-03-07 09:05:01")
	require.Contains(t, out, "Intervals:\n10 20 30 40\n")
	require.Contains(t, out, "Unused values:\n0 0 0 17\n")
	require.Contains(t, out, "sp2[2]: 555\n")
	require.Contains(t, out, "sp4[7]: 0\n")
	require.Equal(t, record.ViewCount*record.TracksPerView, strings.Count(out, "]: "))
}

func TestPrinter_VerifyBanner(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	require.NoError(t, p.Consume(context.Background(), forward.Result{}))
	require.NotContains(t, buf.String(), "READ Buffer back")

	require.NoError(t, p.Consume(context.Background(), forward.Result{Verify: true}))
	require.Contains(t, buf.String(), "READ Buffer back from Master:")
}
