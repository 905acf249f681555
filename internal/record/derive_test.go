package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleInput() InputRecord {
	in := InputRecord{
		Header: Header{
			StateBits1: 7,
			StateBits2: 9,
			Timestamp:  Timestamp{Year: 2025, Month: 1, Day: 2, Hours: 3, Minutes: 4, Seconds: 5},
			Interval:   [4]uint16{10, 20, 30, 40},
			Reserved:   [4]uint16{0, 0, 0, 123},
		},
	}
	for v := 0; v < ViewCount; v++ {
		for i := 0; i < TracksPerView; i++ {
			in.Setpoint[v][i] = uint16(100*(v+1) + i)
		}
	}
	return in
}

func TestDerive(t *testing.T) {
	in := sampleInput()

	out, err := Derive(in, 2)
	require.NoError(t, err)
	require.Equal(t, in.Header, out.Header)
	require.Equal(t, in.Setpoint[1], out.Value[1])

	for i := 0; i < TracksPerView; i++ {
		require.Equal(t, QualityGood, out.Quality[1][i])
	}
	for _, v := range []int{0, 2, 3} {
		require.Equal(t, Sequence{}, out.Value[v], "view %d", v+1)
		require.Equal(t, Sequence{}, out.Quality[v], "view %d", v+1)
	}
}

func TestDerive_InvalidView(t *testing.T) {
	for _, view := range []int{0, 5, -1} {
		_, err := Derive(sampleInput(), view)
		require.ErrorIs(t, err, ErrInvalidView, "view %d", view)
	}
}

func TestWords(t *testing.T) {
	in := sampleInput()

	regs := Words(in)
	require.Len(t, regs, InputRecordSize/2)
	require.Equal(t, uint16(7), regs[0])
	require.Equal(t, uint16(2025), regs[2])
	require.Equal(t, uint16(20), regs[9])
	require.Equal(t, uint16(123), regs[15])
	require.Equal(t, uint16(100), regs[16])
	require.Equal(t, uint16(407), regs[len(regs)-1])

	// register image matches the byte layout
	raw := make([]byte, InputRecordSize)
	require.NoError(t, EncodeInput(raw, in))
	for i, w := range regs {
		require.Equal(t, w, order.Uint16(raw[2*i:]), "word %d", i)
	}
}

func TestSummarize(t *testing.T) {
	in := sampleInput()

	s := Summarize(in)
	require.Equal(t, in.Timestamp, s.Timestamp)
	require.Equal(t, [4]uint16{10, 20, 30, 40}, s.Intervals)
	require.Equal(t, uint16(123), s.Watchdog)
	require.Equal(t, []uint16{300, 301, 302, 303, 304, 305, 306, 307}, s.Setpoints[2])
}
