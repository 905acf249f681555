package record

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func put(b []byte, off int, v uint16) {
	binary.NativeEndian.PutUint16(b[off:], v)
}

func TestDecode_IntervalsAndSetpoints(t *testing.T) {
	buf := make([]byte, InputAreaSize)

	for i, v := range []uint16{10, 20, 30, 40} {
		put(buf, OffInterval+2*i, v)
	}
	for i := 0; i < TracksPerView; i++ {
		put(buf, HeaderSize+1*SequenceSize+2*i, uint16(i+1))
	}

	rec, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(20), rec.Interval[1])
	require.Equal(t, uint16(3), rec.Setpoint[1][2])
	require.Equal(t, Sequence{1, 2, 3, 4, 5, 6, 7, 8}, rec.Setpoint[1])
	require.Equal(t, Sequence{}, rec.Setpoint[0])
}

func TestDecode_FieldOffsets(t *testing.T) {
	require := require.New(t)

	buf := make([]byte, InputAreaSize)
	// every word gets a unique value derived from its offset
	for off := 0; off < InputRecordSize; off += 2 {
		put(buf, off, uint16(0x1000+off))
	}

	rec, err := Decode(buf)
	require.NoError(err)

	require.Equal(uint16(0x1000+OffStateBits1), rec.StateBits1)
	require.Equal(uint16(0x1000+OffStateBits2), rec.StateBits2)
	require.Equal(uint16(0x1000+OffYear), rec.Timestamp.Year)
	require.Equal(uint16(0x1000+OffMonth), rec.Timestamp.Month)
	require.Equal(uint16(0x1000+OffDay), rec.Timestamp.Day)
	require.Equal(uint16(0x1000+OffHours), rec.Timestamp.Hours)
	require.Equal(uint16(0x1000+OffMinutes), rec.Timestamp.Minutes)
	require.Equal(uint16(0x1000+OffSeconds), rec.Timestamp.Seconds)

	for i := 0; i < 4; i++ {
		require.Equal(uint16(0x1000+OffInterval+2*i), rec.Interval[i], "interval%d", i+1)
		require.Equal(uint16(0x1000+OffReserved+2*i), rec.Reserved[i], "reserved%d", i+13)
	}
	require.Equal(uint16(0x1000+30), rec.Watchdog())

	for v := 0; v < ViewCount; v++ {
		for i := 0; i < TracksPerView; i++ {
			off := HeaderSize + v*SequenceSize + 2*i
			require.Equal(uint16(0x1000+off), rec.Setpoint[v][i], "setpoint%d[%d]", v+1, i)
		}
	}
}

func TestDecode_IgnoresTrailingArea(t *testing.T) {
	buf := make([]byte, InputAreaSize)
	for i := InputRecordSize; i < len(buf); i++ {
		buf[i] = 0xFF
	}

	rec, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, InputRecord{}, rec)
}

func TestDecode_SizeMismatch(t *testing.T) {
	_, err := Decode(make([]byte, InputRecordSize-1))
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Decode(nil)
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = Decode(make([]byte, InputRecordSize))
	require.NoError(t, err)
}

func TestDecode_FreshRecordEachCall(t *testing.T) {
	a := make([]byte, InputAreaSize)
	put(a, OffInterval, 99)
	put(a, HeaderSize, 7)

	first, err := Decode(a)
	require.NoError(t, err)
	require.Equal(t, uint16(99), first.Interval[0])

	second, err := Decode(make([]byte, InputAreaSize))
	require.NoError(t, err)
	require.Equal(t, InputRecord{}, second)
	require.Equal(t, uint16(99), first.Interval[0])
}

func TestEncode_SlotSize(t *testing.T) {
	require := require.New(t)

	var rec OutputRecord
	for v := 0; v < ViewCount; v++ {
		for i := 0; i < TracksPerView; i++ {
			rec.Value[v][i] = 0xFFFF
			rec.Quality[v][i] = 0xFFFF
		}
	}

	out, err := Encode(rec)
	require.NoError(err)
	require.Len(out, OutputAreaSize)
	require.LessOrEqual(OutputRecordSize, OutputAreaSize)

	for i := OutputRecordSize; i < OutputAreaSize; i++ {
		require.Zero(out[i], "byte %d past the record must be zero", i)
	}
}

func TestEncode_ValueQualityInterleave(t *testing.T) {
	var rec OutputRecord
	rec.Value[2][5] = 0xAAAA
	rec.Quality[2][5] = 0x5555

	out, err := Encode(rec)
	require.NoError(t, err)

	// value3 starts after value1, pvq1, value2, pvq2
	valueOff := HeaderSize + 4*SequenceSize + 2*5
	qualityOff := HeaderSize + 5*SequenceSize + 2*5
	require.Equal(t, uint16(0xAAAA), binary.NativeEndian.Uint16(out[valueOff:]))
	require.Equal(t, uint16(0x5555), binary.NativeEndian.Uint16(out[qualityOff:]))

	back, err := DecodeOutput(out)
	require.NoError(t, err)
	require.Equal(t, rec, back)
}

func TestEncodeInto_Overflow(t *testing.T) {
	dst := make([]byte, OutputRecordSize-2)
	for i := range dst {
		dst[i] = 0xEE
	}

	var rec OutputRecord
	rec.StateBits1 = 1

	err := EncodeInto(dst, rec)
	require.ErrorIs(t, err, ErrBufferOverflow)
	for i := range dst {
		require.Equal(t, byte(0xEE), dst[i], "nothing may be written on overflow")
	}
}

func TestRoundTrip_HeaderThroughInputSchema(t *testing.T) {
	out := OutputRecord{
		Header: Header{
			StateBits1: 0x8001,
			StateBits2: 0x0042,
			Timestamp:  Timestamp{Year: 2024, Month: 9, Day: 27, Hours: 13, Minutes: 5, Seconds: 59},
			Interval:   [4]uint16{10, 20, 30, 40},
			Reserved:   [4]uint16{13, 14, 15, 16},
		},
	}
	out.Value[0] = Sequence{1, 2, 3, 4, 5, 6, 7, 8}

	raw, err := Encode(out)
	require.NoError(t, err)

	in, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, out.Header, in.Header)
	// setpoint1 overlaps value1 in the wire layout
	require.Equal(t, out.Value[0], in.Setpoint[0])
}

// The input area is read at twice the declared slot size while the output area is not.
// This asymmetry is part of the device contract and kept on purpose.
func TestAreaSizeAsymmetry(t *testing.T) {
	require.Equal(t, 488, InputAreaSize)
	require.Equal(t, 244, OutputAreaSize)
	require.Equal(t, 96, InputRecordSize)
	require.Equal(t, 160, OutputRecordSize)
}
