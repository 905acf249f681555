// internal/record/codec.go
package record

import "encoding/binary"

// Host and device share native byte order; no swapping is performed.
var order = binary.NativeEndian

// Decode converts a raw input area into an InputRecord.
// Only the first InputRecordSize bytes are interpreted; the rest of the area is ignored.
// A fresh record is returned on every call.
func Decode(b []byte) (InputRecord, error) {
	var rec InputRecord
	if len(b) < InputRecordSize {
		return rec, ErrSizeMismatch
	}

	rec.Header = getHeader(b)
	for v := 0; v < ViewCount; v++ {
		rec.Setpoint[v] = getSequence(b, setpointOffset(v))
	}
	return rec, nil
}

// DecodeOutput converts raw output area bytes back into an OutputRecord.
func DecodeOutput(b []byte) (OutputRecord, error) {
	var rec OutputRecord
	if len(b) < OutputRecordSize {
		return rec, ErrSizeMismatch
	}

	rec.Header = getHeader(b)
	for v := 0; v < ViewCount; v++ {
		rec.Value[v] = getSequence(b, valueOffset(v))
		rec.Quality[v] = getSequence(b, qualityOffset(v))
	}
	return rec, nil
}

// Encode emits an OutputRecord into a full output slot.
// Bytes past OutputRecordSize are zero.
func Encode(rec OutputRecord) ([]byte, error) {
	out := make([]byte, OutputAreaSize)
	if err := EncodeInto(out, rec); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeInto writes rec at the start of dst.
// Nothing is written when dst cannot hold the whole record.
func EncodeInto(dst []byte, rec OutputRecord) error {
	if len(dst) < OutputRecordSize {
		return ErrBufferOverflow
	}

	putHeader(dst, rec.Header)
	for v := 0; v < ViewCount; v++ {
		putSequence(dst, valueOffset(v), rec.Value[v])
		putSequence(dst, qualityOffset(v), rec.Quality[v])
	}
	return nil
}

// EncodeInput writes an InputRecord layout into dst.
// The host never sends this layout; it is used to fill simulated input areas.
func EncodeInput(dst []byte, rec InputRecord) error {
	if len(dst) < InputRecordSize {
		return ErrSizeMismatch
	}

	putHeader(dst, rec.Header)
	for v := 0; v < ViewCount; v++ {
		putSequence(dst, setpointOffset(v), rec.Setpoint[v])
	}
	return nil
}

// ---- offsets ----

// setpointOffset returns the byte offset of setpoint[v].
func setpointOffset(v int) int { return HeaderSize + v*SequenceSize }

// valueOffset returns the byte offset of value[v]; values and qualities interleave per view.
func valueOffset(v int) int { return HeaderSize + 2*v*SequenceSize }

func qualityOffset(v int) int { return HeaderSize + (2*v+1)*SequenceSize }

// ---- header ----

func getHeader(b []byte) Header {
	var h Header
	h.StateBits1 = order.Uint16(b[OffStateBits1:])
	h.StateBits2 = order.Uint16(b[OffStateBits2:])
	h.Timestamp.Year = order.Uint16(b[OffYear:])
	h.Timestamp.Month = order.Uint16(b[OffMonth:])
	h.Timestamp.Day = order.Uint16(b[OffDay:])
	h.Timestamp.Hours = order.Uint16(b[OffHours:])
	h.Timestamp.Minutes = order.Uint16(b[OffMinutes:])
	h.Timestamp.Seconds = order.Uint16(b[OffSeconds:])
	for i := 0; i < 4; i++ {
		h.Interval[i] = order.Uint16(b[OffInterval+2*i:])
		h.Reserved[i] = order.Uint16(b[OffReserved+2*i:])
	}
	return h
}

func putHeader(b []byte, h Header) {
	order.PutUint16(b[OffStateBits1:], h.StateBits1)
	order.PutUint16(b[OffStateBits2:], h.StateBits2)
	order.PutUint16(b[OffYear:], h.Timestamp.Year)
	order.PutUint16(b[OffMonth:], h.Timestamp.Month)
	order.PutUint16(b[OffDay:], h.Timestamp.Day)
	order.PutUint16(b[OffHours:], h.Timestamp.Hours)
	order.PutUint16(b[OffMinutes:], h.Timestamp.Minutes)
	order.PutUint16(b[OffSeconds:], h.Timestamp.Seconds)
	for i := 0; i < 4; i++ {
		order.PutUint16(b[OffInterval+2*i:], h.Interval[i])
		order.PutUint16(b[OffReserved+2*i:], h.Reserved[i])
	}
}

// ---- sequences ----

func getSequence(b []byte, off int) Sequence {
	var s Sequence
	for i := range s {
		s[i] = order.Uint16(b[off+2*i:])
	}
	return s
}

func putSequence(b []byte, off int, s Sequence) {
	for i, w := range s {
		order.PutUint16(b[off+2*i:], w)
	}
}

// Word reads the 16-bit word at byte offset off.
func Word(b []byte, off int) uint16 {
	return order.Uint16(b[off:])
}

// PutWord writes the 16-bit word v at byte offset off.
func PutWord(b []byte, off int, v uint16) {
	order.PutUint16(b[off:], v)
}
