// internal/record/constants.go
package record

// Wire layout constants.
// These values are shared with the field device and MUST NOT be configurable.

// ---- VIEW GEOMETRY ----

// ViewCount is the number of parallel views (tracks) carried by both records.
const ViewCount = 4

// TracksPerView is the fixed length of every per-view sequence.
const TracksPerView = 8

// ---- AREA SIZES ----

// SlotSize is the declared size of one process data slot.
const SlotSize = 244

// InputAreaSize is the number of bytes read from the input area per cycle.
// The input area is read at twice the declared slot size; the output area is not.
const InputAreaSize = SlotSize * 2

// OutputAreaSize is the number of bytes written to the output area.
const OutputAreaSize = SlotSize

// ---- HEADER WORDS ----

// Every field is one 16-bit word. Offsets are in bytes.
const (
	OffStateBits1 = 0
	OffStateBits2 = 2
	OffYear       = 4
	OffMonth      = 6
	OffDay        = 8
	OffHours      = 10
	OffMinutes    = 12
	OffSeconds    = 14
	OffInterval   = 16 // interval1..4
	OffReserved   = 24 // reserved13..16
)

// HeaderSize is the size of the 16 leading scalar words shared by both records.
const HeaderSize = 32

// WatchdogIndex is the reserved slot the peer uses as a liveness counter (reserved16).
const WatchdogIndex = 3

// ---- PAYLOAD ----

// SequenceSize is the byte size of one fixed-length per-view sequence.
const SequenceSize = TracksPerView * 2

// InputRecordSize is the packed size of InputRecord: header + one setpoint sequence per view.
const InputRecordSize = HeaderSize + ViewCount*SequenceSize

// OutputRecordSize is the packed size of OutputRecord: header + value and quality sequence per view.
const OutputRecordSize = HeaderSize + 2*ViewCount*SequenceSize

// The output record must fit the output slot. A negative difference fails to compile.
const _ = uint(OutputAreaSize - OutputRecordSize)

// ---- QUALITY FLAGS ----

// QualityBad marks a value the host could not produce.
const QualityBad uint16 = 0

// QualityGood marks a valid value.
const QualityGood uint16 = 1
