// internal/record/record.go
package record

// Timestamp is the device clock as sent by the master.
// Fields are passed through without validation.
type Timestamp struct {
	Year    uint16 `json:"year"`
	Month   uint16 `json:"month"`
	Day     uint16 `json:"day"`
	Hours   uint16 `json:"hours"`
	Minutes uint16 `json:"minutes"`
	Seconds uint16 `json:"seconds"`
}

// Header holds the 16 leading words shared by both records.
type Header struct {
	// StateBits1 and StateBits2 are owned by the master and opaque here.
	StateBits1 uint16
	StateBits2 uint16

	Timestamp Timestamp

	Interval [4]uint16 // interval1..4
	Reserved [4]uint16 // reserved13..16, reserved16 is the watchdog
}

// Watchdog returns the liveness counter written by the peer.
func (h Header) Watchdog() uint16 {
	return h.Reserved[WatchdogIndex]
}

// Sequence is one fixed-length per-view sequence.
type Sequence [TracksPerView]uint16

// InputRecord is the device -> host record.
type InputRecord struct {
	Header
	Setpoint [ViewCount]Sequence // setpoint1..4
}

// OutputRecord is the host -> device record.
// Each view carries a value sequence and a parallel quality sequence.
type OutputRecord struct {
	Header
	Value   [ViewCount]Sequence // value1..4
	Quality [ViewCount]Sequence // valueQuality1..4
}
