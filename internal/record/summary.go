package record

// Summary is the consumer-facing view of an InputRecord.
type Summary struct {
	Timestamp Timestamp           `json:"timestamp"`
	Intervals [4]uint16           `json:"intervals"`
	Setpoints [ViewCount][]uint16 `json:"setpoints"`
	Watchdog  uint16              `json:"watchdog"`
	State     [2]uint16           `json:"state"`
}

// Summarize extracts timestamp, intervals and setpoints from in.
func Summarize(in InputRecord) Summary {
	s := Summary{
		Timestamp: in.Timestamp,
		Intervals: in.Interval,
		Watchdog:  in.Watchdog(),
		State:     [2]uint16{in.StateBits1, in.StateBits2},
	}
	for v := 0; v < ViewCount; v++ {
		sp := in.Setpoint[v]
		s.Setpoints[v] = append([]uint16(nil), sp[:]...)
	}
	return s
}
