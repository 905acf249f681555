// internal/record/derive.go
package record

// Derive builds the output record sent when the operator writes a view.
//
// The header is copied word for word from the last input.
// The selected view (1..ViewCount) carries the input setpoints as values with good quality.
// All other views stay zero.
func Derive(in InputRecord, view int) (OutputRecord, error) {
	var out OutputRecord
	if view < 1 || view > ViewCount {
		return out, ErrInvalidView
	}

	out.Header = in.Header

	v := view - 1
	out.Value[v] = in.Setpoint[v]
	for i := range out.Quality[v] {
		out.Quality[v][i] = QualityGood
	}
	return out, nil
}

// Words returns the input record as a flat register image in wire order.
// Length is InputRecordSize/2.
func Words(in InputRecord) []uint16 {
	regs := make([]uint16, 0, InputRecordSize/2)

	h := in.Header
	regs = append(regs,
		h.StateBits1,
		h.StateBits2,
		h.Timestamp.Year,
		h.Timestamp.Month,
		h.Timestamp.Day,
		h.Timestamp.Hours,
		h.Timestamp.Minutes,
		h.Timestamp.Seconds,
	)
	regs = append(regs, h.Interval[:]...)
	regs = append(regs, h.Reserved[:]...)

	for v := 0; v < ViewCount; v++ {
		regs = append(regs, in.Setpoint[v][:]...)
	}
	return regs
}
