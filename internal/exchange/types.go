// internal/exchange/types.go
package exchange

// Stats summarizes one run.
type Stats struct {
	Cycles       int
	ReadsOK      int
	ReadsFailed  int
	WritesOK     int
	WritesFailed int
	Verifies     int
}

// KeyValues renders the counters for a log line.
func (s Stats) KeyValues() []any {
	return []any{
		"cycles", s.Cycles,
		"reads_ok", s.ReadsOK,
		"reads_failed", s.ReadsFailed,
		"writes_ok", s.WritesOK,
		"writes_failed", s.WritesFailed,
		"verifies", s.Verifies,
	}
}
