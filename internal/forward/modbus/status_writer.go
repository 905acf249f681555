// internal/forward/modbus/status_writer.go
package modbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/profibus-exchange/internal/status"
)

// statusWriter delivers status snapshots into the status block.
// No logic, no interpretation.
type statusWriter struct {
	unitID uint8
	plan   StatusPlan
	cli    registerWriter

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

func newStatusWriter(unitID uint8, plan StatusPlan, cli registerWriter) *statusWriter {
	return &statusWriter{
		unitID:   unitID,
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeDeviceName(plan.DeviceName),
	}
}

// WriteStatus writes a snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *statusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return errors.New("status writer: missing client")
	}

	baseAddr := sw.baseAddr()

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.EncodeFull(s, sw.nameRegs)

		if err := sw.cli.WriteRegisters(sw.unitID, baseAddr, regs); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	slots := []struct {
		name string
		slot uint16
		prev *uint16
		next uint16
	}{
		{"health", status.SlotHealthCode, &sw.last.Health, s.Health},
		{"last_error", status.SlotLastErrorCode, &sw.last.LastErrorCode, s.LastErrorCode},
		{"seconds", status.SlotSecondsInError, &sw.last.SecondsInError, s.SecondsInError},
		{"watchdog", status.SlotWatchdog, &sw.last.Watchdog, s.Watchdog},
		{"cycles", status.SlotCycles, &sw.last.Cycles, s.Cycles},
	}

	var errs []string
	for _, sl := range slots {
		if *sl.prev == sl.next {
			continue
		}
		if err := sw.cli.WriteRegisters(sw.unitID, baseAddr+sl.slot, []uint16{sl.next}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", sl.slot, sl.name, err))
			continue
		}
		*sl.prev = sl.next
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *statusWriter) baseAddr() uint16 {
	// Each block owns a fixed SlotsPerDevice range.
	return sw.plan.BaseSlot * status.SlotsPerDevice
}
