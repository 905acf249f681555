// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"

	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/status"
)

// dataRegisters is the register image of one input record.
const dataRegisters = record.InputRecordSize / 2

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// EXCHANGE
	// ------------------------------------------------------------

	ex := cfg.Exchange
	if ex.IOTimeoutMs < 0 {
		return fmt.Errorf("exchange: io_timeout_ms must not be negative (got %d)", ex.IOTimeoutMs)
	}
	if ex.StateTimeoutMs < 0 {
		return fmt.Errorf("exchange: state_timeout_ms must not be negative (got %d)", ex.StateTimeoutMs)
	}
	if ex.CycleIntervalMs < 0 {
		return fmt.Errorf("exchange: cycle_interval_ms must not be negative (got %d)", ex.CycleIntervalMs)
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch cfg.Log.Format {
	case "", logger.FormatJSON, logger.FormatConsole:
	default:
		return fmt.Errorf("log: unknown format %q", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// MODBUS MIRROR
	// ------------------------------------------------------------

	if m := cfg.Forward.Modbus; m != nil {
		if err := validateModbus(m); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if q := cfg.Forward.MQTT; q != nil {
		if q.URL == "" {
			return fmt.Errorf("forward.mqtt: url is required")
		}
		u, err := url.Parse(q.URL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("forward.mqtt: invalid url %q", q.URL)
		}
		if q.QoS > 2 {
			return fmt.Errorf("forward.mqtt: qos must be 0, 1 or 2 (got %d)", q.QoS)
		}
	}

	return nil
}

func validateModbus(m *ModbusConfig) error {
	type span struct {
		start uint32
		end   uint32
	}

	switch m.Transport {
	case "", TransportModbus, TransportIngest:
	default:
		return fmt.Errorf("forward.modbus: unknown transport %q", m.Transport)
	}
	if m.Endpoint == "" {
		return fmt.Errorf("forward.modbus: endpoint is required")
	}
	if m.TimeoutMs < 0 {
		return fmt.Errorf("forward.modbus: timeout_ms must not be negative (got %d)", m.TimeoutMs)
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(m.DeviceName); i++ {
		if m.DeviceName[i] > 0x7F {
			return fmt.Errorf("forward.modbus: device_name must contain ASCII characters only")
		}
	}

	data := span{start: uint32(m.Address)}
	data.end = data.start + dataRegisters - 1
	if data.end > 0xFFFF {
		return fmt.Errorf(
			"forward.modbus: address %d leaves no room for %d registers",
			m.Address,
			dataRegisters,
		)
	}

	// status is opt-in
	if m.StatusSlot == nil {
		return nil
	}

	st := span{start: uint32(*m.StatusSlot) * status.SlotsPerDevice}
	st.end = st.start + status.SlotsPerDevice - 1
	if st.end > 0xFFFF {
		return fmt.Errorf("forward.modbus: status_slot %d out of range", *m.StatusSlot)
	}

	// overlap check (inclusive)
	if !(data.end < st.start || data.start > st.end) {
		return fmt.Errorf(
			"memory overlap: endpoint=%s unit_id=%d data=%d-%d status=%d-%d",
			m.Endpoint,
			m.UnitID,
			data.start,
			data.end,
			st.start,
			st.end,
		)
	}
	return nil
}
