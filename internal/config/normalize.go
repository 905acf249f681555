// internal/config/normalize.go
package config

const (
	DefaultBoard           = "cifX0"
	DefaultIOTimeoutMs     = 10
	DefaultStateTimeoutMs  = 1000
	DefaultCycleIntervalMs = 3000

	DefaultModbusTimeoutMs = 1000
	DefaultMQTTTopic       = "profibus/exchange"

	DeviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// EXCHANGE DEFAULTS
	// ------------------------------------------------------------

	ex := &cfg.Exchange
	if ex.Board == "" {
		ex.Board = DefaultBoard
	}
	if ex.IOTimeoutMs == 0 {
		ex.IOTimeoutMs = DefaultIOTimeoutMs
	}
	if ex.StateTimeoutMs == 0 {
		ex.StateTimeoutMs = DefaultStateTimeoutMs
	}
	if ex.CycleIntervalMs == 0 {
		ex.CycleIntervalMs = DefaultCycleIntervalMs
	}
	if ex.VerifyWrites == nil {
		v := true
		ex.VerifyWrites = &v
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	// ------------------------------------------------------------
	// FORWARD TARGETS
	// ------------------------------------------------------------

	if cfg.Forward.Console == nil {
		v := true
		cfg.Forward.Console = &v
	}

	if m := cfg.Forward.Modbus; m != nil {
		if m.Transport == "" {
			m.Transport = TransportModbus
		}
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultModbusTimeoutMs
		}
		// ASCII already validated; truncate to 16 characters
		if len(m.DeviceName) > DeviceNameMaxChars {
			m.DeviceName = m.DeviceName[:DeviceNameMaxChars]
		}
	}

	if q := cfg.Forward.MQTT; q != nil {
		if q.Topic == "" {
			q.Topic = DefaultMQTTTopic
		}
	}
}
