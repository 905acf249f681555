// internal/config/config.go
package config

import "time"

type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Log      LogConfig      `yaml:"log"`
	Forward  ForwardConfig  `yaml:"forward"`
}

// ---- EXCHANGE ----

type ExchangeConfig struct {
	Board   string `yaml:"board"`
	Channel uint32 `yaml:"channel"`

	IOTimeoutMs     int `yaml:"io_timeout_ms"`
	StateTimeoutMs  int `yaml:"state_timeout_ms"`
	CycleIntervalMs int `yaml:"cycle_interval_ms"`

	// nil => true
	VerifyWrites *bool `yaml:"verify_writes"`
	Simulate     bool  `yaml:"simulate"`
}

func (e ExchangeConfig) IOTimeout() time.Duration {
	return time.Duration(e.IOTimeoutMs) * time.Millisecond
}

func (e ExchangeConfig) StateTimeout() time.Duration {
	return time.Duration(e.StateTimeoutMs) * time.Millisecond
}

func (e ExchangeConfig) CycleInterval() time.Duration {
	return time.Duration(e.CycleIntervalMs) * time.Millisecond
}

func (e ExchangeConfig) Verify() bool {
	return e.VerifyWrites == nil || *e.VerifyWrites
}

// ---- LOG ----

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"` // json | console
	AddSource bool   `yaml:"add_source"`
}

// ---- FORWARD ----

type ForwardConfig struct {
	Console *bool         `yaml:"console"`
	Modbus  *ModbusConfig `yaml:"modbus"`
	MQTT    *MQTTConfig   `yaml:"mqtt"`
}

// ConsoleEnabled reports whether decoded records are printed. Unset means on.
func (f ForwardConfig) ConsoleEnabled() bool {
	return f.Console == nil || *f.Console
}

const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

// ModbusConfig mirrors each input record into holding registers of a Modbus TCP server.
type ModbusConfig struct {
	// Transport is "modbus" (Modbus TCP, default) or "ingest" (Raw Ingest v1).
	Transport string `yaml:"transport"`
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Address   uint16 `yaml:"address"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

func (m ModbusConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

type MQTTConfig struct {
	URL      string `yaml:"url"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}
