// internal/forward/modbus/mirror.go
package modbus

import (
	"context"
	"fmt"
	"io"

	"github.com/tamzrod/profibus-exchange/internal/config"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/forward/ingest"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/status"
)

// registerWriter is the exact contract the mirror uses.
type registerWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan is the register layout of one mirror.
type Plan struct {
	Endpoint string
	UnitID   uint8
	Address  uint16

	// Status is nil when the status block is disabled.
	Status *StatusPlan
}

// StatusPlan places the status block at StatusSlot*SlotsPerDevice.
type StatusPlan struct {
	BaseSlot   uint16
	DeviceName string
}

// BuildPlan derives the plan from a validated and normalized config.
func BuildPlan(cfg config.ModbusConfig) Plan {
	p := Plan{
		Endpoint: cfg.Endpoint,
		UnitID:   cfg.UnitID,
		Address:  cfg.Address,
	}
	if cfg.StatusSlot != nil {
		p.Status = &StatusPlan{
			BaseSlot:   *cfg.StatusSlot,
			DeviceName: cfg.DeviceName,
		}
	}
	return p
}

// Mirror copies every input record into holding registers, one register per wire word.
type Mirror struct {
	plan   Plan
	cli    registerWriter
	status *statusWriter
}

var (
	_ forward.Consumer   = (*Mirror)(nil)
	_ forward.StatusSink = (*Mirror)(nil)
)

func NewMirror(plan Plan, cli registerWriter) *Mirror {
	m := &Mirror{plan: plan, cli: cli}
	if plan.Status != nil {
		m.status = newStatusWriter(plan.UnitID, *plan.Status, cli)
	}
	return m
}

// Client is a register writer that owns a connection.
type Client interface {
	registerWriter
	io.Closer
}

// Dial connects to the configured endpoint over the configured transport.
func Dial(cfg config.ModbusConfig) (*Mirror, Client, error) {
	var (
		cli Client
		err error
	)
	switch cfg.Transport {
	case config.TransportIngest:
		cli, err = ingest.NewEndpointClient(ingest.Config{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout(),
		})
	default:
		cli, err = NewEndpointClient(ClientConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout(),
		})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("forward modbus: connect %s: %w", cfg.Endpoint, err)
	}
	return NewMirror(BuildPlan(cfg), cli), cli, nil
}

func (m *Mirror) Consume(_ context.Context, res forward.Result) error {
	regs := record.Words(res.Record)
	if err := m.cli.WriteRegisters(m.plan.UnitID, m.plan.Address, regs); err != nil {
		return fmt.Errorf(
			"forward modbus: ep=%s unit=%d addr=%d err=%w",
			m.plan.Endpoint, m.plan.UnitID, m.plan.Address, err,
		)
	}
	return nil
}

// WriteStatus is a no-op when the status block is disabled.
func (m *Mirror) WriteStatus(s status.Snapshot) error {
	if m.status == nil {
		return nil
	}
	return m.status.WriteStatus(s)
}
