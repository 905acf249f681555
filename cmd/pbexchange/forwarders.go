// cmd/pbexchange/forwarders.go
package main

import (
	"errors"
	"io"

	"github.com/tamzrod/profibus-exchange/internal/config"
	"github.com/tamzrod/profibus-exchange/internal/forward"
	"github.com/tamzrod/profibus-exchange/internal/forward/console"
	"github.com/tamzrod/profibus-exchange/internal/forward/modbus"
	"github.com/tamzrod/profibus-exchange/internal/forward/mqtt"
	"github.com/tamzrod/profibus-exchange/internal/logger"
)

type forwarders struct {
	consumers []forward.Consumer
	sinks     []forward.StatusSink
	closers   []io.Closer
}

// buildForwarders connects every configured forward target.
// On error, the targets connected so far are closed.
func buildForwarders(cfg *config.Config, stdout io.Writer, log logger.Logger) (*forwarders, error) {
	fw := &forwarders{}

	if cfg.Forward.ConsoleEnabled() {
		fw.consumers = append(fw.consumers, console.New(stdout))
	}

	if m := cfg.Forward.Modbus; m != nil {
		mirror, cli, err := modbus.Dial(*m)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.consumers = append(fw.consumers, mirror)
		fw.sinks = append(fw.sinks, mirror)
		fw.closers = append(fw.closers, cli)
		log.Info("modbus mirror connected", "endpoint", m.Endpoint, "unit_id", m.UnitID, "address", m.Address)
	}

	if q := cfg.Forward.MQTT; q != nil {
		pub, err := mqtt.Dial(*q, log)
		if err != nil {
			fw.Close()
			return nil, err
		}
		fw.consumers = append(fw.consumers, pub)
		fw.closers = append(fw.closers, pub)
	}

	return fw, nil
}

func (fw *forwarders) Close() error {
	var errs []error
	for i := len(fw.closers) - 1; i >= 0; i-- {
		if err := fw.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	fw.closers = nil
	return errors.Join(errs...)
}
