// cmd/pbexchange/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/profibus-exchange/internal/cifx"
	"github.com/tamzrod/profibus-exchange/internal/cifx/sim"
	"github.com/tamzrod/profibus-exchange/internal/config"
	"github.com/tamzrod/profibus-exchange/internal/control"
	"github.com/tamzrod/profibus-exchange/internal/exchange"
	"github.com/tamzrod/profibus-exchange/internal/logger"
	"github.com/tamzrod/profibus-exchange/internal/record"
	"github.com/tamzrod/profibus-exchange/internal/session"
)

const banner = "*** (r) READ I/O data  (w) WRITE I/O data  (q) QUIT ***"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("pbexchange", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "path to the YAML config file")
	board := fs.String("board", "", "board name (overrides exchange.board)")
	simulate := fs.Bool("sim", false, "use the in-memory simulated channel")
	shell := fs.Bool("shell", false, "use the interactive shell instead of line input")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if *board != "" {
		cfg.Exchange.Board = *board
	}
	if *simulate {
		cfg.Exchange.Simulate = true
	}

	level, _ := logger.ParseLevel(cfg.Log.Level)
	// operator prompts own stdout
	log := logger.NewSlogWriter(os.Stderr, level, cfg.Log.Format, cfg.Log.AddSource)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Driver + session
	// --------------------

	api, err := openAPI(cfg.Exchange.Simulate)
	if err != nil {
		log.Error("driver unavailable", "error", err)
		return 1
	}

	drv, err := cifx.OpenDriver(api)
	if err != nil {
		log.Error("driver open failed", "code", cifx.CodeOf(err).String(), "error", err)
		return 1
	}
	defer drv.Close()

	sess := session.New(drv, session.Config{
		Channel:      cfg.Exchange.Channel,
		StateTimeout: cfg.Exchange.StateTimeout(),
	}, log, func(prev, next session.State) {
		log.Info("session state", "prev", prev.String(), "next", next.String())
	})
	// the loop closes the session too; Close is idempotent
	defer sess.Close()

	if err := sess.Open(cfg.Exchange.Board); err != nil {
		return 1
	}
	if err := sess.Negotiate(); err != nil {
		return 1
	}

	// --------------------
	// Forward targets
	// --------------------

	fw, err := buildForwarders(cfg, stdout, log)
	if err != nil {
		log.Error("forward setup failed", "error", err)
		return 1
	}
	defer fw.Close()

	// --------------------
	// Operator input
	// --------------------

	q := control.NewQueue(16)
	if *shell {
		sh := control.NewShell(q)
		go sh.Run()
	} else {
		fmt.Fprintln(stdout, banner)
		go func() {
			if err := control.ReadLines(ctx, stdin, stdout, q); err != nil {
				log.Warn("operator input closed", "error", err)
			}
		}()
	}

	if !q.AwaitStart(ctx) {
		log.Info("terminated before the read cycle started")
		return 0
	}

	// --------------------
	// Exchange loop
	// --------------------

	loop, err := exchange.New(exchange.Config{
		Interval:  cfg.Exchange.CycleInterval(),
		IOTimeout: cfg.Exchange.IOTimeout(),
		Verify:    cfg.Exchange.Verify(),
	}, sess, q,
		exchange.WithConsumers(fw.consumers...),
		exchange.WithStatusSinks(fw.sinks...),
		exchange.WithLogger(log),
	)
	if err != nil {
		log.Error("exchange setup failed", "error", err)
		return 1
	}

	stats, err := loop.Run(ctx)
	log.Info("exchange finished", stats.KeyValues()...)
	if err != nil {
		log.Warn("channel close failed", "error", err)
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// openAPI returns the vendor driver, or a simulated device seeded with the current time.
func openAPI(simulate bool) (cifx.API, error) {
	if !simulate {
		return cifx.NewDLL()
	}

	now := time.Now()
	var in record.InputRecord
	in.Timestamp = record.Timestamp{
		Year:    uint16(now.Year()),
		Month:   uint16(now.Month()),
		Day:     uint16(now.Day()),
		Hours:   uint16(now.Hour()),
		Minutes: uint16(now.Minute()),
		Seconds: uint16(now.Second()),
	}
	for v := 0; v < record.ViewCount; v++ {
		for i := range in.Setpoint[v] {
			in.Setpoint[v][i] = uint16(100*(v+1) + i)
		}
	}

	dev := sim.New()
	dev.SetInput(in)
	return dev, nil
}
