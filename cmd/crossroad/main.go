// Command crossroad runs the intersection simulation, either headless for a
// fixed number of ticks or behind the HTTP/WebSocket renderer API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anggasct/crossroad"
	"github.com/anggasct/crossroad/pkg/observers"
	"github.com/anggasct/crossroad/pkg/server"
	"github.com/anggasct/crossroad/pkg/telemetry"
	"github.com/anggasct/crossroad/visualization"
)

type options struct {
	configPath   string
	addr         string
	headless     bool
	tui          bool
	ticks        int
	autostart    bool
	seed         int64
	broadcast    time.Duration
	mqttBroker   string
	reportPrefix string
	reportEvery  uint64
	natsURL      string
	encoding     string
	logLevel     string
	logJSON      bool
	dotPath      string
	validate     bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML configuration file")
	flag.StringVar(&o.addr, "addr", ":8080", "HTTP listen address")
	flag.BoolVar(&o.headless, "headless", false, "run without the HTTP server and print a status board")
	flag.BoolVar(&o.tui, "tui", false, "draw the intersection in the terminal instead of serving HTTP")
	flag.IntVar(&o.ticks, "ticks", 3600, "ticks to simulate in headless mode")
	flag.BoolVar(&o.autostart, "autostart", false, "start ticking without waiting for POST /api/start")
	flag.Int64Var(&o.seed, "seed", 0, "random seed, overrides the configuration when non-zero")
	flag.DurationVar(&o.broadcast, "broadcast", 100*time.Millisecond, "WebSocket snapshot interval")
	flag.StringVar(&o.mqttBroker, "mqtt", "", "MQTT broker URL for queue reports, e.g. tcp://localhost:1883")
	flag.StringVar(&o.reportPrefix, "report-prefix", "crossroad", "topic prefix for queue reports")
	flag.Uint64Var(&o.reportEvery, "report-every", 60, "ticks between queue reports")
	flag.StringVar(&o.natsURL, "nats", "", "NATS server URL for queue reports, e.g. nats://127.0.0.1:4222")
	flag.StringVar(&o.encoding, "report-encoding", "json", "queue report encoding (json, msgpack)")
	flag.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.BoolVar(&o.logJSON, "log-json", false, "log as JSON")
	flag.StringVar(&o.dotPath, "dot", "", "write the signal plan as Graphviz DOT (or SVG for a .svg path) to this file and exit")
	flag.BoolVar(&o.validate, "validate", false, "check invariants after every tick")
	flag.Parse()
	return o
}

func setupLogger(o options) (*logrus.Logger, error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	if o.logJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func main() {
	o := parseFlags()

	logger, err := setupLogger(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.WithError(err).Fatal("crossroad failed")
	}
}

func run(ctx context.Context, o options, logger *logrus.Logger) error {
	cfg := crossroad.DefaultConfig()
	if o.configPath != "" {
		loaded, err := crossroad.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}

	metrics := observers.NewMetricsObserver(cfg.BaseGreenTicks)
	validator := observers.NewValidationObserver()
	builder := crossroad.NewBuilder().
		WithConfig(cfg).
		WithObserver(observers.NewLoggingObserver(logger)).
		WithObserver(metrics)
	if o.validate {
		builder.WithObserver(validator)
	}

	sim, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	if o.dotPath != "" {
		if err := writeSignalPlan(visualization.NewDOTGenerator(cfg), o.dotPath); err != nil {
			return fmt.Errorf("writing signal plan: %w", err)
		}
		logger.WithField("file", o.dotPath).Info("signal plan written")
		return nil
	}

	encoding, err := telemetry.ParseEncoding(o.encoding)
	if err != nil {
		return err
	}
	reportOpts := []telemetry.Option{telemetry.WithLogger(logger), telemetry.WithEncoding(encoding)}

	if o.mqttBroker != "" {
		client, err := telemetry.Connect(o.mqttBroker, "crossroad-"+uuid.NewString(), 10*time.Second)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		publisher := telemetry.NewMQTTPublisher(client, o.reportPrefix, o.reportEvery, reportOpts...)
		defer publisher.Flush()
		sim.AddObserver(publisher)
		logger.WithField("broker", o.mqttBroker).Info("publishing queue reports over MQTT")
	}

	if o.natsURL != "" {
		nc, err := telemetry.ConnectNATS(o.natsURL, "crossroad", 10*time.Second)
		if err != nil {
			return err
		}
		defer nc.Drain()

		sim.AddObserver(telemetry.NewNATSPublisher(nc, o.reportPrefix, o.reportEvery, reportOpts...))
		logger.WithField("url", o.natsURL).Info("publishing queue reports over NATS")
	}

	switch {
	case o.headless:
		err = runHeadless(ctx, sim, o.ticks)
	case o.tui:
		// log lines would tear the screen
		logger.SetLevel(logrus.ErrorLevel)
		err = runTerminal(ctx, sim)
	default:
		err = serve(ctx, sim, o, logger)
	}

	m := metrics.Summary()
	logger.WithFields(logrus.Fields{
		"spawned":        m.Spawned,
		"exited":         m.Exited,
		"queued":         m.Queued,
		"meanWaitTicks":  m.MeanWaitTicks,
		"extendedGreens": m.ExtendedGreens,
	}).Info("run summary")

	if !validator.IsValid() {
		for _, v := range validator.Violations() {
			logger.WithError(v).Error("invariant violation")
		}
		return errors.New("simulation violated its invariants")
	}
	return err
}

func runHeadless(ctx context.Context, sim *crossroad.Simulation, ticks int) error {
	sim.Start()
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			break
		}
		sim.Advance()
	}
	return visualization.RenderStatus(os.Stdout, sim.Snapshot())
}

func serve(ctx context.Context, sim *crossroad.Simulation, o options, logger *logrus.Logger) error {
	if o.autostart {
		sim.Start()
	}

	go func() {
		if err := sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("simulation loop stopped")
		}
	}()

	srv := server.New(sim, server.WithLogger(logger), server.WithBroadcastInterval(o.broadcast))
	return srv.Run(ctx, o.addr)
}

// writeSignalPlan writes DOT, or SVG rendered by Graphviz when path ends in .svg
func writeSignalPlan(g *visualization.DOTGenerator, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".svg") {
		return g.GenerateToFile(path)
	}
	svg, err := g.GenerateSVG()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
