//go:build !rp2040 && !rp2350

// Command habitatd runs the habitat controller on a Linux host: SocketCAN
// (or a simulated bus), a serial supervisory link, SQLite settings and a
// Prometheus endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"

	"habitat-go/logger"
	"habitat-go/metrics"
	"habitat-go/services/canbus"
	"habitat-go/services/config"
	"habitat-go/services/controller"
	"habitat-go/services/link"
	"habitat-go/services/settings"
	"habitat-go/services/simulator"
)

var CLI struct {
	Config   string `short:"c" help:"Configuration file (yaml, json or toml)." type:"path"`
	EnvFile  string `help:"Dotenv file loaded before configuration." default:".env"`
	Device   string `help:"Device profile." default:"host"`
	LogLevel string `short:"l" help:"Override the configured log level."`

	CAN      string `help:"SocketCAN interface. Ignored with --simulate." default:"can0"`
	Simulate bool   `help:"Run the field modules in-process instead of using a CAN interface."`
	Serial   string `help:"Serial device for the supervisory link. Empty disables the link."`
	Baud     int    `help:"Serial baud rate." default:"115200"`

	DB      string `help:"SQLite settings database." default:"habitat.db" type:"path"`
	Metrics string `help:"Address for /metrics. Empty disables it." default:":9108"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("habitatd"),
		kong.Description("Environmental habitat controller."),
	)

	if err := godotenv.Load(CLI.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		println("habitatd: env file:", err.Error())
		os.Exit(1)
	}

	cfg, err := config.Load(CLI.Config, CLI.Device)
	if err != nil {
		println("habitatd: config:", err.Error())
		os.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("habitatd failed", "err", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	store, err := settings.OpenSQLite(ctx, CLI.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	if CLI.Metrics != "" {
		srv := &http.Server{Addr: CLI.Metrics, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Infow("metrics listening", "addr", CLI.Metrics)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	var (
		busPort   canbus.Port
		busRedial canbus.Dialer
	)
	if CLI.Simulate {
		mem := canbus.NewMemPort(cfg.Bus.QueueDepth * 4)
		sim := simulator.New(simulator.Options{Port: mem, Log: log})
		go sim.Run(ctx)
		busPort = mem
		log.Infow("using simulated field modules")
	} else {
		b, err := openBus(ctx, CLI.CAN, cfg.Bus.QueueDepth, log)
		if err != nil {
			return err
		}
		defer b.Close()
		busPort, busRedial = b.Port(), b.Redial
	}

	var linkPort link.Port = link.DiscardPort{}
	if CLI.Serial != "" {
		sp, err := link.OpenSerial(CLI.Serial, CLI.Baud)
		if err != nil {
			return err
		}
		defer sp.Close()
		linkPort = sp
		log.Infow("supervisory link open", "device", CLI.Serial, "baud", CLI.Baud)
	} else {
		log.Warnw("no serial device, supervisory link disabled")
	}

	ctl, err := controller.New(ctx, controller.Options{
		Config:   cfg,
		BusPort:   busPort,
		BusRedial: busRedial,
		LinkPort:  linkPort,
		Settings:  store,
		Log:       log,
		Metrics:   rec,
	})
	if err != nil {
		return err
	}
	return ctl.Run(ctx)
}

func metricsMux(reg *prom.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	return mux
}
