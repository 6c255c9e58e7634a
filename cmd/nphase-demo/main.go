// Command nphase-demo serves a small user directory built from nphase
// pipelines.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/muir/nphase/nserve"
)

func main() {
	configPath := flag.String("config", "nphase.yaml", "YAML configuration file")
	dotenv := flag.String("env", ".env", "file with NPHASE_* variables")
	flag.Parse()

	if err := run(*configPath, *dotenv); err != nil {
		fmt.Fprintln(os.Stderr, "nphase-demo:", err)
		os.Exit(1)
	}
}

func run(configPath, dotenv string) error {
	env, err := Environment(dotenv)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(configPath, env)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router, err := routes(cfg, log, reg)
	if err != nil {
		return err
	}

	app := nserve.NewApp("nphase-demo")
	srv := app.AddServer(&http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.Server.ShutdownTimeout)
	app.On(nserve.Shutdown, func(context.Context, *nserve.App) error {
		log.Info("shutting down")
		return nil
	})
	if err := app.Do(nserve.Start); err != nil {
		return errors.Wrap(err, "start")
	}
	log.Info("listening", zap.Stringer("addr", srv.Addr()))

	ctx, stop := signal.NotifyContext(app.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	if err := app.Do(nserve.Stop); err != nil {
		return err
	}
	return app.Do(nserve.Shutdown)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	return log, errors.Wrap(err, "build logger")
}
