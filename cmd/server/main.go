package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	checkinhandler "emargement/internal/checkin/handler"
	checkinservice "emargement/internal/checkin/service"
	"emargement/internal/history"
	"emargement/internal/platform/config"
	"emargement/internal/platform/httpserver"
	"emargement/internal/platform/logger"
	"emargement/internal/platform/metrics"
	"emargement/internal/registry"
	"emargement/internal/scanner"
	httptransport "emargement/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	registrySvc := registry.NewService(log, m)
	checkinSvc := checkinservice.New(registrySvc, history.NewInMemory(cfg.History.Capacity),
		checkinservice.WithLogger(log),
		checkinservice.WithMetrics(m),
	)

	var session *scanner.Session
	if cfg.Scanner.ReadStdin {
		session = scanner.NewSession(
			scanner.NewLineSource(os.Stdin),
			func(ctx context.Context, code string) error {
				_, err := checkinSvc.Scan(ctx, code)
				return err
			},
			scanner.Config{Continuous: cfg.Scanner.Continuous, SettleDelay: cfg.Scanner.SettleDelay},
			scanner.WithLogger(log),
		)
	}

	var control checkinhandler.ScannerControl
	if session != nil {
		control = session
	}
	router := httptransport.NewRouter(log, reg,
		registry.NewHandler(registrySvc, log, cfg.MaxUploadBytes, cfg.Location),
		checkinhandler.New(checkinSvc, control, log, cfg.Location),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting emargement", "addr", cfg.Addr, "history_capacity", cfg.History.Capacity)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if session != nil {
		g.Go(func() error {
			session.Start()
			log.Info("scanner reading codes from stdin", "continuous", cfg.Scanner.Continuous)
			if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
