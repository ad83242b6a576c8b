package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/bossygit/digital-medical-certificate-system/internal/app"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/config"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/httpserver"
	"github.com/bossygit/digital-medical-certificate-system/internal/platform/logger"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	srv := httpserver.New(cfg.Server, application.Handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting medcert",
			"addr", cfg.Server.Addr,
			"environment", cfg.Server.Environment,
			"postgres", cfg.Database.Enabled(),
			"redis", cfg.Redis.Enabled(),
			"kafka", cfg.Kafka.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return application.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
