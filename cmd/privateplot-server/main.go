package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-privateplot/internal/di"
	"github.com/goliatone/go-privateplot/internal/runtimeconfig"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("privateplot-server: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("privateplot-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (optional)")
	envFile := fs.String("env-file", ".env", "Dotenv file loaded before reading PRIVATEPLOT_* variables")
	addr := fs.String("addr", "", "Listen address, overrides config and environment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", *envFile, err)
		}
	}

	cfg, err := runtimeconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer container.Close()

	handler, err := container.Handler()
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := container.Logger()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Addr, "site", cfg.Site.URL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
