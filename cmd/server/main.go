// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/flockcast/engage/internal/api/rest"
	"github.com/flockcast/engage/internal/app/chat"
	"github.com/flockcast/engage/internal/app/engagement"
	"github.com/flockcast/engage/internal/app/media"
	"github.com/flockcast/engage/internal/app/presence"
	"github.com/flockcast/engage/internal/app/registry"
	"github.com/flockcast/engage/internal/infra/config"
	"github.com/flockcast/engage/internal/infra/logger"
	"github.com/flockcast/engage/internal/infra/store"
)

var (
	app        = kingpin.New("engage-server", "Live session engagement server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	db, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	resolver, err := media.NewResolverFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build media resolver: %w", err)
	}

	reg := registry.New(db)
	stream := chat.NewStream(db, chat.Config{MaxBodyRunes: cfg.Chat.MaxBodyLength})
	counter := presence.NewCounter()
	engage := engagement.NewManager(reg, stream, counter, resolver)

	api := rest.NewServer(cfg, reg, stream, counter, resolver, engage, db)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second,
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
