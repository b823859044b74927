package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	adminhttp "github.com/arthurtosi/Multiroom-Chat-Server/internal/adapters/http"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/adapters/sqlite"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/app"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/config"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/core"
	"github.com/arthurtosi/Multiroom-Chat-Server/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	registry := core.NewRegistry(store)
	if err := registry.LoadPersisted(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load room catalog")
	}

	ln, err := transport.Listen(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start TLS listener")
	}

	server := app.NewServer(store, registry, cfg.ReadLimit)
	go func() {
		if err := server.Serve(ctx, ln); err != nil {
			log.Error().Err(err).Msg("chat server error")
			cancel()
		}
	}()

	admin := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.AdminPort),
		Handler: adminhttp.SetupRouter(cfg, store, registry),
	}
	go func() {
		log.Info().Str("addr", admin.Addr).Msg("admin API started")
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("admin server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("admin server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
