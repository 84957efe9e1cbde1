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

	router "github.com/dkeye/Hush/internal/adapters/http"
	wsignal "github.com/dkeye/Hush/internal/adapters/signal"
	"github.com/dkeye/Hush/internal/app"
	"github.com/dkeye/Hush/internal/config"
	"github.com/dkeye/Hush/internal/core"
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

	// All room state lives in these stores for the process lifetime
	// only; a restart loses every room.
	rooms := core.NewRoomStore()
	members := core.NewMemberStore()
	history := core.NewMessageLog()
	registry := app.NewRegistry()

	engine := app.NewEngine(rooms, members, history, registry, cfg.EvictGrace)
	monitor := &app.Monitor{
		Registry: registry,
		Engine:   engine,
		Interval: cfg.SweepInterval,
	}
	go monitor.Run(ctx)

	ctl := wsignal.NewController(engine, cfg)
	r := router.SetupRouter(ctx, cfg, engine, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Hush server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
