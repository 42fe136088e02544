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

	router "github.com/skylanix/MamieHenriette/internal/adapters/http"
	"github.com/skylanix/MamieHenriette/internal/autorooms"
	"github.com/skylanix/MamieHenriette/internal/config"
	"github.com/skylanix/MamieHenriette/internal/domain"
	"github.com/skylanix/MamieHenriette/internal/gateway"
	"github.com/skylanix/MamieHenriette/internal/settings"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	rdb, err := settings.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	store := settings.NewRedisStore(rdb, "")
	rest := gateway.NewRestClient(cfg.APIBaseURL, cfg.Token, domain.UserID(cfg.BotUserID))
	registry := autorooms.NewRegistry()
	manager := autorooms.NewManager(rest, store, registry)

	loop := autorooms.NewLoop(256)
	go loop.Run(ctx)

	session := gateway.NewSession(cfg.GatewayURL, cfg.Token, gateway.Handlers{
		PresenceUpdate: func(ctx context.Context, ev gateway.PresenceUpdate) {
			loop.Dispatch(func() { manager.HandlePresence(ctx, ev) })
		},
		ReactionAdd: func(ctx context.Context, ev gateway.ReactionAdd) {
			loop.Dispatch(func() { manager.HandleReaction(ctx, ev) })
		},
		MessageCreate: func(ctx context.Context, ev gateway.MessageCreate) {
			loop.Dispatch(func() { manager.HandleFollowUp(ctx, ev) })
		},
	})
	go session.Run(ctx)

	ctl := &router.StatusController{
		Loop:        loop,
		Registry:    registry,
		CallTimeout: cfg.CallTimeout,
	}
	r := router.SetupRouter(cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("status server started")
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
	log.Info().Msg("Bot exited gracefully")
}
