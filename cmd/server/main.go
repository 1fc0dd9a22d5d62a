package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/fedroom/fedroom/internal/api/http"
	"github.com/fedroom/fedroom/internal/application/authz"
	appMember "github.com/fedroom/fedroom/internal/application/member"
	appMessage "github.com/fedroom/fedroom/internal/application/message"
	appRoom "github.com/fedroom/fedroom/internal/application/room"
	"github.com/fedroom/fedroom/internal/config"
	"github.com/fedroom/fedroom/internal/domain/room"
	"github.com/fedroom/fedroom/internal/infrastructure/federation"
	"github.com/fedroom/fedroom/internal/infrastructure/memory"
	"github.com/fedroom/fedroom/internal/infrastructure/postgres"
	"github.com/fedroom/fedroom/internal/infrastructure/sse"
	"github.com/fedroom/fedroom/internal/roomlock"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	var (
		store    room.Storage
		resolver room.StateResolver
	)
	if cfg.UseMemoryStore {
		mem := memory.NewStorage()
		store = mem
		resolver = mem
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
			log.Fatalf("migration error: %v", err)
		}
		store = postgres.NewRoomRepository(pool)
		resolver = postgres.NewStateResolver(pool)
	}

	// infrastructure
	hub := sse.NewHub()
	defer hub.Stop()
	fedClient := federation.NewClient(cfg.FederationTimeout, cfg.FederationScheme, logger)
	locks := roomlock.New()

	// services
	authSvc := authz.NewService(store, logger)
	messageSvc := appMessage.NewService(store, authSvc, fedClient, hub, locks, logger)
	memberSvc := appMember.NewService(store, authSvc, resolver, fedClient, hub, locks, messageSvc, cfg.ServerName, logger)
	roomSvc := appRoom.NewService(store, memberSvc, cfg.ServerName, logger)

	// API server
	apiServer := httpapi.NewServer(messageSvc, memberSvc, roomSvc, store, hub)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Str("server_name", cfg.ServerName).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
