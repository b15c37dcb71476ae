package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumendocs/collab-service/internal/auth"
	"github.com/lumendocs/collab-service/internal/config"
	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/internal/handler"
	"github.com/lumendocs/collab-service/internal/hub"
	"github.com/lumendocs/collab-service/internal/notify"
	"github.com/lumendocs/collab-service/internal/presence"
	"github.com/lumendocs/collab-service/internal/relay"
	"github.com/lumendocs/collab-service/internal/repository"
	"github.com/lumendocs/collab-service/internal/service"
	"github.com/lumendocs/collab-service/pkg/database"
	"github.com/lumendocs/collab-service/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()

	instanceID := uuid.New().String()
	l.Info().Str(log.FieldInstanceID, instanceID).Msg("starting collab service")

	// Document store
	db, err := database.New(&cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.DocumentModel{}); err != nil {
		l.Fatal().Err(err).Msg("failed to run migrations")
	}
	repo := repository.NewGormDocumentRepository(db)

	// Distributed presence store
	presenceStore, err := presence.NewRedisStore(presence.Config{
		Address:       cfg.Redis.Address,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		KeyPrefix:     cfg.Presence.KeyPrefix,
		OpTimeout:     cfg.Presence.OpTimeout,
		PerConnection: cfg.Presence.PerConnection,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize presence store")
	}
	defer presenceStore.Close()
	l.Info().Str("address", cfg.Redis.Address).Msg("connected to presence store")

	// Event relay
	eventRelay, err := relay.NewRedisRelay(relay.Config{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize event relay")
	}
	defer eventRelay.Close()

	// Notification pipeline
	var sink notify.Sink = notify.NopSink{}
	if cfg.Kafka.Enabled {
		kafkaSink, err := notify.NewConfluentSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to initialize notification sink")
		}
		sink = kafkaSink
		l.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("connected to notification pipeline")
	}
	defer sink.Close()

	wsHub := hub.NewHub()
	collabSvc := service.NewCollabService(wsHub, repo, presenceStore, eventRelay, sink, instanceID)

	// Relayed events are push-only; one subscriber per relay channel.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subscribers := []*relay.Subscriber{
		eventRelay.NewSubscriber(relay.ChannelUpdates, instanceID, collabSvc.HandleRelayed),
		eventRelay.NewSubscriber(relay.ChannelCursor, instanceID, collabSvc.HandleRelayed),
		eventRelay.NewSubscriber(relay.ChannelPresence, instanceID, collabSvc.HandleRelayed),
	}
	for _, sub := range subscribers {
		go sub.Run(ctx)
	}

	verifier := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)
	wsHandler := handler.NewWSHandler(wsHub, collabSvc, verifier, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(collabSvc)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(l))
	wsHandler.RegisterRoutes(router)
	httpHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		l.Info().Str("address", server.Addr).Msg("collab service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down collab service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("server forced to shutdown")
	}

	cancel()
	for _, sub := range subscribers {
		select {
		case <-sub.Done():
		case <-shutdownCtx.Done():
		}
	}

	l.Info().Msg("collab service stopped")
}
