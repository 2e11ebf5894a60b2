package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pgstay/api/internal/business/listing"
	"github.com/pgstay/api/internal/business/query"
	"github.com/pgstay/api/internal/business/session"
	"github.com/pgstay/api/internal/platform/config"
	"github.com/pgstay/api/internal/platform/firebase"
	apirouter "github.com/pgstay/api/internal/platform/http"
	"github.com/pgstay/api/internal/platform/identity"
	"github.com/pgstay/api/internal/platform/logger"
	"github.com/pgstay/api/internal/platform/media"
	"github.com/pgstay/api/internal/repository"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sessionSweepEvery  = 5 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load(".env.local", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	gin.SetMode(cfg.GinMode)
	appLogger := logger.New(logger.Config{
		Writer: os.Stdout,
		Level:  cfg.LogLevel,
		JSON:   cfg.LogFormat == "json",
	})

	clients, err := firebase.New(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}
	defer clients.Close()

	if err := firebase.Ping(ctx, clients.Firestore); err != nil {
		log.Fatalf("firestore ping: %v", err)
	}
	appLogger.Info("connected to Firestore",
		"project", cfg.FirebaseProjectID,
		"credentials", clients.CredsSource,
		"auth_mock", cfg.AuthMock,
		"media_mock", cfg.MediaMock,
	)

	listingRepo := repository.NewListingRepository(clients.Firestore)
	userRepo := repository.NewUserRepository(clients.Firestore)
	statsRepo := repository.NewStatsRepository(clients.Firestore)

	var store media.ObjectStore
	if clients.Storage != nil {
		store = media.NewBucketStore(clients.Storage, cfg.StorageBucket)
	}
	mediaHost := media.New(store, media.Config{Mock: cfg.MediaMock})

	identities := identity.New(clients.Auth, identity.Config{Mock: cfg.AuthMock})
	resolver := session.NewResolver(identities, userRepo, appLogger)
	registry := session.NewRegistry()
	unsubscribe := registry.Subscribe(func(c session.Change) {
		appLogger.Info("session change", "kind", string(c.Kind), "uid", c.User.UID, "role", string(c.User.Role))
	})
	defer unsubscribe()
	go sweepSessions(ctx, registry)

	listingService := listing.NewService(listingRepo, statsRepo, mediaHost, query.NewCache(cfg.QueryCacheSize), appLogger)

	router := apirouter.NewRouter(apirouter.Deps{
		Listings:       listingService,
		Sessions:       resolver,
		SignOut:        identities,
		Registry:       registry,
		Logger:         appLogger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	appLogger.Info("server listening", "port", cfg.Port)

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown error", "error", err)
	}
	appLogger.Info("server exited")
}

// sweepSessions ends sessions that have been idle too long until ctx is done.
func sweepSessions(ctx context.Context, registry *session.Registry) {
	ticker := time.NewTicker(sessionSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Expire(sessionIdleTimeout)
		}
	}
}
