package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cineverse/docs" // swagger docs

	"cineverse/internal/ai"
	"cineverse/internal/config"
	"cineverse/internal/db"
	"cineverse/internal/handler"
	"cineverse/internal/logger"
	"cineverse/internal/repository"
	"cineverse/internal/service"
	"cineverse/internal/session"
)

// @title CineVerse API
// @version 1.0
// @description Movies and anime catalog: browsing, live updates, watchlists and AI recommendations.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()
	if d := cfg.Defaulted(); len(d) > 0 {
		log.WithField("keys", d).Info("using defaults for unset env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mongo and redis
	if err := db.InitMongo(ctx, cfg); err != nil {
		log.WithError(err).Fatal("mongo")
	}
	if err := db.EnsureIndexes(ctx, db.DB()); err != nil {
		log.WithError(err).Fatal("mongo indexes")
	}
	store, err := session.NewStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}

	// repos
	contentRepo := repository.NewContentRepository(db.DB())
	userRepo := repository.NewUserRepository(db.DB())
	watchlistRepo := repository.NewWatchlistRepository(db.DB())
	historyRepo := repository.NewHistoryRepository(db.DB())

	// AI flows; without a key the catalog still works and AI endpoints answer 503
	flows := ai.NewFlows(nil)
	model, err := ai.NewModel(cfg.AIProvider, ai.ModelConfigFrom(cfg))
	switch {
	case errors.Is(err, ai.ErrNoAPIKey):
		log.Warn("AI_API_KEY not set, metadata and recommendations disabled")
	case err != nil:
		log.WithError(err).Fatal("ai model")
	default:
		flows = ai.NewFlows(ai.Guard(model, cfg.AIRatePerMin))
		log.WithField("model", model.Name()).Info("ai model ready")
	}

	// services
	authSvc := service.NewAuthService(userRepo, store, cfg.JWTSecret, cfg.JWTTTL)
	if cfg.IDPIssuer != "" && cfg.IDPPublicKeyFile != "" {
		if err := authSvc.WithIdentityProvider(cfg.IDPIssuer, cfg.IDPPublicKeyFile); err != nil {
			log.WithError(err).Fatal("identity provider")
		}
	}
	contentSvc := service.NewContentService(contentRepo)
	watchlistSvc := service.NewWatchlistService(watchlistRepo, contentRepo)
	recSvc := service.NewRecommendService(historyRepo, contentRepo, flows)

	// handlers
	r := handler.NewRouter(handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Content:       handler.NewContentHandler(contentSvc),
		Admin:         handler.NewAdminHandler(contentSvc, recSvc),
		Me:            handler.NewMeHandler(watchlistSvc, recSvc),
		Stream:        handler.NewStreamHandler(contentSvc, cfg.CORSOrigins, cfg.SearchDebounce),
		Authenticator: authSvc,
		Roles:         authSvc,
		Ping:          db.Ping,
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		TrustProxy:    cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("mongo close")
	}
	if err := store.Close(); err != nil {
		log.WithError(err).Warn("redis close")
	}
}
