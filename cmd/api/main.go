package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenhair/storefront-api/internal/api"
	"github.com/lumenhair/storefront-api/internal/api/handler"
	"github.com/lumenhair/storefront-api/internal/api/session"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
	"github.com/lumenhair/storefront-api/internal/core/service"
	mongodb "github.com/lumenhair/storefront-api/internal/infrastructure/db/mongo"
	redisdb "github.com/lumenhair/storefront-api/internal/infrastructure/db/redis"
	"github.com/lumenhair/storefront-api/internal/infrastructure/mail"
	"github.com/lumenhair/storefront-api/internal/infrastructure/queue"
	"github.com/lumenhair/storefront-api/internal/pkg/config"
	"github.com/lumenhair/storefront-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title        Storefront API
// @version      1.0
// @description  Accounts, catalog, carts and wishlists for the storefront.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is configured from cfg, so fall back to a bootstrap one.
		boot := logger.Init(logger.Options{Pretty: true, Service: "storefront-api"})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "storefront-api",
	})

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Password reset delivery ---
	var mailer ports.Mailer = mail.NewLogMailer(logger.Component("mail"))
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	dispatcher := queue.NewDispatcher(cfg.NotifyWorkers, mailer, logger.Component("notifier"))
	dispatcher.Start(ctx)

	// --- Services ---
	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	catalog := service.NewCatalogService(products)
	auth := service.NewAuthService(users, dispatcher, logger.Component("auth"), service.AuthOptions{
		ResetTTL:    cfg.ResetTTL,
		FrontendURL: cfg.FrontendURL,
	})
	carts := service.NewCartService(
		mongodb.NewCartRepository(db),
		redisdb.NewGuestCartStore(rdb, cfg.Cart.GuestTTL),
		catalog,
		domain.ParseMergePolicy(cfg.Cart.SnapshotPolicy),
		logger.Component("cart"),
	)
	wishlist := service.NewWishlistService(users, products, catalog, logger.Component("wishlist"))

	e := api.NewRouter(api.Deps{
		Log:          logger.Component("http"),
		CORSOrigins:  cfg.CORSOrigins,
		Cookies:      session.NewCookies(cfg.IsProduction(), cfg.TokenTTL, cfg.Cart.GuestTTL),
		MergeOnLogin: cfg.Cart.MergeOnLogin,
		Tokens:       tokens,
		Auth:         auth,
		Catalog:      catalog,
		Carts:        carts,
		Wishlist:     wishlist,
		Readiness: map[string]handler.Pinger{
			"mongodb": mongodb.NewPinger(db),
			"redis":   redisdb.NewPinger(rdb),
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	// No request can enqueue a notice any more; flush what is queued.
	dispatcher.Stop()

	log.Info().Msg("server exited properly")
}
