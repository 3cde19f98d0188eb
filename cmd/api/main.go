package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/client"
	"minecraft-store/internal/config"
	"minecraft-store/internal/logger"
	"minecraft-store/internal/model"
	"minecraft-store/internal/ratelimit"
	"minecraft-store/internal/repository"
	"minecraft-store/internal/server"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	db, err := client.InitDB(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	rdb, err := client.InitRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	tebexClient := client.NewTebexClient(&cfg.Tebex, log)

	webhookEventRepo := repository.NewWebhookEventRepository(db)

	sessions, err := session.NewStore(cfg.Session, cfg.Environment.IsProduction())
	if err != nil {
		return err
	}

	servers := service.ServersFromConfig(cfg.Tebex.Servers, log)
	catalogService := service.NewCatalogService(
		tebexClient,
		servers,
		cache.NewTTL[model.Catalog](cfg.Store.CacheTTL, nil),
		log,
	)
	basketService := service.NewBasketService(tebexClient, catalogService, cfg.BaseURL, log)
	checkoutService := service.NewCheckoutService(tebexClient, basketService, catalogService, log)
	webhookService := service.NewWebhookService(webhookEventRepo, cfg.Tebex.WebhookSecret, log)
	salesService := service.NewSalesService(tebexClient, cache.NewTTL[[]model.Sale](cfg.Store.SalesTTL, nil), log)
	loginService := service.NewLoginService(
		ratelimit.NewRedisLimiter(rdb, cfg.Store.LoginRateLimit, cfg.Store.LoginRateWindow, log),
		cfg.Store.BannedUsers,
		cfg.Store.BannedCountries,
		log,
	)

	srv, err := server.NewServer(server.Services{
		Catalog:  catalogService,
		Basket:   basketService,
		Checkout: checkoutService,
		Webhook:  webhookService,
		Sales:    salesService,
		Login:    loginService,
	},
		sessions,
		webhookEventRepo,
		ratelimit.NewRedisLimiter(rdb, cfg.Store.BasketRateLimit, cfg.Store.BasketRateWindow, log),
		log,
	)
	if err != nil {
		return err
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server",
		zap.String("addr", serverAddr),
		zap.String("environment", cfg.Environment.Name),
		zap.Int("servers", len(servers)),
	)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigChan:
		log.Info("signal received, starting graceful shutdown", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
