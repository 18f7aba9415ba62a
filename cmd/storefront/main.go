package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudkitchen/storefront/internal/checkout"
	"github.com/cloudkitchen/storefront/internal/config"
	"github.com/cloudkitchen/storefront/internal/db"
	"github.com/cloudkitchen/storefront/internal/notification"
	"github.com/cloudkitchen/storefront/internal/order"
	"github.com/cloudkitchen/storefront/internal/payment"
	"github.com/cloudkitchen/storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	var orderRepo order.Repository
	switch cfg.Store.Backend {
	case "postgres":
		dbConn, err := db.New(cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbConn.Close()
		orderRepo = order.NewPostgresRepository(dbConn.Pool)
	default:
		orderRepo = order.NewMemoryRepository()
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("Order store ready")

	var notifier notification.Dispatcher = notification.NopDispatcher{}
	if cfg.Webhook.URL != "" {
		webhook := notification.NewWebhookDispatcher(cfg.Webhook.URL, cfg.Webhook.QueueSize)
		defer webhook.Close()
		notifier = webhook
	}

	var gateway payment.Gateway
	if cfg.Payment.GatewayURL != "" {
		gateway = payment.NewHTTPGateway(cfg.Payment.GatewayURL, cfg.Payment.APIKey, cfg.Payment.Currency)
	}

	calc := checkout.NewCalculator(cfg.Checkout.FreeDeliveryThreshold, cfg.Checkout.DeliveryFee)
	svc := order.NewService(orderRepo, calc, gateway, notifier, cfg.App.ClientName)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewRouter(svc, calc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
