package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/assistant"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/contact"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/payment"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateJWT(); err != nil {
		log.Fatalf("[API] %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatalf("[API] Failed to run migrations: %v", err)
	}
	log.Println("[API] Connected to PostgreSQL")

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// Stores
	catalogStore := store.NewPostgresCatalogStore(db)
	orderStore := store.NewPostgresOrderStore(db)
	contactStore := store.NewPostgresContactStore(db)
	userStore := store.NewPostgresUserStore(db)
	kv := store.NewMemKV()

	// Payment gateway
	gateway, err := payment.NewClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey)
	if err != nil {
		log.Fatalf("[API] Payment gateway: %v", err)
	}

	// Assistant. Without a completion endpoint it answers heuristically.
	var completer assistant.Completer
	if cfg.AssistantBaseURL != "" {
		completer = assistant.NewClient(cfg.AssistantBaseURL, cfg.AssistantAPIKey, cfg.AssistantModel)
		log.Printf("[API] Assistant model: %s", cfg.AssistantModel)
	} else {
		log.Println("[API] Assistant running without a completion endpoint (heuristic only)")
	}

	// Services
	checkoutSvc := checkout.NewService(orderStore, catalogStore, gateway, producer, cfg.CallbackURL)
	contactSvc := contact.NewService(contactStore, producer)
	assistantSvc := assistant.NewService(catalogStore, completer, kv)
	cartStore := cart.NewStore(kv)

	jwtService := auth.NewJWTService(
		cfg.JWTSecret,
		15*time.Minute, // Access token expiry
		7*24*time.Hour, // Refresh token expiry (7 days)
	)

	router := api.NewRouter(&api.Handlers{
		Catalog:  api.NewCatalogHandlers(catalogStore),
		Cart:     api.NewCartHandlers(cartStore, catalogStore),
		Checkout: api.NewCheckoutHandlers(checkoutSvc, orderStore),
		Contact:  api.NewContactHandlers(contactSvc),
		Chat:     api.NewChatHandlers(assistantSvc),
		Auth:     api.NewAuthHandlers(userStore, jwtService, kv),
		Admin:    api.NewAdminHandlers(catalogStore, orderStore),
	}, jwtService)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
