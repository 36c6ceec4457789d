package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Erdaulet0341/taxi-bots/config"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/db"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/devchat"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/geocode"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/handlers"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/rabbitmq"
	"github.com/Erdaulet0341/taxi-bots/internal/adapter/telegram"
	"github.com/Erdaulet0341/taxi-bots/internal/common/middleware"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/repo"
	"github.com/Erdaulet0341/taxi-bots/internal/domain/services"
	"github.com/Erdaulet0341/taxi-bots/internal/i18n"
	"github.com/Erdaulet0341/taxi-bots/internal/menu"
	"github.com/Erdaulet0341/taxi-bots/internal/session"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Log configuration (without secrets)
	log.Printf("Configuration loaded: DB=%s:%s, RabbitMQ=%s:%s, HTTPPort=%s",
		cfg.DBHost, cfg.DBPort, cfg.RabbitMQHost, cfg.RabbitMQPort, cfg.HTTPPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	pool, err := db.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Load the message catalog
	catalog, err := i18n.Load()
	if err != nil {
		log.Fatalf("Failed to load message catalog: %v", err)
	}
	menus := menu.NewBuilder(catalog)

	// Repositories
	users := repo.NewUserRepository(pool)
	drivers := repo.NewDriverRepository(pool)
	passengers := repo.NewPassengerRepository(pool)
	rides := repo.NewRideRepository(pool)

	// Conversation sessions
	sessions := session.NewStore(cfg.DefaultLanguage, cfg.SessionIdleTimeout)
	go sessions.RunJanitor(ctx, time.Minute)

	// Telegram clients. A missing passenger token falls back to the
	// driver bot so single-bot deployments keep working.
	driverBot := telegram.NewClient(cfg.TelegramAPIURL, cfg.DriverBotToken, 10*time.Second)
	passengerBot := driverBot
	if cfg.PassengerBotToken != "" {
		passengerBot = telegram.NewClient(cfg.TelegramAPIURL, cfg.PassengerBotToken, 10*time.Second)
	}

	// Geocoding with a fixed city-center fallback
	resolver := geocode.NewResolver(geocode.NewClient(cfg.GeocoderURL, 10*time.Second))

	// Services
	conversation := services.NewConversationService(
		sessions, catalog, menus, resolver, users, passengers, rides, passengerBot)
	notifier := services.NewNotifyService(
		catalog, menus, users, drivers, driverBot, passengerBot, 0)

	// Telegram long polling for the passenger bot
	poller := telegram.NewPoller(passengerBot, conversation)
	go poller.Run(ctx)

	// Developer chat gateway over WebSocket
	hub := devchat.NewHub(conversation)
	go hub.Run(ctx)

	// Initialize RabbitMQ connection
	rabbitConn, err := rabbitmq.InitRabbitMQ(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to RabbitMQ: %v", err)
		log.Println("Application will start without RabbitMQ functionality")
	} else {
		defer rabbitConn.Close()
		consumer := rabbitmq.NewConsumer(rabbitConn, notifier)
		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Notification consumer stopped: %v", err)
			}
		}()
	}

	// HTTP API
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	notifyHandler := handlers.NewNotifyHandler(notifier)

	apiMux := http.NewServeMux()
	notifyHandler.SetupRoutes(apiMux)

	mux := http.NewServeMux()
	mux.Handle("/internal/", authMiddleware.Wrap(apiMux))
	mux.HandleFunc("/ws/chat", hub.ServeWS)
	mux.HandleFunc("GET /healthz", handlers.Healthz)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting taxi-bots service on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	// Create a deadline for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
