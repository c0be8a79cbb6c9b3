package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowershop/internal/config"
	"flowershop/internal/database"
	"flowershop/internal/models"
	"flowershop/internal/repositories"
	"flowershop/internal/server"
	"flowershop/internal/services"
	"flowershop/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Storage ---
	ctx := context.Background()
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, err := database.Open(connectCtx, cfg.Storage)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer backend.Close(ctx)

	if cfg.Storage.Driver == config.DriverMemory {
		seedProducts(ctx, backend.Products)
	}

	// --- Product events (optional) ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient

		if cfg.ConsumeEvents {
			if err := mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
	}

	// --- Services ---
	opts := server.Options{
		Products: services.NewProductService(backend.Products, events),
	}
	if cfg.AuthEnabled {
		opts.Auth = services.NewAuthService(backend.Users, cfg.JWTSecret)
	}

	app := server.NewApp(opts)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seedProducts fills an empty in-memory catalog with a few flowers.
func seedProducts(ctx context.Context, repo repositories.ProductRepository) {
	products := []models.Product{
		{Title: "Chamomile", Price: 125, Description: "A gentle flower with white petals around a bright yellow heart.", Cover: "https://images.example.com/chamomile.webp"},
		{Title: "Red rose", Price: 325, Description: "Long stemmed garden rose with deep red velvet petals.", Cover: "https://images.example.com/rose.webp"},
		{Title: "Tulip", Price: 80, Description: "Spring tulip that opens wide in the morning sun.", Cover: "https://images.example.com/tulip.webp"},
	}

	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Title, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Title, products[i].ID)
		}
	}
}
