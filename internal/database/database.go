// Package database opens the configured storage backend and exposes its
// repositories.
package database

import (
	"context"
	"fmt"
	"log"

	"flowershop/internal/config"
	"flowershop/internal/models"
	"flowershop/internal/repositories"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Backend bundles the repositories of one storage driver.
type Backend struct {
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	close    func(ctx context.Context) error
}

// Close releases the underlying connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openGORM(postgres.Open(cfg.DSN))
	case config.DriverSQLite:
		return openGORM(sqlite.Open(cfg.DSN))
	case config.DriverMemory:
		return &Backend{
			Products: repositories.NewMemoryProductRepository(),
			Users:    repositories.NewMemoryUserRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.StorageConfig) (*Backend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	products := repositories.NewMongoProductRepository(db)
	users := repositories.NewMongoUserRepository(db)
	if err := products.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}

	log.Printf("Connected to MongoDB database %s", cfg.MongoDatabase)
	return &Backend{
		Products: products,
		Users:    users,
		close:    client.Disconnect,
	}, nil
}

func openGORM(dialector gorm.Dialector) (*Backend, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	log.Printf("Connected to %s database", dialector.Name())
	return &Backend{
		Products: repositories.NewGORMProductRepository(db),
		Users:    repositories.NewGORMUserRepository(db),
		close:    func(context.Context) error { return sqlDB.Close() },
	}, nil
}
