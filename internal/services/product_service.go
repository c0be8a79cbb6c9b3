package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"flowershop/internal/models"
	"flowershop/internal/repositories"
)

// DefaultSearchLimit is used when callers do not ask for a page size.
const DefaultSearchLimit = 10

// EventPublisher delivers product events to interested consumers.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher // optional
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// CreateProduct validates input and stores it under a freshly generated ID.
func (s *ProductService) CreateProduct(ctx context.Context, input models.NewProduct) (*models.Product, error) {
	if err := models.Validate(input); err != nil {
		return nil, err
	}

	product := input.Product()
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	s.publish(models.ProductCreated, product.ID, &product)
	return &product, nil
}

// GetProduct retrieves a single product by its ID. When the product does not
// exist it returns repositories.ErrProductNotFound if failIfMissing is set,
// and (nil, nil) otherwise.
func (s *ProductService) GetProduct(ctx context.Context, id string, failIfMissing bool) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) && !failIfMissing {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

// SearchProducts lists products whose title or description contains query.
func (s *ProductService) SearchProducts(ctx context.Context, query string, limit, skip int) ([]models.Product, error) {
	if limit < 0 {
		return nil, models.NewValidationError("limit", "Field 'limit' must be greater than or equal to 0")
	}
	if skip < 0 {
		return nil, models.NewValidationError("skip", "Field 'skip' must be greater than or equal to 0")
	}

	products, err := s.repo.Search(ctx, query, limit, skip)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// PatchProduct changes the price and title of a product and returns the
// stored result.
func (s *ProductService) PatchProduct(ctx context.Context, id string, patch models.PatchProduct) (*models.Product, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Patch(ctx, id, patch); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload patched product: %w", err)
	}

	s.publish(models.ProductUpdated, id, product)
	return product, nil
}

// DeleteProduct deletes a product by its ID. Deleting a missing product
// succeeds.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(models.ProductDeleted, id, nil)
	return nil
}

func (s *ProductService) publish(eventType, id string, product *models.Product) {
	if s.events == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", eventType, id, err)
	}
}
