package repositories

import (
	"context"
	"strings"

	"flowershop/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// Create stores product, assigning a new ID when it has none.
	Create(ctx context.Context, product *models.Product) error
	// GetByID returns ErrProductNotFound when nothing matches id.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// Search matches query case-insensitively against title and description.
	// An empty query matches everything. skip is applied before limit and a
	// zero limit returns all remaining matches.
	Search(ctx context.Context, query string, limit, skip int) ([]models.Product, error)
	// Patch sets price and title. It returns ErrProductNotFound when no
	// document was modified, which includes updates that change nothing.
	Patch(ctx context.Context, id string, patch models.PatchProduct) error
	// Delete removes every product matching id. Missing IDs are not an error.
	Delete(ctx context.Context, id string) error
}

func matchesQuery(p models.Product, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// paginate applies skip then limit to an already filtered slice.
func paginate(products []models.Product, limit, skip int) []models.Product {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(products) {
		return []models.Product{}
	}
	products = products[skip:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products
}
