package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"flowershop/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductCollection is the MongoDB collection holding products.
const ProductCollection = "products"

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection(ProductCollection),
	}
}

// EnsureIndexes creates the index backing ID lookups.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create products index: %w", err)
	}
	return nil
}

// Create inserts a new product document.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = models.NewProductID()
	}
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID finds a product by exact ID match.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, idFilter(id)).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Search finds products in natural order using skip and limit.
func (r *MongoProductRepository) Search(ctx context.Context, query string, limit, skip int) ([]models.Product, error) {
	opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, searchFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// Patch sets price and title on the matching document.
func (r *MongoProductRepository) Patch(ctx context.Context, id string, patch models.PatchProduct) error {
	res, err := r.collection.UpdateOne(ctx, idFilter(id), patchUpdate(patch))
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.ModifiedCount != 1 {
		return fmt.Errorf("product with ID %s not modified: %w", id, ErrProductNotFound)
	}
	return nil
}

// Delete removes all documents with the given ID.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteMany(ctx, idFilter(id)); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func idFilter(id string) bson.M {
	return bson.M{"id": id}
}

// searchFilter ORs two case-insensitive regex filters. The query is quoted so
// it is matched as a literal substring.
func searchFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		},
	}
}

func patchUpdate(patch models.PatchProduct) bson.M {
	return bson.M{"$set": bson.M{
		"price": patch.Price,
		"title": patch.Title,
	}}
}
