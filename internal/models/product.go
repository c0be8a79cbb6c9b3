package models

import (
	"strings"

	"github.com/google/uuid"
)

// PatchProduct holds the fields that may change after a product is created.
// Both fields are required on every update.
type PatchProduct struct {
	Price float64 `json:"price" bson:"price" validate:"required,gte=0.01,lt=10000"`
	Title string  `json:"title" bson:"title" validate:"required,min=3"`
}

// NewProduct is the payload accepted when a product is created.
type NewProduct struct {
	PatchProduct `bson:",inline"`
	Description  string `json:"description" bson:"description" validate:"required,min=20,max=1024"`
	Cover        string `json:"cover" bson:"cover" validate:"required"` // image URL, kept free-form
}

// Product represents a flower stored in the catalog.
type Product struct {
	ID          string  `json:"id" bson:"id" gorm:"primaryKey;type:varchar(32)"`
	Title       string  `json:"title" bson:"title" gorm:"type:text;not null"`
	Price       float64 `json:"price" bson:"price" gorm:"not null"`
	Description string  `json:"description" bson:"description" gorm:"type:varchar(1024);not null"`
	Cover       string  `json:"cover" bson:"cover" gorm:"type:text"`
}

// Product builds an unsaved Product from the create payload.
func (p NewProduct) Product() Product {
	return Product{
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Cover:       p.Cover,
	}
}

// NewProductID returns a random 32 character hex identifier.
func NewProductID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
