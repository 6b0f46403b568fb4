package ports

import (
	"context"

	"github.com/agriscience/catalog/internal/core/domain"
)

// ListProductsFilter narrows the catalog listing. Empty fields match everything.
type ListProductsFilter struct {
	Category string // case-insensitive exact match
	Query    string // case-insensitive substring over name, description and origin
}

// ProductService defines use-case operations for the catalog.
type ProductService interface {
	ListProducts(ctx context.Context, filter ListProductsFilter) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
