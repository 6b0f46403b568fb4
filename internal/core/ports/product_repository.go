package ports

import (
	"context"

	"github.com/agriscience/catalog/internal/core/domain"
)

// ProductRepository is the durable product collection. Absence of a record
// is reported through the bool results, never as an error.
type ProductRepository interface {
	// List returns every product, newest first.
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, bool, error)
	Create(ctx context.Context, in domain.ProductInput) (domain.Product, error)
	// Update merges patch onto the stored record. ID and CreatedAt are kept.
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}
