package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepo is the storage port. Implementations translate their own
// failures into ErrNotFound, ErrConflict and ErrInvalidArgument.
type ProductRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	Query(ctx context.Context, q ProductQuery) ([]Product, int64, error)
	Add(ctx context.Context, p *Product) error
	AddBatch(ctx context.Context, ps []Product) error
	Update(ctx context.Context, p *Product) error
	Remove(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistingSKUs(ctx context.Context, skus []string) ([]string, error)
	Count(ctx context.Context) (int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
