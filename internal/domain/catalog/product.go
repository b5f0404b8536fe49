package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with on-hand stock and a unit price in whole
// currency units.
type Product struct {
	shared.BaseEntity
	Name        string
	Description string
	Stock       int
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	ImageKey    string
}

// NewProduct creates a new product
func NewProduct(name string, price decimal.Decimal, stock int, categoryID uuid.UUID, now time.Time) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product name cannot exceed 200 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product stock cannot be negative")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product category is required")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(now),
		Name:       name,
		Stock:      stock,
		Price:      price,
		CategoryID: categoryID,
	}, nil
}

// CanFulfill reports whether the current stock covers quantity.
func (p *Product) CanFulfill(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// Reserve checks and takes quantity out of the in-memory stock figure.
// Persistence applies the same decrement with a conditional update.
func (p *Product) Reserve(quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if !p.CanFulfill(quantity) {
		return shared.NewInsufficientStockError(p.Name, p.Stock, quantity)
	}
	p.Stock -= quantity
	return nil
}

// ProductRepository is the catalog collaborator used by the order pipeline.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads the product and holds a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	Count(ctx context.Context) (int64, error)

	// DecrementStock subtracts quantity only while stock >= quantity and
	// returns ErrInsufficientStock when no row qualified.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error

	RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error

	SetImageKey(ctx context.Context, id uuid.UUID, key string) error
}
