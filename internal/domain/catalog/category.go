package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Category groups products; promotions and missions can target it.
type Category struct {
	ID   uuid.UUID
	Name string
}

// NameContains reports whether the category name contains fragment,
// ignoring case.
func (c Category) NameContains(fragment string) bool {
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(fragment))
}

// CategoryRepository reads categories.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Category, error)
	FindAll(ctx context.Context) ([]Category, error)
}
