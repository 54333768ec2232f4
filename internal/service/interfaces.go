// Package service defines the interfaces shared between application layers.
package service

import (
	"context"

	"github.com/famney/famney/internal/model"
)

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	FamilyID string
	// Type restricts results to one category type when set.
	Type            model.CategoryType
	IncludeInactive bool
}

// CategoryStore loads and saves categories by identifier.
type CategoryStore interface {
	// SaveCategory inserts the category when it has no ID yet (assigning one)
	// and updates it otherwise. The stored value is returned.
	SaveCategory(ctx context.Context, category model.Category) (model.Category, error)
	GetCategory(ctx context.Context, id string) (model.Category, error)
	GetCategoryByName(ctx context.Context, familyID, name string) (model.Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// TransactionStore records transactions booked against categories.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error)
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
	UsageChecker
}

// UsageChecker reports whether transactions still reference a category.
type UsageChecker interface {
	CategoryInUse(ctx context.Context, categoryID string) (bool, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	TransactionStore

	// SeedDefaultCategories inserts categories for a family atomically,
	// skipping names the family already has, and returns how many were added.
	SeedDefaultCategories(ctx context.Context, familyID string, categories []model.Category) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	CategoryStore
	TransactionStore
	Commit() error
	Rollback() error
}
