// Package testutil provides helpers for tests that need a real database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
	"github.com/famney/famney/internal/storage"
)

// TestDB is a migrated in-memory database scoped to one test.
type TestDB struct {
	Storage  service.Storage
	t        *testing.T
	FamilyID string
}

// SetupTestDB creates a new in-memory test database for familyID.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T, familyID string) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:  store,
		FamilyID: familyID,
		t:        t,
	}
}

// SetupTestDBWithDefaults creates a test database seeded with the default
// categories of familyID.
//
// Example:
//
//	db := testutil.SetupTestDBWithDefaults(t, "family-1")
//	salary := db.MustGetCategory("Salary")
func SetupTestDBWithDefaults(t *testing.T, familyID string) *TestDB {
	t.Helper()

	db := SetupTestDB(t, familyID)
	if _, err := db.Storage.SeedDefaultCategories(context.Background(), familyID, model.DefaultCategoriesFor(familyID)); err != nil {
		t.Fatalf("failed to seed default categories: %v", err)
	}
	return db
}

// MustCreateCategory stores a non-default category for the test family.
func (db *TestDB) MustCreateCategory(name string, categoryType model.CategoryType) model.Category {
	db.t.Helper()

	cat, err := db.Storage.SaveCategory(context.Background(), model.NewCategory(db.FamilyID, name, categoryType, false))
	if err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return cat
}

// MustGetCategory returns the test family's category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name string) model.Category {
	db.t.Helper()

	cat, err := db.Storage.GetCategoryByName(context.Background(), db.FamilyID, name)
	if err != nil {
		db.t.Fatalf("category %q not found: %v", name, err)
	}
	return cat
}

// MustBookTransaction records a transaction against a category.
func (db *TestDB) MustBookTransaction(categoryID, amount string) *model.Transaction {
	db.t.Helper()

	txn := &model.Transaction{
		FamilyID:    db.FamilyID,
		CategoryID:  categoryID,
		Amount:      decimal.RequireFromString(amount),
		OccurredAt:  time.Now(),
		Description: fmt.Sprintf("booking %s", amount),
	}
	if err := db.Storage.SaveTransaction(context.Background(), txn); err != nil {
		db.t.Fatalf("failed to book transaction: %v", err)
	}
	return txn
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
