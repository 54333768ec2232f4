package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
)

func newTestTransaction(categoryID, amount string) *model.Transaction {
	return &model.Transaction{
		FamilyID:    "fam-1",
		CategoryID:  categoryID,
		Amount:      decimal.RequireFromString(amount),
		OccurredAt:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: "test booking " + amount,
	}
}

func TestSQLiteStorage_SaveTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.SaveCategory(ctx, model.NewCategory("fam-1", "Food & Groceries", model.CategoryTypeExpense, true))
	require.NoError(t, err)

	txn := newTestTransaction(cat.ID(), "42.10")
	require.NoError(t, store.SaveTransaction(ctx, txn))
	assert.NotEmpty(t, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())

	txns, err := store.GetTransactionsByCategory(ctx, cat.ID())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, txn.ID, txns[0].ID)
	assert.True(t, decimal.RequireFromString("42.10").Equal(txns[0].Amount))
	assert.True(t, txn.OccurredAt.Equal(txns[0].OccurredAt))
	assert.Equal(t, "test booking 42.10", txns[0].Description)
}

func TestSQLiteStorage_SaveTransaction_Duplicate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.SaveCategory(ctx, model.NewCategory("fam-1", "Utilities", model.CategoryTypeExpense, true))
	require.NoError(t, err)

	require.NoError(t, store.SaveTransaction(ctx, newTestTransaction(cat.ID(), "80")))

	err = store.SaveTransaction(ctx, newTestTransaction(cat.ID(), "80"))
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSQLiteStorage_SaveTransaction_UnknownCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.SaveTransaction(context.Background(), newTestTransaction("missing", "5"))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_SaveTransaction_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	err := store.SaveTransaction(ctx, nil)
	require.ErrorIs(t, err, ErrNilParameter)

	noDate := newTestTransaction("cat", "1")
	noDate.OccurredAt = time.Time{}
	err = store.SaveTransaction(ctx, noDate)
	require.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestSQLiteStorage_CategoryInUse(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	used, err := store.SaveCategory(ctx, model.NewCategory("fam-1", "Salary", model.CategoryTypeIncome, true))
	require.NoError(t, err)
	unused, err := store.SaveCategory(ctx, model.NewCategory("fam-1", "Gifts & Bonus", model.CategoryTypeIncome, true))
	require.NoError(t, err)

	require.NoError(t, store.SaveTransaction(ctx, newTestTransaction(used.ID(), "3000")))
	require.NoError(t, store.SaveTransaction(ctx, newTestTransaction(used.ID(), "150.25")))

	count, err := store.CountTransactionsByCategory(ctx, used.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	inUse, err := store.CategoryInUse(ctx, used.ID())
	require.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = store.CategoryInUse(ctx, unused.ID())
	require.NoError(t, err)
	assert.False(t, inUse)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	inUse, err = tx.CategoryInUse(ctx, used.ID())
	require.NoError(t, err)
	assert.True(t, inUse)
}
