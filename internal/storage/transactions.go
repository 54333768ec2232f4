package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
)

func saveTransaction(ctx context.Context, db dbtx, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, hash, family_id, category_id, amount, occurred_at, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.GenerateHash(), txn.FamilyID, txn.CategoryID, txn.Amount,
		txn.OccurredAt.UTC(), txn.Description, txn.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", mapConstraintError(err, common.ErrNotFound))
	}

	slog.Debug("saved transaction", "id", txn.ID, "category_id", txn.CategoryID, "amount", txn.Amount.String())
	return nil
}

func getTransactionsByCategory(ctx context.Context, db dbtx, categoryID string) ([]model.Transaction, error) {
	if err := validateString(categoryID, "categoryID"); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, family_id, category_id, amount, occurred_at, description, created_at
		FROM transactions
		WHERE category_id = ?
		ORDER BY occurred_at DESC, id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.FamilyID, &txn.CategoryID, &txn.Amount,
			&txn.OccurredAt, &txn.Description, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func countTransactionsByCategory(ctx context.Context, db dbtx, categoryID string) (int, error) {
	if err := validateString(categoryID, "categoryID"); err != nil {
		return 0, err
	}

	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// SaveTransaction stores a transaction, assigning an ID when it has none.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveTransaction(ctx, s.db, txn)
}

// GetTransactionsByCategory returns a category's transactions, newest first.
func (s *SQLiteStorage) GetTransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionsByCategory(ctx, s.db, categoryID)
}

// CountTransactionsByCategory returns how many transactions reference a category.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByCategory(ctx, s.db, categoryID)
}

// CategoryInUse reports whether any transaction references the category.
func (s *SQLiteStorage) CategoryInUse(ctx context.Context, categoryID string) (bool, error) {
	count, err := s.CountTransactionsByCategory(ctx, categoryID)
	return count > 0, err
}

func (t *sqliteTransaction) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return saveTransaction(ctx, t.tx, txn)
}

func (t *sqliteTransaction) GetTransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getTransactionsByCategory(ctx, t.tx, categoryID)
}

func (t *sqliteTransaction) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return countTransactionsByCategory(ctx, t.tx, categoryID)
}

func (t *sqliteTransaction) CategoryInUse(ctx context.Context, categoryID string) (bool, error) {
	count, err := t.CountTransactionsByCategory(ctx, categoryID)
	return count > 0, err
}
