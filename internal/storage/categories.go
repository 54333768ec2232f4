package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
)

const categoryColumns = `id, family_id, name, category_type, is_default, description,
	created_at, last_modified_at, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		f       model.CategoryFields
		rawType string
	)
	if err := row.Scan(
		&f.ID, &f.FamilyID, &f.Name, &rawType, &f.IsDefault, &f.Description,
		&f.CreatedAt, &f.LastModifiedAt, &f.IsActive,
	); err != nil {
		return model.Category{}, err
	}
	f.Type = storedCategoryType(rawType)
	return model.RestoreCategory(f), nil
}

// storedCategoryType normalizes known types and keeps anything else verbatim
// so HasValidType can still flag it.
func storedCategoryType(raw string) model.CategoryType {
	if parsed, err := model.ParseCategoryType(raw); err == nil {
		return parsed
	}
	return model.CategoryType(raw)
}

// mapConstraintError translates SQLite constraint violations into common errors.
// fkErr is used for foreign key violations, whose meaning depends on the statement.
func mapConstraintError(err error, fkErr error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", common.ErrDuplicateEntry, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", fkErr, err)
	default:
		return err
	}
}

func saveCategory(ctx context.Context, db dbtx, cat model.Category) (model.Category, error) {
	if err := validateCategory(cat); err != nil {
		return model.Category{}, err
	}

	if cat.ID() == "" {
		return insertCategory(ctx, db, cat.AssignID(uuid.NewString()))
	}
	return updateCategory(ctx, db, cat)
}

func insertCategory(ctx context.Context, db dbtx, cat model.Category) (model.Category, error) {
	f := cat.Fields()
	_, err := db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.FamilyID, f.Name, string(storedCategoryType(string(f.Type))), f.IsDefault, f.Description,
		f.CreatedAt.UTC(), f.LastModifiedAt.UTC(), f.IsActive,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to create category %q: %w", f.Name, mapConstraintError(err, common.ErrNotFound))
	}

	slog.Info("created category", "id", f.ID, "family_id", f.FamilyID, "name", f.Name, "type", f.Type)
	return cat, nil
}

func updateCategory(ctx context.Context, db dbtx, cat model.Category) (model.Category, error) {
	f := cat.Fields()
	result, err := db.ExecContext(ctx, `
		UPDATE categories
		SET family_id = ?, name = ?, category_type = ?, is_default = ?, description = ?,
			last_modified_at = ?, is_active = ?
		WHERE id = ?`,
		f.FamilyID, f.Name, string(storedCategoryType(string(f.Type))), f.IsDefault, f.Description,
		f.LastModifiedAt.UTC(), f.IsActive, f.ID,
	)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to update category %s: %w", f.ID, mapConstraintError(err, common.ErrNotFound))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return model.Category{}, fmt.Errorf("category %s: %w", f.ID, common.ErrNotFound)
	}

	slog.Debug("updated category", "id", f.ID, "name", f.Name)
	return cat, nil
}

func getCategory(ctx context.Context, db dbtx, id string) (model.Category, error) {
	if err := validateString(id, "id"); err != nil {
		return model.Category{}, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

func getCategoryByName(ctx context.Context, db dbtx, familyID, name string) (model.Category, error) {
	if err := validateString(familyID, "familyID"); err != nil {
		return model.Category{}, err
	}
	if err := validateString(name, "name"); err != nil {
		return model.Category{}, err
	}

	row := db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE family_id = ? AND name = ?`,
		familyID, strings.TrimSpace(name))
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

func listCategories(ctx context.Context, db dbtx, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateString(filter.FamilyID, "familyID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE family_id = ?`
	args := []any{filter.FamilyID}

	if filter.Type != "" {
		query += ` AND category_type = ?`
		args = append(args, string(filter.Type))
	}
	if !filter.IncludeInactive {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY category_type, name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "family_id", filter.FamilyID, "count", len(categories))
	return categories, nil
}

func deleteCategory(ctx context.Context, db dbtx, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, mapConstraintError(err, common.ErrInUse))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted category", "id", id)
	return nil
}

// SaveCategory inserts or updates a category.
func (s *SQLiteStorage) SaveCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return saveCategory(ctx, s.db, cat)
}

// GetCategory returns the category with the given ID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return getCategory(ctx, s.db, id)
}

// GetCategoryByName returns a family's category by name, ignoring case.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, familyID, name string) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return getCategoryByName(ctx, s.db, familyID, name)
}

// ListCategories returns a family's categories ordered by type and name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listCategories(ctx, s.db, filter)
}

// DeleteCategory physically removes a category.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, s.db, id)
}

// SeedDefaultCategories inserts the given categories for a family in a single
// transaction. Categories whose name already exists for the family are skipped.
// It returns the number of categories inserted.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context, familyID string, cats []model.Category) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(familyID, "familyID"); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	inserted := 0
	for _, cat := range cats {
		if cat.FamilyID() != familyID {
			err = fmt.Errorf("%w: category %q belongs to family %q", ErrInvalidCategory, cat.Name(), cat.FamilyID())
			return 0, err
		}

		_, lookupErr := getCategoryByName(ctx, tx, familyID, cat.Name())
		if lookupErr == nil {
			slog.Debug("default category already present", "family_id", familyID, "name", cat.Name())
			continue
		}
		if !errors.Is(lookupErr, common.ErrNotFound) {
			err = lookupErr
			return 0, err
		}

		if _, err = saveCategory(ctx, tx, cat); err != nil {
			return 0, err
		}
		inserted++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit default categories: %w", err)
	}

	slog.Info("seeded default categories", "family_id", familyID, "inserted", inserted, "skipped", len(cats)-inserted)
	return inserted, nil
}

// Transaction implementations for category operations

func (t *sqliteTransaction) SaveCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return saveCategory(ctx, t.tx, cat)
}

func (t *sqliteTransaction) GetCategory(ctx context.Context, id string) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return getCategory(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, familyID, name string) (model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return model.Category{}, err
	}
	return getCategoryByName(ctx, t.tx, familyID, name)
}

func (t *sqliteTransaction) ListCategories(ctx context.Context, filter service.CategoryFilter) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listCategories(ctx, t.tx, filter)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return deleteCategory(ctx, t.tx, id)
}
