// Package categories implements the rules around a family's budget categories:
// creation, editing, soft and hard deletion, seeding and catalogue exchange.
package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
)

// Manager errors.
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
	ErrCategoryInUse   = errors.New("category is used by transactions")
)

// Manager applies category rules on top of a storage backend.
type Manager struct {
	store    service.Storage
	usage    service.UsageChecker
	progress ProgressFunc
}

// ProgressFunc is told how many of total import entries have been applied.
type ProgressFunc func(done, total int)

// Option configures a Manager.
type Option func(*Manager)

// WithUsageChecker replaces the storage-backed usage check used by Delete.
func WithUsageChecker(checker service.UsageChecker) Option {
	return func(m *Manager) {
		if checker != nil {
			m.usage = checker
		}
	}
}

// WithProgress reports import progress to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Manager) {
		m.progress = fn
	}
}

// NewManager creates a manager. By default usage is answered by the storage itself.
func NewManager(store service.Storage, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		usage: store,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRequest describes a new category as entered by a user.
type CreateRequest struct {
	FamilyID    string
	Name        string
	Type        string
	Description string
	IsDefault   bool
}

// Create validates and stores a new active category.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (model.Category, error) {
	categoryType, err := model.ParseCategoryType(req.Type)
	if err != nil {
		return model.Category{}, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	cat := model.NewCategoryWithDescription(
		strings.TrimSpace(req.FamilyID),
		strings.TrimSpace(req.Name),
		categoryType,
		req.IsDefault,
		strings.TrimSpace(req.Description),
	)
	if err := checkCategory(cat); err != nil {
		return model.Category{}, err
	}

	saved, err := m.store.SaveCategory(ctx, cat)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Debug("category created", "id", saved.ID(), "name", saved.Name(), "type", saved.Type())
	return saved, nil
}

// Get returns a category by ID.
func (m *Manager) Get(ctx context.Context, id string) (model.Category, error) {
	return m.store.GetCategory(ctx, id)
}

// Find returns a family's category by name, ignoring case.
func (m *Manager) Find(ctx context.Context, familyID, name string) (model.Category, error) {
	return m.store.GetCategoryByName(ctx, familyID, name)
}

// Resolve looks a category up by ID first and then by name within the family.
func (m *Manager) Resolve(ctx context.Context, familyID, idOrName string) (model.Category, error) {
	cat, err := m.store.GetCategory(ctx, idOrName)
	if err == nil {
		if cat.FamilyID() != familyID {
			return model.Category{}, fmt.Errorf("category %s: %w", idOrName, common.ErrNotFound)
		}
		return cat, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return model.Category{}, err
	}
	return m.store.GetCategoryByName(ctx, familyID, idOrName)
}

// List returns categories matching the filter.
func (m *Manager) List(ctx context.Context, filter service.CategoryFilter) ([]model.Category, error) {
	return m.store.ListCategories(ctx, filter)
}

// Update applies a partial update and stores the result.
func (m *Manager) Update(ctx context.Context, id string, update model.CategoryUpdate) (model.Category, error) {
	if update.IsEmpty() {
		return m.store.GetCategory(ctx, id)
	}
	if update.ID != nil && *update.ID != id {
		return model.Category{}, fmt.Errorf("%w: the ID of a stored category cannot change", ErrInvalidCategory)
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	if update.Type != nil {
		parsed, err := model.ParseCategoryType(string(*update.Type))
		if err != nil {
			return model.Category{}, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
		}
		update.Type = &parsed
	}

	return m.modify(ctx, id, func(cat model.Category) (model.Category, error) {
		updated := cat.Update(update)
		if err := checkCategory(updated); err != nil {
			return model.Category{}, err
		}
		return updated, nil
	})
}

// Activate marks a category as usable again.
func (m *Manager) Activate(ctx context.Context, id string) (model.Category, error) {
	return m.modify(ctx, id, func(cat model.Category) (model.Category, error) {
		return cat.Activate(), nil
	})
}

// Deactivate soft-deletes a category. Default categories may be deactivated.
func (m *Manager) Deactivate(ctx context.Context, id string) (model.Category, error) {
	return m.modify(ctx, id, func(cat model.Category) (model.Category, error) {
		return cat.Deactivate(), nil
	})
}

// modify loads, changes and saves a category inside one database transaction.
func (m *Manager) modify(ctx context.Context, id string, change func(model.Category) (model.Category, error)) (model.Category, error) {
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return model.Category{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var cat model.Category
	cat, err = tx.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}

	cat, err = change(cat)
	if err != nil {
		return model.Category{}, err
	}

	cat, err = tx.SaveCategory(ctx, cat)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to save category: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return model.Category{}, fmt.Errorf("failed to commit category change: %w", err)
	}
	return cat, nil
}

// Delete physically removes a category that is neither a default nor in use.
func (m *Manager) Delete(ctx context.Context, id string) error {
	cat, err := m.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}

	if !cat.CanBeDeleted() {
		return fmt.Errorf("%w: %s", ErrDefaultCategory, cat.Name())
	}

	inUse, err := m.usage.CategoryInUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: %s", ErrCategoryInUse, cat.Name())
	}

	if err := m.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, common.ErrInUse) {
			return fmt.Errorf("%w: %s", ErrCategoryInUse, cat.Name())
		}
		return err
	}

	slog.Info("category deleted", "id", id, "name", cat.Name())
	return nil
}

// SeedDefaults adds the default catalogue to a family and returns how many
// categories were created.
func (m *Manager) SeedDefaults(ctx context.Context, familyID string) (int, error) {
	familyID = strings.TrimSpace(familyID)
	if familyID == "" {
		return 0, fmt.Errorf("%w: missing family ID", ErrInvalidCategory)
	}
	return m.store.SeedDefaultCategories(ctx, familyID, model.DefaultCategoriesFor(familyID))
}

func checkCategory(cat model.Category) error {
	if strings.TrimSpace(cat.FamilyID()) == "" {
		return fmt.Errorf("%w: missing family ID", ErrInvalidCategory)
	}
	if !cat.HasValidName() {
		return fmt.Errorf("%w: name must be 1 to %d characters", ErrInvalidCategory, model.MaxCategoryNameLength)
	}
	if !cat.HasValidType() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, cat.Type())
	}
	return nil
}
