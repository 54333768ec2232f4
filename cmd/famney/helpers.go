package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/famney/famney/internal/categories"
	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/service"
	"github.com/famney/famney/internal/storage"
)

var openRetry = common.RetryOptions{
	MaxAttempts:  5,
	InitialDelay: 200 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2,
}

// initStorage opens the configured database and brings its schema up to date.
// A database locked by another famney process is retried briefly.
func (a *app) initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := a.cfg.Database.Path

	var store *storage.SQLiteStorage
	err := common.WithRetry(ctx, func() error {
		s, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return common.Permanent(err)
		}

		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			if storage.IsBusy(err) {
				return err
			}
			return common.Permanent(fmt.Errorf("failed to run migrations: %w", err))
		}

		store = s
		return nil
	}, openRetry)
	if err != nil {
		return nil, err
	}

	slog.Debug("opened database", "path", store.Path())
	return store, nil
}

// withManager runs fn with a category manager over freshly opened storage.
func (a *app) withManager(cmd *cobra.Command, fn func(ctx context.Context, m *categories.Manager, store service.Storage) error, opts ...categories.Option) error {
	ctx := cmd.Context()

	store, err := a.initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			common.LogError(err, "failed to close database", common.Fields{"path": a.cfg.Database.Path})
		}
	}()

	return fn(ctx, categories.NewManager(store, opts...), store)
}

// familyID returns the family the command works on.
func (a *app) familyID() (string, error) {
	id := strings.TrimSpace(a.cfg.Family.ID)
	if id == "" {
		return "", common.NewUserError("no family selected: pass --family or set family.id in the config", common.ErrMissingConfig)
	}
	return id, nil
}

// friendlyError turns domain errors into messages for the terminal.
func friendlyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrNotFound):
		return common.NewUserError("category not found", err)
	case errors.Is(err, common.ErrDuplicateEntry):
		return common.NewUserError("a category with this name already exists", err)
	case errors.Is(err, categories.ErrDefaultCategory):
		return common.NewUserError("default categories cannot be deleted, deactivate it instead", err)
	case errors.Is(err, categories.ErrCategoryInUse):
		return common.NewUserError("the category still has transactions, deactivate it instead", err)
	case errors.Is(err, categories.ErrInvalidCategory):
		return common.NewUserError("invalid category", err)
	default:
		return err
	}
}
