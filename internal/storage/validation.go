// Package storage provides the data persistence layer for famney.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/famney/famney/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategory checks what the schema requires. Name length and type
// are advisory and left to the caller.
func validateCategory(cat model.Category) error {
	if strings.TrimSpace(cat.FamilyID()) == "" {
		return fmt.Errorf("%w: missing family ID", ErrInvalidCategory)
	}
	if strings.TrimSpace(cat.Name()) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if cat.Type() == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidCategory)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if strings.TrimSpace(txn.FamilyID) == "" {
		return fmt.Errorf("%w: missing family ID", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.CategoryID) == "" {
		return fmt.Errorf("%w: missing category ID", ErrInvalidTransaction)
	}
	if txn.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}
