package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCategoryNameLength is the longest trimmed name HasValidName accepts.
const MaxCategoryNameLength = 50

// ErrInvalidCategoryType is returned when a string names neither category type.
var ErrInvalidCategoryType = errors.New("invalid category type")

// CategoryType indicates whether a category classifies income or expenses.
type CategoryType string

const (
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "Expense"
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "Income"
)

// ParseCategoryType matches s against the known types, ignoring case and
// surrounding whitespace.
func ParseCategoryType(s string) (CategoryType, error) {
	trimmed := strings.TrimSpace(s)
	switch {
	case strings.EqualFold(trimmed, string(CategoryTypeExpense)):
		return CategoryTypeExpense, nil
	case strings.EqualFold(trimmed, string(CategoryTypeIncome)):
		return CategoryTypeIncome, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategoryType, s)
	}
}

// IsValid reports whether t names a known category type, ignoring case.
// Surrounding whitespace makes it invalid.
func (t CategoryType) IsValid() bool {
	return strings.EqualFold(string(t), string(CategoryTypeExpense)) ||
		strings.EqualFold(string(t), string(CategoryTypeIncome))
}

func (t CategoryType) String() string {
	return string(t)
}

// now is the clock used to stamp timestamps. Tests replace it.
var now = time.Now

// Category is a named bucket used to classify a family's transactions.
//
// Category is a value type: Update and the helpers built on it return a new
// Category and leave the receiver untouched.
type Category struct {
	createdAt      time.Time
	lastModifiedAt time.Time
	id             string
	familyID       string
	name           string
	description    string
	categoryType   CategoryType
	isDefault      bool
	isActive       bool
}

// CategoryFields is the complete persisted state of a Category.
type CategoryFields struct {
	CreatedAt      time.Time
	LastModifiedAt time.Time
	ID             string
	FamilyID       string
	Name           string
	Description    string
	Type           CategoryType
	IsDefault      bool
	IsActive       bool
}

// NewCategory creates an active category without a description.
func NewCategory(familyID, name string, categoryType CategoryType, isDefault bool) Category {
	return NewCategoryWithDescription(familyID, name, categoryType, isDefault, "")
}

// NewCategoryWithDescription creates an active category.
func NewCategoryWithDescription(familyID, name string, categoryType CategoryType, isDefault bool, description string) Category {
	ts := now()
	return Category{
		familyID:       familyID,
		name:           name,
		categoryType:   categoryType,
		isDefault:      isDefault,
		description:    description,
		createdAt:      ts,
		lastModifiedAt: ts,
		isActive:       true,
	}
}

// NewBlankCategory returns an active, non-default category with both
// timestamps set and every other field unset. Callers must fill in the
// family, name and type before persisting it.
func NewBlankCategory() Category {
	ts := now()
	return Category{
		createdAt:      ts,
		lastModifiedAt: ts,
		isActive:       true,
	}
}

// RestoreCategory rebuilds a category from persisted state. Values are used
// verbatim; nothing is stamped.
func RestoreCategory(f CategoryFields) Category {
	return Category{
		id:             f.ID,
		familyID:       f.FamilyID,
		name:           f.Name,
		categoryType:   f.Type,
		isDefault:      f.IsDefault,
		description:    f.Description,
		createdAt:      f.CreatedAt,
		lastModifiedAt: f.LastModifiedAt,
		isActive:       f.IsActive,
	}
}

// Fields returns the complete state of c.
func (c Category) Fields() CategoryFields {
	return CategoryFields{
		ID:             c.id,
		FamilyID:       c.familyID,
		Name:           c.name,
		Type:           c.categoryType,
		IsDefault:      c.isDefault,
		Description:    c.description,
		CreatedAt:      c.createdAt,
		LastModifiedAt: c.lastModifiedAt,
		IsActive:       c.isActive,
	}
}

// ID returns the storage identifier, or "" if the category was never saved.
func (c Category) ID() string { return c.id }

// FamilyID returns the owning household.
func (c Category) FamilyID() string { return c.familyID }

// Name returns the human readable label.
func (c Category) Name() string { return c.name }

// Type returns the category type.
func (c Category) Type() CategoryType { return c.categoryType }

// IsDefault reports whether the category is part of the system catalogue.
func (c Category) IsDefault() bool { return c.isDefault }

// Description returns the optional free text description.
func (c Category) Description() string { return c.description }

// CreatedAt returns the construction time.
func (c Category) CreatedAt() time.Time { return c.createdAt }

// LastModifiedAt returns the time of the last update.
func (c Category) LastModifiedAt() time.Time { return c.lastModifiedAt }

// IsActive reports whether the category has not been soft deleted.
func (c Category) IsActive() bool { return c.isActive }

// CategoryUpdate lists the fields to change. Nil fields are left alone.
type CategoryUpdate struct {
	ID          *string
	FamilyID    *string
	Name        *string
	Type        *CategoryType
	IsDefault   *bool
	Description *string
	IsActive    *bool
}

// IsEmpty reports whether u changes nothing.
func (u CategoryUpdate) IsEmpty() bool {
	return u.ID == nil && u.FamilyID == nil && u.Name == nil && u.Type == nil &&
		u.IsDefault == nil && u.Description == nil && u.IsActive == nil
}

// Update returns a copy of c with the fields of u applied and LastModifiedAt
// refreshed. CreatedAt never changes.
func (c Category) Update(u CategoryUpdate) Category {
	if u.ID != nil {
		c.id = *u.ID
	}
	if u.FamilyID != nil {
		c.familyID = *u.FamilyID
	}
	if u.Name != nil {
		c.name = *u.Name
	}
	if u.Type != nil {
		c.categoryType = *u.Type
	}
	if u.IsDefault != nil {
		c.isDefault = *u.IsDefault
	}
	if u.Description != nil {
		c.description = *u.Description
	}
	if u.IsActive != nil {
		c.isActive = *u.IsActive
	}
	c.lastModifiedAt = now()
	return c
}

// AssignID returns a copy of c carrying the storage identifier id.
func (c Category) AssignID(id string) Category {
	return c.Update(CategoryUpdate{ID: &id})
}

// Rename returns a copy of c called name.
func (c Category) Rename(name string) Category {
	return c.Update(CategoryUpdate{Name: &name})
}

// Activate returns an active copy of c.
func (c Category) Activate() Category {
	active := true
	return c.Update(CategoryUpdate{IsActive: &active})
}

// Deactivate returns a soft deleted copy of c.
func (c Category) Deactivate() Category {
	active := false
	return c.Update(CategoryUpdate{IsActive: &active})
}

// WithLastModifiedAt returns a copy of c with LastModifiedAt set to t as is.
// No ordering against CreatedAt is enforced.
func (c Category) WithLastModifiedAt(t time.Time) Category {
	c.lastModifiedAt = t
	return c
}

// IsExpense reports whether c classifies expenses.
func (c Category) IsExpense() bool {
	return strings.EqualFold(string(c.categoryType), string(CategoryTypeExpense))
}

// IsIncome reports whether c classifies income. It is not the negation of
// IsExpense: an unset type is neither.
func (c Category) IsIncome() bool {
	return strings.EqualFold(string(c.categoryType), string(CategoryTypeIncome))
}

// CanBeDeleted reports whether the category may be removed at all. Default
// categories never can. Whether transactions still reference the category
// is decided by the transaction store, not here.
func (c Category) CanBeDeleted() bool {
	return !c.isDefault
}

// HasValidName reports whether the trimmed name is non-empty and at most
// MaxCategoryNameLength characters long.
func (c Category) HasValidName() bool {
	trimmed := strings.TrimSpace(c.name)
	return trimmed != "" && utf8.RuneCountInString(trimmed) <= MaxCategoryNameLength
}

// HasValidType reports whether the type is Expense or Income.
func (c Category) HasValidType() bool {
	return c.IsExpense() || c.IsIncome()
}

// DisplayName prefixes the name with the expense or income glyph.
func (c Category) DisplayName() string {
	return c.typeGlyph() + " " + c.name
}

// TypeDisplay returns "Expense Category" or "Income Category".
func (c Category) TypeDisplay() string {
	if c.IsExpense() {
		return "Expense Category"
	}
	return "Income Category"
}

func (c Category) typeGlyph() string {
	if c.IsExpense() {
		return ExpenseIcon
	}
	return IncomeIcon
}

func (c Category) String() string {
	return fmt.Sprintf("Category{ID:%q FamilyID:%q Name:%q Type:%q Default:%t Active:%t}",
		c.id, c.familyID, c.name, c.categoryType, c.isDefault, c.isActive)
}
