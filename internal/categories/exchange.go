package categories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/famney/famney/internal/common"
	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
)

// CatalogueEntry is one category in a YAML catalogue file.
type CatalogueEntry struct {
	Active      *bool  `yaml:"active,omitempty"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	Default     bool   `yaml:"default,omitempty"`
}

// Catalogue is the YAML document shape: "categories: [...]".
type Catalogue struct {
	Categories []CatalogueEntry `yaml:"categories"`
}

// csvRow is one exported category in CSV form.
type csvRow struct {
	ID             string `csv:"id"`
	FamilyID       string `csv:"family_id"`
	Name           string `csv:"name"`
	Type           string `csv:"type"`
	Default        bool   `csv:"default"`
	Active         bool   `csv:"active"`
	Description    string `csv:"description"`
	CreatedAt      string `csv:"created_at"`
	LastModifiedAt string `csv:"last_modified_at"`
}

// ImportResult counts what an import changed.
type ImportResult struct {
	Created   int
	Updated   int
	Unchanged int
}

func (m *Manager) familyCategories(ctx context.Context, familyID string) ([]model.Category, error) {
	return m.store.ListCategories(ctx, service.CategoryFilter{FamilyID: familyID, IncludeInactive: true})
}

// ExportYAML writes every category of the family, inactive ones included.
func (m *Manager) ExportYAML(ctx context.Context, w io.Writer, familyID string) error {
	cats, err := m.familyCategories(ctx, familyID)
	if err != nil {
		return err
	}

	doc := Catalogue{Categories: make([]CatalogueEntry, 0, len(cats))}
	for _, cat := range cats {
		active := cat.IsActive()
		doc.Categories = append(doc.Categories, CatalogueEntry{
			Name:        cat.Name(),
			Type:        cat.Type().String(),
			Description: cat.Description(),
			Default:     cat.IsDefault(),
			Active:      &active,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error writing YAML catalogue: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("error writing YAML catalogue: %w", err)
	}

	slog.Debug("exported categories", "family_id", familyID, "format", "yaml", "count", len(cats))
	return nil
}

// ParseCatalogue reads a YAML catalogue: either a mapping with a top-level
// "categories" key or a bare list of entries. Any other mapping is rejected.
func ParseCatalogue(r io.Reader) ([]CatalogueEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading catalogue: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing catalogue: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}

	switch node.Kind {
	case 0:
		// Empty document
		return nil, nil
	case yaml.SequenceNode:
		var entries []CatalogueEntry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("error parsing catalogue: %w", err)
		}
		return entries, nil
	case yaml.MappingNode:
		if !hasKey(node, "categories") {
			return nil, fmt.Errorf("%w: catalogue has no top-level \"categories\" key", ErrInvalidCategory)
		}
		var doc Catalogue
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error parsing catalogue: %w", err)
		}
		return doc.Categories, nil
	default:
		return nil, fmt.Errorf("%w: catalogue must be a list or a \"categories\" document", ErrInvalidCategory)
	}
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

// ImportYAML merges a YAML catalogue into the family's categories. Entries are
// matched by name, ignoring case. Either every entry is applied or none is.
func (m *Manager) ImportYAML(ctx context.Context, r io.Reader, familyID string) (ImportResult, error) {
	entries, err := ParseCatalogue(r)
	if err != nil {
		return ImportResult{}, err
	}
	return m.importEntries(ctx, familyID, entries)
}

// ImportCSV merges categories exported with ExportCSV. Only the name, type,
// default, active and description columns are read.
func (m *Manager) ImportCSV(ctx context.Context, r io.Reader, familyID string) (ImportResult, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return ImportResult{}, nil
		}
		return ImportResult{}, fmt.Errorf("error parsing CSV catalogue: %w", err)
	}

	entries := make([]CatalogueEntry, 0, len(rows))
	for _, row := range rows {
		active := row.Active
		entries = append(entries, CatalogueEntry{
			Name:        row.Name,
			Type:        row.Type,
			Description: row.Description,
			Default:     row.Default,
			Active:      &active,
		})
	}
	return m.importEntries(ctx, familyID, entries)
}

func (m *Manager) importEntries(ctx context.Context, familyID string, entries []CatalogueEntry) (result ImportResult, err error) {
	familyID = strings.TrimSpace(familyID)
	if familyID == "" {
		return ImportResult{}, fmt.Errorf("%w: missing family ID", ErrInvalidCategory)
	}

	// Validate everything before touching the database
	parsed := make([]model.Category, 0, len(entries))
	for i, entry := range entries {
		categoryType, parseErr := model.ParseCategoryType(entry.Type)
		if parseErr != nil {
			return ImportResult{}, fmt.Errorf("%w: entry %d (%q): %v", ErrInvalidCategory, i+1, entry.Name, parseErr)
		}
		cat := model.NewCategoryWithDescription(familyID, strings.TrimSpace(entry.Name), categoryType,
			entry.Default, strings.TrimSpace(entry.Description))
		if entry.Active != nil && !*entry.Active {
			cat = cat.Deactivate()
		}
		if checkErr := checkCategory(cat); checkErr != nil {
			return ImportResult{}, fmt.Errorf("entry %d (%q): %w", i+1, entry.Name, checkErr)
		}
		parsed = append(parsed, cat)
	}

	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, incoming := range parsed {
		if m.progress != nil {
			m.progress(i, len(parsed))
		}

		existing, lookupErr := tx.GetCategoryByName(ctx, familyID, incoming.Name())
		switch {
		case errors.Is(lookupErr, common.ErrNotFound):
			if _, err = tx.SaveCategory(ctx, incoming); err != nil {
				return ImportResult{}, fmt.Errorf("failed to import %q: %w", incoming.Name(), err)
			}
			result.Created++
		case lookupErr != nil:
			err = lookupErr
			return ImportResult{}, err
		default:
			update, changed := diffCategory(existing, incoming)
			if !changed {
				result.Unchanged++
				continue
			}
			if _, err = tx.SaveCategory(ctx, existing.Update(update)); err != nil {
				return ImportResult{}, fmt.Errorf("failed to import %q: %w", incoming.Name(), err)
			}
			result.Updated++
		}
	}

	if err = tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("failed to commit import: %w", err)
	}
	if m.progress != nil {
		m.progress(len(parsed), len(parsed))
	}

	slog.Info("imported categories",
		"family_id", familyID,
		"created", result.Created,
		"updated", result.Updated,
		"unchanged", result.Unchanged)
	return result, nil
}

// diffCategory builds the update turning existing into incoming. The stored
// name keeps its spelling.
func diffCategory(existing, incoming model.Category) (model.CategoryUpdate, bool) {
	var u model.CategoryUpdate
	if existing.Type() != incoming.Type() {
		t := incoming.Type()
		u.Type = &t
	}
	if existing.Description() != incoming.Description() {
		d := incoming.Description()
		u.Description = &d
	}
	if existing.IsDefault() != incoming.IsDefault() {
		d := incoming.IsDefault()
		u.IsDefault = &d
	}
	if existing.IsActive() != incoming.IsActive() {
		a := incoming.IsActive()
		u.IsActive = &a
	}
	return u, !u.IsEmpty()
}

// ExportCSV writes every category of the family as CSV with a header row.
func (m *Manager) ExportCSV(ctx context.Context, w io.Writer, familyID string) error {
	cats, err := m.familyCategories(ctx, familyID)
	if err != nil {
		return err
	}

	rows := make([]*csvRow, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, &csvRow{
			ID:             cat.ID(),
			FamilyID:       cat.FamilyID(),
			Name:           cat.Name(),
			Type:           cat.Type().String(),
			Default:        cat.IsDefault(),
			Active:         cat.IsActive(),
			Description:    cat.Description(),
			CreatedAt:      cat.CreatedAt().UTC().Format(time.RFC3339),
			LastModifiedAt: cat.LastModifiedAt().UTC().Format(time.RFC3339),
		})
	}

	csvWriter := csv.NewWriter(w)
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	slog.Debug("exported categories", "family_id", familyID, "format", "csv", "count", len(cats))
	return nil
}
