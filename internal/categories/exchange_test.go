package categories

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famney/famney/internal/model"
	"github.com/famney/famney/internal/service"
	"github.com/famney/famney/internal/testutil"
)

func TestParseCatalogue(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNames []string
		wantErr   bool
	}{
		{
			name: "document with categories key",
			input: `categories:
  - name: Groceries
    type: Expense
  - name: Salary
    type: income
    default: true
`,
			wantNames: []string{"Groceries", "Salary"},
		},
		{
			name: "bare list",
			input: `- name: Rent
  type: Expense
  description: Monthly rent
`,
			wantNames: []string{"Rent"},
		},
		{
			name:      "empty document",
			input:     "",
			wantNames: nil,
		},
		{
			name:    "malformed YAML",
			input:   "categories: [name: : :",
			wantErr: true,
		},
		{
			name: "mapping with misspelled categories key",
			input: `categoris:
  - name: Rent
    type: Expense
`,
			wantErr: true,
		},
		{
			name:    "scalar document",
			input:   "just some text",
			wantErr: true,
		},
		{
			name:      "categories key with no entries",
			input:     "categories:\n",
			wantNames: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseCatalogue(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var names []string
			for _, e := range entries {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestManager_ImportYAML(t *testing.T) {
	db := testutil.SetupTestDB(t, testFamily)
	m := NewManager(db.Storage)
	ctx := context.Background()

	existing := db.MustCreateCategory("Rent", model.CategoryTypeExpense)

	input := `categories:
  - name: rent
    type: Expense
    description: Monthly rent
  - name: Pocket Money
    type: income
  - name: Old Hobby
    type: Expense
    active: false
`
	result, err := m.ImportYAML(ctx, strings.NewReader(input), testFamily)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2, Updated: 1}, result)

	rent := db.MustGetCategory("Rent")
	assert.Equal(t, existing.ID(), rent.ID())
	assert.Equal(t, "Rent", rent.Name(), "stored spelling is kept")
	assert.Equal(t, "Monthly rent", rent.Description())

	pocket := db.MustGetCategory("Pocket Money")
	assert.Equal(t, model.CategoryTypeIncome, pocket.Type())

	hobby := db.MustGetCategory("Old Hobby")
	assert.False(t, hobby.IsActive())

	// Importing the same file again changes nothing
	result, err = m.ImportYAML(ctx, strings.NewReader(input), testFamily)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Unchanged: 3}, result)
}

func TestManager_ImportYAML_RejectsUnknownDocument(t *testing.T) {
	db := testutil.SetupTestDB(t, testFamily)
	m := NewManager(db.Storage)
	ctx := context.Background()

	_, err := m.ImportYAML(ctx, strings.NewReader("categoris:\n  - name: Rent\n    type: Expense\n"), testFamily)
	require.ErrorIs(t, err, ErrInvalidCategory)

	_, err = m.Find(ctx, testFamily, "Rent")
	assert.Error(t, err)
}

func TestManager_ImportYAML_AllOrNothing(t *testing.T) {
	db := testutil.SetupTestDB(t, testFamily)
	m := NewManager(db.Storage)
	ctx := context.Background()

	input := `- name: Good
  type: Expense
- name: Bad
  type: Savings
`
	_, err := m.ImportYAML(ctx, strings.NewReader(input), testFamily)
	require.ErrorIs(t, err, ErrInvalidCategory)
	assert.Contains(t, err.Error(), "entry 2")

	cats, err := m.List(ctx, service.CategoryFilter{FamilyID: testFamily, IncludeInactive: true})
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestManager_ExportImportYAML_RoundTrip(t *testing.T) {
	source := testutil.SetupTestDBWithDefaults(t, testFamily)
	src := NewManager(source.Storage)
	ctx := context.Background()

	_, err := src.Deactivate(ctx, source.MustGetCategory("Education").ID())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportYAML(ctx, &buf, testFamily))
	assert.Contains(t, buf.String(), "categories:")
	assert.Contains(t, buf.String(), "Food & Groceries")

	target := testutil.SetupTestDB(t, "family-2")
	dst := NewManager(target.Storage)

	result, err := dst.ImportYAML(ctx, &buf, "family-2")
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCategories), result.Created)

	want, err := src.List(ctx, service.CategoryFilter{FamilyID: testFamily, IncludeInactive: true})
	require.NoError(t, err)
	got, err := dst.List(ctx, service.CategoryFilter{FamilyID: "family-2", IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].Name(), got[i].Name())
		assert.Equal(t, want[i].Type(), got[i].Type())
		assert.Equal(t, want[i].Description(), got[i].Description())
		assert.Equal(t, want[i].IsDefault(), got[i].IsDefault())
		assert.Equal(t, want[i].IsActive(), got[i].IsActive())
		assert.Equal(t, "family-2", got[i].FamilyID())
	}
}

func TestManager_ExportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t, testFamily)
	m := NewManager(db.Storage)
	ctx := context.Background()

	groceries := db.MustCreateCategory("Groceries", model.CategoryTypeExpense)
	db.MustCreateCategory("Salary", model.CategoryTypeIncome)

	var buf bytes.Buffer
	require.NoError(t, m.ExportCSV(ctx, &buf, testFamily))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "family_id", "name", "type", "default", "active",
		"description", "created_at", "last_modified_at",
	}, records[0])
	assert.Equal(t, groceries.ID(), records[1][0])
	assert.Equal(t, testFamily, records[1][1])
	assert.Equal(t, "Groceries", records[1][2])
	assert.Equal(t, "Expense", records[1][3])
	assert.Equal(t, "false", records[1][4])
	assert.Equal(t, "true", records[1][5])
	assert.Equal(t, "Salary", records[2][2])
	assert.Equal(t, "Income", records[2][3])
}

func TestManager_ExportImportCSV(t *testing.T) {
	source := testutil.SetupTestDBWithDefaults(t, testFamily)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, NewManager(source.Storage).ExportCSV(ctx, &buf, testFamily))

	target := testutil.SetupTestDB(t, "family-2")
	result, err := NewManager(target.Storage).ImportCSV(ctx, &buf, "family-2")
	require.NoError(t, err)
	assert.Equal(t, len(model.DefaultCategories), result.Created)

	salary := target.MustGetCategory("Salary")
	assert.True(t, salary.IsDefault())
	assert.True(t, salary.IsIncome())
}
