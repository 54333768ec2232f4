package cli

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famney/famney/internal/model"
)

func TestRenderCategoryTable(t *testing.T) {
	cats := []model.Category{
		model.NewCategoryWithDescription("fam", "Grocery Shopping", model.CategoryTypeExpense, true, "Weekly shop"),
		model.NewCategory("fam", "Salary", model.CategoryTypeIncome, false).Deactivate(),
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCategoryTable(&buf, cats))

	out := buf.String()
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Grocery Shopping")
	assert.Contains(t, out, "🍕")
	assert.Contains(t, out, "Expense Category")
	assert.Contains(t, out, "Income Category")
	assert.Contains(t, out, "Weekly shop")
	assert.Contains(t, out, "no")
}

func TestRenderCategoryTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCategoryTable(&buf, nil))
	assert.Contains(t, buf.String(), "No categories found")
}

func TestRenderCategoryDetail(t *testing.T) {
	cat := model.NewCategoryWithDescription("fam", "Salary", model.CategoryTypeIncome, true, "Monthly pay").AssignID("cat-1")

	out := RenderCategoryDetail(cat)
	assert.Contains(t, out, "cat-1")
	assert.Contains(t, out, "Income Category")
	assert.Contains(t, out, "Monthly pay")
	assert.NotContains(t, out, "fails validation")

	invalid := model.NewCategory("fam", "  ", "Savings", false)
	assert.Contains(t, RenderCategoryDetail(invalid), "fails validation")
}

func TestRenderTransactionTable(t *testing.T) {
	txns := []model.Transaction{
		{Amount: decimal.RequireFromString("12.5"), Description: "Market"},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTransactionTable(&buf, txns))
	assert.Contains(t, buf.String(), "12.50")
	assert.Contains(t, buf.String(), "Market")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatTitle("Categories"), HomeIcon)
	assert.Contains(t, FormatPrompt("Continue?"), "→")
}
