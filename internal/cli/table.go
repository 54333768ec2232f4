package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/famney/famney/internal/model"
)

var categoryHeaders = []string{"", "Name", "Type", "Default", "Active", "Description"}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func typeStyle(cat model.Category) lipgloss.Style {
	switch {
	case cat.IsExpense():
		return ExpenseStyle
	case cat.IsIncome():
		return IncomeStyle
	default:
		return SubtleStyle
	}
}

// RenderCategoryTable writes cats as a table with one row per category.
func RenderCategoryTable(w io.Writer, cats []model.Category) error {
	if len(cats) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No categories found"))
		return err
	}

	rows := make([][]string, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, []string{
			cat.Icon(),
			cat.DisplayName(),
			cat.TypeDisplay(),
			yesNo(cat.IsDefault()),
			yesNo(cat.IsActive()),
			cat.Description(),
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(categoryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 2 && row >= 0 && row < len(cats) {
				return typeStyle(cats[row]).PaddingRight(2)
			}
			if row >= 0 && row < len(cats) && !cats[row].IsActive() {
				return SubtleStyle.PaddingRight(2)
			}
			return TableCellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderCategoryDetail describes a single category in a box.
func RenderCategoryDetail(cat model.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:            %s\n", cat.ID())
	fmt.Fprintf(&b, "Family:        %s\n", cat.FamilyID())
	fmt.Fprintf(&b, "Type:          %s\n", typeStyle(cat).Render(cat.TypeDisplay()))
	fmt.Fprintf(&b, "Default:       %s\n", yesNo(cat.IsDefault()))
	fmt.Fprintf(&b, "Active:        %s\n", yesNo(cat.IsActive()))
	if cat.Description() != "" {
		fmt.Fprintf(&b, "Description:   %s\n", cat.Description())
	}
	fmt.Fprintf(&b, "Created:       %s\n", cat.CreatedAt().Local().Format(time.DateTime))
	fmt.Fprintf(&b, "Last modified: %s", cat.LastModifiedAt().Local().Format(time.DateTime))

	if !cat.HasValidName() || !cat.HasValidType() {
		b.WriteString("\n" + FormatWarning("This category fails validation"))
	}

	return RenderBox(cat.Icon()+" "+cat.Name(), b.String())
}

// RenderTransactionTable writes transactions booked against one category.
func RenderTransactionTable(w io.Writer, txns []model.Transaction) error {
	if len(txns) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No transactions found"))
		return err
	}

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, []string{
			txn.OccurredAt.Format(time.DateOnly),
			txn.Amount.StringFixed(2),
			txn.Description,
		})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Date", "Amount", "Description").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
