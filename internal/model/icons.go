package model

import "strings"

// Category icons.
const (
	ExpenseIcon = "💳"
	IncomeIcon  = "💰"
	NoteIcon    = "📝"
)

type iconGroup struct {
	icon     string
	keywords []string
}

// iconGroups is checked in order and the first group with a keyword contained
// in the name wins, so "Grocery Shopping" resolves to the food icon.
var iconGroups = []iconGroup{
	// Expense
	{icon: "🍕", keywords: []string{"food", "grocery", "restaurant"}},
	{icon: "🚗", keywords: []string{"transport", "car", "gas"}},
	{icon: "⚡", keywords: []string{"utilities", "electricity", "water"}},
	{icon: "🎮", keywords: []string{"entertainment", "movie", "game"}},
	{icon: "🏥", keywords: []string{"healthcare", "medical", "doctor"}},
	{icon: "🛍️", keywords: []string{"shopping", "clothes", "fashion"}},
	{icon: "📚", keywords: []string{"education", "school", "book"}},

	// Income
	{icon: "💼", keywords: []string{"salary", "job", "work"}},
	{icon: "🖥️", keywords: []string{"freelance", "contract", "gig"}},
	{icon: "💝", keywords: []string{"allowance", "pocket"}},
	{icon: "📈", keywords: []string{"investment", "dividend", "stock"}},
	{icon: "🎁", keywords: []string{"gift", "bonus"}},
}

// Icon picks an icon from keywords in the category name. Unnamed categories
// get NoteIcon; names matching no keyword get the DisplayName glyph.
func (c Category) Icon() string {
	if c.name == "" {
		return NoteIcon
	}

	name := strings.ToLower(c.name)
	for _, group := range iconGroups {
		for _, keyword := range group.keywords {
			if strings.Contains(name, keyword) {
				return group.icon
			}
		}
	}

	return c.typeGlyph()
}
