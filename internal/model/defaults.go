package model

// DefaultCategory describes one entry of the catalogue every family starts with.
type DefaultCategory struct {
	Name        string
	Description string
	Type        CategoryType
}

// DefaultCategories is the system catalogue seeded for new families.
var DefaultCategories = []DefaultCategory{
	{Name: "Food & Groceries", Description: "Groceries, restaurants and takeaway", Type: CategoryTypeExpense},
	{Name: "Transportation", Description: "Fuel, public transport and car upkeep", Type: CategoryTypeExpense},
	{Name: "Utilities", Description: "Electricity, water, gas and internet", Type: CategoryTypeExpense},
	{Name: "Entertainment", Description: "Movies, games and outings", Type: CategoryTypeExpense},
	{Name: "Healthcare", Description: "Doctor visits, medicine and insurance", Type: CategoryTypeExpense},
	{Name: "Shopping", Description: "Clothes and household goods", Type: CategoryTypeExpense},
	{Name: "Education", Description: "School fees, books and courses", Type: CategoryTypeExpense},
	{Name: "Salary", Description: "Regular employment income", Type: CategoryTypeIncome},
	{Name: "Freelance Work", Description: "Contract and gig income", Type: CategoryTypeIncome},
	{Name: "Allowance", Description: "Pocket money and allowances", Type: CategoryTypeIncome},
	{Name: "Investments", Description: "Dividends, interest and stock sales", Type: CategoryTypeIncome},
	{Name: "Gifts & Bonus", Description: "Gifts and one-off bonuses", Type: CategoryTypeIncome},
}

// DefaultCategoriesFor builds the default catalogue for familyID.
func DefaultCategoriesFor(familyID string) []Category {
	cats := make([]Category, 0, len(DefaultCategories))
	for _, d := range DefaultCategories {
		cats = append(cats, NewCategoryWithDescription(familyID, d.Name, d.Type, true, d.Description))
	}
	return cats
}
