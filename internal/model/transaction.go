package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry booked against a category.
type Transaction struct {
	OccurredAt  time.Time
	CreatedAt   time.Time
	ID          string
	FamilyID    string
	CategoryID  string
	Description string
	Amount      decimal.Decimal
}

// GenerateHash creates a hash identifying the same booking entered twice.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.FamilyID,
		t.CategoryID,
		t.OccurredAt.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
