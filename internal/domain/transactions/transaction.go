// Package transactions defines the transaction model consumed by the
// categorization engine.
package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

// Transaction is a single bank or credit-card line item. The amount sign is
// fixed at ingestion (positive income, negative expense) and never altered
// by categorization.
type Transaction struct {
	ID           uuid.UUID
	Date         time.Time
	Description  string
	Amount       money.Amount
	Category     string
	SourceFileID uuid.UUID
}

// New creates a transaction with a fresh ID and no category assigned.
func New(date time.Time, description string, amount money.Amount, sourceFileID uuid.UUID) Transaction {
	return Transaction{
		ID:           uuid.New(),
		Date:         date,
		Description:  description,
		Amount:       amount,
		Category:     accounts.Uncategorized,
		SourceFileID: sourceFileID,
	}
}

// IsCategorized reports whether the transaction carries a concrete category
func (t Transaction) IsCategorized() bool {
	return t.Category != "" && t.Category != accounts.Uncategorized
}
