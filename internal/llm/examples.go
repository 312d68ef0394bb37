package llm

import (
	"context"
	"fmt"

	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
)

// historyLimit caps how much categorized history is pulled per prompt.
const historyLimit = 500

// HistoryLister is the transaction-history dependency of HistorySource.
type HistoryLister interface {
	ListCategorized(ctx context.Context, limit int) ([]transactions.Transaction, error)
}

// HistorySource feeds previously categorized transactions to the classifier
// as prompt examples.
type HistorySource struct {
	history HistoryLister
}

// NewHistorySource creates an example source over stored transactions.
func NewHistorySource(history HistoryLister) *HistorySource {
	return &HistorySource{history: history}
}

var _ ExampleSource = (*HistorySource)(nil)

// Examples returns recent categorized transactions as prompt examples.
func (s *HistorySource) Examples(ctx context.Context) ([]Example, error) {
	txs, err := s.history.ListCategorized(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("llm: load history: %w", err)
	}

	examples := make([]Example, 0, len(txs))
	for _, tx := range txs {
		examples = append(examples, Example{
			Description: tx.Description,
			Category:    tx.Category,
		})
	}
	return examples, nil
}
