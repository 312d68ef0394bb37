package categorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
)

// ErrUnconfirmedSuggestion rejects learning from a raw model suggestion.
// Rules grow only from decisions a person made or confirmed.
var ErrUnconfirmedSuggestion = errors.New("categorization: refusing to learn from an unconfirmed model suggestion")

// ChartView is the read side of the chart of accounts the learner needs.
type ChartView interface {
	Contains(name string) bool
}

// Learner turns confirmed categorization decisions into rules.
type Learner struct {
	store  RuleStore
	logger *slog.Logger
}

// NewLearner creates a learner writing to store.
func NewLearner(store RuleStore, logger *slog.Logger) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{store: store, logger: logger}
}

// RecordCategorization persists the decision that tx belongs to category.
// The rule key is the transaction's normalized description; an empty key or
// an Uncategorized decision is a no-op. The category must exist in the
// chart of accounts. When a rule already maps the key to a different
// category, the newer decision wins and the rule's match count restarts.
// Origin ai_suggestion is rejected here: a raw model answer is not a
// decision. Suggestions the user approved go through ConfirmSuggestion so
// the provenance survives.
func (l *Learner) RecordCategorization(ctx context.Context, chart ChartView, tx transactions.Transaction, category string, origin Origin) error {
	if origin == OriginAISuggestion {
		return ErrUnconfirmedSuggestion
	}
	return l.record(ctx, chart, tx, category, origin)
}

// ConfirmSuggestion records an AI suggestion the user approved. The learned
// rule keeps ai_suggestion as its origin.
func (l *Learner) ConfirmSuggestion(ctx context.Context, chart ChartView, tx transactions.Transaction, category string) error {
	return l.record(ctx, chart, tx, category, OriginAISuggestion)
}

func (l *Learner) record(ctx context.Context, chart ChartView, tx transactions.Transaction, category string, origin Origin) error {
	if category == accounts.Uncategorized {
		return nil
	}
	if !chart.Contains(category) {
		return fmt.Errorf("categorization: category %q is not in the chart of accounts", category)
	}

	key := Normalize(tx.Description)
	if key == "" {
		return nil
	}

	rule, overwritten, err := l.store.UpsertRule(ctx, key, category, origin)
	if err != nil {
		return fmt.Errorf("record categorization: %w", err)
	}

	if overwritten {
		l.logger.Warn("rule category overwritten",
			slog.String("pattern_key", key),
			slog.String("category", category),
		)
	} else {
		l.logger.Debug("rule learned",
			slog.String("pattern_key", key),
			slog.String("category", rule.Category),
			slog.Int("match_count", rule.MatchCount),
		)
	}

	return nil
}
