// Package categorization implements the transaction categorization and
// rule-learning engine: description normalization, rule matching, the
// external classifier fallback boundary, and learning from user corrections.
package categorization

import (
	"context"
	"time"
)

// Origin records how a rule or categorization came to be.
type Origin string

const (
	OriginUserCorrection Origin = "user_correction"
	OriginAISuggestion   Origin = "ai_suggestion"
	OriginManual         Origin = "manual"
)

// Provenance tags how a category was produced for a transaction.
type Provenance string

const (
	RuleMatched Provenance = "rule_matched"
	AIMatched   Provenance = "ai_matched"
	Unresolved  Provenance = "unresolved"
)

// Rule is a learned mapping from a normalized description key to a category.
// Rules are created and mutated only by the Learner; the Matcher reads them.
type Rule struct {
	PatternKey  string
	Category    string
	MatchCount  int
	LastUsedAt  time.Time
	CreatedFrom Origin
}

// RuleStore is the storage collaborator for learned rules. UpsertRule must
// apply the read-modify-write as one atomic step per pattern key: insert
// with match_count=1; same category again increments match_count and
// refreshes last_used_at; a different category overwrites it and resets
// match_count to 1. The second return value reports whether an existing
// rule's category was overwritten.
type RuleStore interface {
	ListRules(ctx context.Context) ([]Rule, error)
	UpsertRule(ctx context.Context, patternKey, category string, origin Origin) (Rule, bool, error)
}
