package categorization

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the repository depends on. Also
// satisfied by pgxmock pools in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the Postgres-backed RuleStore.
type Repository struct {
	db Querier
}

// NewRepository creates a rule repository over a pgx pool.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

var _ RuleStore = (*Repository)(nil)

// ListRules fetches all learned rules, most used first.
func (r *Repository) ListRules(ctx context.Context) ([]Rule, error) {
	query := `
		SELECT pattern_key, category, match_count, last_used_at, created_from
		FROM categorization_rules
		ORDER BY match_count DESC, last_used_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.PatternKey,
			&rule.Category,
			&rule.MatchCount,
			&rule.LastUsedAt,
			&rule.CreatedFrom,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// UpsertRule applies the learner's upsert policy in a single statement, so
// concurrent corrections for the same key cannot lose updates. The CASE
// keeps the increment-vs-reset decision inside the database: an existing
// row with the same category increments match_count; a different category
// overwrites it and resets the count to 1.
func (r *Repository) UpsertRule(ctx context.Context, patternKey, category string, origin Origin) (Rule, bool, error) {
	query := `
		INSERT INTO categorization_rules (pattern_key, category, match_count, last_used_at, created_from)
		VALUES ($1, $2, 1, now(), $3)
		ON CONFLICT (pattern_key) DO UPDATE SET
			category = EXCLUDED.category,
			match_count = CASE
				WHEN categorization_rules.category = EXCLUDED.category
				THEN categorization_rules.match_count + 1
				ELSE 1
			END,
			last_used_at = now(),
			created_from = EXCLUDED.created_from
		RETURNING pattern_key, category, match_count, last_used_at, created_from,
			(xmax <> 0) AS overwritten
	`

	var (
		rule    Rule
		updated bool
	)
	err := r.db.QueryRow(ctx, query, patternKey, category, origin).Scan(
		&rule.PatternKey,
		&rule.Category,
		&rule.MatchCount,
		&rule.LastUsedAt,
		&rule.CreatedFrom,
		&updated,
	)
	if err != nil {
		return Rule{}, false, fmt.Errorf("upsert rule: %w", err)
	}

	// A pre-existing row whose count came back reset to 1 means the
	// category changed hands.
	conflicted := updated && rule.MatchCount == 1

	return rule, conflicted, nil
}
