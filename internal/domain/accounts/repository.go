package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of *pgxpool.Pool the repository depends on. Also
// satisfied by pgxmock pools in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository handles database access for the Chart of Accounts
type Repository struct {
	db Querier
}

// NewRepository creates a Chart of Accounts repository
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// LoadChart fetches all categories and builds an in-memory chart
func (r *Repository) LoadChart(ctx context.Context) (*Chart, error) {
	query := `
		SELECT category_name, category_type
		FROM chart_of_accounts
		ORDER BY category_name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load chart of accounts: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.Name, &cat.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return NewChart(categories)
}

// AddCategory registers a new category, ignoring duplicates
func (r *Repository) AddCategory(ctx context.Context, cat Category) error {
	if cat.Name == "" || cat.Name == Uncategorized {
		return fmt.Errorf("cannot register category %q", cat.Name)
	}
	if !cat.Type.Valid() {
		return fmt.Errorf("invalid category type %q", cat.Type)
	}

	query := `
		INSERT INTO chart_of_accounts (category_name, category_type)
		VALUES ($1, $2)
		ON CONFLICT (category_name) DO NOTHING
		RETURNING category_name
	`

	var name string
	err := r.db.QueryRow(ctx, query, cat.Name, cat.Type).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil // already present
	}
	return err
}
