package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

// Querier is the subset of *pgxpool.Pool the repository depends on.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists transactions.
type Repository struct {
	db Querier
}

// NewRepository creates a transaction repository over a pgx pool.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// Save inserts a transaction.
func (r *Repository) Save(ctx context.Context, tx Transaction) error {
	query := `
		INSERT INTO transactions (id, source_file_id, transaction_date, description, amount, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		tx.ID,
		tx.SourceFileID,
		tx.Date,
		tx.Description,
		tx.Amount.Decimal().String(),
		tx.Category,
	)
	if err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	return nil
}

// UpdateCategory sets the category on a stored transaction.
func (r *Repository) UpdateCategory(ctx context.Context, id uuid.UUID, category string) error {
	query := `UPDATE transactions SET category = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, category)
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update transaction category: %s not found", id)
	}
	return nil
}

// ListCategorized returns the most recent transactions that carry a real
// category, newest first. Used as grounding history for the classifier.
func (r *Repository) ListCategorized(ctx context.Context, limit int) ([]Transaction, error) {
	query := `
		SELECT id, source_file_id, transaction_date, description, amount, category
		FROM transactions
		WHERE category <> $1
		ORDER BY transaction_date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, accounts.Uncategorized, limit)
	if err != nil {
		return nil, fmt.Errorf("list categorized transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListUncategorized returns transactions still awaiting a category.
func (r *Repository) ListUncategorized(ctx context.Context) ([]Transaction, error) {
	query := `
		SELECT id, source_file_id, transaction_date, description, amount, category
		FROM transactions
		WHERE category = $1
		ORDER BY transaction_date ASC
	`

	rows, err := r.db.Query(ctx, query, accounts.Uncategorized)
	if err != nil {
		return nil, fmt.Errorf("list uncategorized transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	var txs []Transaction
	for rows.Next() {
		var (
			tx     Transaction
			amount string
		)
		if err := rows.Scan(
			&tx.ID,
			&tx.SourceFileID,
			&tx.Date,
			&tx.Description,
			&amount,
			&tx.Category,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := money.NewFromString(amount, money.USD)
		if err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		tx.Amount = parsed
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
