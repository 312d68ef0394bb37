package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

func TestNew(t *testing.T) {
	amount, err := money.NewFromString("-42.00", money.USD)
	require.NoError(t, err)

	tx := New(time.Now(), "SHELL OIL 5744", amount, uuid.New())

	assert.NotEqual(t, uuid.Nil, tx.ID)
	assert.Equal(t, accounts.Uncategorized, tx.Category)
	assert.False(t, tx.IsCategorized())

	tx.Category = "Transportation"
	assert.True(t, tx.IsCategorized())
}

func TestRepository_Save(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	amount, err := money.NewFromString("-12.50", money.USD)
	require.NoError(t, err)
	tx := New(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "SQ *COFFEE SHOP 4821", amount, uuid.New())

	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(tx.ID, tx.SourceFileID, tx.Date, tx.Description, "-12.5", tx.Category).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	require.NoError(t, repo.Save(context.Background(), tx))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateCategory(t *testing.T) {
	t.Run("updates an existing row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		mock.ExpectExec("UPDATE transactions SET category").
			WithArgs(id, "Rent").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewRepository(mock)
		require.NoError(t, repo.UpdateCategory(context.Background(), id, "Rent"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		mock.ExpectExec("UPDATE transactions SET category").
			WithArgs(id, "Rent").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewRepository(mock)
		err = repo.UpdateCategory(context.Background(), id, "Rent")
		assert.ErrorContains(t, err, "not found")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListUncategorized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	fileID := uuid.New()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "source_file_id", "transaction_date", "description", "amount", "category"}).
		AddRow(id, fileID, date, "SQ *COFFEE SHOP 4821", "-12.50", accounts.Uncategorized)

	mock.ExpectQuery("SELECT id, source_file_id, transaction_date, description, amount, category").
		WithArgs(accounts.Uncategorized).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	txs, err := repo.ListUncategorized(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, id, txs[0].ID)
	assert.Equal(t, int64(-1250), txs[0].Amount.Cents())
	assert.False(t, txs[0].IsCategorized())
	require.NoError(t, mock.ExpectationsWereMet())
}
