package categorization

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_ListRules(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows([]string{"pattern_key", "category", "match_count", "last_used_at", "created_from"}).
		AddRow("coffee shop", "Meals & Entertainment", 4, now, OriginUserCorrection).
		AddRow("shell oil", "Transportation", 2, now.Add(-time.Hour), OriginManual)

	mock.ExpectQuery("SELECT pattern_key, category, match_count, last_used_at, created_from").
		WillReturnRows(rows)

	repo := NewRepository(mock)
	rules, err := repo.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "coffee shop", rules[0].PatternKey)
	assert.Equal(t, "Meals & Entertainment", rules[0].Category)
	assert.Equal(t, 4, rules[0].MatchCount)
	assert.Equal(t, OriginUserCorrection, rules[0].CreatedFrom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRulesError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT pattern_key").
		WillReturnError(errors.New("connection refused"))

	repo := NewRepository(mock)
	_, err = repo.ListRules(context.Background())
	assert.ErrorContains(t, err, "list rules")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpsertRule(t *testing.T) {
	t.Run("insert", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		mock.ExpectQuery("INSERT INTO categorization_rules").
			WithArgs("coffee shop", "Meals & Entertainment", OriginUserCorrection).
			WillReturnRows(pgxmock.NewRows([]string{"pattern_key", "category", "match_count", "last_used_at", "created_from", "overwritten"}).
				AddRow("coffee shop", "Meals & Entertainment", 1, now, OriginUserCorrection, false))

		repo := NewRepository(mock)
		rule, conflicted, err := repo.UpsertRule(context.Background(), "coffee shop", "Meals & Entertainment", OriginUserCorrection)
		require.NoError(t, err)

		assert.False(t, conflicted)
		assert.Equal(t, 1, rule.MatchCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeat increments count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO categorization_rules").
			WithArgs("coffee shop", "Meals & Entertainment", OriginUserCorrection).
			WillReturnRows(pgxmock.NewRows([]string{"pattern_key", "category", "match_count", "last_used_at", "created_from", "overwritten"}).
				AddRow("coffee shop", "Meals & Entertainment", 3, time.Now(), OriginUserCorrection, true))

		repo := NewRepository(mock)
		rule, conflicted, err := repo.UpsertRule(context.Background(), "coffee shop", "Meals & Entertainment", OriginUserCorrection)
		require.NoError(t, err)

		assert.False(t, conflicted)
		assert.Equal(t, 3, rule.MatchCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("category change reports conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO categorization_rules").
			WithArgs("coffee shop", "Office Supplies", OriginUserCorrection).
			WillReturnRows(pgxmock.NewRows([]string{"pattern_key", "category", "match_count", "last_used_at", "created_from", "overwritten"}).
				AddRow("coffee shop", "Office Supplies", 1, time.Now(), OriginUserCorrection, true))

		repo := NewRepository(mock)
		rule, conflicted, err := repo.UpsertRule(context.Background(), "coffee shop", "Office Supplies", OriginUserCorrection)
		require.NoError(t, err)

		assert.True(t, conflicted)
		assert.Equal(t, "Office Supplies", rule.Category)
		assert.Equal(t, 1, rule.MatchCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO categorization_rules").
			WithArgs("coffee shop", "Meals & Entertainment", OriginUserCorrection).
			WillReturnError(errors.New("deadlock detected"))

		repo := NewRepository(mock)
		_, _, err = repo.UpsertRule(context.Background(), "coffee shop", "Meals & Entertainment", OriginUserCorrection)
		assert.ErrorContains(t, err, "upsert rule")

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
