package categorization

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

type fakeClassifier struct {
	category        string
	err             error
	delay           time.Duration
	calls           int
	lastDescription string
}

func (f *fakeClassifier) Classify(ctx context.Context, description string, _ money.Amount, _ []string) (string, error) {
	f.calls++
	f.lastDescription = description
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.category, f.err
}

func testTransaction(t *testing.T, description string) transactions.Transaction {
	t.Helper()
	amount, err := money.NewFromString("-12.50", money.USD)
	if err != nil {
		t.Fatal(err)
	}
	return transactions.New(time.Now(), description, amount, uuid.Nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFallbackAdapter_SuggestCategory(t *testing.T) {
	allowed := []string{"Meals & Entertainment", "Office Supplies"}
	tx := testTransaction(t, "SQ *COFFEE SHOP 4821")

	t.Run("valid suggestion passes through", func(t *testing.T) {
		fc := &fakeClassifier{category: "Meals & Entertainment"}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())
		assert.Equal(t, "Meals & Entertainment", a.SuggestCategory(context.Background(), tx, allowed))
	})

	t.Run("classifier receives the cleaned description", func(t *testing.T) {
		fc := &fakeClassifier{category: "Meals & Entertainment"}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())

		a.SuggestCategory(context.Background(), tx, allowed)
		assert.Equal(t, "coffee shop", fc.lastDescription)
	})

	t.Run("empty key skips the call", func(t *testing.T) {
		fc := &fakeClassifier{category: "Meals & Entertainment"}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())

		noise := testTransaction(t, "POS DEBIT CARD PURCHASE 00001234")
		assert.Equal(t, accounts.Uncategorized, a.SuggestCategory(context.Background(), noise, allowed))
		assert.Zero(t, fc.calls)
	})

	t.Run("unknown category degrades to Uncategorized", func(t *testing.T) {
		fc := &fakeClassifier{category: "Lottery Winnings"}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())
		assert.Equal(t, accounts.Uncategorized, a.SuggestCategory(context.Background(), tx, allowed))
	})

	t.Run("classifier error degrades to Uncategorized", func(t *testing.T) {
		fc := &fakeClassifier{err: errors.New("upstream 500")}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())
		assert.Equal(t, accounts.Uncategorized, a.SuggestCategory(context.Background(), tx, allowed))
	})

	t.Run("timeout degrades to Uncategorized", func(t *testing.T) {
		fc := &fakeClassifier{category: "Meals & Entertainment", delay: 500 * time.Millisecond}
		a := NewFallbackAdapter(fc, 20*time.Millisecond, 100, discardLogger())

		start := time.Now()
		got := a.SuggestCategory(context.Background(), tx, allowed)
		assert.Equal(t, accounts.Uncategorized, got)
		assert.Less(t, time.Since(start), 200*time.Millisecond)
	})

	t.Run("nil classifier", func(t *testing.T) {
		a := NewFallbackAdapter(nil, time.Second, 100, discardLogger())
		assert.Equal(t, accounts.Uncategorized, a.SuggestCategory(context.Background(), tx, allowed))
	})

	t.Run("cancelled context skips the call", func(t *testing.T) {
		fc := &fakeClassifier{category: "Meals & Entertainment"}
		a := NewFallbackAdapter(fc, time.Second, 100, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, accounts.Uncategorized, a.SuggestCategory(ctx, tx, allowed))
		assert.Zero(t, fc.calls)
	})
}
