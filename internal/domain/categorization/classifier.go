package categorization

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

// Classifier suggests a category for a transaction the rule matcher could
// not resolve. Implementations call out to an external model; they must
// honor ctx cancellation and only return categories from allowed.
type Classifier interface {
	Classify(ctx context.Context, description string, amount money.Amount, allowed []string) (string, error)
}

// FallbackAdapter wraps a Classifier with the guarantees the engine needs
// from an unreliable external dependency: a hard timeout per call, a rate
// limit across calls, and validation that the answer is a real category.
// Every failure mode degrades to Uncategorized rather than an error, so a
// flaky classifier can slow categorization down but never break it.
type FallbackAdapter struct {
	classifier Classifier
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewFallbackAdapter wraps classifier with timeout and rate limiting.
func NewFallbackAdapter(classifier Classifier, timeout time.Duration, ratePerSecond float64, logger *slog.Logger) *FallbackAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAdapter{
		classifier: classifier,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:     logger,
	}
}

// SuggestCategory asks the classifier for a category and returns it only if
// it is a member of allowed. The classifier sees the cleaned description,
// not the raw one, so its hints match what the rule matcher keys on.
// Timeouts, classifier errors, and out-of-set answers all return
// Uncategorized.
func (a *FallbackAdapter) SuggestCategory(ctx context.Context, tx transactions.Transaction, allowed []string) string {
	if a.classifier == nil {
		return accounts.Uncategorized
	}

	key := Normalize(tx.Description)
	if key == "" {
		return accounts.Uncategorized
	}

	if err := a.limiter.Wait(ctx); err != nil {
		a.logger.Warn("classifier rate limit wait aborted", slog.Any("error", err))
		return accounts.Uncategorized
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	type answer struct {
		category string
		err      error
	}
	done := make(chan answer, 1)

	// The classifier runs in its own goroutine so an implementation that
	// ignores ctx cannot stall the caller past the timeout.
	go func() {
		category, err := a.classifier.Classify(ctx, key, tx.Amount, allowed)
		done <- answer{category: category, err: err}
	}()

	select {
	case <-ctx.Done():
		a.logger.Warn("classifier timed out",
			slog.String("transaction_id", tx.ID.String()),
			slog.Duration("timeout", a.timeout),
		)
		return accounts.Uncategorized
	case res := <-done:
		if res.err != nil {
			a.logger.Warn("classifier failed",
				slog.String("transaction_id", tx.ID.String()),
				slog.Any("error", res.err),
			)
			return accounts.Uncategorized
		}
		for _, name := range allowed {
			if res.category == name {
				return res.category
			}
		}
		a.logger.Warn("classifier returned unknown category",
			slog.String("transaction_id", tx.ID.String()),
			slog.String("category", res.category),
		)
		return accounts.Uncategorized
	}
}
