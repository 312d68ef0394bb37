package categorization

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/bookkeeper/internal/domain/accounts"
	"github.com/FACorreiaa/bookkeeper/internal/domain/transactions"
)

// Result is the outcome of categorizing a single transaction.
type Result struct {
	TransactionID uuid.UUID
	Category      string
	Provenance    Provenance
	Confidence    float64
}

// Service orchestrates the categorization pipeline: normalize, match
// against learned rules, fall back to the classifier, and learn from
// confirmed decisions. The matcher holds a cached snapshot of the rule
// store; writes through the service invalidate it.
type Service struct {
	store     RuleStore
	matcher   *Matcher
	fallback  *FallbackAdapter
	learner   *Learner
	threshold float64
	workers   int
	logger    *slog.Logger

	mu    sync.Mutex
	stale bool
}

// NewService wires the pipeline together. threshold is the minimum rule
// confidence accepted without consulting the fallback; workers caps batch
// concurrency.
func NewService(store RuleStore, fallback *FallbackAdapter, threshold float64, workers int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Service{
		store:     store,
		matcher:   NewMatcher(nil),
		fallback:  fallback,
		learner:   NewLearner(store, logger),
		threshold: threshold,
		workers:   workers,
		logger:    logger,
		stale:     true,
	}
}

// RefreshRules reloads the matcher snapshot from the store.
func (s *Service) RefreshRules(ctx context.Context) error {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("refresh rules: %w", err)
	}

	s.mu.Lock()
	s.matcher.Build(rules)
	s.stale = false
	s.mu.Unlock()

	s.logger.Debug("rule cache refreshed", slog.Int("rules", len(rules)))
	return nil
}

func (s *Service) ensureFresh(ctx context.Context) error {
	s.mu.Lock()
	stale := s.stale
	s.mu.Unlock()
	if !stale {
		return nil
	}
	return s.RefreshRules(ctx)
}

// Categorize resolves a category for one transaction. A rule match at or
// above the acceptance threshold wins; otherwise the classifier fallback is
// consulted. A rule pointing at a category no longer in the chart is still
// returned, with a warning logged, so the caller can decide to re-map it.
func (s *Service) Categorize(ctx context.Context, tx transactions.Transaction, chart *accounts.Chart) (Result, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return Result{}, err
	}

	key := Normalize(tx.Description)

	if rule, confidence := s.matcher.FindBestRule(key); rule != nil && confidence >= s.threshold {
		// A stale category is still returned so the caller can decide to
		// re-map it; the condition is surfaced in the log.
		if !chart.Contains(rule.Category) {
			s.logger.Warn("rule references a category missing from the chart",
				slog.String("pattern_key", rule.PatternKey),
				slog.String("category", rule.Category),
			)
		}
		return Result{
			TransactionID: tx.ID,
			Category:      rule.Category,
			Provenance:    RuleMatched,
			Confidence:    confidence,
		}, nil
	}

	category := accounts.Uncategorized
	if s.fallback != nil {
		category = s.fallback.SuggestCategory(ctx, tx, chart.Names())
	}

	provenance := AIMatched
	if category == accounts.Uncategorized {
		provenance = Unresolved
	}

	return Result{
		TransactionID: tx.ID,
		Category:      category,
		Provenance:    provenance,
		Confidence:    0,
	}, nil
}

// CategorizeBatch categorizes a batch concurrently. Each transaction is
// independent: one failure does not abort the others, and results come back
// in input order. The only batch-level error is a failed rule refresh.
func (s *Service) CategorizeBatch(ctx context.Context, txs []transactions.Transaction, chart *accounts.Chart) ([]Result, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}

	results := make([]Result, len(txs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, tx := range txs {
		g.Go(func() error {
			res, err := s.Categorize(gctx, tx, chart)
			if err != nil {
				s.logger.Warn("categorization failed",
					slog.String("transaction_id", tx.ID.String()),
					slog.Any("error", err),
				)
				res = Result{TransactionID: tx.ID, Category: accounts.Uncategorized, Provenance: Unresolved}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RecordCategorization learns a confirmed decision and invalidates the rule
// cache so the next lookup sees the new rule.
func (s *Service) RecordCategorization(ctx context.Context, chart *accounts.Chart, tx transactions.Transaction, category string, origin Origin) error {
	if err := s.learner.RecordCategorization(ctx, chart, tx, category, origin); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ConfirmSuggestion learns a user-approved AI suggestion, keeping its
// ai_suggestion provenance, and invalidates the rule cache.
func (s *Service) ConfirmSuggestion(ctx context.Context, chart *accounts.Chart, tx transactions.Transaction, category string) error {
	if err := s.learner.ConfirmSuggestion(ctx, chart, tx, category); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// RankSuggestions surfaces near-miss rules for a raw description, for
// review surfaces where a person picks the category.
func (s *Service) RankSuggestions(ctx context.Context, description string, limit int) ([]Suggestion, error) {
	if err := s.ensureFresh(ctx); err != nil {
		return nil, err
	}
	return s.matcher.RankSuggestions(Normalize(description), limit), nil
}
