package categorization

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory RuleStore. It backs tests and standalone runs
// that have no database attached. All mutations go through UpsertRule under
// a single lock, so upserts are atomic per key.
type MemoryStore struct {
	mu    sync.Mutex
	rules map[string]Rule
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rules: make(map[string]Rule),
		now:   time.Now,
	}
}

var _ RuleStore = (*MemoryStore)(nil)

// ListRules returns a snapshot of all rules.
func (s *MemoryStore) ListRules(_ context.Context) ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	return rules, nil
}

// UpsertRule implements the RuleStore upsert policy.
func (s *MemoryStore) UpsertRule(_ context.Context, patternKey, category string, origin Origin) (Rule, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	existing, ok := s.rules[patternKey]
	if !ok {
		rule := Rule{
			PatternKey:  patternKey,
			Category:    category,
			MatchCount:  1,
			LastUsedAt:  now,
			CreatedFrom: origin,
		}
		s.rules[patternKey] = rule
		return rule, false, nil
	}

	conflicted := existing.Category != category
	if conflicted {
		existing.Category = category
		existing.MatchCount = 1
	} else {
		existing.MatchCount++
	}
	existing.LastUsedAt = now
	existing.CreatedFrom = origin
	s.rules[patternKey] = existing

	return existing, conflicted, nil
}

// Get returns the rule for a pattern key, if present.
func (s *MemoryStore) Get(patternKey string) (Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[patternKey]
	return r, ok
}

// Len returns the number of stored rules.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

// SetClock overrides the store's time source. Test helper.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
