package categorization

import (
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// minContainmentLen guards the containment scan against trivially short
// patterns matching almost anything.
const minContainmentLen = 3

// Matcher finds the best candidate rule for a normalized description key.
// It is read-only over the rules it was built with; Build installs a new
// snapshot when the rule set changes. Exact lookups hit a map; containment
// uses an Aho-Corasick pass so all stored patterns are scanned against the
// query in a single traversal.
type Matcher struct {
	mu      sync.RWMutex
	rules   []Rule
	exact   map[string]int // pattern key -> index into rules
	ac      *ahocorasick.Matcher
	acRules []int // ac pattern index -> index into rules
}

// NewMatcher creates a matcher over a snapshot of rules.
func NewMatcher(rules []Rule) *Matcher {
	m := &Matcher{}
	m.Build(rules)
	return m
}

// Build replaces the matcher's rule snapshot.
func (m *Matcher) Build(rules []Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = make([]Rule, 0, len(rules))
	m.exact = make(map[string]int, len(rules))
	m.acRules = nil

	var patterns [][]byte
	for _, r := range rules {
		if r.PatternKey == "" {
			continue
		}
		idx := len(m.rules)
		m.rules = append(m.rules, r)
		m.exact[r.PatternKey] = idx

		if len(r.PatternKey) >= minContainmentLen {
			patterns = append(patterns, []byte(r.PatternKey))
			m.acRules = append(m.acRules, idx)
		}
	}

	if len(patterns) > 0 {
		m.ac = ahocorasick.NewMatcher(patterns)
	} else {
		m.ac = nil
	}
}

// RuleCount returns the number of rules in the current snapshot.
func (m *Matcher) RuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// FindBestRule returns the best candidate rule for the key and a confidence
// score in [0, 1]. An exact key match scores 1.0. Otherwise containment
// between stored patterns and the key is scored by matched-length ratio,
// longest matching stored pattern first; ties break on match count, then
// recency. No candidate returns (nil, 0).
func (m *Matcher) FindBestRule(key string) (*Rule, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if key == "" || len(m.rules) == 0 {
		return nil, 0
	}

	if idx, ok := m.exact[key]; ok {
		rule := m.rules[idx]
		return &rule, 1.0
	}

	type candidate struct {
		idx     int
		overlap int
	}
	var candidates []candidate
	seen := make(map[int]bool)

	// Stored pattern contained in the query key.
	if m.ac != nil {
		for _, p := range m.ac.Match([]byte(key)) {
			idx := m.acRules[p]
			if !seen[idx] {
				seen[idx] = true
				candidates = append(candidates, candidate{idx: idx, overlap: len(m.rules[idx].PatternKey)})
			}
		}
	}

	// Query key contained in a stored pattern.
	if len(key) >= minContainmentLen {
		for idx, r := range m.rules {
			if !seen[idx] && strings.Contains(r.PatternKey, key) {
				seen[idx] = true
				candidates = append(candidates, candidate{idx: idx, overlap: len(key)})
			}
		}
	}

	if len(candidates) == 0 {
		return nil, 0
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.overlap != cj.overlap {
			return ci.overlap > cj.overlap
		}
		ri, rj := m.rules[ci.idx], m.rules[cj.idx]
		if ri.MatchCount != rj.MatchCount {
			return ri.MatchCount > rj.MatchCount
		}
		return ri.LastUsedAt.After(rj.LastUsedAt)
	})

	best := candidates[0]
	rule := m.rules[best.idx]

	longer := len(key)
	if len(rule.PatternKey) > longer {
		longer = len(rule.PatternKey)
	}
	confidence := float64(best.overlap) / float64(longer)

	return &rule, confidence
}

// Suggestion is a fuzzy-ranked rule candidate for review flows.
type Suggestion struct {
	Rule  Rule
	Score int // 0-100, higher is closer
}

// RankSuggestions returns up to limit rules ranked by fuzzy similarity to
// the key. Unlike FindBestRule this has no containment requirement; it is
// meant for surfacing near-miss rules to a reviewer, not for automatic
// categorization.
func (m *Matcher) RankSuggestions(key string, limit int) []Suggestion {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if key == "" || len(m.rules) == 0 {
		return nil
	}

	suggestions := make([]Suggestion, 0, len(m.rules))
	for _, r := range m.rules {
		suggestions = append(suggestions, Suggestion{Rule: r, Score: fuzzyScore(key, r.PatternKey)})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if limit > 0 && limit < len(suggestions) {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// fuzzyScore rates similarity between two keys on a 0-100 scale using
// containment length ratios first, then Levenshtein distance.
func fuzzyScore(s1, s2 string) int {
	if s1 == s2 {
		return 100
	}
	if s2 != "" && strings.Contains(s1, s2) {
		return 75 + (25 * len(s2) / len(s1))
	}
	if s1 != "" && strings.Contains(s2, s1) {
		return 75 + (25 * len(s1) / len(s2))
	}

	maxLen := len(s1)
	if len(s2) > maxLen {
		maxLen = len(s2)
	}
	if maxLen == 0 {
		return 0
	}

	distance := fuzzy.LevenshteinDistance(s1, s2)
	if distance > maxLen {
		distance = maxLen
	}
	return 100 * (maxLen - distance) / maxLen
}
