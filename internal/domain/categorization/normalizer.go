package categorization

import (
	"regexp"
	"strings"
)

// boilerplateTokens are payment-processor noise words stripped from
// descriptions before matching. Lower-case; compared per token.
var boilerplateTokens = map[string]struct{}{
	"pos":        {},
	"debit":      {},
	"credit":     {},
	"purchase":   {},
	"card":       {},
	"checkcard":  {},
	"visa":       {},
	"mastercard": {},
	"ach":        {},
	"autopay":    {},
	"recurring":  {},
	"sq":         {},
	"tst":        {},
}

var (
	// Phrases removed before tokenization, e.g. "PURCHASE AUTHORIZED ON 01/02".
	boilerplatePhrases = []*regexp.Regexp{
		regexp.MustCompile(`purchase authorized on(\s+\d{1,2}/\d{1,2}(/\d{2,4})?)?`),
		regexp.MustCompile(`debit card purchase`),
		regexp.MustCompile(`pos debit`),
	}

	// Card-number fragments: 4+ digits, optionally masked with x/*/#.
	cardFragment = regexp.MustCompile(`^[x*#]*\d{4,}$`)
)

// Normalize canonicalizes a raw transaction description into the key used
// for rule matching. It lower-cases, strips processor boilerplate and
// card-number fragments, and collapses whitespace. The function is pure and
// idempotent; empty input yields the empty key.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for _, phrase := range boilerplatePhrases {
		s = phrase.ReplaceAllString(s, " ")
	}

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, tok := range fields {
		tok = strings.Trim(tok, "*#")
		if tok == "" {
			continue
		}
		if _, noise := boilerplateTokens[tok]; noise {
			continue
		}
		if cardFragment.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}
