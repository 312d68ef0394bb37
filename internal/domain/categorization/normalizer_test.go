package categorization

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "square prefix and store number",
			input:    "SQ *COFFEE SHOP 4821",
			expected: "coffee shop",
		},
		{
			name:     "pos debit prefix",
			input:    "POS DEBIT WHOLEFDS MKT 10235",
			expected: "wholefds mkt",
		},
		{
			name:     "purchase authorized on with date",
			input:    "PURCHASE AUTHORIZED ON 01/15 SHELL OIL 5744",
			expected: "shell oil",
		},
		{
			name:     "masked card fragment",
			input:    "AMAZON MKTPL XXXX1234",
			expected: "amazon mktpl",
		},
		{
			name:     "toast prefix",
			input:    "TST* TAQUERIA DEL SOL",
			expected: "taqueria del sol",
		},
		{
			name:     "already clean",
			input:    "blue bottle coffee",
			expected: "blue bottle coffee",
		},
		{
			name:     "whitespace only",
			input:    "   \t  ",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "all boilerplate",
			input:    "POS DEBIT CARD PURCHASE 00001234",
			expected: "",
		},
		{
			name:     "recurring autopay",
			input:    "RECURRING AUTOPAY NETFLIX.COM",
			expected: "netflix.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	gofakeit.Seed(11)

	inputs := []string{
		"SQ *COFFEE SHOP 4821",
		"PURCHASE AUTHORIZED ON 12/31/24 DELTA AIR 0061234567",
		"checkcard 0612 trader joes #552",
	}
	for i := 0; i < 50; i++ {
		inputs = append(inputs, gofakeit.Company()+" "+gofakeit.DigitN(6))
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
