// Package llm implements the external classifier used as a categorization
// fallback when no learned rule matches.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/FACorreiaa/bookkeeper/pkg/config"
	"github.com/FACorreiaa/bookkeeper/pkg/money"
)

// Example is a previously categorized transaction shown to the model as
// grounding context.
type Example struct {
	Description string
	Category    string
}

// ExampleSource supplies categorized history for prompt grounding.
type ExampleSource interface {
	Examples(ctx context.Context) ([]Example, error)
}

// GeminiClassifier suggests categories via the Gemini API.
type GeminiClassifier struct {
	client   *genai.Client
	model    string
	examples ExampleSource
	logger   *slog.Logger
}

// NewGeminiClassifier creates a classifier from configuration. examples may
// be nil, in which case prompts carry no historical context.
func NewGeminiClassifier(ctx context.Context, cfg config.GeminiConfig, examples ExampleSource, logger *slog.Logger) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: GEMINI_API_KEY is not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create genai client: %w", err)
	}

	return &GeminiClassifier{
		client:   client,
		model:    cfg.Model,
		examples: examples,
		logger:   logger,
	}, nil
}

type classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model for a category from allowed. Answers outside the
// allowed set come back as "Uncategorized"; the model is instructed to use
// that name itself when the history gives it nothing to go on.
func (c *GeminiClassifier) Classify(ctx context.Context, description string, amount money.Amount, allowed []string) (string, error) {
	var history []Example
	if c.examples != nil {
		all, err := c.examples.Examples(ctx)
		if err != nil {
			c.logger.Warn("loading classifier examples failed", slog.Any("error", err))
		} else {
			history = similarExamples(description, all, 3)
		}
	}

	prompt := buildPrompt(description, amount, allowed, history)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("llm: generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("llm: empty response from model")
	}

	var parsed classification
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return "", fmt.Errorf("llm: unmarshal classification: %w", err)
	}

	for _, name := range allowed {
		if parsed.Category == name {
			return parsed.Category, nil
		}
	}
	return "Uncategorized", nil
}

func buildPrompt(description string, amount money.Amount, allowed []string, history []Example) string {
	var b strings.Builder

	b.WriteString("You are a bookkeeping assistant categorizing a bank transaction.\n\n")
	fmt.Fprintf(&b, "Current transaction: %s (amount %s)\n", description, amount)
	if amount.IsIncome() {
		b.WriteString("The amount is positive, so this is money in: prefer income-type categories.\n")
	} else if amount.IsExpense() {
		b.WriteString("The amount is negative, so this is money out: prefer expense-type categories.\n")
	}
	b.WriteString("\n")

	b.WriteString("Similar historical transactions:\n")
	if len(history) == 0 {
		b.WriteString("No similar transactions found\n")
	} else {
		for _, ex := range history {
			fmt.Fprintf(&b, "- %s -> %s\n", ex.Description, ex.Category)
		}
	}

	b.WriteString("\nSTRICT RULE: Only categorize if a very similar transaction appears above ")
	b.WriteString("or the merchant is unambiguous. Otherwise return \"Uncategorized\".\n\n")

	fmt.Fprintf(&b, "Available categories: %s\n\n", strings.Join(allowed, ", "))

	b.WriteString("Respond with raw JSON only, no code fences: ")
	b.WriteString(`{"category": "category name", "confidence": 0.0-1.0}`)

	return b.String()
}

// promptStopWords are filler words ignored when scoring description overlap.
var promptStopWords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "for": {}, "to": {}, "from": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "by": {},
}

func meaningfulWords(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if _, stop := promptStopWords[w]; !stop {
			words[w] = struct{}{}
		}
	}
	return words
}

// similarExamples picks up to limit history entries sharing at least three
// meaningful words with description, covering at least half of its words,
// best overlap first.
func similarExamples(description string, history []Example, limit int) []Example {
	descWords := meaningfulWords(description)
	if len(descWords) == 0 {
		return nil
	}

	type scored struct {
		similarity float64
		example    Example
	}
	var matches []scored

	for _, ex := range history {
		common := 0
		for w := range meaningfulWords(ex.Description) {
			if _, ok := descWords[w]; ok {
				common++
			}
		}
		if common < 3 {
			continue
		}
		similarity := float64(common) / float64(len(descWords))
		if similarity >= 0.5 {
			matches = append(matches, scored{similarity: similarity, example: ex})
		}
	}

	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}

	result := make([]Example, len(matches))
	for i, m := range matches {
		result[i] = m.example
	}
	return result
}

// cleanModelJSON strips Markdown fences and surrounding prose from a model
// answer, keeping the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
