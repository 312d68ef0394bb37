// Package money provides the signed transaction amount type used by the
// categorization engine. Amounts are stored as integer cents via go-money,
// with shopspring/decimal for precise conversions. The sign convention is
// fixed at ingestion: positive amounts are income, negative are expenses.
package money

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the default currency for amounts parsed without an explicit code.
const USD = "USD"

// Amount represents a signed monetary value with currency.
type Amount struct {
	m *money.Money
}

// New creates an Amount from cents (minor units) and currency code.
func New(amountCents int64, currencyCode string) Amount {
	return Amount{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal creates an Amount from a decimal value.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) Amount {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(USD)
	}

	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()

	return New(cents, currency.Code)
}

// NewFromString parses amounts like "100.50", "-89.99", "1,234.56" or "$12.00".
func NewFromString(amount, currencyCode string) (Amount, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.ReplaceAll(amount, ",", "")
	amount = strings.TrimPrefix(amount, "$")

	// Accounting notation: (89.99) means -89.99
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		amount = "-" + amount[1:len(amount)-1]
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return NewFromDecimal(d, currencyCode), nil
}

// Zero returns a zero Amount for the given currency
func Zero(currencyCode string) Amount {
	return New(0, currencyCode)
}

// Cents returns the amount in minor units
func (a Amount) Cents() int64 {
	if a.m == nil {
		return 0
	}
	return a.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (a Amount) Currency() string {
	if a.m == nil {
		return ""
	}
	return a.m.Currency().Code
}

// Decimal returns the amount in major units as a decimal
func (a Amount) Decimal() decimal.Decimal {
	if a.m == nil {
		return decimal.Zero
	}
	fraction := int32(a.m.Currency().Fraction)
	return decimal.New(a.m.Amount(), -fraction)
}

// Float64 returns the amount in major units. Used for classifier hints only;
// arithmetic stays on Cents/Decimal.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// IsZero reports whether the amount is zero
func (a Amount) IsZero() bool {
	return a.m == nil || a.m.IsZero()
}

// IsIncome reports whether the amount is positive under the ingestion sign
// convention.
func (a Amount) IsIncome() bool {
	return a.m != nil && a.m.IsPositive()
}

// IsExpense reports whether the amount is negative.
func (a Amount) IsExpense() bool {
	return a.m != nil && a.m.IsNegative()
}

// String formats the amount for display, e.g. "-$89.99"
func (a Amount) String() string {
	if a.m == nil {
		return "0"
	}
	return a.m.Display()
}
