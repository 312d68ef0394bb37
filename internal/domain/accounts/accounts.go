// Package accounts models the Chart of Accounts: the user-maintained closed
// set of valid category names and their accounting type. Every category the
// engine assigns must be a member of the chart or the Uncategorized sentinel.
package accounts

import (
	"fmt"
	"sort"
)

// Uncategorized is the sentinel category for transactions with no assignment.
// It is never a member of the chart itself.
const Uncategorized = "Uncategorized"

// CategoryType classifies a category for reporting purposes
type CategoryType string

const (
	TypeIncome       CategoryType = "Income"
	TypeExpense      CategoryType = "Expense"
	TypeCOGS         CategoryType = "COGS"
	TypeBalanceSheet CategoryType = "Balance Sheet"
)

// Valid reports whether the type is one of the known accounting types
func (t CategoryType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeCOGS, TypeBalanceSheet:
		return true
	}
	return false
}

// Category is a single Chart of Accounts entry
type Category struct {
	Name string
	Type CategoryType
}

// Chart is an in-memory view of the Chart of Accounts. Category names are
// case-sensitive unique.
type Chart struct {
	byName map[string]CategoryType
}

// NewChart builds a chart from the given categories. Duplicate names are an
// error; the chart is a closed set.
func NewChart(categories []Category) (*Chart, error) {
	c := &Chart{byName: make(map[string]CategoryType, len(categories))}
	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category name must not be empty")
		}
		if cat.Name == Uncategorized {
			return nil, fmt.Errorf("%q is a reserved category name", Uncategorized)
		}
		if !cat.Type.Valid() {
			return nil, fmt.Errorf("category %q has invalid type %q", cat.Name, cat.Type)
		}
		if _, exists := c.byName[cat.Name]; exists {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		c.byName[cat.Name] = cat.Type
	}
	return c, nil
}

// Contains reports whether name is a chart member. The Uncategorized sentinel
// is always a valid assignment but never a member.
func (c *Chart) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// TypeOf returns the accounting type for a category name
func (c *Chart) TypeOf(name string) (CategoryType, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Ensure adds a category if it is not already present. Used when the caller
// extends the chart on demand, e.g. learning categories from an imported
// file. Returns true if the category was added.
func (c *Chart) Ensure(name string, t CategoryType) (bool, error) {
	if name == "" || name == Uncategorized {
		return false, fmt.Errorf("cannot register category %q", name)
	}
	if !t.Valid() {
		return false, fmt.Errorf("invalid category type %q", t)
	}
	if _, exists := c.byName[name]; exists {
		return false, nil
	}
	c.byName[name] = t
	return true, nil
}

// Names returns the category names in sorted order
func (c *Chart) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of categories in the chart
func (c *Chart) Len() int {
	return len(c.byName)
}

// DefaultChart returns the default Chart of Accounts seeded for new
// installations.
func DefaultChart() *Chart {
	chart, err := NewChart(DefaultCategories())
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return chart
}

// DefaultCategories lists the seed categories for a new installation.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Sales Revenue", Type: TypeIncome},
		{Name: "Service Revenue", Type: TypeIncome},
		{Name: "Other Income", Type: TypeIncome},
		{Name: "Cost of Goods Sold", Type: TypeCOGS},
		{Name: "Materials & Supplies", Type: TypeCOGS},
		{Name: "Direct Labor", Type: TypeCOGS},
		{Name: "Freight & Shipping", Type: TypeCOGS},
		{Name: "Rent", Type: TypeExpense},
		{Name: "Utilities", Type: TypeExpense},
		{Name: "Salaries & Wages", Type: TypeExpense},
		{Name: "Office Supplies", Type: TypeExpense},
		{Name: "Transportation", Type: TypeExpense},
		{Name: "Insurance", Type: TypeExpense},
		{Name: "Marketing", Type: TypeExpense},
		{Name: "Professional Fees", Type: TypeExpense},
		{Name: "Repairs & Maintenance", Type: TypeExpense},
		{Name: "Meals & Entertainment", Type: TypeExpense},
		{Name: "Other Expenses", Type: TypeExpense},
		{Name: "Equipment Purchase", Type: TypeBalanceSheet},
		{Name: "Loan Payment", Type: TypeBalanceSheet},
		{Name: "Owner Investment", Type: TypeBalanceSheet},
		{Name: "Owner Draw", Type: TypeBalanceSheet},
	}
}
