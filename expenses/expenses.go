/*
Package expenses records spending and aggregates it for the dashboard.

AGGREGATIONS:
  CategoryTotals: sum per category, empty categories dropped, fixed order
  Total:          sum of all expenses
  Buckets:        sums per day, ISO week (starting Monday) or month

All money is decimal.Decimal. The Log type keeps expenses in memory.
*/
package expenses

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/loan-engine/amortization"
)

// =============================================================================
// CATEGORIES
// =============================================================================

type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEducation     Category = "education"
	CategoryHousing       Category = "housing"
	CategoryEntertainment Category = "entertainment"
	CategoryTech          Category = "tech"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEducation,
	CategoryHousing,
	CategoryEntertainment,
	CategoryTech,
	CategoryOther,
}

// ParseCategory maps a string to a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// =============================================================================
// EXPENSE
// =============================================================================

type Expense struct {
	ID          string
	Amount      decimal.Decimal
	Category    Category
	Description string
	Date        time.Time
}

func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return &amortization.InputError{Field: "amount", Value: e.Amount, Reason: "must be positive"}
	}
	if _, ok := ParseCategory(string(e.Category)); !ok {
		return &amortization.InputError{Field: "category", Reason: "unknown category " + string(e.Category)}
	}
	if e.Date.IsZero() {
		return &amortization.InputError{Field: "date", Reason: "must be set"}
	}
	return nil
}

// =============================================================================
// AGGREGATION
// =============================================================================

type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

// CategoryTotals sums expenses per category in Categories order, skipping
// categories with nothing spent.
func CategoryTotals(all []Expense) []CategoryTotal {
	sums := make(map[Category]decimal.Decimal)
	for _, e := range all {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range Categories {
		if total, ok := sums[c]; ok && total.IsPositive() {
			out = append(out, CategoryTotal{Category: c, Total: total})
		}
	}
	return out
}

func Total(all []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range all {
		total = total.Add(e.Amount)
	}
	return total
}

// View is the grouping used by Buckets.
type View string

const (
	ViewDaily   View = "daily"
	ViewWeekly  View = "weekly"
	ViewMonthly View = "monthly"
)

func ParseView(s string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDaily, ViewWeekly, ViewMonthly:
		return v, true
	case "":
		return ViewMonthly, true
	default:
		return "", false
	}
}

type Bucket struct {
	Start time.Time
	Total decimal.Decimal
	Count int
}

// Buckets groups expenses by the start of their day, week or month, sorted
// by start.
func Buckets(all []Expense, view View) []Bucket {
	index := make(map[time.Time]int)
	var out []Bucket

	for _, e := range all {
		start := periodStart(e.Date, view)
		i, ok := index[start]
		if !ok {
			i = len(out)
			index[start] = i
			out = append(out, Bucket{Start: start, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func periodStart(t time.Time, view View) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch view {
	case ViewDaily:
		return day
	case ViewWeekly:
		// Monday-based weeks.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}
