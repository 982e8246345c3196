package expenses_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/loan-engine/amortization"
	"github.com/warp/loan-engine/expenses"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 12, 0, 0, 0, time.UTC)
}

func expense(id string, amount int64, c expenses.Category, date time.Time) expenses.Expense {
	return expenses.Expense{ID: id, Amount: decimal.NewFromInt(amount), Category: c, Date: date}
}

func sample() []expenses.Expense {
	return []expenses.Expense{
		expense("1", 15000, expenses.CategoryFood, day(time.November, 7)),
		expense("2", 8000, expenses.CategoryTransport, day(time.November, 6)),
		expense("3", 25000, expenses.CategoryEducation, day(time.November, 5)),
		expense("4", 12000, expenses.CategoryFood, day(time.November, 4)),
		expense("5", 5000, expenses.CategoryEntertainment, day(time.November, 3)),
		expense("6", 3000, expenses.CategoryFood, day(time.October, 30)),
	}
}

func TestCategoryTotals(t *testing.T) {
	totals := expenses.CategoryTotals(sample())

	require.Len(t, totals, 4)
	assert.Equal(t, expenses.CategoryFood, totals[0].Category)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, expenses.CategoryTransport, totals[1].Category)
	assert.Equal(t, expenses.CategoryEducation, totals[2].Category)
	assert.Equal(t, expenses.CategoryEntertainment, totals[3].Category)

	assert.True(t, expenses.Total(sample()).Equal(decimal.NewFromInt(68000)))
	assert.Empty(t, expenses.CategoryTotals(nil))
	assert.True(t, expenses.Total(nil).IsZero())
}

func TestBuckets(t *testing.T) {
	tests := []struct {
		view   expenses.View
		starts []time.Time
		totals []int64
	}{
		{
			view: expenses.ViewMonthly,
			starts: []time.Time{
				time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
			},
			totals: []int64{3000, 65000},
		},
		{
			view: expenses.ViewWeekly,
			starts: []time.Time{
				time.Date(2025, time.October, 27, 0, 0, 0, 0, time.UTC),
				time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
			},
			totals: []int64{3000, 65000},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			buckets := expenses.Buckets(sample(), tt.view)
			require.Len(t, buckets, len(tt.starts))
			for i, b := range buckets {
				assert.Equal(t, tt.starts[i], b.Start)
				assert.True(t, b.Total.Equal(decimal.NewFromInt(tt.totals[i])), "bucket %d total %s", i, b.Total)
			}
		})
	}

	daily := expenses.Buckets(sample(), expenses.ViewDaily)
	require.Len(t, daily, 6)
	assert.Equal(t, time.Date(2025, time.October, 30, 0, 0, 0, 0, time.UTC), daily[0].Start)
	assert.Equal(t, 1, daily[5].Count)
}

func TestParseView(t *testing.T) {
	v, ok := expenses.ParseView("")
	assert.True(t, ok)
	assert.Equal(t, expenses.ViewMonthly, v)

	v, ok = expenses.ParseView("Weekly")
	assert.True(t, ok)
	assert.Equal(t, expenses.ViewWeekly, v)

	_, ok = expenses.ParseView("yearly")
	assert.False(t, ok)
}

func TestLog(t *testing.T) {
	ctx := context.Background()
	log := expenses.NewLog()

	for _, e := range sample() {
		_, err := log.Add(ctx, e)
		require.NoError(t, err)
	}

	_, err := log.Add(ctx, expense("1", 100, expenses.CategoryFood, day(time.November, 8)))
	assert.ErrorIs(t, err, expenses.ErrDuplicateExpense)

	added, err := log.Add(ctx, expense("", 100, expenses.CategoryTech, day(time.November, 8)))
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	all := log.List(ctx)
	require.Len(t, all, 7)
	assert.Equal(t, added.ID, all[0].ID, "newest first")

	log.Reset(ctx)
	assert.Empty(t, log.List(ctx))
}

func TestExpense_Validate(t *testing.T) {
	tests := []struct {
		name string
		e    expenses.Expense
	}{
		{"zero amount", expense("x", 0, expenses.CategoryFood, day(time.November, 1))},
		{"unknown category", expense("x", 10, "gambling", day(time.November, 1))},
		{"no date", expense("x", 10, expenses.CategoryFood, time.Time{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.e.Validate(), amortization.ErrInvalidInput)
		})
	}
}
