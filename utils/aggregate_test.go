package utils

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseRow struct {
	Category string
	Amount   decimal.Decimal
}

func byCategory(r expenseRow) string { return r.Category }
func byAmount(r expenseRow) decimal.Decimal { return r.Amount }

func TestGroupAndSummarize(t *testing.T) {
	rows := []expenseRow{
		{"FOOD", decimal.NewFromInt(100)},
		{"FOOD", decimal.NewFromInt(50)},
		{"UTILITIES", decimal.RequireFromString("25.50")},
	}

	got := GroupAndSummarize(rows, byCategory, byAmount)

	require.Len(t, got, 2)
	assert.Equal(t, 2, got["FOOD"].Count)
	assert.True(t, got["FOOD"].Sum.Equal(decimal.NewFromInt(150)))
	assert.True(t, got["UTILITIES"].Sum.Equal(decimal.RequireFromString("25.5")))
}

func TestBreakdownSumsMatchTotals(t *testing.T) {
	categories := []string{"FOOD", "STAFF", "UTILITIES", "MAINTENANCE", "MARKETING"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := rng.Intn(40) + 1
		rows := make([]expenseRow, 0, n)
		want := decimal.Zero
		for i := 0; i < n; i++ {
			amt := decimal.New(int64(rng.Intn(100000)), -2)
			want = want.Add(amt)
			rows = append(rows, expenseRow{Category: categories[rng.Intn(len(categories))], Amount: amt})
		}

		b := BreakdownBy(rows, byCategory, byAmount)

		sum := decimal.Zero
		count := 0
		pct := 0.0
		for _, c := range b.Categories {
			sum = sum.Add(c.Sum)
			count += c.Count
			pct += c.Percentage
		}
		assert.True(t, sum.Equal(want), "round %d", round)
		assert.True(t, b.Total.Equal(want), "round %d", round)
		assert.Equal(t, n, count)
		if !want.IsZero() {
			assert.InDelta(t, 100.0, pct, 0.05, "round %d", round)
		}
	}
}

func TestBreakdownOrderingAndZeroTotal(t *testing.T) {
	rows := []expenseRow{
		{"B", decimal.NewFromInt(10)},
		{"A", decimal.NewFromInt(30)},
		{"C", decimal.NewFromInt(10)},
	}
	b := BreakdownBy(rows, byCategory, byAmount)
	require.Len(t, b.Categories, 3)
	assert.Equal(t, "A", b.Categories[0].Key)
	assert.Equal(t, "B", b.Categories[1].Key)
	assert.Equal(t, "C", b.Categories[2].Key)
	assert.InDelta(t, 60.0, b.Categories[0].Percentage, 0.001)

	empty := BreakdownBy([]expenseRow{{"X", decimal.Zero}}, byCategory, byAmount)
	require.Len(t, empty.Categories, 1)
	assert.Zero(t, empty.Categories[0].Percentage)

	none := BreakdownBy(nil, byCategory, byAmount)
	assert.Empty(t, none.Categories)
	assert.True(t, none.Total.IsZero())
}

func TestCountBy(t *testing.T) {
	got := CountBy([]string{"a", "b", "a"}, func(s string) string { return s })
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, got)
}
