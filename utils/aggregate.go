package utils

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Summary struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// GroupAndSummarize counts and sums records per key. It recomputes from scratch on
// every call; the inputs are the bounded lists a dashboard page already fetched.
func GroupAndSummarize[R any, K comparable](records []R, keyFn func(R) K, amountFn func(R) decimal.Decimal) map[K]Summary {
	out := make(map[K]Summary)
	for _, r := range records {
		k := keyFn(r)
		s := out[k]
		s.Count++
		s.Sum = s.Sum.Add(amountFn(r))
		out[k] = s
	}
	return out
}

type CategoryShare struct {
	Key        string          `json:"key"`
	Count      int             `json:"count"`
	Sum        decimal.Decimal `json:"sum"`
	Percentage float64         `json:"percentage"`
}

type Breakdown struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Categories []CategoryShare `json:"categories"`
}

// BreakdownBy groups records by a string key and orders the groups by descending sum.
// Percentages are sum / total * 100 and are all 0 when the total is 0.
func BreakdownBy[R any](records []R, keyFn func(R) string, amountFn func(R) decimal.Decimal) Breakdown {
	groups := GroupAndSummarize(records, keyFn, amountFn)

	b := Breakdown{Total: decimal.Zero, Categories: make([]CategoryShare, 0, len(groups))}
	for _, s := range groups {
		b.Total = b.Total.Add(s.Sum)
		b.Count += s.Count
	}
	for k, s := range groups {
		share := CategoryShare{Key: k, Count: s.Count, Sum: s.Sum}
		if !b.Total.IsZero() {
			share.Percentage, _ = s.Sum.Div(b.Total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		b.Categories = append(b.Categories, share)
	}
	sort.Slice(b.Categories, func(i, j int) bool {
		ci, cj := b.Categories[i], b.Categories[j]
		if c := ci.Sum.Cmp(cj.Sum); c != 0 {
			return c > 0
		}
		return ci.Key < cj.Key
	})
	return b
}

// CountBy is GroupAndSummarize without amounts.
func CountBy[R any, K comparable](records []R, keyFn func(R) K) map[K]int {
	out := make(map[K]int)
	for _, r := range records {
		out[keyFn(r)]++
	}
	return out
}
