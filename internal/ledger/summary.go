package ledger

import (
	"math"
	"time"
)

// Filter selects records by calendar components of their time. Nil fields match anything.
type Filter struct {
	Year  *int
	Month *int
	Day   *int
}

// Summary is the filtered record set with its totals
type Summary struct {
	Records []*Record `json:"records"`
	Income  int64     `json:"income"`
	Expense int64     `json:"expense"`
	Total   int64     `json:"total"`
}

// Matches reports whether t satisfies every component set on the filter
func (f Filter) Matches(t time.Time) bool {
	if f.Year != nil && t.Year() != *f.Year {
		return false
	}
	if f.Month != nil && int(t.Month()) != *f.Month {
		return false
	}
	if f.Day != nil && t.Day() != *f.Day {
		return false
	}
	return true
}

// Summarize filters records and totals income and expense over the matches.
// It scans the whole slice on every call.
func Summarize(records []*Record, filter Filter) *Summary {
	summary := &Summary{Records: []*Record{}}
	for _, r := range records {
		if !filter.Matches(r.Time) {
			continue
		}
		summary.Records = append(summary.Records, r)
		switch r.Type {
		case TypeIncome:
			summary.Income = addAmount(summary.Income, r.Amount)
		case TypeExpense:
			summary.Expense = addAmount(summary.Expense, r.Amount)
		}
	}
	summary.Total = summary.Income - summary.Expense
	return summary
}

// addAmount sums non-negative amounts, saturating at math.MaxInt64
func addAmount(sum, amount int64) int64 {
	if amount < 0 {
		return sum
	}
	if sum > math.MaxInt64-amount {
		return math.MaxInt64
	}
	return sum + amount
}
