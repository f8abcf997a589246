package views

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// CategorySummary is one category's budget position.
type CategorySummary struct {
	Category     core.Category `json:"category"`
	Spent        float64       `json:"spent"`
	Remaining    float64       `json:"remaining"`
	Progress     float64       `json:"progress"`
	TextColor    string        `json:"textColor"`
	ExpenseCount int           `json:"expenseCount"`
}

// Summary is the dashboard header plus one entry per category, in category
// order.
type Summary struct {
	TotalSpent        float64           `json:"totalSpent"`
	TotalBudgetTarget float64           `json:"totalBudgetTarget"`
	Remaining         float64           `json:"remaining"`
	Categories        []CategorySummary `json:"categories"`
}

// Summarize totals s. Progress is spent as a percentage of budget and is 0
// for categories without a positive budget. Expenses pointing at unknown
// categories count towards the grand total only.
func Summarize(s core.State) Summary {
	byCategory := make(map[string]decimal.Decimal, len(s.Categories))
	counts := make(map[string]int, len(s.Categories))
	total := decimal.Zero
	for _, e := range s.Expenses {
		d := amount(e.Amount)
		total = total.Add(d)
		byCategory[e.CategoryID] = byCategory[e.CategoryID].Add(d)
		counts[e.CategoryID]++
	}

	out := Summary{
		TotalSpent:        toFloat(total),
		TotalBudgetTarget: s.TotalBudgetTarget,
		Remaining:         toFloat(amount(s.TotalBudgetTarget).Sub(total)),
		Categories:        make([]CategorySummary, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		spent := byCategory[c.ID]
		cs := CategorySummary{
			Category:     c,
			Spent:        toFloat(spent),
			Remaining:    toFloat(amount(c.Budget).Sub(spent)),
			TextColor:    c.Color.TextColor(),
			ExpenseCount: counts[c.ID],
		}
		if c.Budget > 0 {
			cs.Progress = toFloat(spent.Div(amount(c.Budget)).Mul(decimal.NewFromInt(100)))
		}
		out.Categories = append(out.Categories, cs)
	}
	return out
}

// DistributionEntry is one slice of the spending pie.
type DistributionEntry struct {
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	Color      core.Color `json:"color"`
	TextColor  string     `json:"textColor"`
}

// Distribution returns per-category totals in category order, leaving out
// categories with nothing spent.
func Distribution(s core.State) []DistributionEntry {
	if len(s.Categories) == 0 || len(s.Expenses) == 0 {
		return []DistributionEntry{}
	}
	totals := make(map[string]decimal.Decimal, len(s.Categories))
	for _, e := range s.Expenses {
		totals[e.CategoryID] = totals[e.CategoryID].Add(amount(e.Amount))
	}

	out := make([]DistributionEntry, 0, len(s.Categories))
	for _, c := range s.Categories {
		v := toFloat(totals[c.ID])
		if v <= 0 {
			continue
		}
		out = append(out, DistributionEntry{
			CategoryID: c.ID,
			Name:       c.Name,
			Value:      v,
			Color:      c.Color,
			TextColor:  c.Color.TextColor(),
		})
	}
	return out
}

// amount converts f for exact arithmetic; non-finite values count as zero.
func amount(f float64) decimal.Decimal {
	return decimal.NewFromFloat(core.SumAmounts(f))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
