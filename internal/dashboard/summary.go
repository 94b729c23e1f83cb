// Package dashboard aggregates a set of movements into the totals shown on
// the overview: income, expenses, savings target, available amount, budget
// utilization and the per-category expense breakdown.
package dashboard

import (
	"errors"

	"finanzia/internal/core"
)

var (
	ErrInvalidSavingsPercent = errors.New("savings percent must be between 0 and 50")
	ErrInvalidMonthlyLimit   = errors.New("monthly limit must not be negative")
)

// Options configures the derived figures. SavingsPercent is the share of
// income set aside, in [0, 50]. MonthlyLimit caps the expense budget; zero
// means no budget was configured, in which case any spending at all counts
// as fully over budget.
type Options struct {
	SavingsPercent float64
	MonthlyLimit   core.Money
}

func (o Options) Validate() error {
	if o.SavingsPercent < 0 || o.SavingsPercent > 50 {
		return ErrInvalidSavingsPercent
	}
	if o.MonthlyLimit.Cents < 0 {
		return ErrInvalidMonthlyLimit
	}
	return nil
}

type Summary struct {
	IncomeTotal  core.Money
	ExpenseTotal core.Money
	// SavingsTarget is IncomeTotal scaled by SavingsPercent.
	SavingsTarget core.Money
	// Available is income minus expenses minus the savings target.
	Available core.Money
	// BudgetUtilization is expense over limit, clamped to [0, 1].
	BudgetUtilization float64
	// ByCategory sums expense amounts per category, first-seen order.
	ByCategory []core.CategoryAmount
}

// Summarize folds the movements into a Summary. The movement set is taken
// as given; filtering by owner or month happens at the ledger.
func Summarize(movements []core.Movement, opts Options) (Summary, error) {
	if err := opts.Validate(); err != nil {
		return Summary{}, err
	}

	var s Summary
	byCat := map[core.Category]int64{}
	var order []core.Category
	for _, m := range movements {
		switch m.Kind {
		case core.Income:
			s.IncomeTotal.Cents += m.Amount.Cents
		case core.Expense:
			s.ExpenseTotal.Cents += m.Amount.Cents
			if _, seen := byCat[m.Category]; !seen {
				order = append(order, m.Category)
			}
			byCat[m.Category] += m.Amount.Cents
		}
	}

	// Half-up rounding on the target, consistent with money parsing.
	s.SavingsTarget = core.Money{
		Cents: int64(float64(s.IncomeTotal.Cents)*opts.SavingsPercent/100.0 + 0.5),
	}
	s.Available = core.Money{
		Cents: s.IncomeTotal.Cents - s.ExpenseTotal.Cents - s.SavingsTarget.Cents,
	}

	switch {
	case opts.MonthlyLimit.Cents > 0:
		u := float64(s.ExpenseTotal.Cents) / float64(opts.MonthlyLimit.Cents)
		if u > 1 {
			u = 1
		}
		s.BudgetUtilization = u
	case s.ExpenseTotal.Cents > 0:
		// No limit configured: any spending is fully over budget.
		s.BudgetUtilization = 1
	}

	for _, c := range order {
		s.ByCategory = append(s.ByCategory, core.CategoryAmount{
			Category: c,
			Amount:   core.Money{Cents: byCat[c]},
		})
	}
	return s, nil
}
