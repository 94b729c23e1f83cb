package http

import (
	"net/http"
	"strconv"

	"finanzia/internal/core"
	"finanzia/internal/dashboard"
)

type categoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type summaryResponse struct {
	IncomeTotal       string                   `json:"income_total"`
	ExpenseTotal      string                   `json:"expense_total"`
	SavingsTarget     string                   `json:"savings_target"`
	Available         string                   `json:"available"`
	BudgetUtilization float64                  `json:"budget_utilization"`
	ByCategory        []categoryAmountResponse `json:"by_category"`
}

// handleSummary serves GET /summary: the dashboard totals for the session's
// user, optionally restricted to one month and with per-request overrides of
// the savings percent and monthly limit.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter, err := monthFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := s.summaryOptions(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	movements, err := s.ledger.List(r.Context(), sess, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	summary, err := dashboard.Summarize(movements, opts)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := summaryResponse{
		IncomeTotal:       summary.IncomeTotal.String(),
		ExpenseTotal:      summary.ExpenseTotal.String(),
		SavingsTarget:     summary.SavingsTarget.String(),
		Available:         summary.Available.String(),
		BudgetUtilization: summary.BudgetUtilization,
		ByCategory:        make([]categoryAmountResponse, 0, len(summary.ByCategory)),
	}
	for _, ca := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryAmountResponse{
			Category: string(ca.Category),
			Amount:   ca.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// summaryOptions starts from the configured defaults and applies the
// optional savings_percent and monthly_limit query overrides.
func (s *Server) summaryOptions(r *http.Request) (dashboard.Options, error) {
	opts := s.dashOpts

	if v := r.URL.Query().Get("savings_percent"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return dashboard.Options{}, dashboard.ErrInvalidSavingsPercent
		}
		opts.SavingsPercent = pct
	}
	if v := r.URL.Query().Get("monthly_limit"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return dashboard.Options{}, dashboard.ErrInvalidMonthlyLimit
		}
		opts.MonthlyLimit = core.Money{Cents: cents}
	}
	return opts, nil
}
