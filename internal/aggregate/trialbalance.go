package aggregate

import "loan-reporting/internal/domain"

// trialBalanceGenerator sums per-account balances into a single period
// total. All accumulation is integer minor units, so the grand total is
// exact no matter how many rows contribute.
type trialBalanceGenerator struct{}

func (trialBalanceGenerator) Aggregate(_ domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	tb := domain.TrialBalance{Entries: make([]domain.TrialBalanceEntry, 0, len(accounts))}
	for _, a := range accounts {
		entry := domain.TrialBalanceEntry{
			AccountID: a.AccountID,
			Principal: a.PrincipalBalance,
			Interest:  a.InterestBalance,
			Escrow:    a.EscrowBalance,
			Total:     a.TotalBalance(),
		}
		tb.Entries = append(tb.Entries, entry)
		tb.TotalPrincipal += entry.Principal
		tb.TotalInterest += entry.Interest
		tb.TotalEscrow += entry.Escrow
		tb.GrandTotal += entry.Total
	}
	return tb, nil
}
