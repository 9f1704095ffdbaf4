package aggregate

import (
	"github.com/shopspring/decimal"

	"loan-reporting/internal/domain"
)

// projectionHorizon caps the forward schedule at one year of monthly
// periods per account.
const projectionHorizon = 12

// amortizationGenerator projects level-payment schedules forward from
// the current principal balance. Per-period interest is floored to the
// minor unit like accrual; the final period clears any remainder.
type amortizationGenerator struct{}

func (amortizationGenerator) Aggregate(_ domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	sched := domain.AmortizationSchedule{}
	for _, a := range accounts {
		if a.PrincipalBalance <= 0 || a.TermMonths <= 0 {
			continue
		}
		sched.Projections = append(sched.Projections, domain.AmortizationProjection{
			AccountID: a.AccountID,
			Rows:      project(a),
		})
	}
	return sched, nil
}

func project(a domain.AccountRecord) []domain.AmortizationRow {
	monthlyRate := a.InterestRate.Div(hundred).Div(decimal.NewFromInt(12))
	payment := a.ScheduledPayment
	if payment == 0 {
		payment = levelPayment(a.PrincipalBalance, monthlyRate, a.TermMonths)
	}

	periods := a.TermMonths
	if periods > projectionHorizon {
		periods = projectionHorizon
	}

	var rows []domain.AmortizationRow
	balance := a.PrincipalBalance
	for k := 1; k <= periods && balance > 0; k++ {
		interest, _ := decimal.NewFromInt(balance).Mul(monthlyRate).QuoRem(decimal.NewFromInt(1), 0)
		interestPart := interest.IntPart()
		principalPart := payment - interestPart
		if principalPart > balance {
			principalPart = balance
		}
		balance -= principalPart
		rows = append(rows, domain.AmortizationRow{
			PeriodNumber:     k,
			Payment:          interestPart + principalPart,
			InterestPortion:  interestPart,
			PrincipalPortion: principalPart,
			RemainingBalance: balance,
		})
	}
	return rows
}

// levelPayment computes the standard annuity payment
// P*i / (1 - (1+i)^-n) in minor units, floored.
func levelPayment(principal int64, monthlyRate decimal.Decimal, termMonths int) int64 {
	p := decimal.NewFromInt(principal)
	if monthlyRate.IsZero() {
		q, _ := p.QuoRem(decimal.NewFromInt(int64(termMonths)), 0)
		return q.IntPart()
	}
	one := decimal.NewFromInt(1)
	growth := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(termMonths)))
	payment := p.Mul(monthlyRate).Mul(growth).Div(growth.Sub(one))
	return payment.Floor().IntPart()
}
