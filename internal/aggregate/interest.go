package aggregate

import (
	"github.com/shopspring/decimal"

	"loan-reporting/internal/domain"
)

// interestGenerator computes period interest from each account's stated
// rate, principal, and day-count convention. Partial-period accrual is
// floor-rounded to the minor unit and the residual fraction discarded,
// matching the regulatory convention. Do not change this to
// round-to-nearest.
type interestGenerator struct{}

var hundred = decimal.NewFromInt(100)

func (interestGenerator) Aggregate(period domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	days := period.Days()
	sched := domain.InterestAccrualSchedule{Lines: make([]domain.InterestAccrualLine, 0, len(accounts))}
	for _, a := range accounts {
		line := domain.InterestAccrualLine{
			AccountID:  a.AccountID,
			Principal:  a.PrincipalBalance,
			AnnualRate: a.InterestRate,
			Days:       days,
			Convention: a.DayCount,
			Accrued:    AccrueInterest(a.PrincipalBalance, a.InterestRate, days, a.DayCount),
		}
		sched.Lines = append(sched.Lines, line)
		sched.TotalAccrued += line.Accrued
	}
	return sched, nil
}

// AccrueInterest returns floor(principal * rate% * days / denominator)
// in minor units.
func AccrueInterest(principal int64, annualRate decimal.Decimal, days int, convention domain.DayCountConvention) int64 {
	denom := decimal.NewFromInt(365)
	if convention == domain.DayCountActual360 {
		denom = decimal.NewFromInt(360)
	}
	// The numerator is exact; QuoRem at precision 0 truncates rather than
	// rounding, so the discarded residual never re-enters a total.
	numerator := decimal.NewFromInt(principal).
		Mul(annualRate).
		Mul(decimal.NewFromInt(int64(days)))
	quotient, _ := numerator.QuoRem(hundred.Mul(denom), 0)
	return quotient.IntPart()
}
