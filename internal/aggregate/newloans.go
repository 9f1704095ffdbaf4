package aggregate

import (
	"time"

	"loan-reporting/internal/domain"
)

// newLoansGenerator lists loans originated within the report period.
type newLoansGenerator struct{}

func (newLoansGenerator) Aggregate(period domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	rpt := domain.NewLoansReport{Rows: []domain.NewLoanRow{}}
	for _, a := range accounts {
		if !period.Contains(a.OriginationDate) {
			continue
		}
		rpt.Rows = append(rpt.Rows, domain.NewLoanRow{
			AccountID:       a.AccountID,
			BorrowerName:    a.BorrowerName,
			OriginationDate: a.OriginationDate.Format(time.DateOnly),
			OriginalAmount:  a.OriginalAmount,
			AnnualRate:      a.InterestRate,
			TermMonths:      a.TermMonths,
		})
	}
	return rpt, nil
}
