package aggregate_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"loan-reporting/internal/aggregate"
	"loan-reporting/internal/domain"
)

func testPeriod() domain.ReportPeriod {
	return domain.ReportPeriod{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		AsOf:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func testConfig() domain.CompileConfig {
	return domain.CompileConfig{
		StrictMode:      domain.StrictAbort,
		ReporterID:      "CAPCU001",
		ReporterName:    "CAPITAL CREDIT UNION",
		DayCountDefault: domain.DayCountActual365,
		BucketEdges:     domain.DefaultBucketEdges(),
	}
}

func account(id string, principal int64) domain.AccountRecord {
	return domain.AccountRecord{
		AccountID:        id,
		BorrowerName:     "Borrower " + id,
		Status:           domain.StatusCurrent,
		PrincipalBalance: principal,
		InterestRate:     decimal.RequireFromString("6.000"),
		DayCount:         domain.DayCountActual365,
		TermMonths:       360,
		OriginationDate:  time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestTrialBalanceTotals(t *testing.T) {
	reg := aggregate.NewRegistry()
	gen, err := reg.Lookup(domain.ReportTrialBalance)
	assert.NoError(t, err)

	a := account("LN-001", 100_00)
	a.InterestBalance = 5_00
	a.EscrowBalance = 2_50
	b := account("LN-002", 250_75)

	res, err := gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{a, b})
	assert.NoError(t, err)
	tb, ok := res.(domain.TrialBalance)
	assert.True(t, ok)

	assert.Len(t, tb.Entries, 2)
	assert.Equal(t, "LN-001", tb.Entries[0].AccountID)
	assert.Equal(t, int64(100_00+250_75), tb.TotalPrincipal)
	assert.Equal(t, int64(5_00), tb.TotalInterest)
	assert.Equal(t, int64(2_50), tb.TotalEscrow)
	assert.Equal(t, int64(100_00+5_00+2_50+250_75), tb.GrandTotal)
	assert.Equal(t, tb.Entries[0].Total+tb.Entries[1].Total, tb.GrandTotal)
}

func TestDelinquencyBucketing(t *testing.T) {
	tests := []struct {
		name       string
		lastDue    time.Time
		wantBucket string
	}{
		{"no due date is current", time.Time{}, "current"},
		{"one day past due", time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), "current"},
		{"thirty days lands in 30-59", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "30-59"},
		{"boundary 29 resolves to lower bucket", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "current"},
		{"boundary 59 stays in 30-59", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "30-59"},
		{"boundary 60 moves to 60-89", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "60-89"},
		{"deep delinquency hits open bucket", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), "90+"},
	}

	reg := aggregate.NewRegistry()
	gen, err := reg.Lookup(domain.ReportDelinquencyAging)
	assert.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := account("LN-123456", 1234_56)
			a.LastDueDate = tt.lastDue

			res, err := gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{a})
			assert.NoError(t, err)
			sched := res.(domain.DelinquencySchedule)

			assigned := 0
			for _, b := range sched.Buckets {
				if b.Count > 0 {
					assigned += b.Count
					assert.Equal(t, tt.wantBucket, b.Label)
					assert.Equal(t, a.TotalBalance(), b.TotalBalance)
					assert.Equal(t, []string{"LN-123456"}, b.AccountIDs)
				}
			}
			// Exactly one bucket per account, always.
			assert.Equal(t, 1, assigned)
		})
	}
}

func TestInterestAccrualFloors(t *testing.T) {
	// 100,000.00 at 6% for 31 days actual/365:
	// 10000000 * 6 * 31 / (100*365) = 50958.9041... -> 50958, residual
	// discarded.
	got := aggregate.AccrueInterest(10_000_000, decimal.RequireFromString("6"), 31, domain.DayCountActual365)
	assert.Equal(t, int64(50958), got)

	// Same figures actual/360: 10000000*6*31/36000 = 51666.66... -> 51666.
	got = aggregate.AccrueInterest(10_000_000, decimal.RequireFromString("6"), 31, domain.DayCountActual360)
	assert.Equal(t, int64(51666), got)

	// Exact division leaves nothing to discard.
	got = aggregate.AccrueInterest(365_00, decimal.RequireFromString("100"), 1, domain.DayCountActual365)
	assert.Equal(t, int64(100), got)

	// Zero rate accrues nothing.
	got = aggregate.AccrueInterest(10_000_000, decimal.Zero, 31, domain.DayCountActual365)
	assert.Equal(t, int64(0), got)
}

func TestInterestScheduleTotals(t *testing.T) {
	reg := aggregate.NewRegistry()
	gen, _ := reg.Lookup(domain.ReportInterestAccrual)

	a := account("LN-001", 10_000_000)
	b := account("LN-002", 5_000_000)
	res, err := gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{a, b})
	assert.NoError(t, err)
	sched := res.(domain.InterestAccrualSchedule)

	assert.Len(t, sched.Lines, 2)
	assert.Equal(t, 31, sched.Lines[0].Days)
	assert.Equal(t, sched.Lines[0].Accrued+sched.Lines[1].Accrued, sched.TotalAccrued)
}

func TestAmortizationProjection(t *testing.T) {
	reg := aggregate.NewRegistry()
	gen, _ := reg.Lookup(domain.ReportAmortization)

	a := account("LN-001", 10_000_000) // 100,000.00 at 6%, 360 months
	res, err := gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{a})
	assert.NoError(t, err)
	sched := res.(domain.AmortizationSchedule)

	assert.Len(t, sched.Projections, 1)
	rows := sched.Projections[0].Rows
	assert.Len(t, rows, 12)

	// First-period interest is floor(balance * rate/12).
	assert.Equal(t, int64(50000), rows[0].InterestPortion)
	balance := a.PrincipalBalance
	for _, r := range rows {
		assert.Equal(t, r.Payment, r.InterestPortion+r.PrincipalPortion)
		balance -= r.PrincipalPortion
		assert.Equal(t, balance, r.RemainingBalance)
	}

	// Zero-balance and zero-term accounts are skipped.
	empty := account("LN-002", 0)
	res, err = gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{empty})
	assert.NoError(t, err)
	assert.Empty(t, res.(domain.AmortizationSchedule).Projections)
}

func TestCMRSchedule(t *testing.T) {
	reg := aggregate.NewRegistry()
	gen, _ := reg.Lookup(domain.ReportOTSScheduleCMR)

	mk := func(id, bank, code, group string, principal int64, term int, rate string) domain.AccountRecord {
		a := account(id, principal)
		a.InvestorBank = bank
		a.InvestorCode = code
		a.InvestorGroup = group
		a.InvestorName = "INVESTOR " + code
		a.TermMonths = term
		a.InterestRate = decimal.RequireFromString(rate)
		return a
	}

	accounts := []domain.AccountRecord{
		mk("LN-001", "1", "100", "10", 100_000_00, 120, "5.000"),
		mk("LN-002", "1", "100", "10", 100_000_00, 96, "6.000"),
		mk("LN-003", "1", "200", "10", 50_000_00, 120, "7.000"),
		mk("LN-004", "2", "300", "20", 25_000_00, 240, "4.500"),
	}

	res, err := gen.Aggregate(testPeriod(), testConfig(), accounts)
	assert.NoError(t, err)
	sched := res.(domain.CMRSchedule)

	assert.Len(t, sched.Rows, 3)
	// Ordered by investor group code.
	assert.Equal(t, "1-100-10", sched.Rows[0].GroupKey)
	assert.Equal(t, "1-200-10", sched.Rows[1].GroupKey)
	assert.Equal(t, "2-300-20", sched.Rows[2].GroupKey)

	first := sched.Rows[0]
	assert.Equal(t, 2, first.NumLoans)
	assert.Equal(t, int64(200_000_00), first.TotalBalances)
	assert.True(t, first.AvgRemTerm.Equal(decimal.RequireFromString("108")))
	assert.True(t, first.Years.Equal(decimal.RequireFromString("9")))
	assert.True(t, first.AvgIntRate.Equal(decimal.RequireFromString("5.5")))

	// Combined 10-year average lands on the 200-series row only.
	assert.Nil(t, first.CombinedAvgYears)
	second := sched.Rows[1]
	if assert.NotNil(t, second.CombinedAvgYears) {
		assert.True(t, second.CombinedAvgYears.Equal(decimal.RequireFromString("9.5")))
	}
}

func TestNewLoansEntered(t *testing.T) {
	reg := aggregate.NewRegistry()
	gen, _ := reg.Lookup(domain.ReportNewLoansEntered)

	inPeriod := account("LN-001", 100_00)
	inPeriod.OriginationDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	inPeriod.OriginalAmount = 100_00
	outside := account("LN-002", 200_00)

	res, err := gen.Aggregate(testPeriod(), testConfig(), []domain.AccountRecord{inPeriod, outside})
	assert.NoError(t, err)
	rpt := res.(domain.NewLoansReport)

	assert.Len(t, rpt.Rows, 1)
	assert.Equal(t, "LN-001", rpt.Rows[0].AccountID)
	assert.Equal(t, "2024-03-15", rpt.Rows[0].OriginationDate)
}

func TestUnknownReportType(t *testing.T) {
	reg := aggregate.NewRegistry()
	_, err := reg.Lookup(domain.ReportType("ffiec-schedule-rc"))
	assert.Error(t, err)
}
