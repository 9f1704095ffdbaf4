package domain

import "github.com/shopspring/decimal"

// ReportType selects one entry of the fixed report catalog.
type ReportType string

const (
	ReportTrialBalance     ReportType = "trial-balance"
	ReportDelinquencyAging ReportType = "delinquency-aging"
	ReportInterestAccrual  ReportType = "interest-accrual"
	ReportAmortization     ReportType = "amortization"
	ReportMetro2           ReportType = "metro2"
	ReportOTSScheduleCMR   ReportType = "ots-schedule-cmr"
	ReportNewLoansEntered  ReportType = "new-loans-entered"
)

// AggregateResult is the report-specific structured output of the
// aggregation engine. The concrete type depends on the report type.
type AggregateResult interface {
	ReportType() ReportType
}

// TrialBalanceEntry is one per-account reconciliation row.
type TrialBalanceEntry struct {
	AccountID string `json:"account_id"`
	Principal int64  `json:"principal"`
	Interest  int64  `json:"interest"`
	Escrow    int64  `json:"escrow"`
	Total     int64  `json:"total"`
}

// TrialBalance is the period-end balance summary. Totals are accumulated
// in integer minor units so no rounding drift is possible.
type TrialBalance struct {
	Entries        []TrialBalanceEntry `json:"entries"`
	TotalPrincipal int64               `json:"total_principal"`
	TotalInterest  int64               `json:"total_interest"`
	TotalEscrow    int64               `json:"total_escrow"`
	GrandTotal     int64               `json:"grand_total"`
}

func (TrialBalance) ReportType() ReportType { return ReportTrialBalance }

// DelinquencyBucket is one aging band of the delinquency schedule.
type DelinquencyBucket struct {
	Label        string   `json:"label"`
	MinDays      int      `json:"min_days"`
	MaxDays      int      `json:"max_days"` // -1 for the open-ended band
	Count        int      `json:"count"`
	TotalBalance int64    `json:"total_balance"`
	AccountIDs   []string `json:"account_ids"`
}

// DelinquencySchedule is the aging report: every account lands in exactly
// one bucket.
type DelinquencySchedule struct {
	Buckets []DelinquencyBucket `json:"buckets"`
}

func (DelinquencySchedule) ReportType() ReportType { return ReportDelinquencyAging }

// InterestAccrualLine is one account's accrued interest for the period.
type InterestAccrualLine struct {
	AccountID  string             `json:"account_id"`
	Principal  int64              `json:"principal"`
	AnnualRate decimal.Decimal    `json:"annual_rate"`
	Days       int                `json:"days"`
	Convention DayCountConvention `json:"convention"`
	Accrued    int64              `json:"accrued"`
}

// InterestAccrualSchedule totals period interest across the portfolio.
type InterestAccrualSchedule struct {
	Lines        []InterestAccrualLine `json:"lines"`
	TotalAccrued int64                 `json:"total_accrued"`
}

func (InterestAccrualSchedule) ReportType() ReportType { return ReportInterestAccrual }

// AmortizationRow is one projected payment period for one account.
type AmortizationRow struct {
	PeriodNumber     int   `json:"period_number"`
	Payment          int64 `json:"payment"`
	InterestPortion  int64 `json:"interest_portion"`
	PrincipalPortion int64 `json:"principal_portion"`
	RemainingBalance int64 `json:"remaining_balance"`
}

// AmortizationProjection is one account's forward payment schedule.
type AmortizationProjection struct {
	AccountID string            `json:"account_id"`
	Rows      []AmortizationRow `json:"rows"`
}

// AmortizationSchedule holds projections for every account, ordered by
// ascending account identifier.
type AmortizationSchedule struct {
	Projections []AmortizationProjection `json:"projections"`
}

func (AmortizationSchedule) ReportType() ReportType { return ReportAmortization }

// CMRGroupRow is one investor-group line of the OTS Schedule CMR report.
type CMRGroupRow struct {
	NumLoans      int             `json:"num_loans"`
	InvestorName  string          `json:"investor_name"`
	GroupKey      string          `json:"group_key"` // bank-investor-group
	TotalBalances int64           `json:"total_balances"`
	AvgRemTerm    decimal.Decimal `json:"avg_rem_term"`
	Years         decimal.Decimal `json:"years"`
	AvgIntRate    decimal.Decimal `json:"avg_int_rate"`

	// Combined figures are populated on the 200-series row of a paired
	// 10- or 15-year investor group, averaging it with its 100-series
	// counterpart.
	CombinedAvgYears   *decimal.Decimal `json:"combined_avg_years,omitempty"`
	CombinedAvgIntRate *decimal.Decimal `json:"combined_avg_int_rate,omitempty"`
}

// CMRSchedule is the OTS Schedule CMR aggregate, rows ordered by
// investor group code.
type CMRSchedule struct {
	Rows []CMRGroupRow `json:"rows"`
}

func (CMRSchedule) ReportType() ReportType { return ReportOTSScheduleCMR }

// NewLoanRow is one loan originated inside the report period.
type NewLoanRow struct {
	AccountID       string          `json:"account_id"`
	BorrowerName    string          `json:"borrower_name"`
	OriginationDate string          `json:"origination_date"`
	OriginalAmount  int64           `json:"original_amount"`
	AnnualRate      decimal.Decimal `json:"annual_rate"`
	TermMonths      int             `json:"term_months"`
}

// NewLoansReport lists the period's new originations.
type NewLoansReport struct {
	Rows []NewLoanRow `json:"rows"`
}

func (NewLoansReport) ReportType() ReportType { return ReportNewLoansEntered }

// MetroAccountSet is the aggregation output for the Metro 2 path: the
// normalized account set in ascending account-identifier order, ready for
// validation and fixed-width encoding.
type MetroAccountSet struct {
	Accounts []AccountRecord `json:"accounts"`
}

func (MetroAccountSet) ReportType() ReportType { return ReportMetro2 }
