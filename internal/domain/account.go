package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the closed status vocabulary of the report catalog.
// The normalizer maps every source status code onto one of these values
// and fails on anything it does not recognize.
type AccountStatus string

const (
	StatusCurrent     AccountStatus = "CURRENT"
	StatusPastDue     AccountStatus = "PAST_DUE"
	StatusChargedOff  AccountStatus = "CHARGED_OFF"
	StatusForeclosure AccountStatus = "FORECLOSURE"
	StatusPaidOff     AccountStatus = "PAID_OFF"
	StatusClosed      AccountStatus = "CLOSED"
)

// DayCountConvention selects the denominator for converting an annual
// rate into period interest.
type DayCountConvention string

const (
	DayCountActual365 DayCountConvention = "ACT/365"
	DayCountActual360 DayCountConvention = "ACT/360"
)

// RawRecord is one per-account row as delivered by the servicing system,
// keyed by source field name. Values are untyped strings; the normalizer
// owns all parsing.
type RawRecord map[string]string

// AccountRecord is the canonical per-loan snapshot for one report period.
// All monetary amounts are integer minor units (cents). Records are
// immutable once produced by the normalizer; later stages derive new
// values instead of mutating.
type AccountRecord struct {
	AccountID    string          `json:"account_id"`
	BorrowerName string          `json:"borrower_name"`
	BorrowerSSN  string          `json:"borrower_ssn,omitempty"`
	AddressLine1 string          `json:"address_line1,omitempty"`
	City         string          `json:"city,omitempty"`
	State        string          `json:"state,omitempty"`
	PostalCode   string          `json:"postal_code,omitempty"`

	Status        AccountStatus `json:"status"`
	PortfolioType string        `json:"portfolio_type"` // C, I, L, M or O
	AccountType   string        `json:"account_type"`

	PrincipalBalance int64 `json:"principal_balance"`
	InterestBalance  int64 `json:"interest_balance"`
	EscrowBalance    int64 `json:"escrow_balance"`
	PastDueAmount    int64 `json:"past_due_amount"`
	OriginalAmount   int64 `json:"original_amount"`
	ScheduledPayment int64 `json:"scheduled_payment"`

	InterestRate decimal.Decimal    `json:"interest_rate"` // annual, percent
	DayCount     DayCountConvention `json:"day_count"`
	TermMonths   int                `json:"term_months"`

	OriginationDate time.Time `json:"origination_date"`
	LastPaymentDate time.Time `json:"last_payment_date,omitempty"`
	NextDueDate     time.Time `json:"next_due_date,omitempty"`
	LastDueDate     time.Time `json:"last_due_date,omitempty"`
	ChargeOffDate   time.Time `json:"charge_off_date,omitempty"`

	// Investor grouping used by the OTS Schedule CMR report.
	InvestorBank  string `json:"investor_bank,omitempty"`
	InvestorCode  string `json:"investor_code,omitempty"`
	InvestorGroup string `json:"investor_group,omitempty"`
	InvestorName  string `json:"investor_name,omitempty"`

	// Optional non-Base segments attached for Metro 2 output. The Base
	// segment itself is derived from the fields above at encode time.
	Segments []Segment `json:"segments,omitempty"`
}

// TotalBalance is the figure carried into trial-balance totals and the
// Metro 2 trailer control total.
func (a AccountRecord) TotalBalance() int64 {
	return a.PrincipalBalance + a.InterestBalance + a.EscrowBalance
}

// DaysPastDue is anchored to the reporting as-of date, never wall clock.
func (a AccountRecord) DaysPastDue(asOf time.Time) int {
	if a.LastDueDate.IsZero() || !a.LastDueDate.Before(asOf) {
		return 0
	}
	return int(asOf.Sub(a.LastDueDate).Hours() / 24)
}
