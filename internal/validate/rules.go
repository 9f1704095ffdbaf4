// Package validate applies declarative business rules to the normalized
// account set. Issues are collected, never thrown singly; a Fatal issue
// excludes its account from the accepted set without stopping the run
// (strict mode handling belongs to the caller).
package validate

import (
	"fmt"

	"loan-reporting/internal/domain"
)

// Rule is one declarative check against a single account. ok == true
// means the rule passed. Detail supplies the issue message on failure.
type Rule struct {
	Name     string
	Field    string
	Severity domain.Severity
	Check    func(domain.AccountRecord) (ok bool, detail string)
}

// fieldRules run first, one field at a time.
var fieldRules = []Rule{
	{
		Name: "account-id-present", Field: "account_id", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.AccountID != "", "account identifier is required"
		},
	},
	{
		Name: "borrower-name-present", Field: "borrower_name", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.BorrowerName != "", "borrower name is required"
		},
	},
	{
		Name: "principal-non-negative", Field: "principal_balance", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.PrincipalBalance >= 0, fmt.Sprintf("principal balance %d is negative", a.PrincipalBalance)
		},
	},
	{
		Name: "past-due-non-negative", Field: "past_due_amount", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.PastDueAmount >= 0, fmt.Sprintf("past due amount %d is negative", a.PastDueAmount)
		},
	},
	{
		Name: "origination-date-present", Field: "origination_date", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return !a.OriginationDate.IsZero(), "origination date is required"
		},
	},
	{
		Name: "ssn-nine-digits", Field: "borrower_ssn", Severity: domain.SeverityWarning,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.BorrowerSSN == "" || len(a.BorrowerSSN) == 9,
				fmt.Sprintf("SSN has %d digits, expected 9", len(a.BorrowerSSN))
		},
	},
	{
		Name: "rate-plausible", Field: "interest_rate", Severity: domain.SeverityWarning,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.InterestRate.LessThanOrEqual(thirty),
				fmt.Sprintf("annual rate %s exceeds 30%%", a.InterestRate)
		},
	},
	{
		Name: "term-positive", Field: "term_months", Severity: domain.SeverityWarning,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.TermMonths > 0, "term in months is missing or zero"
		},
	},
}

// crossRules run after field rules on the same account.
var crossRules = []Rule{
	{
		Name: "charge-off-requires-date", Field: "charge_off_date", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.Status != domain.StatusChargedOff || !a.ChargeOffDate.IsZero(),
				"charged-off account is missing its charge-off date"
		},
	},
	{
		Name: "past-due-requires-due-date", Field: "last_due_date", Severity: domain.SeverityFatal,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.Status != domain.StatusPastDue || !a.LastDueDate.IsZero(),
				"past-due account is missing its last due date"
		},
	},
	{
		Name: "current-has-no-past-due", Field: "past_due_amount", Severity: domain.SeverityWarning,
		Check: func(a domain.AccountRecord) (bool, string) {
			return a.Status != domain.StatusCurrent || a.PastDueAmount == 0,
				fmt.Sprintf("current account carries past due amount %d", a.PastDueAmount)
		},
	},
	{
		Name: "closed-has-zero-balance", Field: "principal_balance", Severity: domain.SeverityWarning,
		Check: func(a domain.AccountRecord) (bool, string) {
			closed := a.Status == domain.StatusPaidOff || a.Status == domain.StatusClosed
			return !closed || a.PrincipalBalance == 0,
				fmt.Sprintf("closed account carries principal balance %d", a.PrincipalBalance)
		},
	},
}
