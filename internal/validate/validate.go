package validate

import (
	"github.com/shopspring/decimal"

	"loan-reporting/internal/domain"
)

var thirty = decimal.NewFromInt(30)

// Result is the outcome of validating one account set.
type Result struct {
	// Accepted keeps the input order (ascending account identifier).
	Accepted []domain.AccountRecord
	// Issues covers every account, accepted or excluded, so callers can
	// produce an exception report alongside the main artifact.
	Issues []domain.ValidationIssue
	// Excluded lists the identifiers dropped for Fatal issues.
	Excluded []string
}

// Validate applies field-level rules, then cross-field rules, to every
// account. An account with at least one Fatal issue is excluded from the
// accepted set; the run itself never aborts here.
func Validate(accounts []domain.AccountRecord) Result {
	res := Result{
		Accepted: make([]domain.AccountRecord, 0, len(accounts)),
		Issues:   []domain.ValidationIssue{},
	}
	for _, a := range accounts {
		issues := checkAccount(a)
		res.Issues = append(res.Issues, issues...)
		if hasFatal(issues) {
			res.Excluded = append(res.Excluded, a.AccountID)
			continue
		}
		res.Accepted = append(res.Accepted, a)
	}
	return res
}

// HasFatal reports whether any issue in the list is Fatal.
func HasFatal(issues []domain.ValidationIssue) bool {
	return hasFatal(issues)
}

func checkAccount(a domain.AccountRecord) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, rules := range [][]Rule{fieldRules, crossRules} {
		for _, r := range rules {
			ok, detail := r.Check(a)
			if ok {
				continue
			}
			issues = append(issues, domain.ValidationIssue{
				AccountID: a.AccountID,
				Field:     r.Field,
				Rule:      r.Name,
				Severity:  r.Severity,
				Detail:    detail,
			})
		}
	}
	return issues
}

func hasFatal(issues []domain.ValidationIssue) bool {
	for _, i := range issues {
		if i.Severity == domain.SeverityFatal {
			return true
		}
	}
	return false
}
