// Package normalizer maps raw servicing-system records into the canonical
// AccountRecord shape. Normalization is pure and total except for
// MalformedInputError on a missing or unparseable required field.
package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"loan-reporting/internal/domain"
)

// statusMap is the closed mapping from source status codes onto the
// report catalog vocabulary. An unmapped code fails loudly; silently
// defaulting would corrupt every downstream report.
var statusMap = map[string]domain.AccountStatus{
	"C":   domain.StatusCurrent,
	"CUR": domain.StatusCurrent,
	"11":  domain.StatusCurrent,
	"D":   domain.StatusPastDue,
	"DEL": domain.StatusPastDue,
	"PD":  domain.StatusPastDue,
	"CO":  domain.StatusChargedOff,
	"97":  domain.StatusChargedOff,
	"F":   domain.StatusForeclosure,
	"FC":  domain.StatusForeclosure,
	"P":   domain.StatusPaidOff,
	"PIF": domain.StatusPaidOff,
	"13":  domain.StatusPaidOff,
	"X":   domain.StatusClosed,
	"CL":  domain.StatusClosed,
}

// dateLayouts are the source date encodings seen across servicing
// extracts, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"01022006",
	"20060102",
}

// Normalize converts one raw record into a canonical AccountRecord.
func Normalize(raw domain.RawRecord, defaultDayCount domain.DayCountConvention) (domain.AccountRecord, error) {
	accountID := strings.TrimSpace(raw["account_id"])
	if accountID == "" {
		return domain.AccountRecord{}, &domain.MalformedInputError{
			Field: "account_id", Reason: "missing",
		}
	}

	status, err := parseStatus(accountID, raw["status"])
	if err != nil {
		return domain.AccountRecord{}, err
	}

	rec := domain.AccountRecord{
		AccountID:    accountID,
		BorrowerName: strings.TrimSpace(raw["borrower_name"]),
		BorrowerSSN:  digitsOnly(raw["borrower_ssn"]),
		AddressLine1: strings.TrimSpace(raw["address_line1"]),
		City:         strings.TrimSpace(raw["city"]),
		State:        strings.ToUpper(strings.TrimSpace(raw["state"])),
		PostalCode:   strings.TrimSpace(raw["postal_code"]),
		Status:       status,

		PortfolioType: defaulted(raw["portfolio_type"], "M"),
		AccountType:   defaulted(raw["account_type"], "08"),

		InvestorBank:  strings.TrimSpace(raw["investor_bank"]),
		InvestorCode:  strings.TrimSpace(raw["investor_code"]),
		InvestorGroup: strings.TrimSpace(raw["investor_group"]),
		InvestorName:  strings.TrimSpace(raw["investor_name"]),
	}

	if rec.PrincipalBalance, err = parseCurrency(accountID, "principal_balance", raw["principal_balance"], true); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.InterestBalance, err = parseCurrency(accountID, "interest_balance", raw["interest_balance"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.EscrowBalance, err = parseCurrency(accountID, "escrow_balance", raw["escrow_balance"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.PastDueAmount, err = parseCurrency(accountID, "past_due_amount", raw["past_due_amount"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.OriginalAmount, err = parseCurrency(accountID, "original_amount", raw["original_amount"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.ScheduledPayment, err = parseCurrency(accountID, "scheduled_payment", raw["scheduled_payment"], false); err != nil {
		return domain.AccountRecord{}, err
	}

	if rec.InterestRate, err = parseRate(accountID, raw["interest_rate"]); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.DayCount, err = parseDayCount(accountID, raw["day_count"], defaultDayCount); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.TermMonths, err = parseTerm(accountID, raw["term_months"]); err != nil {
		return domain.AccountRecord{}, err
	}

	if rec.OriginationDate, err = parseDate(accountID, "origination_date", raw["origination_date"], true); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.LastPaymentDate, err = parseDate(accountID, "last_payment_date", raw["last_payment_date"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.NextDueDate, err = parseDate(accountID, "next_due_date", raw["next_due_date"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.LastDueDate, err = parseDate(accountID, "last_due_date", raw["last_due_date"], false); err != nil {
		return domain.AccountRecord{}, err
	}
	if rec.ChargeOffDate, err = parseDate(accountID, "charge_off_date", raw["charge_off_date"], false); err != nil {
		return domain.AccountRecord{}, err
	}

	rec.Segments = buildSegments(raw)
	return rec, nil
}

func parseStatus(accountID, v string) (domain.AccountStatus, error) {
	code := strings.ToUpper(strings.TrimSpace(v))
	if code == "" {
		return "", &domain.MalformedInputError{AccountID: accountID, Field: "status", Reason: "missing"}
	}
	status, ok := statusMap[code]
	if !ok {
		return "", &domain.MalformedInputError{
			AccountID: accountID, Field: "status", Reason: "unmapped status code " + code,
		}
	}
	return status, nil
}

// parseCurrency parses a source amount ("1234.56", "1,234.56", "123456")
// into integer minor units. Decimal arithmetic keeps the cent conversion
// exact; no float ever touches a balance.
func parseCurrency(accountID, field, v string, required bool) (int64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if s == "" {
		if required {
			return 0, &domain.MalformedInputError{AccountID: accountID, Field: field, Reason: "missing"}
		}
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &domain.MalformedInputError{
			AccountID: accountID, Field: field, Reason: "unparseable amount " + v,
		}
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, &domain.MalformedInputError{
			AccountID: accountID, Field: field, Reason: "sub-cent precision in amount " + v,
		}
	}
	return cents.IntPart(), nil
}

func parseRate(accountID, v string) (decimal.Decimal, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, &domain.MalformedInputError{
			AccountID: accountID, Field: "interest_rate", Reason: "unparseable rate " + v,
		}
	}
	return d, nil
}

func parseDayCount(accountID, v string, def domain.DayCountConvention) (domain.DayCountConvention, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "":
		return def, nil
	case "ACT/365", "365":
		return domain.DayCountActual365, nil
	case "ACT/360", "360":
		return domain.DayCountActual360, nil
	}
	return "", &domain.MalformedInputError{
		AccountID: accountID, Field: "day_count", Reason: "unknown convention " + v,
	}
}

func parseTerm(accountID, v string) (int, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) || d.IsNegative() {
		return 0, &domain.MalformedInputError{
			AccountID: accountID, Field: "term_months", Reason: "unparseable term " + v,
		}
	}
	return int(d.IntPart()), nil
}

func parseDate(accountID, field, v string, required bool) (time.Time, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		if required {
			return time.Time{}, &domain.MalformedInputError{AccountID: accountID, Field: field, Reason: "missing"}
		}
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &domain.MalformedInputError{
		AccountID: accountID, Field: field, Reason: "unparseable date " + v,
	}
}

// buildSegments derives optional Metro 2 segments from co-borrower and
// original-creditor raw fields when present.
func buildSegments(raw domain.RawRecord) []domain.Segment {
	var segs []domain.Segment
	if name := strings.TrimSpace(raw["coborrower_name"]); name != "" {
		surname, first := splitName(name)
		segs = append(segs, domain.J1Segment{
			Surname:   surname,
			FirstName: first,
			SSN:       digitsOnly(raw["coborrower_ssn"]),
			ECOACode:  defaulted(raw["coborrower_ecoa"], "2"),
		})
	}
	if creditor := strings.TrimSpace(raw["original_creditor"]); creditor != "" {
		segs = append(segs, domain.K1Segment{
			OriginalCreditorName:   creditor,
			CreditorClassification: 2, // financial
		})
	}
	return segs
}

// splitName splits "Last, First" or "First Last" into surname and first
// name.
func splitName(name string) (surname, first string) {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name, ""
	}
	return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func defaulted(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
