package normalizer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"loan-reporting/internal/domain"
	"loan-reporting/internal/normalizer"
)

func validRaw() domain.RawRecord {
	return domain.RawRecord{
		"account_id":        "LN-0001",
		"borrower_name":     "Mercer, Conrad",
		"borrower_ssn":      "123-45-6789",
		"status":            "CUR",
		"principal_balance": "1234.56",
		"interest_balance":  "10.00",
		"escrow_balance":    "5.44",
		"past_due_amount":   "0",
		"interest_rate":     "6.125",
		"term_months":       "360",
		"origination_date":  "2019-06-15",
		"last_payment_date": "03/01/2024",
		"next_due_date":     "04/01/2024",
		"last_due_date":     "2024-04-01",
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(domain.RawRecord)
		check     func(t *testing.T, rec domain.AccountRecord)
		wantErr   bool
		wantField string
	}{
		{
			name:   "valid record",
			mutate: func(domain.RawRecord) {},
			check: func(t *testing.T, rec domain.AccountRecord) {
				assert.Equal(t, "LN-0001", rec.AccountID)
				assert.Equal(t, domain.StatusCurrent, rec.Status)
				assert.Equal(t, int64(123456), rec.PrincipalBalance)
				assert.Equal(t, int64(1000), rec.InterestBalance)
				assert.Equal(t, int64(544), rec.EscrowBalance)
				assert.True(t, rec.InterestRate.Equal(decimal.RequireFromString("6.125")))
				assert.Equal(t, domain.DayCountActual365, rec.DayCount)
				assert.Equal(t, time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC), rec.OriginationDate)
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rec.LastPaymentDate)
				assert.Equal(t, "123456789", rec.BorrowerSSN)
			},
		},
		{
			name:   "currency with thousands separators",
			mutate: func(r domain.RawRecord) { r["principal_balance"] = "1,234.56" },
			check: func(t *testing.T, rec domain.AccountRecord) {
				assert.Equal(t, int64(123456), rec.PrincipalBalance)
			},
		},
		{
			name:   "MMDDYYYY date encoding",
			mutate: func(r domain.RawRecord) { r["origination_date"] = "06152019" },
			check: func(t *testing.T, rec domain.AccountRecord) {
				assert.Equal(t, time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC), rec.OriginationDate)
			},
		},
		{
			name:   "day count override",
			mutate: func(r domain.RawRecord) { r["day_count"] = "360" },
			check: func(t *testing.T, rec domain.AccountRecord) {
				assert.Equal(t, domain.DayCountActual360, rec.DayCount)
			},
		},
		{
			name: "co-borrower yields J1 segment",
			mutate: func(r domain.RawRecord) {
				r["coborrower_name"] = "Villafana, David"
				r["coborrower_ssn"] = "987-65-4321"
			},
			check: func(t *testing.T, rec domain.AccountRecord) {
				if assert.Len(t, rec.Segments, 1) {
					j1, ok := rec.Segments[0].(domain.J1Segment)
					assert.True(t, ok)
					assert.Equal(t, "Villafana", j1.Surname)
					assert.Equal(t, "David", j1.FirstName)
					assert.Equal(t, "987654321", j1.SSN)
				}
			},
		},
		{
			name: "original creditor yields K1 segment",
			mutate: func(r domain.RawRecord) {
				r["original_creditor"] = "FIRST CAPITAL BANK"
			},
			check: func(t *testing.T, rec domain.AccountRecord) {
				if assert.Len(t, rec.Segments, 1) {
					k1, ok := rec.Segments[0].(domain.K1Segment)
					assert.True(t, ok)
					assert.Equal(t, "FIRST CAPITAL BANK", k1.OriginalCreditorName)
				}
			},
		},
		{
			name:      "missing account id",
			mutate:    func(r domain.RawRecord) { delete(r, "account_id") },
			wantErr:   true,
			wantField: "account_id",
		},
		{
			name:      "missing status",
			mutate:    func(r domain.RawRecord) { r["status"] = "" },
			wantErr:   true,
			wantField: "status",
		},
		{
			name:      "unmapped status code fails loudly",
			mutate:    func(r domain.RawRecord) { r["status"] = "ZZ" },
			wantErr:   true,
			wantField: "status",
		},
		{
			name:      "unparseable amount",
			mutate:    func(r domain.RawRecord) { r["principal_balance"] = "12x4.56" },
			wantErr:   true,
			wantField: "principal_balance",
		},
		{
			name:      "sub-cent precision rejected",
			mutate:    func(r domain.RawRecord) { r["principal_balance"] = "1234.567" },
			wantErr:   true,
			wantField: "principal_balance",
		},
		{
			name:      "missing mandatory origination date",
			mutate:    func(r domain.RawRecord) { r["origination_date"] = "" },
			wantErr:   true,
			wantField: "origination_date",
		},
		{
			name:      "unparseable date",
			mutate:    func(r domain.RawRecord) { r["last_due_date"] = "31-31-2024" },
			wantErr:   true,
			wantField: "last_due_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)
			rec, err := normalizer.Normalize(raw, domain.DayCountActual365)
			if tt.wantErr {
				assert.Error(t, err)
				var malformed *domain.MalformedInputError
				if assert.ErrorAs(t, err, &malformed) {
					assert.Equal(t, tt.wantField, malformed.Field)
				}
				return
			}
			assert.NoError(t, err)
			tt.check(t, rec)
		})
	}
}

func TestDaysPastDue(t *testing.T) {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	rec := domain.AccountRecord{LastDueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 30, rec.DaysPastDue(asOf))

	rec.LastDueDate = time.Time{}
	assert.Equal(t, 0, rec.DaysPastDue(asOf))

	rec.LastDueDate = asOf.AddDate(0, 0, 5)
	assert.Equal(t, 0, rec.DaysPastDue(asOf))
}
