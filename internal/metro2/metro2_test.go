package metro2_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"loan-reporting/internal/domain"
	"loan-reporting/internal/metro2"
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
		StrictMode:   domain.StrictAbort,
		ReporterID:   "CAPCU001",
		ReporterName: "CAPITAL CREDIT UNION",
		ReporterAddr: "100 MAIN ST, AUSTIN TX",
		ProgramIDs: domain.ProgramIDs{
			Innovis: "INN123", Equifax: "EQX456", Experian: "EXP78", TransUnion: "TUX901",
		},
		DayCountDefault: domain.DayCountActual365,
		BucketEdges:     domain.DefaultBucketEdges(),
		CycleNumber:     3,
	}
}

func metroAccount(id string) domain.AccountRecord {
	return domain.AccountRecord{
		AccountID:        id,
		BorrowerName:     "Mercer, Conrad",
		BorrowerSSN:      "123456789",
		AddressLine1:     "42 ELM ST",
		City:             "AUSTIN",
		State:            "TX",
		PostalCode:       "78701",
		Status:           domain.StatusCurrent,
		PortfolioType:    "M",
		AccountType:      "08",
		PrincipalBalance: 123456,
		InterestRate:     decimal.RequireFromString("6.0"),
		DayCount:         domain.DayCountActual365,
		TermMonths:       360,
		ScheduledPayment: 89901,
		OriginalAmount:   20000000,
		OriginationDate:  time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC),
		LastPaymentDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEncodeProducesFixedWidthRecords(t *testing.T) {
	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{metroAccount("LN-0001")})
	assert.NoError(t, err)

	raw := file.Bytes()
	// Header + one base record + trailer, no delimiters.
	assert.Equal(t, 3*metro2.RecordLength, len(raw))
	assert.NotContains(t, string(raw), "\n")

	// The balance field is 10-digit zero-padded at its fixed offset
	// within the base record (second record of the file).
	base := raw[metro2.RecordLength : 2*metro2.RecordLength]
	assert.Equal(t, "0000123456", string(base[130:140]))

	// Header identification.
	assert.Equal(t, "0426", string(raw[0:4]))
	assert.Equal(t, "HEADER", string(raw[4:10]))
}

func TestControlTotals(t *testing.T) {
	a := metroAccount("LN-0001")
	b := metroAccount("LN-0002")
	b.PrincipalBalance = 500000
	b.InterestBalance = 1234
	b.Segments = []domain.Segment{
		domain.J1Segment{Surname: "Villafana", FirstName: "David", SSN: "987654321", ECOACode: "2"},
	}

	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{a, b})
	assert.NoError(t, err)

	assert.Equal(t, int64(2), file.Trailer.TotalBaseRecords)
	assert.Equal(t, int64(1), file.Trailer.TotalJ1Segments)
	// header + 2 base + 1 segment + trailer
	assert.Equal(t, int64(5), file.Trailer.TotalRecords)
	assert.Equal(t, a.TotalBalance()+b.TotalBalance(), file.Trailer.TotalBalance)
}

func TestSegmentCanonicalOrder(t *testing.T) {
	a := metroAccount("LN-0001")
	// Source order deliberately scrambled; the encoder must reorder.
	a.Segments = []domain.Segment{
		domain.K1Segment{OriginalCreditorName: "FIRST CAPITAL BANK", CreditorClassification: 2},
		domain.J2Segment{Surname: "Roe", FirstName: "Jane", ECOACode: "2", AddressLine1: "9 OAK AVE", City: "DALLAS", State: "TX", PostalCode: "75201"},
		domain.J1Segment{Surname: "Villafana", FirstName: "David", ECOACode: "2"},
	}

	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{a})
	assert.NoError(t, err)

	segs := file.Entries[0].Segments
	if assert.Len(t, segs, 3) {
		assert.Equal(t, domain.SegmentJ1, segs[0].Kind())
		assert.Equal(t, domain.SegmentJ2, segs[1].Kind())
		assert.Equal(t, domain.SegmentK1, segs[2].Kind())
	}
}

func TestRoundTrip(t *testing.T) {
	a := metroAccount("LN-0001")
	a.Segments = []domain.Segment{
		domain.J1Segment{Surname: "Villafana", FirstName: "David", SSN: "987654321", ECOACode: "2"},
		domain.K1Segment{OriginalCreditorName: "FIRST CAPITAL BANK", CreditorClassification: 2},
	}

	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{a})
	assert.NoError(t, err)

	decoded, err := metro2.Decode(file.Bytes())
	assert.NoError(t, err)

	assert.Equal(t, file.Header, decoded.Header)
	assert.Equal(t, file.Trailer, decoded.Trailer)
	if assert.Len(t, decoded.Entries, 1) {
		base := decoded.Entries[0].Base
		assert.Equal(t, "LN-0001", base.AccountNumber)
		assert.Equal(t, "CAPCU001", base.ReporterID)
		assert.Equal(t, "M", base.PortfolioType)
		assert.Equal(t, "11", base.AccountStatus)
		assert.Equal(t, int64(123456), base.CurrentBalance)
		assert.Equal(t, "Mercer", base.Surname)
		assert.Equal(t, "Conrad", base.FirstName)
		assert.Equal(t, "123456789", base.SSN)
		assert.Equal(t, time.Date(2019, 6, 15, 0, 0, 0, 0, time.UTC), base.DateOpened)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), base.DateLastPayment)
		assert.Equal(t, a.Segments, decoded.Entries[0].Segments)
	}
}

func TestRoundTripPreservesMaxWidthFields(t *testing.T) {
	// 25 characters fills the surname field exactly; one more is an
	// encoding error, never a silent truncation.
	long := strings.Repeat("W", 25)
	a := metroAccount("LN-0001")
	a.BorrowerName = long + ", Adolph"

	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{a})
	assert.NoError(t, err)

	decoded, err := metro2.Decode(file.Bytes())
	assert.NoError(t, err)
	if assert.Len(t, decoded.Entries, 1) {
		assert.Equal(t, long, decoded.Entries[0].Base.Surname)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	accounts := []domain.AccountRecord{metroAccount("LN-0001"), metroAccount("LN-0002")}
	enc := metro2.NewEncoder(testConfig(), testPeriod())

	first, err := enc.Encode(accounts)
	assert.NoError(t, err)
	second, err := enc.Encode(accounts)
	assert.NoError(t, err)

	assert.True(t, bytes.Equal(first.Bytes(), second.Bytes()))
}

func TestDelinquentStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		lastDue  time.Time
		wantCode string
	}{
		{"thirty days", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "71"},
		{"sixty days", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "78"},
		{"ninety days", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "80"},
		{"half a year", time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC), "84"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := metroAccount("LN-0001")
			a.Status = domain.StatusPastDue
			a.LastDueDate = tt.lastDue
			a.PastDueAmount = 10000

			enc := metro2.NewEncoder(testConfig(), testPeriod())
			file, err := enc.Encode([]domain.AccountRecord{a})
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCode, file.Entries[0].Base.AccountStatus)
		})
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AccountRecord)
	}{
		{"missing borrower name", func(a *domain.AccountRecord) { a.BorrowerName = "" }},
		{"missing origination date", func(a *domain.AccountRecord) { a.OriginationDate = time.Time{} }},
		{"account id overflows field width", func(a *domain.AccountRecord) {
			a.AccountID = "LN-00000000000000000000000000001"
		}},
		{"balance overflows field width", func(a *domain.AccountRecord) {
			a.PrincipalBalance = 100_000_000_000 // 12 digits > width 10
		}},
		{"negative past due amount", func(a *domain.AccountRecord) { a.PastDueAmount = -1 }},
		{"non-digit ssn", func(a *domain.AccountRecord) { a.BorrowerSSN = "12345678X" }},
		{"surname overflows field width", func(a *domain.AccountRecord) {
			a.BorrowerName = "Wolfeschlegelsteinhausenberger, Adolph"
		}},
		{"address overflows field width", func(a *domain.AccountRecord) {
			a.AddressLine1 = strings.Repeat("W", 40)
		}},
		{"portfolio type outside enum", func(a *domain.AccountRecord) { a.PortfolioType = "Q" }},
		{"ecoa outside enum", func(a *domain.AccountRecord) {
			a.Segments = []domain.Segment{domain.J1Segment{Surname: "Roe", ECOACode: "9"}}
		}},
		{"creditor classification outside range", func(a *domain.AccountRecord) {
			a.Segments = []domain.Segment{domain.K1Segment{OriginalCreditorName: "X", CreditorClassification: 44}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := metroAccount("LN-0001")
			tt.mutate(&a)
			enc := metro2.NewEncoder(testConfig(), testPeriod())
			_, err := enc.Encode([]domain.AccountRecord{a})
			var encErr *domain.EncodingError
			assert.ErrorAs(t, err, &encErr)
		})
	}
}

func TestDecodeRejectsCorruptedFile(t *testing.T) {
	enc := metro2.NewEncoder(testConfig(), testPeriod())
	file, err := enc.Encode([]domain.AccountRecord{metroAccount("LN-0001")})
	assert.NoError(t, err)

	t.Run("truncated file", func(t *testing.T) {
		_, err := metro2.Decode(file.Bytes()[:100])
		assert.Error(t, err)
	})

	t.Run("tampered balance breaks control total", func(t *testing.T) {
		raw := append([]byte(nil), file.Bytes()...)
		base := raw[metro2.RecordLength : 2*metro2.RecordLength]
		copy(base[130:140], "0009999999")
		_, err := metro2.Decode(raw)
		var encErr *domain.EncodingError
		if assert.ErrorAs(t, err, &encErr) {
			assert.Contains(t, encErr.Error(), "control total mismatch")
		}
	})

	t.Run("missing trailer", func(t *testing.T) {
		_, err := metro2.Decode(file.Bytes()[:2*metro2.RecordLength])
		assert.Error(t, err)
	})
}
