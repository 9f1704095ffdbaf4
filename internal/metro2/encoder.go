package metro2

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"loan-reporting/internal/domain"
)

// Header is the parsed header record.
type Header struct {
	CycleNumber  int
	ProgramIDs   domain.ProgramIDs
	ActivityDate time.Time
	DateCreated  time.Time
	ReporterName string
	ReporterAddr string
}

// Base is the parsed mandatory core block of one account entry.
type Base struct {
	ReporterID      string
	AccountNumber   string
	PortfolioType   string
	AccountType     string
	DateOpened      time.Time
	HighestCredit   int64
	TermsDuration   int64
	ScheduledPay    int64
	AccountStatus   string
	PaymentHistory  string
	CurrentBalance  int64
	AmountPastDue   int64
	ChargeOffAmount int64
	DateAcctInfo    time.Time
	DateFirstDelq   time.Time
	DateClosed      time.Time
	DateLastPayment time.Time
	Surname         string
	FirstName       string
	SSN             string
	ECOACode        string
	AddressLine1    string
	City            string
	State           string
	PostalCode      string
}

// AccountEntry is one account's Base block plus its optional segments in
// canonical order.
type AccountEntry struct {
	Base     Base
	Segments []domain.Segment
}

// Trailer carries the control totals re-derived from the data records.
type Trailer struct {
	TotalBaseRecords int64
	TotalRecords     int64
	TotalJ1Segments  int64
	TotalJ2Segments  int64
	TotalK1Segments  int64
	TotalBalance     int64
}

// File is a complete Metro 2 artifact: header, ordered account entries,
// trailer, and the underlying byte sequence.
type File struct {
	Header  Header
	Entries []AccountEntry
	Trailer Trailer

	data []byte
}

// Bytes returns the opaque fixed-width byte sequence. There is no
// line-ending structure; consumers must walk 426-byte records.
func (f *File) Bytes() []byte { return f.data }

// Encoder serializes accepted accounts for one report period.
type Encoder struct {
	cfg    domain.CompileConfig
	period domain.ReportPeriod
}

func NewEncoder(cfg domain.CompileConfig, period domain.ReportPeriod) *Encoder {
	return &Encoder{cfg: cfg, period: period}
}

// Encode builds the full file. Accounts must already be sorted by
// ascending account identifier; encoding preserves that order so
// identical input always yields byte-identical output.
//
// The trailer's totals are re-derived by walking the emitted data-record
// bytes and compared against totals computed from the input accounts.
// Any divergence means an encoder defect and fails the run rather than
// emitting an inconsistent file.
func (e *Encoder) Encode(accounts []domain.AccountRecord) (*File, error) {
	var out []byte

	hdr, err := e.encodeHeader()
	if err != nil {
		return nil, err
	}
	out = append(out, hdr...)

	var wantBalance int64
	for _, a := range accounts {
		recs, err := e.encodeAccount(a)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			out = append(out, r...)
		}
		wantBalance += a.TotalBalance()
	}

	trailer, err := e.deriveTrailer(out[RecordLength:], int64(len(accounts)), wantBalance)
	if err != nil {
		return nil, err
	}

	trl, err := e.encodeTrailer(trailer)
	if err != nil {
		return nil, err
	}
	out = append(out, trl...)

	file, err := Decode(out)
	if err != nil {
		return nil, fmt.Errorf("self-decode of encoded file failed: %w", err)
	}
	return file, nil
}

func (e *Encoder) encodeHeader() ([]byte, error) {
	r := newRecord()
	if err := r.putNum(hdrRDW, RecordLength); err != nil {
		return nil, err
	}
	if err := r.putNum(hdrCycleNumber, int64(e.cfg.CycleNumber)); err != nil {
		return nil, err
	}
	if err := r.putDigits(hdrReporterTel, ""); err != nil {
		return nil, err
	}

	var err error
	alpha := func(f fieldDef, v string) {
		if err == nil {
			err = r.putAlpha(f, v)
		}
	}
	alpha(hdrRecordID, headerID)
	alpha(hdrInnovis, e.cfg.ProgramIDs.Innovis)
	alpha(hdrEquifax, e.cfg.ProgramIDs.Equifax)
	alpha(hdrExperian, e.cfg.ProgramIDs.Experian)
	alpha(hdrTransUnion, e.cfg.ProgramIDs.TransUnion)
	// Both dates anchor to the reporting as-of date so re-runs are
	// byte-identical.
	r.putDate(hdrActivityDate, e.period.AsOf)
	r.putDate(hdrDateCreated, e.period.AsOf)
	alpha(hdrReporterName, e.cfg.ReporterName)
	alpha(hdrReporterAddr, e.cfg.ReporterAddr)
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

// encodeAccount emits the Base record followed by the account's optional
// segments in canonical order, regardless of source order.
func (e *Encoder) encodeAccount(a domain.AccountRecord) ([][]byte, error) {
	if a.AccountID == "" || a.BorrowerName == "" || a.OriginationDate.IsZero() {
		return nil, &domain.EncodingError{
			AccountID: a.AccountID, Field: "base",
			Reason: "account lacks mandatory base segment data",
		}
	}
	if len(a.AccountID) > baseAccountNumber.width {
		return nil, &domain.EncodingError{
			AccountID: a.AccountID, Field: baseAccountNumber.name,
			Reason: fmt.Sprintf("identifier overflows width %d", baseAccountNumber.width),
		}
	}

	base, err := e.encodeBase(a)
	if err != nil {
		return nil, err
	}
	records := [][]byte{base}

	segments := make([]domain.Segment, len(a.Segments))
	copy(segments, a.Segments)
	sort.SliceStable(segments, func(i, j int) bool {
		return domain.SegmentOrder(segments[i].Kind()) < domain.SegmentOrder(segments[j].Kind())
	})

	for _, s := range segments {
		var rec []byte
		switch seg := s.(type) {
		case domain.J1Segment:
			rec, err = e.encodeJ1(a.AccountID, seg)
		case domain.J2Segment:
			rec, err = e.encodeJ2(a.AccountID, seg)
		case domain.K1Segment:
			rec, err = e.encodeK1(a.AccountID, seg)
		default:
			err = &domain.EncodingError{
				AccountID: a.AccountID, Field: "segment",
				Reason: fmt.Sprintf("unsupported segment kind %q", s.Kind()),
			}
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Encoder) encodeBase(a domain.AccountRecord) ([]byte, error) {
	status, err := accountStatusCode(a, e.period.AsOf)
	if err != nil {
		return nil, err
	}
	if !portfolioTypes[a.PortfolioType] {
		return nil, &domain.EncodingError{
			AccountID: a.AccountID, Field: basePortfolioType.name,
			Reason: fmt.Sprintf("portfolio type %q outside allowed set", a.PortfolioType),
		}
	}

	r := newRecord()
	numeric := func(f fieldDef, v int64) {
		if err == nil {
			if e2 := r.putNum(f, v); e2 != nil {
				err = wrapAccount(e2, a.AccountID)
			}
		}
	}
	digits := func(f fieldDef, v string) {
		if err == nil {
			if e2 := r.putDigits(f, v); e2 != nil {
				err = wrapAccount(e2, a.AccountID)
			}
		}
	}
	alpha := func(f fieldDef, v string) {
		if err == nil {
			if e2 := r.putAlpha(f, v); e2 != nil {
				err = wrapAccount(e2, a.AccountID)
			}
		}
	}

	numeric(baseRDW, RecordLength)
	numeric(baseProcessingInd, 1)
	alpha(baseReporterID, e.cfg.ReporterID)
	alpha(baseCycleID, fmt.Sprintf("%02d", e.cfg.CycleNumber))
	alpha(baseAccountNumber, a.AccountID)
	alpha(basePortfolioType, a.PortfolioType)
	alpha(baseAccountType, a.AccountType)
	r.putDate(baseDateOpened, a.OriginationDate)
	numeric(baseHighestCredit, a.OriginalAmount)
	numeric(baseTermsDuration, int64(a.TermMonths))
	alpha(baseTermsFreq, "M")
	numeric(baseScheduledPay, a.ScheduledPayment)
	numeric(baseActualPay, 0)
	digits(baseAccountStatus, status)
	alpha(basePaymentRating, paymentRating(status))
	alpha(basePaymentHist, strings.Repeat("B", basePaymentHist.width))
	numeric(baseCurrentBal, a.TotalBalance())
	numeric(baseAmountPastDue, a.PastDueAmount)
	numeric(baseChargeOffAmt, chargeOffAmount(a))
	r.putDate(baseDateAcctInfo, e.period.AsOf)
	r.putDate(baseDateFirstDelq, firstDelinquencyDate(a, e.period.AsOf))
	r.putDate(baseDateClosed, closedDate(a))
	r.putDate(baseDateLastPay, a.LastPaymentDate)

	surname, first := splitBorrowerName(a.BorrowerName)
	alpha(baseSurname, surname)
	alpha(baseFirstName, first)
	digits(baseSSN, a.BorrowerSSN)
	r.putDate(baseDOB, time.Time{})
	digits(baseTelephone, "")
	alpha(baseECOA, "1")
	alpha(baseCountryCode, "US")
	alpha(baseAddress1, a.AddressLine1)
	alpha(baseCity, a.City)
	alpha(baseState, a.State)
	alpha(basePostalCode, a.PostalCode)

	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

func (e *Encoder) encodeJ1(accountID string, s domain.J1Segment) ([]byte, error) {
	if !ecoaCodes[s.ECOACode] {
		return nil, &domain.EncodingError{
			AccountID: accountID, Field: segECOA.name,
			Reason: fmt.Sprintf("ECOA code %q outside allowed set", s.ECOACode),
		}
	}
	r := newRecord()
	if err := r.putNum(segRDW, RecordLength); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putDigits(segSSN, s.SSN); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putDigits(segTelephone, s.Telephone); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	r.putDate(segDOB, s.BirthDate)

	var err error
	alpha := func(f fieldDef, v string) {
		if err == nil {
			if e2 := r.putAlpha(f, v); e2 != nil {
				err = wrapAccount(e2, accountID)
			}
		}
	}
	alpha(segID, string(domain.SegmentJ1))
	alpha(segSurname, s.Surname)
	alpha(segFirstName, s.FirstName)
	alpha(segGeneration, s.GenerationCode)
	alpha(segECOA, s.ECOACode)
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

func (e *Encoder) encodeJ2(accountID string, s domain.J2Segment) ([]byte, error) {
	if !ecoaCodes[s.ECOACode] {
		return nil, &domain.EncodingError{
			AccountID: accountID, Field: segECOA.name,
			Reason: fmt.Sprintf("ECOA code %q outside allowed set", s.ECOACode),
		}
	}
	r := newRecord()
	if err := r.putNum(segRDW, RecordLength); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putDigits(segSSN, s.SSN); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putDigits(segTelephone, s.Telephone); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	r.putDate(segDOB, s.BirthDate)

	var err error
	alpha := func(f fieldDef, v string) {
		if err == nil {
			if e2 := r.putAlpha(f, v); e2 != nil {
				err = wrapAccount(e2, accountID)
			}
		}
	}
	alpha(segID, string(domain.SegmentJ2))
	alpha(segSurname, s.Surname)
	alpha(segFirstName, s.FirstName)
	alpha(segGeneration, s.GenerationCode)
	alpha(segECOA, s.ECOACode)
	alpha(j2Address1, s.AddressLine1)
	alpha(j2Address2, s.AddressLine2)
	alpha(j2City, s.City)
	alpha(j2State, s.State)
	alpha(j2PostalCode, s.PostalCode)
	if err != nil {
		return nil, err
	}
	return r.buf, nil
}

func (e *Encoder) encodeK1(accountID string, s domain.K1Segment) ([]byte, error) {
	if s.CreditorClassification < 1 || s.CreditorClassification > 18 {
		return nil, &domain.EncodingError{
			AccountID: accountID, Field: k1Classification.name,
			Reason: fmt.Sprintf("creditor classification %d outside 01-18", s.CreditorClassification),
		}
	}
	r := newRecord()
	if err := r.putNum(segRDW, RecordLength); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putAlpha(segID, string(domain.SegmentK1)); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putAlpha(k1CreditorName, s.OriginalCreditorName); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	if err := r.putNum(k1Classification, int64(s.CreditorClassification)); err != nil {
		return nil, wrapAccount(err, accountID)
	}
	return r.buf, nil
}

// deriveTrailer recomputes every control total from the emitted data
// records and cross-checks against the figures expected from the input.
func (e *Encoder) deriveTrailer(data []byte, wantBase, wantBalance int64) (Trailer, error) {
	if len(data)%RecordLength != 0 {
		return Trailer{}, &domain.EncodingError{
			Reason: fmt.Sprintf("data section length %d is not a multiple of %d", len(data), RecordLength),
		}
	}

	var t Trailer
	for off := 0; off < len(data); off += RecordLength {
		rec := data[off : off+RecordLength]
		switch recordTag(rec) {
		case string(domain.SegmentJ1):
			t.TotalJ1Segments++
		case string(domain.SegmentJ2):
			t.TotalJ2Segments++
		case string(domain.SegmentK1):
			t.TotalK1Segments++
		case string(domain.SegmentBase):
			t.TotalBaseRecords++
			bal, err := fieldInt(rec, baseCurrentBal)
			if err != nil {
				return Trailer{}, err
			}
			t.TotalBalance += bal
		default:
			return Trailer{}, &domain.EncodingError{
				Reason: fmt.Sprintf("unrecognized record at offset %d", off),
			}
		}
	}
	// Header + data records + trailer.
	t.TotalRecords = int64(len(data)/RecordLength) + 2

	if t.TotalBaseRecords != wantBase {
		return Trailer{}, &domain.EncodingError{
			Reason: fmt.Sprintf("control total mismatch: %d base records written, %d accounts accepted", t.TotalBaseRecords, wantBase),
		}
	}
	if t.TotalBalance != wantBalance {
		return Trailer{}, &domain.EncodingError{
			Reason: fmt.Sprintf("control total mismatch: balance %d written, %d expected", t.TotalBalance, wantBalance),
		}
	}
	return t, nil
}

func (e *Encoder) encodeTrailer(t Trailer) ([]byte, error) {
	r := newRecord()
	fields := []struct {
		def fieldDef
		val int64
	}{
		{trlRDW, RecordLength},
		{trlBaseRecords, t.TotalBaseRecords},
		{trlTotalRecords, t.TotalRecords},
		{trlJ1Segments, t.TotalJ1Segments},
		{trlJ2Segments, t.TotalJ2Segments},
		{trlK1Segments, t.TotalK1Segments},
		{trlTotalBalance, t.TotalBalance},
	}
	if err := r.putAlpha(trlRecordID, trailerID); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := r.putNum(f.def, f.val); err != nil {
			return nil, err
		}
	}
	return r.buf, nil
}

// recordTag classifies one data record by its fixed identification
// bytes: segment records carry their two-character ID, base records a
// processing indicator digit.
func recordTag(rec []byte) string {
	id := string(rec[segID.offset : segID.offset+segID.width])
	switch id {
	case string(domain.SegmentJ1), string(domain.SegmentJ2), string(domain.SegmentK1):
		return id
	}
	if rec[baseProcessingInd.offset] == '1' {
		return string(domain.SegmentBase)
	}
	return ""
}

// accountStatusCode maps the canonical status plus days past due onto
// the Metro 2 account status vocabulary.
func accountStatusCode(a domain.AccountRecord, asOf time.Time) (string, error) {
	switch a.Status {
	case domain.StatusCurrent:
		return "11", nil
	case domain.StatusPaidOff, domain.StatusClosed:
		return "13", nil
	case domain.StatusChargedOff:
		return "97", nil
	case domain.StatusForeclosure:
		return "94", nil
	case domain.StatusPastDue:
		dpd := a.DaysPastDue(asOf)
		switch {
		case dpd < 30:
			return "11", nil
		case dpd < 60:
			return "71", nil
		case dpd < 90:
			return "78", nil
		case dpd < 120:
			return "80", nil
		case dpd < 150:
			return "82", nil
		case dpd < 180:
			return "83", nil
		default:
			return "84", nil
		}
	}
	return "", &domain.EncodingError{
		AccountID: a.AccountID, Field: baseAccountStatus.name,
		Reason: fmt.Sprintf("status %q outside allowed value set", a.Status),
	}
}

func paymentRating(status string) string {
	if status == "11" || status == "13" {
		return "0"
	}
	return ""
}

func chargeOffAmount(a domain.AccountRecord) int64 {
	if a.Status == domain.StatusChargedOff {
		return a.PrincipalBalance
	}
	return 0
}

func firstDelinquencyDate(a domain.AccountRecord, asOf time.Time) time.Time {
	if a.DaysPastDue(asOf) > 0 {
		return a.LastDueDate
	}
	return time.Time{}
}

func closedDate(a domain.AccountRecord) time.Time {
	switch a.Status {
	case domain.StatusChargedOff:
		return a.ChargeOffDate
	case domain.StatusPaidOff, domain.StatusClosed:
		return a.LastPaymentDate
	}
	return time.Time{}
}

// splitBorrowerName splits "Last, First" (the servicing convention) into
// the surname and first-name fields.
func splitBorrowerName(name string) (surname, first string) {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name, ""
	}
	return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
}

func wrapAccount(err error, accountID string) error {
	var enc *domain.EncodingError
	if errors.As(err, &enc) && enc.AccountID == "" {
		enc.AccountID = accountID
	}
	return err
}
