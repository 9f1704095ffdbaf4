package metro2

import (
	"fmt"
	"time"

	"loan-reporting/internal/domain"
)

// Decode parses a fixed-width byte sequence back into a File using the
// same field map the encoder writes with. It verifies structural shape
// (header first, trailer last, whole 426-byte records) and that the
// trailer's control totals reconcile with the data records.
func Decode(data []byte) (*File, error) {
	if len(data)%RecordLength != 0 {
		return nil, &domain.EncodingError{
			Reason: fmt.Sprintf("file length %d is not a multiple of %d", len(data), RecordLength),
		}
	}
	n := len(data) / RecordLength
	if n < 2 {
		return nil, &domain.EncodingError{Reason: "file is missing header or trailer"}
	}

	records := make([][]byte, n)
	for i := range records {
		records[i] = data[i*RecordLength : (i+1)*RecordLength]
	}

	if fieldString(records[0], hdrRecordID) != headerID {
		return nil, &domain.EncodingError{Reason: "first record is not a header"}
	}
	if fieldString(records[n-1], trlRecordID) != trailerID {
		return nil, &domain.EncodingError{Reason: "last record is not a trailer"}
	}

	file := &File{data: data}
	var err error
	if file.Header, err = decodeHeader(records[0]); err != nil {
		return nil, err
	}
	if file.Trailer, err = decodeTrailer(records[n-1]); err != nil {
		return nil, err
	}

	var current *AccountEntry
	for _, rec := range records[1 : n-1] {
		switch recordTag(rec) {
		case string(domain.SegmentBase):
			base, err := decodeBase(rec)
			if err != nil {
				return nil, err
			}
			file.Entries = append(file.Entries, AccountEntry{Base: base})
			current = &file.Entries[len(file.Entries)-1]
		case string(domain.SegmentJ1), string(domain.SegmentJ2), string(domain.SegmentK1):
			if current == nil {
				return nil, &domain.EncodingError{Reason: "segment record precedes first base record"}
			}
			seg, err := decodeSegment(rec)
			if err != nil {
				return nil, err
			}
			current.Segments = append(current.Segments, seg)
		default:
			return nil, &domain.EncodingError{Reason: "unrecognized data record"}
		}
	}

	if err := reconcile(file); err != nil {
		return nil, err
	}
	return file, nil
}

// reconcile recomputes the trailer's figures from the decoded entries.
func reconcile(f *File) error {
	var balance int64
	var j1, j2, k1 int64
	for _, e := range f.Entries {
		balance += e.Base.CurrentBalance
		for _, s := range e.Segments {
			switch s.Kind() {
			case domain.SegmentJ1:
				j1++
			case domain.SegmentJ2:
				j2++
			case domain.SegmentK1:
				k1++
			}
		}
	}
	t := f.Trailer
	switch {
	case t.TotalBaseRecords != int64(len(f.Entries)):
		return &domain.EncodingError{Reason: fmt.Sprintf("control total mismatch: trailer reports %d base records, file has %d", t.TotalBaseRecords, len(f.Entries))}
	case t.TotalBalance != balance:
		return &domain.EncodingError{Reason: fmt.Sprintf("control total mismatch: trailer reports balance %d, file sums to %d", t.TotalBalance, balance)}
	case t.TotalJ1Segments != j1 || t.TotalJ2Segments != j2 || t.TotalK1Segments != k1:
		return &domain.EncodingError{Reason: "control total mismatch: segment counts diverge"}
	case t.TotalRecords != int64(len(f.data)/RecordLength):
		return &domain.EncodingError{Reason: fmt.Sprintf("control total mismatch: trailer reports %d records, file has %d", t.TotalRecords, len(f.data)/RecordLength)}
	}
	return nil
}

func decodeHeader(rec []byte) (Header, error) {
	h := Header{
		ProgramIDs: domain.ProgramIDs{
			Innovis:    fieldString(rec, hdrInnovis),
			Equifax:    fieldString(rec, hdrEquifax),
			Experian:   fieldString(rec, hdrExperian),
			TransUnion: fieldString(rec, hdrTransUnion),
		},
		ReporterName: fieldString(rec, hdrReporterName),
		ReporterAddr: fieldString(rec, hdrReporterAddr),
	}
	cycle, err := fieldInt(rec, hdrCycleNumber)
	if err != nil {
		return Header{}, err
	}
	h.CycleNumber = int(cycle)
	if h.ActivityDate, err = fieldDate(rec, hdrActivityDate); err != nil {
		return Header{}, err
	}
	if h.DateCreated, err = fieldDate(rec, hdrDateCreated); err != nil {
		return Header{}, err
	}
	return h, nil
}

func decodeBase(rec []byte) (Base, error) {
	b := Base{
		ReporterID:     fieldString(rec, baseReporterID),
		AccountNumber:  fieldString(rec, baseAccountNumber),
		PortfolioType:  fieldString(rec, basePortfolioType),
		AccountType:    fieldString(rec, baseAccountType),
		AccountStatus:  fieldString(rec, baseAccountStatus),
		PaymentHistory: fieldString(rec, basePaymentHist),
		Surname:        fieldString(rec, baseSurname),
		FirstName:      fieldString(rec, baseFirstName),
		SSN:            fieldDigits(rec, baseSSN),
		ECOACode:       fieldString(rec, baseECOA),
		AddressLine1:   fieldString(rec, baseAddress1),
		City:           fieldString(rec, baseCity),
		State:          fieldString(rec, baseState),
		PostalCode:     fieldString(rec, basePostalCode),
	}
	if !statusCodes[b.AccountStatus] {
		return Base{}, &domain.EncodingError{
			AccountID: b.AccountNumber, Field: baseAccountStatus.name,
			Reason: fmt.Sprintf("account status %q outside allowed value set", b.AccountStatus),
		}
	}

	var err error
	readInt := func(f fieldDef, dst *int64) {
		if err == nil {
			*dst, err = fieldInt(rec, f)
		}
	}
	readDate := func(f fieldDef, dst *time.Time) {
		if err == nil {
			*dst, err = fieldDate(rec, f)
		}
	}

	readInt(baseHighestCredit, &b.HighestCredit)
	readInt(baseTermsDuration, &b.TermsDuration)
	readInt(baseScheduledPay, &b.ScheduledPay)
	readInt(baseCurrentBal, &b.CurrentBalance)
	readInt(baseAmountPastDue, &b.AmountPastDue)
	readInt(baseChargeOffAmt, &b.ChargeOffAmount)
	readDate(baseDateOpened, &b.DateOpened)
	readDate(baseDateAcctInfo, &b.DateAcctInfo)
	readDate(baseDateFirstDelq, &b.DateFirstDelq)
	readDate(baseDateClosed, &b.DateClosed)
	readDate(baseDateLastPay, &b.DateLastPayment)
	if err != nil {
		return Base{}, wrapAccount(err, b.AccountNumber)
	}
	return b, nil
}

func decodeSegment(rec []byte) (domain.Segment, error) {
	id := fieldString(rec, segID)

	if id == string(domain.SegmentK1) {
		classification, err := fieldInt(rec, k1Classification)
		if err != nil {
			return nil, err
		}
		return domain.K1Segment{
			OriginalCreditorName:   fieldString(rec, k1CreditorName),
			CreditorClassification: int(classification),
		}, nil
	}

	dob, err := fieldDate(rec, segDOB)
	if err != nil {
		return nil, err
	}
	if id == string(domain.SegmentJ1) {
		return domain.J1Segment{
			Surname:        fieldString(rec, segSurname),
			FirstName:      fieldString(rec, segFirstName),
			GenerationCode: fieldString(rec, segGeneration),
			SSN:            fieldDigits(rec, segSSN),
			BirthDate:      dob,
			Telephone:      fieldDigits(rec, segTelephone),
			ECOACode:       fieldString(rec, segECOA),
		}, nil
	}
	return domain.J2Segment{
		Surname:        fieldString(rec, segSurname),
		FirstName:      fieldString(rec, segFirstName),
		GenerationCode: fieldString(rec, segGeneration),
		SSN:            fieldDigits(rec, segSSN),
		BirthDate:      dob,
		Telephone:      fieldDigits(rec, segTelephone),
		ECOACode:       fieldString(rec, segECOA),
		AddressLine1:   fieldString(rec, j2Address1),
		AddressLine2:   fieldString(rec, j2Address2),
		City:           fieldString(rec, j2City),
		State:          fieldString(rec, j2State),
		PostalCode:     fieldString(rec, j2PostalCode),
	}, nil
}

func decodeTrailer(rec []byte) (Trailer, error) {
	var t Trailer
	var err error
	read := func(f fieldDef, dst *int64) {
		if err == nil {
			*dst, err = fieldInt(rec, f)
		}
	}
	read(trlBaseRecords, &t.TotalBaseRecords)
	read(trlTotalRecords, &t.TotalRecords)
	read(trlJ1Segments, &t.TotalJ1Segments)
	read(trlJ2Segments, &t.TotalJ2Segments)
	read(trlK1Segments, &t.TotalK1Segments)
	read(trlTotalBalance, &t.TotalBalance)
	if err != nil {
		return Trailer{}, err
	}
	return t, nil
}
