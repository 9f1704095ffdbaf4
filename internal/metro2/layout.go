// Package metro2 assembles validated accounts into the Metro 2
// fixed-width credit-bureau furnishing format and decodes it back. The
// layout is an externally imposed contract: every record is exactly 426
// bytes, every field sits at a fixed offset, numeric fields are
// right-justified zero-padded and alphanumeric fields left-justified
// space-padded. Record boundaries are purely positional; there are no
// delimiters.
package metro2

// RecordLength is the fixed total width of every record in the file.
const RecordLength = 426

const (
	headerID  = "HEADER"
	trailerID = "TRAILER"
)

type fieldKind int

const (
	kindAlpha fieldKind = iota
	kindNumeric
	kindDate // MMDDYYYY, zero-filled when absent
)

type fieldDef struct {
	name   string
	offset int
	width  int
	kind   fieldKind
}

// Header record layout.
var (
	hdrRDW         = fieldDef{"rdw", 0, 4, kindNumeric}
	hdrRecordID    = fieldDef{"record_id", 4, 6, kindAlpha}
	hdrCycleNumber = fieldDef{"cycle_number", 10, 2, kindNumeric}
	hdrInnovis     = fieldDef{"innovis_program", 12, 10, kindAlpha}
	hdrEquifax     = fieldDef{"equifax_program", 22, 10, kindAlpha}
	hdrExperian    = fieldDef{"experian_program", 32, 5, kindAlpha}
	hdrTransUnion  = fieldDef{"transunion_program", 37, 10, kindAlpha}
	hdrActivityDate = fieldDef{"activity_date", 47, 8, kindDate}
	hdrDateCreated  = fieldDef{"date_created", 55, 8, kindDate}
	hdrReporterName = fieldDef{"reporter_name", 63, 40, kindAlpha}
	hdrReporterAddr = fieldDef{"reporter_address", 103, 96, kindAlpha}
	hdrReporterTel  = fieldDef{"reporter_telephone", 199, 10, kindNumeric}
)

// Base segment layout.
var (
	baseRDW           = fieldDef{"rdw", 0, 4, kindNumeric}
	baseProcessingInd = fieldDef{"processing_indicator", 4, 1, kindNumeric}
	baseReporterID    = fieldDef{"identification_number", 5, 20, kindAlpha}
	baseCycleID       = fieldDef{"cycle_identifier", 25, 2, kindAlpha}
	baseAccountNumber = fieldDef{"consumer_account_number", 27, 30, kindAlpha}
	basePortfolioType = fieldDef{"portfolio_type", 57, 1, kindAlpha}
	baseAccountType   = fieldDef{"account_type", 58, 2, kindAlpha}
	baseDateOpened    = fieldDef{"date_opened", 60, 8, kindDate}
	baseHighestCredit = fieldDef{"highest_credit", 68, 9, kindNumeric}
	baseTermsDuration = fieldDef{"terms_duration", 77, 3, kindNumeric}
	baseTermsFreq     = fieldDef{"terms_frequency", 80, 1, kindAlpha}
	baseScheduledPay  = fieldDef{"scheduled_payment", 81, 9, kindNumeric}
	baseActualPay     = fieldDef{"actual_payment", 90, 9, kindNumeric}
	baseAccountStatus = fieldDef{"account_status", 99, 2, kindNumeric}
	basePaymentRating = fieldDef{"payment_rating", 101, 1, kindAlpha}
	basePaymentHist   = fieldDef{"payment_history_profile", 102, 24, kindAlpha}
	baseSpecialComm   = fieldDef{"special_comment", 126, 2, kindAlpha}
	baseCompliance    = fieldDef{"compliance_condition", 128, 2, kindAlpha}
	baseCurrentBal    = fieldDef{"current_balance", 130, 10, kindNumeric}
	baseAmountPastDue = fieldDef{"amount_past_due", 140, 9, kindNumeric}
	baseChargeOffAmt  = fieldDef{"charge_off_amount", 149, 9, kindNumeric}
	baseDateAcctInfo  = fieldDef{"date_account_information", 158, 8, kindDate}
	baseDateFirstDelq = fieldDef{"date_first_delinquency", 166, 8, kindDate}
	baseDateClosed    = fieldDef{"date_closed", 174, 8, kindDate}
	baseDateLastPay   = fieldDef{"date_last_payment", 182, 8, kindDate}
	baseSurname       = fieldDef{"surname", 190, 25, kindAlpha}
	baseFirstName     = fieldDef{"first_name", 215, 20, kindAlpha}
	baseMiddleName    = fieldDef{"middle_name", 235, 20, kindAlpha}
	baseSSN           = fieldDef{"ssn", 255, 9, kindNumeric}
	baseDOB           = fieldDef{"date_of_birth", 264, 8, kindDate}
	baseTelephone     = fieldDef{"telephone", 272, 10, kindNumeric}
	baseECOA          = fieldDef{"ecoa_code", 282, 1, kindAlpha}
	baseConsumerInfo  = fieldDef{"consumer_info_indicator", 283, 2, kindAlpha}
	baseCountryCode   = fieldDef{"country_code", 285, 2, kindAlpha}
	baseAddress1      = fieldDef{"address_line1", 287, 32, kindAlpha}
	baseAddress2      = fieldDef{"address_line2", 319, 32, kindAlpha}
	baseCity          = fieldDef{"city", 351, 20, kindAlpha}
	baseState         = fieldDef{"state", 371, 2, kindAlpha}
	basePostalCode    = fieldDef{"postal_code", 373, 9, kindAlpha}
	baseAddressInd    = fieldDef{"address_indicator", 382, 1, kindAlpha}
	baseResidenceCode = fieldDef{"residence_code", 383, 1, kindAlpha}
)

// J1 / J2 associated-consumer segment layout. The identity block is
// shared; J2 appends the separate address block.
var (
	segRDW        = fieldDef{"rdw", 0, 4, kindNumeric}
	segID         = fieldDef{"segment_id", 4, 2, kindAlpha}
	segSurname    = fieldDef{"surname", 6, 25, kindAlpha}
	segFirstName  = fieldDef{"first_name", 31, 20, kindAlpha}
	segGeneration = fieldDef{"generation_code", 51, 1, kindAlpha}
	segSSN        = fieldDef{"ssn", 52, 9, kindNumeric}
	segDOB        = fieldDef{"date_of_birth", 61, 8, kindDate}
	segTelephone  = fieldDef{"telephone", 69, 10, kindNumeric}
	segECOA       = fieldDef{"ecoa_code", 79, 1, kindAlpha}
	segConsumerInfo = fieldDef{"consumer_info_indicator", 80, 2, kindAlpha}

	j2Address1      = fieldDef{"address_line1", 82, 32, kindAlpha}
	j2Address2      = fieldDef{"address_line2", 114, 32, kindAlpha}
	j2City          = fieldDef{"city", 146, 20, kindAlpha}
	j2State         = fieldDef{"state", 166, 2, kindAlpha}
	j2PostalCode    = fieldDef{"postal_code", 168, 9, kindAlpha}
	j2AddressInd    = fieldDef{"address_indicator", 177, 1, kindAlpha}
	j2ResidenceCode = fieldDef{"residence_code", 178, 1, kindAlpha}
)

// K1 original-creditor segment layout.
var (
	k1CreditorName   = fieldDef{"original_creditor_name", 6, 30, kindAlpha}
	k1Classification = fieldDef{"creditor_classification", 36, 2, kindNumeric}
)

// Trailer record layout. Every total here is re-derived from the data
// records, never carried forward from the aggregation stage.
var (
	trlRDW          = fieldDef{"rdw", 0, 4, kindNumeric}
	trlRecordID     = fieldDef{"record_id", 4, 7, kindAlpha}
	trlBaseRecords  = fieldDef{"total_base_records", 11, 9, kindNumeric}
	trlTotalRecords = fieldDef{"total_records", 20, 9, kindNumeric}
	trlJ1Segments   = fieldDef{"total_j1_segments", 29, 9, kindNumeric}
	trlJ2Segments   = fieldDef{"total_j2_segments", 38, 9, kindNumeric}
	trlK1Segments   = fieldDef{"total_k1_segments", 47, 9, kindNumeric}
	trlTotalBalance = fieldDef{"total_current_balance", 56, 15, kindNumeric}
)

// Enumerated field domains.
var (
	portfolioTypes = map[string]bool{"C": true, "I": true, "L": true, "M": true, "O": true}
	ecoaCodes      = map[string]bool{"1": true, "2": true, "3": true, "5": true, "7": true, "T": true, "W": true, "X": true, "Z": true}
	statusCodes    = map[string]bool{
		"11": true, "13": true, "71": true, "78": true, "80": true,
		"82": true, "83": true, "84": true, "94": true, "97": true,
	}
)
