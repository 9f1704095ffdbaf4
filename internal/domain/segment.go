package domain

import "time"

// SegmentKind identifies one Metro 2 sub-record variant.
type SegmentKind string

const (
	SegmentBase SegmentKind = "BASE"
	SegmentJ1   SegmentKind = "J1"
	SegmentJ2   SegmentKind = "J2"
	SegmentK1   SegmentKind = "K1"
)

// Segment is a tagged variant over the optional Metro 2 sub-records an
// account may carry. Each kind enumerates its own field set; there is no
// generic keyed record.
type Segment interface {
	Kind() SegmentKind
}

// J1Segment reports an associated consumer living at the same address as
// the primary borrower.
type J1Segment struct {
	Surname        string    `json:"surname"`
	FirstName      string    `json:"first_name"`
	GenerationCode string    `json:"generation_code,omitempty"`
	SSN            string    `json:"ssn,omitempty"`
	BirthDate      time.Time `json:"birth_date,omitempty"`
	Telephone      string    `json:"telephone,omitempty"`
	ECOACode       string    `json:"ecoa_code"`
}

func (J1Segment) Kind() SegmentKind { return SegmentJ1 }

// J2Segment reports an associated consumer at a different address.
type J2Segment struct {
	Surname        string    `json:"surname"`
	FirstName      string    `json:"first_name"`
	GenerationCode string    `json:"generation_code,omitempty"`
	SSN            string    `json:"ssn,omitempty"`
	BirthDate      time.Time `json:"birth_date,omitempty"`
	Telephone      string    `json:"telephone,omitempty"`
	ECOACode       string    `json:"ecoa_code"`
	AddressLine1   string    `json:"address_line1"`
	AddressLine2   string    `json:"address_line2,omitempty"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	PostalCode     string    `json:"postal_code"`
}

func (J2Segment) Kind() SegmentKind { return SegmentJ2 }

// K1Segment carries the original creditor for purchased or transferred
// accounts.
type K1Segment struct {
	OriginalCreditorName   string `json:"original_creditor_name"`
	CreditorClassification int    `json:"creditor_classification"` // 01..18
}

func (K1Segment) Kind() SegmentKind { return SegmentK1 }

// segmentRank fixes the canonical output order of optional segments.
var segmentRank = map[SegmentKind]int{
	SegmentJ1: 1,
	SegmentJ2: 2,
	SegmentK1: 3,
}

// SegmentOrder returns the canonical position of a segment kind within an
// account entry. Lower sorts first; the Base segment is always first.
func SegmentOrder(k SegmentKind) int {
	if k == SegmentBase {
		return 0
	}
	return segmentRank[k]
}
