package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// StrictMode controls how a Fatal validation issue affects the run.
type StrictMode string

const (
	// StrictAbort fails the whole run on the first Fatal issue.
	StrictAbort StrictMode = "abort-on-fatal"
	// StrictExclude drops the offending account and keeps going.
	StrictExclude StrictMode = "exclude-on-fatal"
)

// ProgramIDs are the per-bureau program identifiers written into the
// Metro 2 header record.
type ProgramIDs struct {
	Innovis    string `json:"innovis" validate:"max=10"`
	Equifax    string `json:"equifax" validate:"max=10"`
	Experian   string `json:"experian" validate:"max=5"`
	TransUnion string `json:"transunion" validate:"max=10"`
}

// BucketEdge is one inclusive days-past-due range of the delinquency
// aging configuration. MaxDays < 0 marks the open-ended final bucket.
type BucketEdge struct {
	Label   string `json:"label" validate:"required"`
	MinDays int    `json:"min_days" validate:"gte=0"`
	MaxDays int    `json:"max_days"`
}

// CompileConfig is the single explicit configuration value passed into
// every entry point. Nothing in the engine reads ambient/global state.
type CompileConfig struct {
	StrictMode   StrictMode `json:"strict_mode" validate:"required,oneof=abort-on-fatal exclude-on-fatal"`
	ReporterID   string     `json:"reporter_id" validate:"required,max=20"`
	ReporterName string     `json:"reporter_name" validate:"required,max=40"`
	ReporterAddr string     `json:"reporter_addr" validate:"max=96"`
	ProgramIDs   ProgramIDs `json:"program_ids"`

	DayCountDefault DayCountConvention `json:"day_count_default" validate:"required,oneof=ACT/365 ACT/360"`
	BucketEdges     []BucketEdge       `json:"bucket_edges" validate:"required,min=1,dive"`
	CycleNumber     int                `json:"cycle_number" validate:"gte=0,lte=99"`
}

// DefaultBucketEdges is the conventional aging configuration.
func DefaultBucketEdges() []BucketEdge {
	return []BucketEdge{
		{Label: "current", MinDays: 0, MaxDays: 29},
		{Label: "30-59", MinDays: 30, MaxDays: 59},
		{Label: "60-89", MinDays: 60, MaxDays: 89},
		{Label: "90+", MinDays: 90, MaxDays: -1},
	}
}

var configValidator = validator.New()

// Validate checks field constraints plus bucket-edge ordering: edges must
// be contiguous, ascending, and end with exactly one open-ended bucket.
func (c CompileConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid compile config: %w", err)
	}
	for i, e := range c.BucketEdges {
		last := i == len(c.BucketEdges)-1
		if last {
			// Totality: every days-past-due value must land somewhere,
			// so the final bucket cannot have an upper bound.
			if e.MaxDays >= 0 {
				return fmt.Errorf("invalid compile config: final bucket %q must be open-ended", e.Label)
			}
			continue
		}
		if e.MaxDays < e.MinDays {
			return fmt.Errorf("invalid compile config: bucket %q upper bound below lower bound", e.Label)
		}
		if next := c.BucketEdges[i+1]; next.MinDays != e.MaxDays+1 {
			return fmt.Errorf("invalid compile config: bucket %q is not contiguous with %q", e.Label, next.Label)
		}
	}
	return nil
}
