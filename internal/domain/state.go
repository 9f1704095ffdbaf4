package domain

// RunState tracks one compilation run through the pipeline. Failed is a
// terminal state reachable from any stage; PartialSuccess is terminal and
// reachable only when non-strict validation excluded accounts but an
// artifact was still produced.
type RunState string

const (
	StateFetching       RunState = "FETCHING"
	StateNormalizing    RunState = "NORMALIZING"
	StateAggregating    RunState = "AGGREGATING"
	StateValidating     RunState = "VALIDATING"
	StateEncoding       RunState = "ENCODING"
	StateFinalized      RunState = "FINALIZED"
	StatePartialSuccess RunState = "PARTIAL_SUCCESS"
	StateFailed         RunState = "FAILED"
)

// FailureReason qualifies a Failed run.
type FailureReason string

const (
	FailureNone        FailureReason = ""
	FailureCancelled   FailureReason = "CANCELLED"
	FailureSource      FailureReason = "SOURCE_UNAVAILABLE"
	FailureAggregation FailureReason = "AGGREGATION"
	FailureValidation  FailureReason = "FATAL_VALIDATION"
	FailureEncoding    FailureReason = "ENCODING"
)

// Terminal reports whether no further transition is allowed.
func (s RunState) Terminal() bool {
	switch s {
	case StateFinalized, StatePartialSuccess, StateFailed:
		return true
	}
	return false
}
