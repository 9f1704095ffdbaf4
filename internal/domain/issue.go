package domain

// Severity classifies a validation issue. Fatal issues exclude the
// account from the accepted set (or abort the run in strict mode);
// warnings are carried on the issue list only.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityWarning Severity = "WARNING"
)

// ValidationIssue is one business-rule violation on one account. Issues
// are collected across the whole run, never thrown singly, so callers
// can produce an exception report alongside the main artifact.
type ValidationIssue struct {
	AccountID string   `json:"account_id"`
	Field     string   `json:"field"`
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	Detail    string   `json:"detail,omitempty"`
}
