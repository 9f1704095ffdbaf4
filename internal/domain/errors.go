package domain

import "fmt"

// MalformedInputError marks a raw record that could not be normalized.
// It is fatal to that record only, never to the run.
type MalformedInputError struct {
	AccountID string
	Field     string
	Reason    string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input for account %q, field %q: %s", e.AccountID, e.Field, e.Reason)
}

// EncodingError marks a fixed-format contract violation or a failed
// control-total self-check. It is always fatal to the run: the artifact
// would be non-compliant or internally inconsistent.
type EncodingError struct {
	AccountID string
	Field     string
	Reason    string
}

func (e *EncodingError) Error() string {
	if e.AccountID == "" {
		return fmt.Sprintf("encoding error: %s", e.Reason)
	}
	return fmt.Sprintf("encoding error for account %q, field %q: %s", e.AccountID, e.Field, e.Reason)
}

// SourceUnavailableError wraps a failure of the external data source
// adapter. It is surfaced to the caller untouched; retry policy lives
// outside this core.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %q unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
