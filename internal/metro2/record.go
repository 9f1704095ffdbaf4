package metro2

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"loan-reporting/internal/domain"
)

const dateLayout = "01022006" // MMDDYYYY

// record is one fixed-width output record under construction,
// pre-filled with spaces.
type record struct {
	buf []byte
}

func newRecord() *record {
	buf := make([]byte, RecordLength)
	for i := range buf {
		buf[i] = ' '
	}
	return &record{buf: buf}
}

// putAlpha writes a left-justified, space-padded value. The fixed format
// has nowhere to carry overlong content, so silently truncating would
// change field values on the wire; overflow fails instead.
func (r *record) putAlpha(f fieldDef, v string) error {
	if len(v) > f.width {
		return &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("value %q overflows width %d", v, f.width)}
	}
	copy(r.buf[f.offset:], v)
	return nil
}

// putNum writes a right-justified, zero-padded non-negative integer.
// Width overflow violates the format contract and fails.
func (r *record) putNum(f fieldDef, v int64) error {
	if v < 0 {
		return &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("negative value %d in numeric field", v)}
	}
	s := strconv.FormatInt(v, 10)
	if len(s) > f.width {
		return &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("value %d overflows width %d", v, f.width)}
	}
	copy(r.buf[f.offset:], strings.Repeat("0", f.width-len(s))+s)
	return nil
}

// putDigits writes an all-digit string (SSN, telephone), zero-filling
// when absent. Non-digit content violates the numeric field contract.
func (r *record) putDigits(f fieldDef, v string) error {
	if v == "" {
		copy(r.buf[f.offset:], strings.Repeat("0", f.width))
		return nil
	}
	if len(v) > f.width {
		return &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("value %q overflows width %d", v, f.width)}
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("non-digit %q in numeric field", string(c))}
		}
	}
	copy(r.buf[f.offset:], strings.Repeat("0", f.width-len(v))+v)
	return nil
}

// putDate writes MMDDYYYY, or the zero-fill sentinel for an absent date.
func (r *record) putDate(f fieldDef, t time.Time) {
	if t.IsZero() {
		copy(r.buf[f.offset:], strings.Repeat("0", f.width))
		return
	}
	copy(r.buf[f.offset:], t.Format(dateLayout))
}

// Field extraction used by the decoder and the trailer re-derivation.

func fieldString(rec []byte, f fieldDef) string {
	return strings.TrimRight(string(rec[f.offset:f.offset+f.width]), " ")
}

func fieldInt(rec []byte, f fieldDef) (int64, error) {
	raw := string(rec[f.offset : f.offset+f.width])
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("unparseable numeric field %q", raw)}
	}
	return v, nil
}

func fieldDate(rec []byte, f fieldDef) (time.Time, error) {
	raw := string(rec[f.offset : f.offset+f.width])
	if raw == strings.Repeat("0", f.width) {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &domain.EncodingError{Field: f.name, Reason: fmt.Sprintf("unparseable date field %q", raw)}
	}
	return t.UTC(), nil
}

// fieldDigits returns an all-digit field verbatim, or "" for the
// all-zero absent sentinel. Identifier fields like SSN keep leading
// zeros, so no numeric conversion happens here.
func fieldDigits(rec []byte, f fieldDef) string {
	raw := string(rec[f.offset : f.offset+f.width])
	if raw == strings.Repeat("0", f.width) {
		return ""
	}
	return raw
}
