package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"loan-reporting/internal/domain"
)

// CSVSource implements the SourceAdapter interface over a loan-servicing
// extract file. Rows are delivered as untyped RawRecords keyed by the
// header columns; all parsing and per-record rejection happens in the
// normalizer, so a single odd row never fails the fetch.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source adapter for one extract file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// FetchRawRecords reads the whole extract. I/O and structural CSV
// failures surface as SourceUnavailableError.
func (s *CSVSource) FetchRawRecords(ctx context.Context, _ domain.ReportPeriod) ([]domain.RawRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, &domain.SourceUnavailableError{Source: s.path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.SourceUnavailableError{
			Source: s.path,
			Err:    fmt.Errorf("failed to read header: %w", err),
		}
	}

	var records []domain.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.SourceUnavailableError{
				Source: s.path,
				Err:    fmt.Errorf("error reading record: %w", err),
			}
		}
		raw := make(domain.RawRecord, len(header))
		for i, col := range header {
			if i < len(row) {
				raw[col] = row[i]
			}
		}
		records = append(records, raw)
	}
	return records, nil
}
