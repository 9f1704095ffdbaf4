package usecase

import (
	"context"

	"loan-reporting/internal/domain"
)

// SourceAdapter defines the interface for fetching raw per-account
// records from the upstream loan-servicing system. The usecase layer
// depends on this interface, not on a concrete implementation;
// authentication, pagination, and retry policy all live behind it.
//
//go:generate mockgen -destination=mocks/mock_source.go -source=interface.go SourceAdapter
type SourceAdapter interface {
	FetchRawRecords(ctx context.Context, period domain.ReportPeriod) ([]domain.RawRecord, error)
}
