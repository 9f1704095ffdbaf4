package aggregate

import (
	"fmt"

	"loan-reporting/internal/domain"
)

// delinquencyGenerator classifies every account into exactly one aging
// band: the first configured range whose upper bound is not exceeded.
// Days past due equal to an edge resolve to the lower (earlier) bucket.
type delinquencyGenerator struct{}

func (delinquencyGenerator) Aggregate(period domain.ReportPeriod, cfg domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	buckets := make([]domain.DelinquencyBucket, len(cfg.BucketEdges))
	for i, e := range cfg.BucketEdges {
		buckets[i] = domain.DelinquencyBucket{
			Label:      e.Label,
			MinDays:    e.MinDays,
			MaxDays:    e.MaxDays,
			AccountIDs: []string{},
		}
	}

	for _, a := range accounts {
		dpd := a.DaysPastDue(period.AsOf)
		idx, err := BucketIndex(cfg.BucketEdges, dpd)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.AccountID, err)
		}
		buckets[idx].Count++
		buckets[idx].TotalBalance += a.TotalBalance()
		buckets[idx].AccountIDs = append(buckets[idx].AccountIDs, a.AccountID)
	}

	return domain.DelinquencySchedule{Buckets: buckets}, nil
}

// BucketIndex assigns days-past-due to the first bucket whose upper
// bound is not exceeded. A negative MaxDays marks the open-ended band,
// which accepts everything that falls through.
func BucketIndex(edges []domain.BucketEdge, daysPastDue int) (int, error) {
	for i, e := range edges {
		if e.MaxDays < 0 || daysPastDue <= e.MaxDays {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no bucket accepts %d days past due", daysPastDue)
}
