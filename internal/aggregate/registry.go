// Package aggregate derives report-specific structures from normalized
// account records. One generator per catalog entry, selected through a
// registry rather than ad hoc branching, so the report catalog can grow
// without touching the pipeline.
package aggregate

import (
	"fmt"

	"loan-reporting/internal/domain"
)

// Generator produces one report type's aggregate from the normalized
// account set. Input accounts are already sorted by ascending account
// identifier; generators must preserve that order in their output rows.
type Generator interface {
	Aggregate(period domain.ReportPeriod, cfg domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error)
}

// Registry maps report types onto their generators.
type Registry struct {
	generators map[domain.ReportType]Generator
}

// NewRegistry returns a registry preloaded with the full report catalog.
func NewRegistry() *Registry {
	return &Registry{generators: map[domain.ReportType]Generator{
		domain.ReportTrialBalance:     trialBalanceGenerator{},
		domain.ReportDelinquencyAging: delinquencyGenerator{},
		domain.ReportInterestAccrual:  interestGenerator{},
		domain.ReportAmortization:     amortizationGenerator{},
		domain.ReportMetro2:           metroSetGenerator{},
		domain.ReportOTSScheduleCMR:   cmrGenerator{},
		domain.ReportNewLoansEntered:  newLoansGenerator{},
	}}
}

// Register adds or replaces the generator for a report type.
func (r *Registry) Register(rt domain.ReportType, g Generator) {
	r.generators[rt] = g
}

// Lookup returns the generator for a report type.
func (r *Registry) Lookup(rt domain.ReportType) (Generator, error) {
	g, ok := r.generators[rt]
	if !ok {
		return nil, fmt.Errorf("unknown report type %q", rt)
	}
	return g, nil
}

// metroSetGenerator collects the already-sorted account set for the
// Metro 2 path; validation and encoding happen downstream.
type metroSetGenerator struct{}

func (metroSetGenerator) Aggregate(_ domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	out := make([]domain.AccountRecord, len(accounts))
	copy(out, accounts)
	return domain.MetroAccountSet{Accounts: out}, nil
}
