package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan-reporting/internal/aggregate"
	"loan-reporting/internal/domain"
	"loan-reporting/internal/metro2"
	"loan-reporting/internal/normalizer"
	"loan-reporting/internal/validate"
)

// ruleMalformedInput tags issues produced by the normalizer rather than
// the validation layer. Malformed input is fatal to its record, never to
// the run, even in strict mode.
const ruleMalformedInput = "malformed-input"

// batchSize is the unit of parallel per-account work; cancellation is
// checked between batches.
const batchSize = 64

// CompilationResult is what every run returns: an artifact (possibly
// partial in non-strict mode) plus the complete issue list. A run is
// failed only when no artifact could be produced.
type CompilationResult struct {
	RunID         string               `json:"run_id"`
	ReportType    domain.ReportType    `json:"report_type"`
	Period        domain.ReportPeriod  `json:"period"`
	State         domain.RunState      `json:"state"`
	FailureReason domain.FailureReason `json:"failure_reason,omitempty"`

	// Artifact carries the opaque Metro 2 byte sequence; structured
	// reports deliver Aggregate instead.
	Artifact  []byte                 `json:"-"`
	Aggregate domain.AggregateResult `json:"-"`

	Issues           []domain.ValidationIssue `json:"issues"`
	ExcludedAccounts []string                 `json:"excluded_accounts,omitempty"`
}

// Compiler orchestrates one report compilation run end to end.
type Compiler struct {
	source   SourceAdapter
	registry *aggregate.Registry
	log      *logrus.Logger
	workers  int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWorkers sets the per-account parallelism for normalization.
func WithWorkers(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// WithRegistry replaces the preloaded report catalog, for deployments
// that extend it with additional generators.
func WithRegistry(r *aggregate.Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// NewCompiler wires a compiler against a source adapter.
func NewCompiler(source SourceAdapter, opts ...Option) *Compiler {
	c := &Compiler{
		source:   source,
		registry: aggregate.NewRegistry(),
		log:      logrus.New(),
		workers:  runtime.NumCPU(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CompileReport runs the full pipeline for one report type and period:
// fetch, normalize, aggregate, validate, encode. The returned result is
// non-nil whenever the run progressed far enough to carry issues, even
// on failure.
func (c *Compiler) CompileReport(ctx context.Context, reportType domain.ReportType, period domain.ReportPeriod, cfg domain.CompileConfig) (*CompilationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	gen, err := c.registry.Lookup(reportType)
	if err != nil {
		return nil, err
	}

	res := &CompilationResult{
		RunID:      uuid.NewString(),
		ReportType: reportType,
		Period:     period,
		Issues:     []domain.ValidationIssue{},
	}
	log := c.log.WithFields(logrus.Fields{
		"run_id":      res.RunID,
		"report_type": reportType,
		"as_of":       period.AsOf.Format("2006-01-02"),
	})

	res.State = domain.StateFetching
	raw, err := c.source.FetchRawRecords(ctx, period)
	if err != nil {
		return c.fail(res, log, domain.FailureSource, err)
	}
	log.WithField("raw_records", len(raw)).Info("fetched source records")

	res.State = domain.StateNormalizing
	records, malformed, err := c.normalizeAll(ctx, raw, cfg)
	if err != nil {
		return c.fail(res, log, domain.FailureCancelled, err)
	}
	res.Issues = append(res.Issues, malformed...)
	if len(malformed) > 0 {
		log.WithField("rejected", len(malformed)).Warn("rejected malformed source records")
	}

	res.State = domain.StateAggregating
	if err := ctx.Err(); err != nil {
		return c.fail(res, log, domain.FailureCancelled, err)
	}
	res.Aggregate, err = gen.Aggregate(period, cfg, records)
	if err != nil {
		return c.fail(res, log, domain.FailureAggregation, err)
	}

	res.State = domain.StateValidating
	vres := validate.Validate(records)
	res.Issues = append(res.Issues, vres.Issues...)
	res.ExcludedAccounts = vres.Excluded
	sortIssues(res.Issues)
	if cfg.StrictMode == domain.StrictAbort && validate.HasFatal(vres.Issues) {
		return c.fail(res, log, domain.FailureValidation,
			fmt.Errorf("strict mode: %d account(s) failed fatal validation", len(vres.Excluded)))
	}

	res.State = domain.StateEncoding
	if reportType == domain.ReportMetro2 {
		// The accepted subset replaces the full account set on the
		// encoding path; row order stays ascending by identifier.
		res.Aggregate = domain.MetroAccountSet{Accounts: vres.Accepted}
		file, err := metro2.NewEncoder(cfg, period).Encode(vres.Accepted)
		if err != nil {
			return c.fail(res, log, domain.FailureEncoding, err)
		}
		res.Artifact = file.Bytes()
	}

	if len(res.ExcludedAccounts) > 0 || len(malformed) > 0 {
		res.State = domain.StatePartialSuccess
	} else {
		res.State = domain.StateFinalized
	}
	log.WithFields(logrus.Fields{
		"state":    res.State,
		"accounts": len(vres.Accepted),
		"issues":   len(res.Issues),
	}).Info("compilation finished")
	return res, nil
}

// normalizeAll fans raw records out across the worker pool and merges
// the per-record outcomes back in a deterministic order. No worker reads
// another record's state; the only synchronized step is the final merge.
func (c *Compiler) normalizeAll(ctx context.Context, raw []domain.RawRecord, cfg domain.CompileConfig) ([]domain.AccountRecord, []domain.ValidationIssue, error) {
	type outcome struct {
		rec   domain.AccountRecord
		issue *domain.ValidationIssue
	}
	outcomes := make([]outcome, len(raw))

	batches := make(chan int)
	var wg sync.WaitGroup
	var cancelled bool
	var mu sync.Mutex

	workers := c.workers
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for start := range batches {
				if ctx.Err() != nil {
					mu.Lock()
					cancelled = true
					mu.Unlock()
					continue
				}
				end := start + batchSize
				if end > len(raw) {
					end = len(raw)
				}
				for i := start; i < end; i++ {
					rec, err := normalizer.Normalize(raw[i], cfg.DayCountDefault)
					if err != nil {
						outcomes[i].issue = malformedIssue(err)
						continue
					}
					outcomes[i].rec = rec
				}
			}
		}()
	}
	for start := 0; start < len(raw); start += batchSize {
		batches <- start
	}
	close(batches)
	wg.Wait()

	if cancelled || ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	var records []domain.AccountRecord
	var issues []domain.ValidationIssue
	for _, o := range outcomes {
		if o.issue != nil {
			issues = append(issues, *o.issue)
			continue
		}
		records = append(records, o.rec)
	}
	// Sorted-key reduction: downstream ordering and control totals
	// depend on ascending account identifiers, never on worker count or
	// input order.
	sort.Slice(records, func(i, j int) bool { return records[i].AccountID < records[j].AccountID })
	return records, issues, nil
}

func (c *Compiler) fail(res *CompilationResult, log *logrus.Entry, reason domain.FailureReason, err error) (*CompilationResult, error) {
	res.State = domain.StateFailed
	res.FailureReason = reason
	res.Artifact = nil
	res.Aggregate = nil
	log.WithField("reason", reason).WithError(err).Error("compilation failed")
	return res, err
}

func malformedIssue(err error) *domain.ValidationIssue {
	issue := domain.ValidationIssue{
		Rule:     ruleMalformedInput,
		Severity: domain.SeverityFatal,
		Detail:   err.Error(),
	}
	var malformed *domain.MalformedInputError
	if errors.As(err, &malformed) {
		issue.AccountID = malformed.AccountID
		issue.Field = malformed.Field
	}
	return &issue
}

func sortIssues(issues []domain.ValidationIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].AccountID != issues[j].AccountID {
			return issues[i].AccountID < issues[j].AccountID
		}
		return issues[i].Rule < issues[j].Rule
	})
}
