package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"loan-reporting/internal/domain"
	"loan-reporting/internal/gateway"
	"loan-reporting/internal/usecase"
)

// reporterEnv carries the furnisher identity, loaded from the
// environment so credentials-adjacent identifiers stay out of argv.
type reporterEnv struct {
	ReporterID   string `env:"REPORTER_ID,required"`
	ReporterName string `env:"REPORTER_NAME,required"`
	ReporterAddr string `env:"REPORTER_ADDR"`
	Innovis      string `env:"PROGRAM_ID_INNOVIS"`
	Equifax      string `env:"PROGRAM_ID_EQUIFAX"`
	Experian     string `env:"PROGRAM_ID_EXPERIAN"`
	TransUnion   string `env:"PROGRAM_ID_TRANSUNION"`
}

func main() {
	extractFile := flag.String("extract", "", "Path to the loan-servicing extract CSV file (required)")
	reportType := flag.String("report", "", "Report type: trial-balance, delinquency-aging, interest-accrual, amortization, metro2, ots-schedule-cmr, new-loans-entered (required)")
	startDateStr := flag.String("start", "", "Report period start (YYYY-MM-DD) (required)")
	endDateStr := flag.String("end", "", "Report period end / as-of date (YYYY-MM-DD) (required)")
	outFile := flag.String("out", "", "Path for the output artifact (required)")
	issuesFile := flag.String("issues", "", "Path for the JSON exception report (optional)")
	cycle := flag.Int("cycle", 1, "Reporting cycle number")
	exclude := flag.Bool("exclude-on-fatal", false, "Exclude accounts with fatal issues instead of aborting the run")
	workers := flag.Int("workers", 0, "Per-account worker count (0 = number of CPUs)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *extractFile == "" || *reportType == "" || *startDateStr == "" || *endDateStr == "" || *outFile == "" {
		fmt.Println("Error: flags -extract, -report, -start, -end and -out are required.")
		flag.Usage()
		os.Exit(1)
	}

	var reporter reporterEnv
	if err := env.Parse(&reporter); err != nil {
		log.Fatalf("Error loading reporter identity from environment: %v", err)
	}

	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatalf("Error parsing start date: %v", err)
	}
	endDate, err := time.Parse("2006-01-02", *endDateStr)
	if err != nil {
		log.Fatalf("Error parsing end date: %v", err)
	}

	mode := domain.StrictAbort
	if *exclude {
		mode = domain.StrictExclude
	}
	cfg := domain.CompileConfig{
		StrictMode:   mode,
		ReporterID:   reporter.ReporterID,
		ReporterName: reporter.ReporterName,
		ReporterAddr: reporter.ReporterAddr,
		ProgramIDs: domain.ProgramIDs{
			Innovis:    reporter.Innovis,
			Equifax:    reporter.Equifax,
			Experian:   reporter.Experian,
			TransUnion: reporter.TransUnion,
		},
		DayCountDefault: domain.DayCountActual365,
		BucketEdges:     domain.DefaultBucketEdges(),
		CycleNumber:     *cycle,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wiring: CSV gateway into the compiler, by hand like everything
	// else here.
	source := gateway.NewCSVSource(*extractFile)
	compiler := usecase.NewCompiler(source, usecase.WithLogger(log), usecase.WithWorkers(*workers))

	res, err := compiler.CompileReport(ctx, domain.ReportType(strings.ToLower(*reportType)),
		domain.NewReportPeriod(startDate, endDate), cfg)
	if err != nil {
		if res != nil && *issuesFile != "" {
			writeIssues(log, *issuesFile, res)
		}
		log.Fatalf("Report compilation failed: %v", err)
	}

	if err := writeArtifact(*outFile, res); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}
	if *issuesFile != "" {
		writeIssues(log, *issuesFile, res)
	}

	log.WithFields(logrus.Fields{
		"run_id": res.RunID,
		"state":  res.State,
		"out":    *outFile,
	}).Info("report written")
}

// writeArtifact stages into a temp file and renames, so a partially
// written artifact is never observable at the output path.
func writeArtifact(path string, res *usecase.CompilationResult) error {
	data := res.Artifact
	if data == nil {
		var err error
		if data, err = json.MarshalIndent(res.Aggregate, "", "  "); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeIssues(log *logrus.Logger, path string, res *usecase.CompilationResult) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Errorf("Failed to marshal exception report: %v", err)
		return
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		log.Errorf("Failed to write exception report: %v", err)
	}
}
