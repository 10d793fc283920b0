package pipeline

import (
	"context"
	"time"

	"github.com/dwhitena/complaintsync/internal/state"
)

// Run and per-company statuses reported in summaries
const (
	StatusCompleted      = "completed"
	StatusPartialFailure = "partial_failure"
	StatusSkipped        = "skipped"

	CompanyStatusSuccess = "success"
	CompanyStatusFailed  = "failed"
)

// LoadInfo describes what one extract-and-load attempt accomplished
type LoadInfo struct {
	RecordsLoaded int
	Pages         int
}

// ExtractLoader is the extraction+load capability the runner drives once per
// company per run. Implementations extract complaints received in the
// inclusive [dateMin, dateMax] range for the company and append them to the
// destination. Any returned error marks that company's attempt as failed.
type ExtractLoader interface {
	ExtractAndLoad(ctx context.Context, dateMin, dateMax time.Time, company string) (LoadInfo, error)
}

// CompanyResult is the outcome of one company's extract-and-load attempt
type CompanyResult struct {
	Company   string
	Status    string
	DateRange string
	Info      LoadInfo
	Err       error
}

// RunSummary aggregates one run's per-company outcomes. It is the sole
// externally visible signal of partial failure; callers must inspect the
// counts rather than expect an error for degraded runs.
type RunSummary struct {
	RunID          string
	Status         string
	Window         state.Window
	DateRange      string
	TotalCompanies int
	Successful     int
	Failed         int
	Results        []CompanyResult
	StartedAt      time.Time
	CompletedAt    time.Time
}

// Config holds pipeline settings supplied by the operator
type Config struct {
	// Companies to load, processed in the order listed
	Companies []string `toml:"companies"`

	// Date the very first run should begin from (YYYY-MM-DD)
	StartDate string `toml:"start_date"`
}
