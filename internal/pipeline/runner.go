package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dwhitena/complaintsync/internal/state"
)

// Runner executes one incremental load cycle across the configured
// companies and decides whether the watermark advances.
type Runner struct {
	store     *state.Store
	loader    ExtractLoader
	companies []string
	startDate time.Time
	logger    *slog.Logger
}

// NewRunner creates a runner. The companies slice is processed in order and
// is read-only to the runner.
func NewRunner(store *state.Store, loader ExtractLoader, companies []string, startDate time.Time, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		store:     store,
		loader:    loader,
		companies: companies,
		startDate: startDate,
		logger:    logger,
	}
}

// Run performs one catch-up cycle.
//
// The load window is computed once, up front. An empty window returns a
// skipped summary without touching any company. Otherwise every company is
// attempted in order; a failure for one company never aborts the rest. The
// watermark advances to the window's end iff every company succeeded.
//
// Per-company extraction errors are absorbed into the summary. The returned
// error is non-nil only for run-level failures: an invalid start date, a
// watermark read failure, or a watermark write failure after a fully
// successful run. In the last case the summary is still returned so callers
// can see the inconsistency instead of a silent success.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
	startedAt := time.Now().UTC()

	window, err := r.store.NextLoadWindow(r.startDate)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		RunID:          uuid.New().String(),
		Window:         window,
		DateRange:      window.String(),
		TotalCompanies: len(r.companies),
		StartedAt:      startedAt,
	}

	if window.Empty() {
		r.logger.Info("no new data to load, already up to date",
			"last_date", window.DateMax.Format(time.DateOnly))
		summary.Status = StatusSkipped
		summary.CompletedAt = time.Now().UTC()
		return summary, nil
	}

	r.logger.Info("starting incremental load",
		"run_id", summary.RunID,
		"companies", len(r.companies),
		"date_min", window.DateMin.Format(time.DateOnly),
		"date_max", window.DateMax.Format(time.DateOnly))

	for _, company := range r.companies {
		result := r.runCompany(ctx, window, company)
		summary.Results = append(summary.Results, result)

		if result.Status == CompanyStatusSuccess {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	summary.CompletedAt = time.Now().UTC()

	if summary.Successful == summary.TotalCompanies {
		summary.Status = StatusCompleted

		if err := r.store.Advance(window.DateMax); err != nil {
			// All companies succeeded but the watermark did not move; the
			// next run will re-extract this window. Surface the failure
			// rather than claim a clean run.
			r.logger.Error("failed to advance watermark after successful run",
				"run_id", summary.RunID,
				"date_max", window.DateMax.Format(time.DateOnly),
				"error", err)
			return summary, err
		}

		r.logger.Info("watermark advanced",
			"run_id", summary.RunID,
			"last_loaded_date", window.DateMax.Format(time.DateOnly))
	} else {
		summary.Status = StatusPartialFailure
		r.logger.Warn("not all companies loaded successfully, watermark not advanced",
			"run_id", summary.RunID,
			"successful", summary.Successful,
			"total", summary.TotalCompanies)
	}

	return summary, nil
}

// runCompany attempts one company's extract-and-load, converting any error
// into a failed result instead of letting it escape the run loop.
func (r *Runner) runCompany(ctx context.Context, window state.Window, company string) CompanyResult {
	r.logger.Info("loading complaints",
		"company", company,
		"date_min", window.DateMin.Format(time.DateOnly),
		"date_max", window.DateMax.Format(time.DateOnly))

	info, err := r.loader.ExtractAndLoad(ctx, window.DateMin, window.DateMax, company)
	if err != nil {
		r.logger.Error("failed to load complaints",
			"company", company,
			"error", err)

		return CompanyResult{
			Company:   company,
			Status:    CompanyStatusFailed,
			DateRange: window.String(),
			Err:       err,
		}
	}

	r.logger.Info("completed loading",
		"company", company,
		"records", info.RecordsLoaded,
		"pages", info.Pages)

	return CompanyResult{
		Company:   company,
		Status:    CompanyStatusSuccess,
		DateRange: window.String(),
		Info:      info,
	}
}
