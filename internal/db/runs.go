package db

import "database/sql"

// CreateLoadRun records a load run together with its per-company results in
// a single transaction.
func (db *DB) CreateLoadRun(run *LoadRun, results []LoadRunResult) error {
	return db.WithTransaction(func(tx *Tx) error {
		query := `
			INSERT INTO load_runs (run_id, date_min, date_max, status, total_companies, successful, failed, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := tx.Exec(query,
			run.RunID,
			run.DateMin,
			run.DateMax,
			run.Status,
			run.TotalCompanies,
			run.Successful,
			run.Failed,
			run.StartedAt,
			run.CompletedAt,
		)
		if err != nil {
			return err
		}

		for _, result := range results {
			query := `
				INSERT INTO load_run_results (run_id, company, status, records_loaded, error)
				VALUES (?, ?, ?, ?, ?)
			`

			_, err := tx.Exec(query,
				run.RunID,
				result.Company,
				result.Status,
				result.RecordsLoaded,
				result.Error,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetLoadRun retrieves a load run by its run ID
func (db *DB) GetLoadRun(runID string) (*LoadRun, error) {
	run := &LoadRun{}

	query := `
		SELECT run_id, date_min, date_max, status, total_companies, successful, failed, started_at, completed_at
		FROM load_runs
		WHERE run_id = ?
	`

	err := db.QueryRow(query, runID).Scan(
		&run.RunID,
		&run.DateMin,
		&run.DateMax,
		&run.Status,
		&run.TotalCompanies,
		&run.Successful,
		&run.Failed,
		&run.StartedAt,
		&run.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return run, nil
}

// GetLoadRunResults retrieves the per-company results for a load run
func (db *DB) GetLoadRunResults(runID string) ([]LoadRunResult, error) {
	query := `
		SELECT run_id, company, status, records_loaded, error
		FROM load_run_results
		WHERE run_id = ?
		ORDER BY rowid
	`

	rows, err := db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LoadRunResult
	for rows.Next() {
		var result LoadRunResult
		err := rows.Scan(
			&result.RunID,
			&result.Company,
			&result.Status,
			&result.RecordsLoaded,
			&result.Error,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Return empty slice instead of nil
	if results == nil {
		results = []LoadRunResult{}
	}

	return results, nil
}

// GetRecentLoadRuns retrieves the most recent load runs, newest first
func (db *DB) GetRecentLoadRuns(limit int) ([]LoadRun, error) {
	query := `
		SELECT run_id, date_min, date_max, status, total_companies, successful, failed, started_at, completed_at
		FROM load_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []LoadRun
	for rows.Next() {
		var run LoadRun
		err := rows.Scan(
			&run.RunID,
			&run.DateMin,
			&run.DateMax,
			&run.Status,
			&run.TotalCompanies,
			&run.Successful,
			&run.Failed,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if runs == nil {
		runs = []LoadRun{}
	}

	return runs, nil
}
