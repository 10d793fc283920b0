package db

import "time"

// UpsertComplaints appends a batch of complaint rows inside a single
// transaction. Rows are keyed on complaint_id and replaced on conflict, so
// re-extracting an unadvanced window cannot duplicate data.
func (db *DB) UpsertComplaints(complaints []Complaint) error {
	if len(complaints) == 0 {
		return nil
	}

	return db.WithTransaction(func(tx *Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO complaints (
				complaint_id, company, product, sub_product, issue, sub_issue,
				state, zip_code, date_received, submitted_via, company_response,
				timely, consumer_disputed, narrative, date_sent_to_company, loaded_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, c := range complaints {
			loadedAt := c.LoadedAt
			if loadedAt.IsZero() {
				loadedAt = now
			}

			_, err := stmt.Exec(
				c.ComplaintID,
				c.Company,
				c.Product,
				c.SubProduct,
				c.Issue,
				c.SubIssue,
				c.State,
				c.ZipCode,
				c.DateReceived,
				c.SubmittedVia,
				c.CompanyResponse,
				c.Timely,
				c.ConsumerDisputed,
				c.Narrative,
				c.DateSentToCompany,
				loadedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// CountComplaints returns the number of complaint rows for a company.
// An empty company counts all rows.
func (db *DB) CountComplaints(company string) (int, error) {
	var count int
	var err error

	if company == "" {
		err = db.QueryRow("SELECT COUNT(*) FROM complaints").Scan(&count)
	} else {
		err = db.QueryRow("SELECT COUNT(*) FROM complaints WHERE company = ?", company).Scan(&count)
	}

	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetComplaint retrieves a complaint row by its ID
func (db *DB) GetComplaint(complaintID string) (*Complaint, error) {
	c := &Complaint{}

	query := `
		SELECT complaint_id, company, product, sub_product, issue, sub_issue,
		       state, zip_code, date_received, submitted_via, company_response,
		       timely, consumer_disputed, narrative, date_sent_to_company, loaded_at
		FROM complaints
		WHERE complaint_id = ?
	`

	err := db.QueryRow(query, complaintID).Scan(
		&c.ComplaintID,
		&c.Company,
		&c.Product,
		&c.SubProduct,
		&c.Issue,
		&c.SubIssue,
		&c.State,
		&c.ZipCode,
		&c.DateReceived,
		&c.SubmittedVia,
		&c.CompanyResponse,
		&c.Timely,
		&c.ConsumerDisputed,
		&c.Narrative,
		&c.DateSentToCompany,
		&c.LoadedAt,
	)

	if IsNotFound(err) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return c, nil
}
