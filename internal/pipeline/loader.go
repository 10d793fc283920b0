package pipeline

import (
	"context"
	"time"

	"github.com/dwhitena/complaintsync/internal/cfpb"
	"github.com/dwhitena/complaintsync/internal/db"
)

// Loader implements ExtractLoader against the CFPB search API and the local
// SQLite destination. Each API page is appended in its own transaction, and
// rows are keyed on complaint ID, so re-running a window is idempotent.
type Loader struct {
	client *cfpb.Client
	db     *db.DB
}

// NewLoader creates a loader writing to the given destination
func NewLoader(client *cfpb.Client, database *db.DB) *Loader {
	return &Loader{
		client: client,
		db:     database,
	}
}

// ExtractAndLoad pulls every complaint received in [dateMin, dateMax] for
// the company and appends the rows to the destination.
func (l *Loader) ExtractAndLoad(ctx context.Context, dateMin, dateMax time.Time, company string) (LoadInfo, error) {
	records := 0

	pages, err := l.client.Extract(ctx, dateMin, dateMax, company, func(page []cfpb.Complaint) error {
		rows := make([]db.Complaint, 0, len(page))
		for _, c := range page {
			rows = append(rows, complaintRow(c))
		}

		if err := l.db.UpsertComplaints(rows); err != nil {
			return err
		}

		records += len(rows)
		return nil
	})
	if err != nil {
		return LoadInfo{}, err
	}

	return LoadInfo{
		RecordsLoaded: records,
		Pages:         pages,
	}, nil
}

// complaintRow converts an API record into a destination row. The API
// reports date_received with a time component; only the calendar date is
// kept.
func complaintRow(c cfpb.Complaint) db.Complaint {
	return db.Complaint{
		ComplaintID:       c.ComplaintID,
		Company:           c.Company,
		Product:           c.Product,
		SubProduct:        c.SubProduct,
		Issue:             c.Issue,
		SubIssue:          c.SubIssue,
		State:             c.State,
		ZipCode:           c.ZipCode,
		DateReceived:      dateOnly(c.DateReceived),
		SubmittedVia:      c.SubmittedVia,
		CompanyResponse:   c.CompanyResponse,
		Timely:            c.Timely,
		ConsumerDisputed:  c.ConsumerDisputed,
		Narrative:         c.Narrative,
		DateSentToCompany: dateOnly(c.DateSentToCompany),
	}
}

func dateOnly(s string) string {
	if len(s) > len(time.DateOnly) {
		return s[:len(time.DateOnly)]
	}
	return s
}
