package db

import "time"

// Complaint is a consumer-complaint row in the analytical destination table
type Complaint struct {
	ComplaintID       string
	Company           string
	Product           string
	SubProduct        string
	Issue             string
	SubIssue          string
	State             string
	ZipCode           string
	DateReceived      string // YYYY-MM-DD
	SubmittedVia      string
	CompanyResponse   string
	Timely            string
	ConsumerDisputed  string
	Narrative         string
	DateSentToCompany string
	LoadedAt          time.Time
}

// LoadRun records one incremental load cycle
type LoadRun struct {
	RunID          string
	DateMin        string // YYYY-MM-DD
	DateMax        string // YYYY-MM-DD
	Status         string // 'completed', 'partial_failure', 'skipped'
	TotalCompanies int
	Successful     int
	Failed         int
	StartedAt      time.Time
	CompletedAt    time.Time
}

// LoadRunResult records the per-company outcome within a load run
type LoadRunResult struct {
	RunID         string
	Company       string
	Status        string // 'success', 'failed'
	RecordsLoaded int
	Error         *string
}
