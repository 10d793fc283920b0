package cfpb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL points at the public CFPB complaint search API
const DefaultBaseURL = "https://www.consumerfinance.gov/data-research/consumer-complaints/search/api/v1/"

// Config holds API client settings
type Config struct {
	BaseURL  string        `toml:"base_url"`
	Timeout  time.Duration `toml:"timeout"`
	PageSize int           `toml:"page_size"`
	MaxPages int           `toml:"max_pages"`
}

// DefaultConfig returns client defaults suitable for the public API
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  60 * time.Second,
		PageSize: 1000,
		MaxPages: 100,
	}
}

// ExtractionError reports a failed extraction attempt for a company
type ExtractionError struct {
	Company string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cfpb: extraction failed for %s: %s: %v", e.Company, e.Message, e.Err)
	}
	return fmt.Sprintf("cfpb: extraction failed for %s: %s", e.Company, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Client fetches complaints from the CFPB search API
type Client struct {
	http   *resty.Client
	config Config
}

// NewClient creates an API client with the given configuration
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}

	http := resty.New()
	http.SetBaseURL(config.BaseURL)
	if config.Timeout > 0 {
		http.SetTimeout(config.Timeout)
	}

	return &Client{
		http:   http,
		config: config,
	}
}

// SearchPage fetches a single page of complaints for one company, filtered by
// inclusive received-date range. Dates are formatted YYYY-MM-DD. from is the
// zero-based offset of the first record on the page.
func (c *Client) SearchPage(ctx context.Context, dateMin, dateMax time.Time, company string, from int) ([]Complaint, int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"date_received_min": dateMin.Format(time.DateOnly),
			"date_received_max": dateMax.Format(time.DateOnly),
			"company":           company,
			"field":             "all",
			"no_aggs":           "true",
			"sort":              "created_date_asc",
			"frm":               fmt.Sprintf("%d", from),
			"size":              fmt.Sprintf("%d", c.config.PageSize),
		}).
		Get("")
	if err != nil {
		return nil, 0, &ExtractionError{Company: company, Message: "request failed", Err: err}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, 0, &ExtractionError{
			Company: company,
			Message: fmt.Sprintf("unexpected status %d", code),
		}
	}

	var envelope searchResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, 0, &ExtractionError{Company: company, Message: "malformed response body", Err: err}
	}

	complaints := make([]Complaint, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		complaint := hit.Source
		if complaint.ComplaintID == "" {
			complaint.ComplaintID = hit.ID
		}
		complaints = append(complaints, complaint)
	}

	return complaints, envelope.Hits.Total.Value, nil
}

// Extract fetches every complaint for one company in the date range, paging
// through the API until the reported total is exhausted. Each page is handed
// to fn as it arrives so callers can load incrementally instead of holding
// the full result set. Returns the number of pages fetched.
func (c *Client) Extract(ctx context.Context, dateMin, dateMax time.Time, company string, fn func(page []Complaint) error) (int, error) {
	fetched := 0

	for page := 0; ; page++ {
		if c.config.MaxPages > 0 && page >= c.config.MaxPages {
			return page, &ExtractionError{
				Company: company,
				Message: fmt.Sprintf("result set exceeds %d pages", c.config.MaxPages),
			}
		}

		complaints, total, err := c.SearchPage(ctx, dateMin, dateMax, company, fetched)
		if err != nil {
			return page, err
		}

		if len(complaints) > 0 {
			if err := fn(complaints); err != nil {
				return page + 1, err
			}
		}

		fetched += len(complaints)

		// The API reports the full match count with every page; an empty
		// page also means we are done regardless of the reported total.
		if fetched >= total || len(complaints) == 0 {
			return page + 1, nil
		}
	}
}
