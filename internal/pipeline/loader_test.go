package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dwhitena/complaintsync/internal/cfpb"
	"github.com/dwhitena/complaintsync/internal/db"
	"github.com/dwhitena/complaintsync/internal/pipeline"
	"github.com/dwhitena/complaintsync/tools/migrator"
)

// newTestDestination opens an in-memory destination with the real schema
func newTestDestination(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrator.RunMigrations(database.DB, "../../migrations"))
	return database
}

// newComplaintServer serves canned complaints with frm/size pagination
func newComplaintServer(t *testing.T, complaints []cfpb.Complaint) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		from, _ := strconv.Atoi(r.URL.Query().Get("frm"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))

		end := from + size
		if end > len(complaints) {
			end = len(complaints)
		}

		hits := make([]map[string]any, 0)
		for _, c := range complaints[from:end] {
			hits = append(hits, map[string]any{"_id": c.ComplaintID, "_source": c})
		}

		body := map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": len(complaints)},
				"hits":  hits,
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
}

func makeAPIComplaints(n int, company string) []cfpb.Complaint {
	complaints := make([]cfpb.Complaint, 0, n)
	for i := 0; i < n; i++ {
		complaints = append(complaints, cfpb.Complaint{
			ComplaintID:  fmt.Sprintf("c-%d", i),
			Company:      company,
			Product:      "Mortgage",
			DateReceived: "2024-01-05T12:00:00-05:00",
		})
	}
	return complaints
}

// TestLoader_ExtractAndLoad verifies extraction pages are appended to the
// destination and the returned info reflects what was loaded.
func TestLoader_ExtractAndLoad(t *testing.T) {
	database := newTestDestination(t)

	server := newComplaintServer(t, makeAPIComplaints(5, "Acme Bank"))
	defer server.Close()

	client := cfpb.NewClient(cfpb.Config{BaseURL: server.URL, PageSize: 2})
	loader := pipeline.NewLoader(client, database)

	dateMin, dateMax := testWindow(t)
	info, err := loader.ExtractAndLoad(context.Background(), dateMin, dateMax, "Acme Bank")
	require.NoError(t, err)

	assert.Equal(t, 5, info.RecordsLoaded)
	assert.Equal(t, 3, info.Pages)

	count, err := database.CountComplaints("Acme Bank")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// The time component of date_received is dropped on load
	row, err := database.GetComplaint("c-0")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", row.DateReceived)
}

// TestLoader_RerunDoesNotDuplicate verifies loading the same window twice
// leaves one row per complaint.
func TestLoader_RerunDoesNotDuplicate(t *testing.T) {
	database := newTestDestination(t)

	server := newComplaintServer(t, makeAPIComplaints(4, "Acme Bank"))
	defer server.Close()

	client := cfpb.NewClient(cfpb.Config{BaseURL: server.URL, PageSize: 10})
	loader := pipeline.NewLoader(client, database)

	dateMin, dateMax := testWindow(t)
	for i := 0; i < 2; i++ {
		_, err := loader.ExtractAndLoad(context.Background(), dateMin, dateMax, "Acme Bank")
		require.NoError(t, err)
	}

	count, err := database.CountComplaints("")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

// TestLoader_APIFailure verifies an API failure surfaces as an extraction
// error and loads nothing.
func TestLoader_APIFailure(t *testing.T) {
	database := newTestDestination(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := cfpb.NewClient(cfpb.Config{BaseURL: server.URL, PageSize: 10})
	loader := pipeline.NewLoader(client, database)

	dateMin, dateMax := testWindow(t)
	_, err := loader.ExtractAndLoad(context.Background(), dateMin, dateMax, "Acme Bank")

	var extractionErr *cfpb.ExtractionError
	require.ErrorAs(t, err, &extractionErr)

	count, err := database.CountComplaints("")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testWindow(t *testing.T) (dateMin, dateMax time.Time) {
	return date(t, "2024-01-01"), date(t, "2024-01-10")
}
