package testutil

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dwhitena/complaintsync/internal/pipeline"
)

// NewTestLogger returns a slog logger that discards all output
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MemoryBackend provides an in-memory watermark backend for testing
type MemoryBackend struct {
	mu       sync.Mutex
	date     time.Time
	set      bool
	getError error
	setError error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

func (m *MemoryBackend) SetSetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setError = err
}

func (m *MemoryBackend) GetLastLoadedDate() (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return time.Time{}, false, m.getError
	}

	return m.date, m.set, nil
}

func (m *MemoryBackend) SetLastLoadedDate(date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setError != nil {
		return m.setError
	}

	m.date = date
	m.set = true
	return nil
}

func (m *MemoryBackend) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.date = time.Time{}
	m.set = false
	return nil
}

// LoadCall records one invocation of the mock loader
type LoadCall struct {
	DateMin time.Time
	DateMax time.Time
	Company string
}

// MockExtractLoader provides a scriptable extract-and-load collaborator
type MockExtractLoader struct {
	mu       sync.Mutex
	calls    []LoadCall
	infos    map[string]pipeline.LoadInfo
	failures map[string]error
}

func NewMockExtractLoader() *MockExtractLoader {
	return &MockExtractLoader{
		infos:    make(map[string]pipeline.LoadInfo),
		failures: make(map[string]error),
	}
}

// SetInfo sets the LoadInfo returned for a company
func (m *MockExtractLoader) SetInfo(company string, info pipeline.LoadInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[company] = info
}

// FailCompany makes attempts for a company return the given error
func (m *MockExtractLoader) FailCompany(company string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[company] = err
}

func (m *MockExtractLoader) ExtractAndLoad(_ context.Context, dateMin, dateMax time.Time, company string) (pipeline.LoadInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, LoadCall{
		DateMin: dateMin,
		DateMax: dateMax,
		Company: company,
	})

	if err := m.failures[company]; err != nil {
		return pipeline.LoadInfo{}, err
	}

	return m.infos[company], nil
}

// Calls returns a copy of the recorded invocations in order
func (m *MockExtractLoader) Calls() []LoadCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]LoadCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// FixedClock returns a clock function pinned to the given time
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
