package state

import (
	"errors"
	"fmt"
	"time"
)

// Backend persists the watermark value. Implementations must make writes
// atomic from the caller's perspective: a crash mid-write must never leave
// a torn or partial value behind.
type Backend interface {
	// GetLastLoadedDate returns the persisted watermark, or ok=false if no
	// watermark exists yet (first-ever run).
	GetLastLoadedDate() (date time.Time, ok bool, err error)

	// SetLastLoadedDate overwrites the persisted watermark.
	SetLastLoadedDate(date time.Time) error

	// Clear removes the watermark entirely.
	Clear() error
}

// Standard errors
var (
	ErrInvalidStartDate = errors.New("state: start date is zero or invalid")
)

// PersistenceError wraps a backend read/write failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("state: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Window is the inclusive [DateMin, DateMax] date range targeted by one run
type Window struct {
	DateMin time.Time
	DateMax time.Time
}

// Empty reports whether the window covers no days. An empty window means the
// pipeline is already up to date; callers must treat it as "nothing to do",
// not as an error.
func (w Window) Empty() bool {
	return w.DateMin.After(w.DateMax)
}

// String formats the window the way run summaries report it
func (w Window) String() string {
	return w.DateMin.Format(time.DateOnly) + " to " + w.DateMax.Format(time.DateOnly)
}

// Store tracks the last successfully loaded date and computes the next load
// window. The clock is injected so window computation is deterministic in
// tests; it is consulted exactly once per NextLoadWindow call.
type Store struct {
	backend Backend
	now     func() time.Time
}

// NewStore creates a watermark store over the given backend.
// A nil clock defaults to time.Now.
func NewStore(backend Backend, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		backend: backend,
		now:     now,
	}
}

// LastLoadedDate returns the current watermark, or ok=false if no run has
// ever completed.
func (s *Store) LastLoadedDate() (time.Time, bool, error) {
	date, ok, err := s.backend.GetLastLoadedDate()
	if err != nil {
		return time.Time{}, false, &PersistenceError{Op: "read watermark", Err: err}
	}
	return truncateToDay(date), ok, nil
}

// NextLoadWindow computes the date range the next run should cover.
//
// With no prior watermark the window starts at startDate; otherwise it starts
// the day after the watermark. Both cases end at today. Both ends are
// inclusive. If the watermark is already at today the returned window is
// empty (DateMin > DateMax).
func (s *Store) NextLoadWindow(startDate time.Time) (Window, error) {
	if startDate.IsZero() {
		return Window{}, ErrInvalidStartDate
	}

	today := truncateToDay(s.now())

	last, ok, err := s.LastLoadedDate()
	if err != nil {
		return Window{}, err
	}

	if !ok {
		return Window{
			DateMin: truncateToDay(startDate),
			DateMax: today,
		}, nil
	}

	return Window{
		DateMin: last.AddDate(0, 0, 1),
		DateMax: today,
	}, nil
}

// Advance overwrites the watermark with dateMax. Callers invoke this only
// after every company in the run succeeded for the window ending at dateMax.
func (s *Store) Advance(dateMax time.Time) error {
	if err := s.backend.SetLastLoadedDate(truncateToDay(dateMax)); err != nil {
		return &PersistenceError{Op: "advance watermark", Err: err}
	}
	return nil
}

// Reset clears the watermark, returning the store to first-ever-run
// condition. Operator/test utility.
func (s *Store) Reset() error {
	if err := s.backend.Clear(); err != nil {
		return &PersistenceError{Op: "reset watermark", Err: err}
	}
	return nil
}

// truncateToDay discards the time-of-day portion, keeping a UTC calendar date
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
