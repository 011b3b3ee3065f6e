package tracker

import (
	"sync"
	"time"
)

// DefaultThreshold is the failure count at which proactive help is offered.
const DefaultThreshold = 2

// Record is the failure history of one feature.
type Record struct {
	Count        int       `json:"count"`
	LastFailure  time.Time `json:"lastFailure"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// FailureTracker counts repeated failures per feature so the product can offer
// the resolver before the user gives up.
type FailureTracker struct {
	threshold int
	now       func() time.Time

	mu      sync.Mutex
	records map[string]Record
}

// New constructs a FailureTracker. Non-positive thresholds use DefaultThreshold.
func New(threshold int) *FailureTracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &FailureTracker{
		threshold: threshold,
		now:       time.Now,
		records:   make(map[string]Record),
	}
}

// Threshold returns the configured prompt threshold.
func (t *FailureTracker) Threshold() int {
	return t.threshold
}

// RecordFailure counts a failure and reports whether help should now be shown.
// An empty message keeps the previously recorded one.
func (t *FailureTracker) RecordFailure(featureID, errorMessage string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.records[featureID]
	rec.Count++
	rec.LastFailure = t.now().UTC()
	if errorMessage != "" {
		rec.ErrorMessage = errorMessage
	}
	t.records[featureID] = rec
	return rec.Count >= t.threshold
}

// Clear forgets every failure recorded for featureID.
func (t *FailureTracker) Clear(featureID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, featureID)
}

// Count returns the failures recorded for featureID.
func (t *FailureTracker) Count(featureID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[featureID].Count
}

// ShouldShowHelp reports whether featureID has reached the threshold.
func (t *FailureTracker) ShouldShowHelp(featureID string) bool {
	return t.Count(featureID) >= t.threshold
}

// ErrorMessage returns the last non-empty message recorded for featureID.
func (t *FailureTracker) ErrorMessage(featureID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[featureID].ErrorMessage
}

// Get returns the record for featureID and whether one exists.
func (t *FailureTracker) Get(featureID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[featureID]
	return rec, ok
}
