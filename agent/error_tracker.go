package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf8"
)

// maxRetainedErrors bounds the tracker; the oldest records are trimmed first.
const maxRetainedErrors = 20

// ErrorRecord is one recorded capability failure. IDs are monotonic within a
// session, start at 1, and are never reused.
type ErrorRecord struct {
	ID          int               `json:"id"`
	Timestamp   int64             `json:"timestamp"` // Unix milliseconds
	Capability  string            `json:"capability"`
	Category    string            `json:"category"` // "business" or "exception"
	RawMessage  string            `json:"raw_message"`
	Diagnostic  string            `json:"diagnostic"`
	UserMessage string            `json:"user_message"`
	AutoFixed   bool              `json:"auto_fixed"`
	Context     map[string]string `json:"context,omitempty"`
}

// ErrorTracker is the append-only, size-bounded failure log with auto-fix
// reconciliation.
type ErrorTracker struct {
	mu      sync.RWMutex
	records []*ErrorRecord
	nextID  int
	logger  func(string)
}

// NewErrorTracker creates an empty tracker.
func NewErrorTracker(logger func(string)) *ErrorTracker {
	return &ErrorTracker{nextID: 1, logger: logger}
}

func (t *ErrorTracker) log(msg string) {
	if t.logger != nil {
		t.logger(msg)
	}
}

// Record appends a failure and returns the new record so its identifier can
// be linked forward.
func (t *ErrorTracker) Record(capability, category, rawMessage, diagnostic, userMessage string, context map[string]string) *ErrorRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := &ErrorRecord{
		ID:          t.nextID,
		Timestamp:   time.Now().UnixMilli(),
		Capability:  capability,
		Category:    category,
		RawMessage:  truncateString(rawMessage, 500),
		Diagnostic:  diagnostic,
		UserMessage: userMessage,
		Context:     context,
	}
	t.nextID++

	t.records = append(t.records, record)
	if len(t.records) > maxRetainedErrors {
		t.records = t.records[len(t.records)-maxRetainedErrors:]
	}

	t.log(fmt.Sprintf("[ERROR-TRACKER] Recorded #%d %s/%s: %s", record.ID, capability, category, record.RawMessage))
	return record
}

// Reconcile is the only auto-fix mechanism: a success of the capability
// named by the pending failure link marks that record auto-fixed exactly
// once and clears the link. Everything else is a no-op.
func (t *ErrorTracker) Reconcile(st *ConversationState, capability string, success bool) bool {
	if !success || st.PendingFailure == nil || st.PendingFailure.Capability != capability {
		return false
	}

	link := st.PendingFailure
	st.PendingFailure = nil

	t.mu.Lock()
	defer t.mu.Unlock()
	record := t.lookupLocked(link.ErrorID)
	if record == nil || record.AutoFixed {
		return false
	}
	record.AutoFixed = true
	t.log(fmt.Sprintf("[ERROR-TRACKER] Auto-fixed #%d (%s)", record.ID, capability))
	return true
}

// Lookup returns the retained record with the given identifier, or nil.
func (t *ErrorTracker) Lookup(id int) *ErrorRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookupLocked(id)
}

func (t *ErrorTracker) lookupLocked(id int) *ErrorRecord {
	for _, r := range t.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// MostRecent returns the newest record, or nil when nothing is recorded.
func (t *ErrorTracker) MostRecent() *ErrorRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.records) == 0 {
		return nil
	}
	return t.records[len(t.records)-1]
}

// Count returns the number of retained records.
func (t *ErrorTracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// SaveSnapshot writes the retained records to disk for postmortem reading.
// Snapshots are never loaded back into a live session.
func (t *ErrorTracker) SaveSnapshot(path string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	data, err := json.MarshalIndent(t.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode error snapshot: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write error snapshot: %v", err)
	}
	return nil
}

// truncateString cuts s to at most limit bytes without splitting a rune.
func truncateString(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
