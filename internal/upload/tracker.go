// Package upload tracks ephemeral client-facing progress records for files
// moving through the gateway to the backend. Records exist only in memory:
// they are created when a file enters the upload flow, mutated as bytes
// stream through, and removed after a completion display delay or an
// explicit dismissal.
package upload

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Upload statuses, in the order they normally occur.
const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// DefaultDisplayDelay is how long a completed record stays visible before
// it is swept away.
const DefaultDisplayDelay = 3 * time.Second

// Progress is one file's upload state. Progress runs 0-100.
type Progress struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Tracker holds per-user progress records. Safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	records      map[string]map[string]*Progress // userID -> fileID -> record
	displayDelay time.Duration
}

func NewTracker(displayDelay time.Duration) *Tracker {
	if displayDelay <= 0 {
		displayDelay = DefaultDisplayDelay
	}
	return &Tracker{
		records:      make(map[string]map[string]*Progress),
		displayDelay: displayDelay,
	}
}

// Start registers a new record in the uploading state and returns a copy.
func (t *Tracker) Start(userID, fileName string) Progress {
	rec := &Progress{
		FileID:   uuid.NewString(),
		FileName: fileName,
		Status:   StatusUploading,
	}

	t.mu.Lock()
	if t.records[userID] == nil {
		t.records[userID] = make(map[string]*Progress)
	}
	t.records[userID][rec.FileID] = rec
	t.mu.Unlock()

	return *rec
}

// SetStatus updates a record's status and error text.
func (t *Tracker) SetStatus(userID, fileID, status, errText string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.records[userID][fileID]
	if rec == nil {
		return
	}
	rec.Status = status
	rec.Error = errText
}

// setProgress clamps and stores the percentage for a record.
func (t *Tracker) setProgress(userID, fileID string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.records[userID][fileID]
	if rec == nil {
		return
	}
	rec.Progress = pct
}

// Complete marks the record finished and schedules its removal after the
// display delay.
func (t *Tracker) Complete(userID, fileID string) {
	t.mu.Lock()
	rec := t.records[userID][fileID]
	if rec != nil {
		rec.Progress = 100
		rec.Status = StatusCompleted
	}
	t.mu.Unlock()

	time.AfterFunc(t.displayDelay, func() {
		t.Remove(userID, fileID)
	})
}

// Remove dismisses a record immediately.
func (t *Tracker) Remove(userID, fileID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records[userID], fileID)
	if len(t.records[userID]) == 0 {
		delete(t.records, userID)
	}
}

// List returns copies of the user's current records.
func (t *Tracker) List(userID string) []Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Progress, 0, len(t.records[userID]))
	for _, rec := range t.records[userID] {
		out = append(out, *rec)
	}
	return out
}

// CountingReader wraps r so the record's percentage advances as the upload
// consumes bytes. total of zero disables percentage updates.
func (t *Tracker) CountingReader(userID, fileID string, r io.Reader, total int64) io.Reader {
	return &countingReader{tracker: t, userID: userID, fileID: fileID, r: r, total: total}
}

type countingReader struct {
	tracker *Tracker
	userID  string
	fileID  string
	r       io.Reader
	total   int64
	read    int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.total > 0 {
		c.read += int64(n)
		c.tracker.setProgress(c.userID, c.fileID, int(c.read*100/c.total))
	}
	return n, err
}
