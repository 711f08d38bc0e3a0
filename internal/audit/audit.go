package audit

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/keysweep/internal/recovery"
)

// Entry represents a single journal entry.
type Entry struct {
	Timestamp string `json:"ts"`     // RFC3339 with microseconds.
	RunID     string `json:"run_id"` // Search run UUID.
	Operation string `json:"op"`     // "search" or "decrypt".
	Outcome   string `json:"outcome"`

	// Optional fields depending on operation.
	Artifacts      []string `json:"artifacts,omitempty"`       // For search.
	Label          string   `json:"label,omitempty"`           // Winning candidate.
	KeyHex         string   `json:"key,omitempty"`             // Winning key.
	Source         string   `json:"source,omitempty"`          // Artifact of the winning window.
	Offset         *int     `json:"offset,omitempty"`          // Offset of the winning window.
	Matches        int      `json:"matches,omitempty"`         // For collect-all searches.
	DerivedTried   int      `json:"derived_tried,omitempty"`   // Password candidates tried.
	OffsetsScanned int64    `json:"offsets_scanned,omitempty"` // Artifact offsets visited.
	DurationMS     int64    `json:"duration_ms,omitempty"`
	Bytes          int      `json:"bytes,omitempty"` // For decrypt.
}

// FromReport builds a search entry from a finished run.
func FromReport(r *recovery.Report) Entry {
	entry := Entry{
		RunID:          r.RunID,
		Operation:      "search",
		Outcome:        string(r.Outcome),
		Artifacts:      r.Artifacts,
		DerivedTried:   r.DerivedTried,
		OffsetsScanned: r.OffsetsScanned,
		DurationMS:     r.Duration.Milliseconds(),
	}

	if m := r.First(); m != nil {
		entry.Label = m.Label
		entry.KeyHex = m.KeyHex()
		entry.Source = m.Source
		if !m.Derived() {
			offset := m.Offset
			entry.Offset = &offset
		}
		entry.Matches = len(r.Matches)
	}

	return entry
}

// Log appends an entry to the journal at logPath. An empty path disables
// journaling. Failures are ignored: a search result must never be lost
// because the journal could not be written.
func Log(logPath string, entry Entry) {
	if logPath == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if dir := filepath.Dir(logPath); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	// #nosec G302 G304 -- journal path comes from the user's config.
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the journal.
// Returns an empty slice if the journal doesn't exist.
func ReadEntries(logPath string) ([]Entry, error) {
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
