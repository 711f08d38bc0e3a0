package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/keysweep/internal/audit"
	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
)

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// JournalPath is the journal to read.
	JournalPath string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Operation filters entries by operation ("search" or "decrypt").
	Operation string

	// FoundOnly keeps only searches that recovered a key.
	FoundOnly bool
}

// HistoryResult contains the journal entries after filtering.
type HistoryResult struct {
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// History reads and filters the run journal.
//
// Returns ErrInvalidConfig if no journal path is configured.
func History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	if opts.JournalPath == "" {
		return nil, fmt.Errorf("%w: no journal configured, set output.journal or --journal", kerrors.ErrInvalidConfig)
	}

	entries, err := audit.ReadEntries(opts.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}

	result := &HistoryResult{TotalEntriesBeforeFilter: len(entries)}

	filtered := entries[:0:0]
	for _, e := range entries {
		if opts.Operation != "" && !strings.EqualFold(e.Operation, opts.Operation) {
			continue
		}
		if opts.FoundOnly && e.Outcome != "found" {
			continue
		}
		filtered = append(filtered, e)
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			filtered = filtered[:opts.Limit]
		} else {
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

// FormatDateTime renders a journal timestamp as local "2006-01-02 15:04:05".
// Unparseable timestamps are returned as-is.
func FormatDateTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatDetails summarizes an entry on one line.
func FormatDetails(e audit.Entry) string {
	switch {
	case e.Operation == "decrypt":
		return fmt.Sprintf("key=%s bytes=%d", e.KeyHex, e.Bytes)
	case e.Outcome == "found":
		where := e.Label
		if e.Offset != nil {
			where = fmt.Sprintf("%s@%d", e.Source, *e.Offset)
		}
		return fmt.Sprintf("key=%s %s", e.KeyHex, where)
	default:
		return fmt.Sprintf("tried=%d scanned=%d %dms", e.DerivedTried, e.OffsetsScanned, e.DurationMS)
	}
}
