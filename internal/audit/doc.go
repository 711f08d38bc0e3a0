// Package audit keeps a journal of keysweep runs.
//
// Each search or decrypt appends one JSON object per line to the journal
// file named in the config (output.journal). Entries carry the run UUID,
// the outcome, the winning key and where it was found, and scan counters,
// so a long search does not have to be repeated to recover its answer.
//
// # Usage
//
//	entry := audit.FromReport(report)
//	audit.Log(cfg.Output.Journal, entry)
//
// # Failure Handling
//
// Journaling is best-effort. If the file cannot be written the run still
// reports its result.
package audit
