package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/PolarWolf314/keysweep/internal/configs"
	kerrors "github.com/PolarWolf314/keysweep/internal/errors"
	"github.com/PolarWolf314/keysweep/internal/recovery"
	"github.com/PolarWolf314/keysweep/internal/ui"
	"github.com/PolarWolf314/keysweep/internal/workflows"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ciphertextFlags are shared by search and decrypt.
type ciphertextFlags struct {
	value string
	file  string
}

func (f *ciphertextFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.value, "ciphertext", "", "base64 ciphertext (overrides config)")
	fs.StringVar(&f.file, "ciphertext-file", "", "file holding the base64 ciphertext")
}

func (f *ciphertextFlags) apply(fs *pflag.FlagSet, cfg *configs.Config) {
	if fs.Changed("ciphertext") {
		cfg.Ciphertext.Value = f.value
	}
	if fs.Changed("ciphertext-file") {
		cfg.Ciphertext.Value = ""
		cfg.Ciphertext.File = f.file
	}
}

type searchFlags struct {
	ciphertext ciphertextFlags
	artifacts  []string
	salt       string
	passwords  []string
	iterations int
	prf        string
	workers    int
	batchSize  int
	timeout    time.Duration
	collectAll bool
	heuristic  string
	markers    []string
	preview    int
	journal    string
	jsonOutput bool
}

func (f *searchFlags) bind(fs *pflag.FlagSet) {
	f.ciphertext.bind(fs)
	fs.StringArrayVarP(&f.artifacts, "artifact", "a", nil, "binary file, directory or ** glob to scan (repeatable)")
	fs.StringVar(&f.salt, "salt", "", "PBKDF2 salt as hex")
	fs.StringArrayVarP(&f.passwords, "password", "p", nil, "password candidate (repeatable, replaces the configured list)")
	fs.IntVar(&f.iterations, "iterations", 0, "PBKDF2 iteration count")
	fs.StringVar(&f.prf, "prf", "", "PBKDF2 hash: sha1 or sha256")
	fs.IntVarP(&f.workers, "workers", "w", 0, "scan workers (0 = one per CPU)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "offsets scanned between cancellation checks")
	fs.DurationVar(&f.timeout, "timeout", 0, "stop the search after this long (0 = never)")
	fs.BoolVar(&f.collectAll, "all", false, "keep scanning after the first match and report every match")
	fs.StringVar(&f.heuristic, "heuristic", "", "match heuristic: markup, magic or printable")
	fs.StringArrayVarP(&f.markers, "marker", "m", nil, "marker or signature for the heuristic (repeatable)")
	fs.IntVar(&f.preview, "preview", 0, "characters of decrypted text to show")
	fs.StringVar(&f.journal, "journal", "", "append the run to this JSON Lines journal")
	fs.BoolVar(&f.jsonOutput, "json", false, "print the report as JSON")
}

// apply overrides config values with the flags the user actually set.
func (f *searchFlags) apply(fs *pflag.FlagSet, cfg *configs.Config) {
	f.ciphertext.apply(fs, cfg)
	if fs.Changed("artifact") {
		cfg.Artifacts.Paths = f.artifacts
	}
	if fs.Changed("salt") {
		cfg.Candidates.Salt = f.salt
	}
	if fs.Changed("password") {
		cfg.Candidates.Passwords = f.passwords
	}
	if fs.Changed("iterations") {
		cfg.Candidates.Iterations = f.iterations
	}
	if fs.Changed("prf") {
		cfg.Candidates.PRF = f.prf
	}
	if fs.Changed("workers") {
		cfg.Scan.Workers = f.workers
	}
	if fs.Changed("batch-size") {
		cfg.Scan.BatchSize = f.batchSize
	}
	if fs.Changed("timeout") {
		cfg.Scan.Timeout = f.timeout.String()
	}
	if fs.Changed("all") {
		cfg.Scan.CollectAll = f.collectAll
	}
	if fs.Changed("heuristic") {
		cfg.Match.Heuristic = f.heuristic
	}
	if fs.Changed("marker") {
		cfg.Match.Markers = f.markers
	}
	if fs.Changed("preview") {
		cfg.Output.PreviewLength = f.preview
	}
	if fs.Changed("journal") {
		cfg.Output.Journal = f.journal
	}
}

func newSearchCmd(g *globals) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search password candidates and binary artifacts for the key",
		Long: `Searches for the AES key of the configured ciphertext.

Phase 1 derives a 16 and a 32-byte key from every password with PBKDF2.
Phase 2 tries the 16 and 32-byte window at every offset of every artifact,
split across workers. Each candidate decrypts only the first ciphertext
block; the search stops at the first block the heuristic accepts.

Examples:
  keysweep search --ciphertext-file blob.b64 -a lib/x86_64/libgetData.so
  keysweep search -a 'resources/**/*.so' --timeout 30m
  keysweep search -p secret -p '' --salt 052daeff --json
  keysweep search --heuristic magic -m '\x1f\x8b' -a firmware.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, f)
		},
	}

	f.bind(cmd.Flags())
	return cmd
}

func runSearch(cmd *cobra.Command, g *globals, f *searchFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	f.apply(cmd.Flags(), cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	spinner, cleanup := g.startSpinner(cmd, "Trying password candidates...")
	defer cleanup()

	done := make(chan struct{})
	defer close(done)

	opts := workflows.SearchOptions{
		Config: cfg,
		Logger: g.logger,
		OnStart: func(engine *recovery.Engine, total int64) {
			go trackProgress(done, engine, total, func(text string) { setSuffix(spinner, text) })
		},
	}

	result, err := workflows.Search(ctx, opts)
	if err != nil {
		spinner.FinalMSG = formatSearchError(err)
		return reportedError{err}
	}

	if f.jsonOutput {
		spinner.FinalMSG = ""
		data, err := json.MarshalIndent(newSearchJSON(result), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	spinner.FinalMSG = formatSearchReport(result)
	return nil
}

// trackProgress reports scan progress every 200ms until done is closed.
func trackProgress(done <-chan struct{}, engine *recovery.Engine, total int64, update func(string)) {
	start := time.Now()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			scanned := engine.Scanned()
			elapsed := time.Since(start).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(scanned) / elapsed
			}
			update(fmt.Sprintf("Scanning: %s/%s offsets (%s) | %s",
				formatCount(scanned), formatCount(total), formatPercent(scanned, total), formatRate(rate)))
		}
	}
}

// formatSearchReport renders the final message of a completed search.
func formatSearchReport(result *workflows.SearchResult) string {
	report := result.Report
	stats := ui.Muted.Sprintf("%d password candidates, %s offsets in %s",
		report.DerivedTried, formatCount(report.OffsetsScanned), report.Duration.Round(time.Millisecond))

	switch report.Outcome {
	case recovery.OutcomeFound:
		var b strings.Builder
		b.WriteString(ui.Done("Key recovered ", stats) + "\n")
		for i, m := range report.Matches {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(formatMatch(m, result.PreviewLength))
		}
		return b.String()

	case recovery.OutcomeCancelled:
		return ui.Caution("Search stopped before a match was found ", stats) + "\n" +
			ui.Hint("Raise ", ui.Code.Sprint("--timeout"), " or narrow the artifacts to finish the scan")

	default:
		return ui.Failed("No match found ", stats) + "\n" +
			ui.Hint("The key might be generated at runtime rather than stored in the artifacts")
	}
}

func formatMatch(m *recovery.Match, previewLength int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "    Method:  %s\n", ui.Highlight.Sprint(m.Label))
	fmt.Fprintf(&b, "    Cipher:  %s\n", m.Cipher.Name)
	fmt.Fprintf(&b, "    Key:     %s\n", ui.Key.Sprint(m.KeyHex()))
	if !m.Derived() {
		fmt.Fprintf(&b, "    Source:  %s %s\n", ui.Path.Sprint(m.Source), ui.Muted.Sprintf("offset %d", m.Offset))
	}
	b.WriteString("    Preview:\n")
	b.WriteString(ui.Indent(m.Preview(previewLength), 6) + "\n")
	return b.String()
}

// formatSearchError formats a search error for display to the user.
func formatSearchError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrMissingCiphertext):
		return ui.Failed("No ciphertext configured") + "\n" +
			ui.Hint("Pass ", ui.Code.Sprint("--ciphertext"), " or ", ui.Code.Sprint("--ciphertext-file"),
				", or run ", ui.Code.Sprint("keysweep config init"))

	case errors.Is(err, kerrors.ErrDecode):
		return ui.Failed("The ciphertext could not be decoded") + "\n" + ui.Detail(err)

	case errors.Is(err, kerrors.ErrArtifactIO):
		return ui.Failed("Could not open an artifact, nothing was searched") + "\n" + ui.Detail(err)

	case errors.Is(err, kerrors.ErrNoArtifacts):
		return ui.Failed("No artifacts matched the given paths") + "\n" +
			ui.Hint("Check the ", ui.Code.Sprint("--artifact"), " patterns")

	default:
		return ui.Failed("Search failed") + "\n" + ui.Detail(err)
	}
}

type matchJSON struct {
	Label   string `json:"label"`
	Cipher  string `json:"cipher"`
	Key     string `json:"key"`
	Source  string `json:"source,omitempty"`
	Offset  *int   `json:"offset,omitempty"`
	Preview string `json:"preview"`
}

type searchJSON struct {
	RunID          string      `json:"run_id"`
	Outcome        string      `json:"outcome"`
	Matches        []matchJSON `json:"matches"`
	Artifacts      []string    `json:"artifacts"`
	DerivedTried   int         `json:"derived_tried"`
	OffsetsScanned int64       `json:"offsets_scanned"`
	DurationMS     int64       `json:"duration_ms"`
}

func newSearchJSON(result *workflows.SearchResult) searchJSON {
	r := result.Report
	out := searchJSON{
		RunID:          r.RunID,
		Outcome:        string(r.Outcome),
		Matches:        []matchJSON{},
		Artifacts:      make([]string, 0, len(result.Artifacts)),
		DerivedTried:   r.DerivedTried,
		OffsetsScanned: r.OffsetsScanned,
		DurationMS:     r.Duration.Milliseconds(),
	}
	for _, a := range result.Artifacts {
		out.Artifacts = append(out.Artifacts, filepath.ToSlash(a))
	}
	for _, m := range r.Matches {
		mj := matchJSON{
			Label:   m.Label,
			Cipher:  m.Cipher.Name,
			Key:     m.KeyHex(),
			Source:  m.Source,
			Preview: m.Preview(result.PreviewLength),
		}
		if !m.Derived() {
			offset := m.Offset
			mj.Offset = &offset
		}
		out.Matches = append(out.Matches, mj)
	}
	return out
}
