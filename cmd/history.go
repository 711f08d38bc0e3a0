package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/keysweep/internal/audit"
	"github.com/PolarWolf314/keysweep/internal/workflows"
	"github.com/spf13/cobra"
)

type historyFlags struct {
	journal   string
	limit     int
	reverse   bool
	operation string
	found     bool
	json      bool
}

func newHistoryCmd(g *globals) *cobra.Command {
	f := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "View previous runs from the journal",
		Long: `Displays the run journal written by search and decrypt.

Examples:
  keysweep history                      # View full journal
  keysweep history -n 10                # Last 10 entries
  keysweep history --reverse            # Most recent first
  keysweep history --found              # Only searches that recovered a key
  keysweep history --operation decrypt  # Filter by operation
  keysweep history --json               # JSON output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.journal, "journal", "", "journal file (default from config)")
	cmd.Flags().IntVarP(&f.limit, "number", "n", 0, "limit number of entries shown")
	cmd.Flags().BoolVar(&f.reverse, "reverse", false, "show most recent entries first")
	cmd.Flags().StringVar(&f.operation, "operation", "", "filter by operation (search, decrypt)")
	cmd.Flags().BoolVar(&f.found, "found", false, "only show searches that recovered a key")
	cmd.Flags().BoolVar(&f.json, "json", false, "output as JSON array")

	return cmd
}

func runHistory(cmd *cobra.Command, g *globals, f *historyFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	journal := cfg.Output.Journal
	if cmd.Flags().Changed("journal") {
		journal = f.journal
	}

	result, err := workflows.History(cmd.Context(), workflows.HistoryOptions{
		JournalPath: journal,
		Limit:       f.limit,
		Reverse:     f.reverse,
		Operation:   f.operation,
		FoundOnly:   f.found,
	})
	if err != nil {
		return err
	}

	g.logger.Debugf("Parsed %d entries, %d after filtering", result.TotalEntriesBeforeFilter, len(result.Entries))

	out := cmd.OutOrStdout()
	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Fprintln(out, "No journal entries found.")
		} else {
			fmt.Fprintln(out, "No journal entries found matching the filters.")
		}
		return nil
	}

	if f.json {
		data, err := json.MarshalIndent(result.Entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	for _, e := range result.Entries {
		fmt.Fprintln(out, formatHistoryLine(e))
	}
	return nil
}

func formatHistoryLine(e audit.Entry) string {
	return fmt.Sprintf("%-19s  %-8s  %-9s  %s",
		workflows.FormatDateTime(e.Timestamp), e.Operation, e.Outcome, workflows.FormatDetails(e))
}
