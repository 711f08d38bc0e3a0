package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/PolarWolf314/keysweep/internal/ui"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// startSpinner creates and starts a spinner on stderr unless verbose or debug
// output is on or stderr is not a terminal. The returned cleanup stops the
// spinner and prints s.FinalMSG to the command's stdout.
//
// FinalMSG values do NOT need trailing newlines; cleanup adds one.
func (g *globals) startSpinner(cmd *cobra.Command, message string) (*spinner.Spinner, func()) {
	g.logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		g.logger.Warnf("Failed to set spinner color: %v", err)
	}

	active := !g.verbose && !g.debug && term.IsTerminal(int(os.Stderr.Fd()))
	if active {
		s.Start()
	} else {
		g.logger.Infof("%s", message)
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			s.FinalMSG = ""
		}

		if active {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(cmd.OutOrStdout(), finalMsg)
		}
	}

	return s, cleanup
}

// setSuffix replaces the spinner text while it may be spinning.
func setSuffix(s *spinner.Spinner, text string) {
	s.Lock()
	s.Suffix = " " + text
	s.Unlock()
}

func formatCount(n int64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.1fG", float64(n)/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.1fk", float64(n)/1e3)
	default:
		return strconv.FormatInt(n, 10)
	}
}

func formatRate(perSec float64) string {
	switch {
	case perSec >= 1e9:
		return fmt.Sprintf("%.1fG/s", perSec/1e9)
	case perSec >= 1e6:
		return fmt.Sprintf("%.1fM/s", perSec/1e6)
	case perSec >= 1e3:
		return fmt.Sprintf("%.1fk/s", perSec/1e3)
	default:
		return fmt.Sprintf("%.1f/s", perSec)
	}
}

func formatPercent(done, total int64) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(done)*100/float64(total))
}
