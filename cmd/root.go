package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PolarWolf314/keysweep/internal/configs"
	logger "github.com/PolarWolf314/keysweep/internal/logging"
	"github.com/PolarWolf314/keysweep/internal/ui"
	"github.com/spf13/cobra"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	verbose    bool
	debug      bool
	configPath string
	logger     logger.Logger
}

// NewRootCmd builds the keysweep command tree with fresh flag state.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "keysweep",
		Short: "Recover the AES key of a ciphertext by brute force",
		Long: `keysweep searches for the AES key of a base64 ciphertext.

It tries PBKDF2 keys derived from a short password list, then every 16 and
32-byte window of one or more binary artifacts (for example the native
library that ships the key), decrypting one block per candidate and checking
whether the result looks like the expected plaintext.

Usage:
  keysweep <command> [flags]

Available Commands:
  search     Search for the key
  decrypt    Decrypt the ciphertext with a recovered key
  history    Show previous runs from the journal
  config     Create or inspect keysweep.toml

Run 'keysweep help <command>' for more details on a specific command.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = logger.Logger{
				Verbose: g.verbose,
				Debug:   g.debug,
				Out:     cmd.OutOrStdout(),
				Err:     cmd.ErrOrStderr(),
			}
			g.logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.CommandPath(), g.verbose, g.debug)
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVarP(&g.debug, "debug", "d", false, "enable debug output")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default ./"+configs.DefaultConfigFile+" if present)")

	root.AddCommand(newSearchCmd(g))
	root.AddCommand(newDecryptCmd(g))
	root.AddCommand(newHistoryCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// Execute runs the command tree and prints any error not yet reported.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printUnreported(root.ErrOrStderr(), err)
	}
	return err
}

func printUnreported(w io.Writer, err error) {
	var reported reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(w, ui.Failed(err.Error()))
	}
}

// loadConfig reads --config, or ./keysweep.toml when present, and warns
// about keys it does not recognize.
func (g *globals) loadConfig() (*configs.Config, error) {
	path, required := g.configPath, true
	if path == "" {
		path, required = configs.DefaultConfigFile, false
	}

	cfg, unknown, err := configs.LoadConfig(path, required)
	if err != nil {
		return nil, err
	}
	for _, key := range unknown {
		g.logger.WarnfAlways("Unknown config key %s in %s", key, path)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		g.logger.Debugf("Loaded config from %s", path)
	}
	return cfg, nil
}
