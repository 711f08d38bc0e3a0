package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/keysweep/internal/configs"
	"github.com/PolarWolf314/keysweep/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage keysweep configuration",
		Long: `Provides commands for creating and inspecting keysweep.toml.

Examples:
  # Write a template with the default salt, passwords and heuristic
  keysweep config init

  # Show the settings a search would use, after flags and defaults
  keysweep config show --config ./cases/bestdict.toml`,
	}

	cmd.AddCommand(newConfigInitCmd(g))
	cmd.AddCommand(newConfigShowCmd(g))
	return cmd
}

func newConfigInitCmd(g *globals) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configs.DefaultConfigFile
			if g.configPath != "" {
				path = g.configPath
			}
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Failed(ui.Path.Sprint(path), " already exists")+"\n"+
					ui.Hint("Use ", ui.Code.Sprint("--force"), " to overwrite it"))
				return reportedError{errors.New("config file already exists")}
			}

			if err := configs.SaveConfig(path, configs.DefaultConfig()); err != nil {
				return err
			}
			g.logger.Debugf("Wrote default config to %s", path)

			fmt.Fprintln(cmd.OutOrStdout(), ui.Done("Config written to ", ui.Path.Sprint(path))+"\n"+
				ui.Hint("Set ", ui.Code.Sprint("ciphertext.value"), " and ", ui.Code.Sprint("artifacts.paths"),
					", then run ", ui.Code.Sprint("keysweep search")))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Prints the configuration a search would use: defaults, then the config
file, then any search flags given here.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			f.apply(cmd.Flags(), cfg)

			if err := cfg.Validate(); err != nil {
				g.logger.WarnfAlways("Configuration is not ready for a search: %v", err)
			}
			return configs.EncodeTOML(cmd.OutOrStdout(), cfg)
		},
	}

	f.bind(cmd.Flags())
	return cmd
}
