// Package root contains the root command for the application.
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rafaelvasco/dindinho/internal/config"
	"github.com/rafaelvasco/dindinho/internal/container"
	"github.com/rafaelvasco/dindinho/internal/logging"
)

var (
	// App holds the wired dependencies, built once before any subcommand runs.
	App *container.Container

	// DataDir overrides data.directory when set on the command line.
	DataDir string

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "dindinho",
		Short: "Import Brazilian bank and credit-card CSV statements into categorized expenses.",
		Long: `dindinho parses credit-card statements and account extracts exported by
Brazilian banks, reconciles each row against your expense history, ignore
list and subscription catalogue, and categorizes new expenses.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(logging.GetLogger())

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			if DataDir != "" {
				cfg.Data.Directory = DataDir
			}
			logging.SetLevel(cfg.Log.Level)

			App, err = container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("wiring dependencies: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	Cmd.PersistentFlags().StringVar(&DataDir, "data-dir", "", "Directory holding the expense data files")
}
