package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"odatadoc/internal/config"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:          "odatadoc",
		Short:        "Reference documentation for OData functions and actions",
		Long:         `odatadoc scans C# sources for [ODataFunction] and [ODataAction] methods and turns their XML documentation comments into a Markdown reference.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)

			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				logger.Debug("config file not found, using defaults", "path", opts.configPath)
			}
			if opts.dbPath != "" {
				cfg.Storage.Path = opts.dbPath
			}

			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "odatadoc.yaml", "configuration file")
	root.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "", "operation database (SQLite), overrides storage.path")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newScanCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newProjectsCmd())
	root.AddCommand(newDocCmd())

	return root
}
