package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"odatadoc/internal/config"
	"odatadoc/internal/doccomment"
	"odatadoc/internal/ir"
	"odatadoc/internal/pipeline"
	"odatadoc/internal/storage"
)

// renderFlags override the render section of the configuration when set.
type renderFlags struct {
	mode            string
	html            bool
	docsAlert       bool
	hideDescription bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "writer: backend or frontend")
	cmd.Flags().BoolVar(&f.html, "html", false, "also write HTML next to every Markdown file")
	cmd.Flags().BoolVar(&f.docsAlert, "docs-alert", false, "mark operations without documentation")
	cmd.Flags().BoolVar(&f.hideDescription, "hide-description", false, "leave attribute descriptions out")
}

func (f *renderFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("mode") {
		cfg.Render.Mode = f.mode
	}
	if cmd.Flags().Changed("html") {
		cfg.Render.HTML = f.html
	}
	if cmd.Flags().Changed("docs-alert") {
		cfg.Render.DocsAlert = f.docsAlert
	}
	if cmd.Flags().Changed("hide-description") {
		cfg.Render.HideDescription = f.hideDescription
	}
}

func newScanCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "scan [input]",
		Short: "Scan C# sources and store their operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)

			input := cfg.Project.Input
			if len(args) > 0 {
				input = args[0]
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			prog := newProgress(logger)
			if since != "" {
				res, err := p.Incremental(ctx, store, input, since)
				if err != nil {
					return err
				}
				prog.done("incremental scan complete",
					"files", len(res.Files),
					"edited", len(res.Impact.Edited),
					"added", len(res.Impact.Added),
					"removed", len(res.Impact.Removed),
					"malformed", len(res.Malformed))
				return nil
			}

			logger.Info("scanning", "input", input)
			res, err := p.Scan(ctx, input)
			if err != nil {
				return err
			}
			if err := store.SaveOperations(ctx, res.Operations); err != nil {
				return fmt.Errorf("failed to save operations: %w", err)
			}
			prog.done("scan complete",
				"operations", len(res.Operations),
				"invalid", res.Invalid,
				"malformed", len(res.Malformed),
				"db", cfg.Storage.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only rescan .cs files changed since this git ref")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		render   renderFlags
		category string
	)

	cmd := &cobra.Command{
		Use:   "generate [output]",
		Short: "Write the Markdown reference of the stored operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)
			render.apply(cmd, cfg)

			output := cfg.Project.Output
			if len(args) > 0 {
				output = args[0]
			}

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			var ops []*ir.Operation
			if category != "" {
				ops, err = store.FindByCategory(ctx, category)
			} else {
				ops, err = store.LoadOperations(ctx)
			}
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				logger.Warn("no operations stored, run scan first", "db", cfg.Storage.Path)
			}

			prog := newProgress(logger)
			res := &pipeline.ScanResult{Operations: ops, Found: len(ops)}
			if err := p.Generate(ctx, res, cfg.Project.Input, output); err != nil {
				return err
			}
			prog.done("documentation generated", "output", output, "operations", len(ops))
			return nil
		},
	}
	render.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "only generate the category with this slug")
	return cmd
}

func newRunCmd() *cobra.Command {
	var render renderFlags

	cmd := &cobra.Command{
		Use:   "run <input> <output>",
		Short: "Scan and generate in one go without a database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)
			render.apply(cmd, cfg)

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			prog := newProgress(logger)
			if err := p.Run(ctx, args[0], args[1]); err != nil {
				return err
			}
			prog.done("documentation generated", "input", args[0], "output", args[1])
			return nil
		},
	}
	render.register(cmd)
	return cmd
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the C# projects of the stored operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)

			store, err := storage.NewSQLiteStore(cfg.Storage.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			projects, err := store.Projects(ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tFRAMEWORK\tTEST\tPATH")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", p.Name, p.Type, p.TypeName, p.IsTestProject, p.Path)
			}
			return tw.Flush()
		},
	}
}

func newDocCmd() *cobra.Command {
	var (
		params     []string
		voidReturn bool
	)

	cmd := &cobra.Command{
		Use:   "doc [file]",
		Short: "Transform one documentation comment read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if len(args) > 0 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			res, err := doccomment.Transform(doccomment.Member{
				Comment:    string(raw),
				Parameters: params,
				VoidReturn: voidReturn,
			})
			if err != nil {
				return err
			}
			writeDocResult(cmd.OutOrStdout(), res, params)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&params, "param", "p", nil, "declared parameter names, in order")
	cmd.Flags().BoolVar(&voidReturn, "void", false, "the member returns nothing")
	return cmd
}

func writeDocResult(w io.Writer, res *doccomment.Result, params []string) {
	fmt.Fprintln(w, res.Body)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "category: %s (%s)\n", res.Category.Display, res.Category.Slug)
	for _, name := range params {
		doc, ok := res.Parameters[name]
		if !ok {
			continue
		}
		if doc.Example != nil {
			fmt.Fprintf(w, "param %s: %s (example: %s)\n", name, doc.Text, *doc.Example)
			continue
		}
		fmt.Fprintf(w, "param %s: %s\n", name, doc.Text)
	}
	if res.Returns != nil {
		fmt.Fprintf(w, "returns: %s\n", res.Returns.Text)
	}
}
