package generator

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"odatadoc/internal/ir"
)

// IndexFile lists every operation and links into the category files.
const IndexFile = "index.md"

const (
	groupCore      = ".NET Core Operations"
	groupFramework = ".NET Framework Operations"
	groupTests     = "Test Operations"
)

// Generator writes the Markdown reference of a set of operations: one index
// file plus one file per category.
type Generator struct {
	opts   Options
	writer Writer
	logger *log.Logger

	md   goldmark.Markdown // anchor checks
	html goldmark.Markdown // HTML output
}

func New(opts Options, logger *log.Logger) (*Generator, error) {
	w, err := NewWriter(opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		opts:   opts,
		writer: w,
		logger: logger,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		html: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(util.Prioritized(htmlLinks{}, 100)),
			),
		),
	}, nil
}

// Generate renders ops into outDir and records the run in report, which is
// saved as ReportFile in outDir even when generation fails.
func (g *Generator) Generate(ctx context.Context, ops []*ir.Operation, input, outDir string, report *PipelineReport) (retErr error) {
	if report == nil {
		report = NewPipelineReport(g.opts.Mode, outDir)
	}
	report.InputPath = input
	defer func() {
		if retErr != nil {
			report.AddSignal("generate_failed", "generator", "critical", "Documentation generation failed.", 1)
		}
		if err := report.Save(filepath.Join(outDir, ReportFile)); err != nil {
			g.logger.Warn("failed to write pipeline report", "error", err)
		}
	}()

	stage := report.BeginStage("init_output_dir")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		report.EndStage(stage, "error", nil, nil, err)
		return fmt.Errorf("create output directory: %w", err)
	}
	report.EndStage(stage, "ok", nil, nil, nil)

	stage = report.BeginStage("render_categories")
	files, err := g.renderCategories(ctx, ops, report)
	report.EndStage(stage, "ok", map[string]float64{
		"category_files": float64(len(files)),
		"operations":     float64(len(ops)),
	}, nil, err)
	if err != nil {
		return err
	}

	stage = report.BeginStage("render_index")
	index := g.renderIndex(ops, input)
	report.EndStage(stage, "ok", nil, nil, nil)

	stage = report.BeginStage("check_anchors")
	broken := g.checkAnchors(index, files)
	for _, b := range broken {
		g.logger.Warn("broken anchor", "link", b.Link, "reason", b.Reason)
		report.AddSignal("broken_anchor", "check_anchors", "warning", fmt.Sprintf("%s: %s", b.Link, b.Reason), 1)
	}
	report.EndStage(stage, "ok", map[string]float64{"broken_anchors": float64(len(broken))}, nil, nil)

	files[IndexFile] = index

	stage = report.BeginStage("write_files")
	written, err := g.writeFiles(outDir, files)
	report.EndStage(stage, "ok", map[string]float64{"files_written": float64(written)}, nil, err)
	if err != nil {
		return err
	}

	missing := 0
	for _, op := range ops {
		if op.Documentation == "" {
			missing++
		}
	}
	if missing > 0 {
		report.AddSignal("missing_documentation", "render_categories", "warning",
			fmt.Sprintf("%d operation(s) have no documentation.", missing), float64(missing))
	}

	g.logger.Info("documentation written", "dir", outDir, "operations", len(ops), "files", written)
	return nil
}

func (g *Generator) renderCategories(ctx context.Context, ops []*ir.Operation, report *PipelineReport) (map[string][]byte, error) {
	byFile := map[string][]*ir.Operation{}
	for _, op := range ops {
		name := CategoryFile(op)
		byFile[name] = append(byFile[name], op)
	}

	names := make([]string, 0, len(byFile))
	for name := range byFile {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make(map[string][]byte, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group := byFile[name]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].OperationName != group[j].OperationName {
				return group[i].OperationName < group[j].OperationName
			}
			return group[i].ID() < group[j].ID()
		})

		var buf bytes.Buffer
		fmt.Fprintf(&buf, "# %s\n\n", categoryOrDash(group[0]))
		missing := 0
		for _, op := range group {
			g.writer.WriteOperation(&buf, op)
			if op.Documentation == "" {
				missing++
			}
		}
		files[name] = buf.Bytes()

		report.AddCategoryMetric(CategoryMetric{
			Category:   group[0].Category,
			File:       name,
			Operations: len(group),
			MissingDoc: missing,
		})
		g.logger.Debug("category rendered", "file", name, "operations", len(group))
	}
	return files, nil
}

func (g *Generator) renderIndex(ops []*ir.Operation, input string) []byte {
	groups := map[string][]*ir.Operation{}
	for _, op := range ops {
		group := operationGroup(op)
		groups[group] = append(groups[group], op)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Path: %s, operations: %d\n\n", input, len(ops))
	for _, title := range []string{groupCore, groupFramework, groupTests} {
		g.writer.WriteTable(&buf, title, groups[title])
	}
	return buf.Bytes()
}

// operationGroup decides the index table of op. Sources under a Tests
// directory or in a test project are tests; sources under Services belong to
// the .NET Framework code base.
func operationGroup(op *ir.Operation) string {
	rel := "/" + strings.TrimPrefix(filepath.ToSlash(op.FileRelative), "/")
	switch {
	case strings.Contains(rel, "/Tests/"), op.Project != nil && op.Project.IsTestProject:
		return groupTests
	case strings.Contains(rel, "/Services/"):
		return groupFramework
	}
	return groupCore
}

func (g *Generator) writeFiles(outDir string, files map[string][]byte) (int, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		src := files[name]
		if err := os.WriteFile(filepath.Join(outDir, name), src, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written++

		if !g.opts.HTML {
			continue
		}
		page, err := g.renderHTML(strings.TrimSuffix(name, ".md"), src)
		if err != nil {
			return written, fmt.Errorf("render %s: %w", name, err)
		}
		htmlName := strings.TrimSuffix(name, ".md") + ".html"
		if err := os.WriteFile(filepath.Join(outDir, htmlName), page, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", htmlName, err)
		}
		written++
	}
	return written, nil
}

func (g *Generator) renderHTML(title string, src []byte) ([]byte, error) {
	var body bytes.Buffer
	pc := parser.NewContext(parser.WithIDs(newAnchorIDs()))
	if err := g.html.Convert(src, &body, parser.WithContext(pc)); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
