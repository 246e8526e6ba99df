package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"odatadoc/internal/analysis"
	"odatadoc/internal/config"
	"odatadoc/internal/crawler"
	"odatadoc/internal/doccomment"
	"odatadoc/internal/extractor"
	"odatadoc/internal/generator"
	"odatadoc/internal/git"
	"odatadoc/internal/ir"
	"odatadoc/internal/storage"
)

// Pipeline runs the scan and generate stages with one configuration.
type Pipeline struct {
	cfg     *config.Config
	crawler *crawler.Crawler
	logger  *log.Logger
}

// MalformedDoc is an operation dropped because its documentation comment
// could not be parsed.
type MalformedDoc struct {
	File        string
	Line        int // line of the method in File
	CommentLine int // line inside the comment, 0 when unknown
	Method      string
	Err         error
}

// ScanResult holds the operations that made it through normalisation.
type ScanResult struct {
	Operations []*ir.Operation
	Found      int
	Invalid    int // dropped for their signature
	Malformed  []MalformedDoc
}

func (r *ScanResult) counters() map[string]float64 {
	if r == nil {
		return nil
	}
	return map[string]float64{
		"operations_found":   float64(r.Found),
		"operations_valid":   float64(len(r.Operations)),
		"operations_invalid": float64(r.Invalid),
		"malformed_docs":     float64(len(r.Malformed)),
	}
}

func New(cfg *config.Config, logger *log.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	ext, err := extractor.NewExtractor("csharp")
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg,
		crawler: crawler.NewCrawler(ext, logger, cfg.Scan.Ignored...),
		logger:  logger,
	}, nil
}

// Scan crawls input and normalises every operation found.
func (p *Pipeline) Scan(ctx context.Context, input string) (*ScanResult, error) {
	var ops []*ir.Operation
	if err := p.crawler.ScanProject(ctx, input, func(op *ir.Operation) {
		ops = append(ops, op)
	}); err != nil {
		return nil, fmt.Errorf("scan %s: %w", input, err)
	}
	p.logger.Debug("crawl finished", "input", input, "operations", len(ops))
	return p.normalize(ctx, ops)
}

// normalize runs Normalize on ops in parallel. Operations with an invalid
// signature or a malformed comment are left out of the result.
func (p *Pipeline) normalize(ctx context.Context, ops []*ir.Operation) (*ScanResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Scan.Workers)

	errs := make([]error, len(ops))
	for i, op := range ops {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = op.Normalize()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &ScanResult{Found: len(ops)}
	for i, op := range ops {
		if err := errs[i]; err != nil {
			p.logger.Warn("dropping operation", "file", op.File, "method", op.MethodName, "error", err)
			m := MalformedDoc{File: op.File, Line: op.Line, Method: op.MethodName, Err: err}
			var markupErr *doccomment.MalformedMarkupError
			if errors.As(err, &markupErr) {
				m.CommentLine = markupErr.Line
			}
			res.Malformed = append(res.Malformed, m)
			continue
		}
		if !op.IsValid {
			p.logger.Debug("skipping invalid operation", "file", op.File, "method", op.MethodName)
			res.Invalid++
			continue
		}
		res.Operations = append(res.Operations, op)
	}
	return res, nil
}

// IncrementalResult is the outcome of a rescan of changed files.
type IncrementalResult struct {
	*ScanResult
	Files  []string
	Impact *analysis.ImpactReport
}

// Incremental rescans the C# files under input that changed since the git
// ref and replaces their operations in store. Deleted files lose their
// operations.
func (p *Pipeline) Incremental(ctx context.Context, store storage.OperationStore, input, since string) (*IncrementalResult, error) {
	root, err := filepath.Abs(input)
	if err != nil {
		return nil, err
	}
	dir := root
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("unknown file or directory %s: %w", root, err)
	} else if !info.IsDir() {
		dir = filepath.Dir(root)
	}

	top, err := git.TopLevel(ctx, dir)
	if err != nil {
		return nil, err
	}
	changes, err := git.GetChangedFiles(ctx, top, since)
	if err != nil {
		return nil, err
	}

	changes, err = changedSources(top, dir, changes)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		p.logger.Info("no changed C# files", "since", since)
		return &IncrementalResult{ScanResult: &ScanResult{}, Impact: analysis.AnalyzeImpact(nil, nil, nil)}, nil
	}
	files := make([]string, len(changes))
	for i, c := range changes {
		files[i] = c.Path
	}

	before, err := store.LoadOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored operations: %w", err)
	}

	var ops []*ir.Operation
	if err := p.crawler.ScanFiles(ctx, dir, files, func(op *ir.Operation) {
		ops = append(ops, op)
	}); err != nil {
		return nil, fmt.Errorf("scan changed files: %w", err)
	}
	res, err := p.normalize(ctx, ops)
	if err != nil {
		return nil, err
	}
	if err := store.ReplaceFiles(ctx, files, res.Operations); err != nil {
		return nil, fmt.Errorf("store changed files: %w", err)
	}

	impact := analysis.AnalyzeImpact(changes, before, res.Operations)
	for _, op := range impact.Edited {
		p.logger.Debug("operation changed", "file", op.File, "operation", op.OperationName)
	}
	for _, op := range impact.Removed {
		p.logger.Debug("operation removed", "file", op.File, "operation", op.OperationName)
	}
	p.logger.Info("incremental scan finished",
		"files", len(files),
		"edited", len(impact.Edited),
		"added", len(impact.Added),
		"removed", len(impact.Removed))
	return &IncrementalResult{ScanResult: res, Files: files, Impact: impact}, nil
}

// changedSources keeps the .cs files of changes under dir and makes their
// paths absolute. git reports paths relative to top, which may be dir with
// symlinks resolved.
func changedSources(top, dir string, changes []git.ChangedFile) ([]git.ChangedFile, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, err
	}
	if t, err := filepath.EvalSymlinks(top); err == nil {
		top = t
	}

	var out []git.ChangedFile
	for _, c := range changes {
		if !strings.EqualFold(filepath.Ext(c.Path), ".cs") {
			continue
		}
		rel, err := filepath.Rel(resolved, filepath.Join(top, filepath.FromSlash(c.Path)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		c.Path = filepath.Join(dir, rel)
		out = append(out, c)
	}
	return out, nil
}

// Run scans input and writes the documentation to outDir without touching
// any store.
func (p *Pipeline) Run(ctx context.Context, input, outDir string) error {
	report := generator.NewPipelineReport(p.cfg.Render.Mode, outDir)

	stage := report.BeginStage("scan")
	res, err := p.Scan(ctx, input)
	report.EndStage(stage, "ok", res.counters(), nil, err)
	if err != nil {
		report.InputPath = input
		if saveErr := report.Save(filepath.Join(outDir, generator.ReportFile)); saveErr != nil {
			p.logger.Warn("failed to write pipeline report", "error", saveErr)
		}
		return err
	}
	return p.generate(ctx, res, input, outDir, report)
}

// Generate writes the documentation of an earlier scan to outDir.
func (p *Pipeline) Generate(ctx context.Context, res *ScanResult, input, outDir string) error {
	return p.generate(ctx, res, input, outDir, generator.NewPipelineReport(p.cfg.Render.Mode, outDir))
}

func (p *Pipeline) generate(ctx context.Context, res *ScanResult, input, outDir string, report *generator.PipelineReport) error {
	gen, err := generator.New(generator.Options{
		Mode:            p.cfg.Render.Mode,
		HideDescription: p.cfg.Render.HideDescription,
		DocsAlert:       p.cfg.Render.DocsAlert,
		HTML:            p.cfg.Render.HTML,
	}, p.logger)
	if err != nil {
		return err
	}

	for _, m := range res.Malformed {
		report.AddSignal("malformed_doc", "scan", "warning", fmt.Sprintf("%s:%d %s: %v", m.File, m.Line, m.Method, m.Err), 1)
	}
	if res.Invalid > 0 {
		report.AddSignal("invalid_signature", "scan", "info",
			fmt.Sprintf("%d operation(s) are not public static or do not take a content first.", res.Invalid), float64(res.Invalid))
	}
	return gen.Generate(ctx, res.Operations, input, outDir, report)
}
