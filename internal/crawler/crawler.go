package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"odatadoc/internal/extractor"
	"odatadoc/internal/git"
	"odatadoc/internal/ir"
)

const sourceExt = ".cs"

// srcDir separates the repository name from the repository-relative path.
const srcDir = "src"

// Crawler scans a directory for C# sources.
type Crawler struct {
	extractor *extractor.Extractor
	ignored   []string
	logger    *log.Logger

	projects map[string]*ir.Project
}

// NewCrawler creates a new crawler instance. ignored adds directory names to
// the built-in skip list; a nil logger means log.Default().
func NewCrawler(ext *extractor.Extractor, logger *log.Logger, ignored ...string) *Crawler {
	if logger == nil {
		logger = log.Default()
	}
	return &Crawler{
		extractor: ext,
		ignored:   append([]string{"obj", "bin", "lut", ".git", ".vs"}, ignored...),
		logger:    logger,
		projects:  make(map[string]*ir.Project),
	}
}

// ScanProject walks root, a .cs file or a directory, and streams the
// operations it finds to onOp. Files that fail to parse are logged and
// skipped.
func (c *Crawler) ScanProject(ctx context.Context, root string, onOp func(*ir.Operation)) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("unknown file or directory %s: %w", root, err)
	}
	if !info.IsDir() {
		if filepath.Ext(root) != sourceExt {
			return fmt.Errorf("only C# files (*%s) are supported: %s", sourceExt, root)
		}
		scope := c.newScope(ctx, filepath.Dir(root))
		return c.scanFile(scope, root, onOp)
	}

	scope := c.newScope(ctx, root)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Skip ignored directories
		if d.IsDir() {
			if path != root && c.isIgnored(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), sourceExt) {
			return nil
		}
		return c.scanFile(scope, path, onOp)
	})
}

// ScanFiles extracts operations from the given files only. Paths are
// resolved against root; missing files and non-C# files are skipped.
func (c *Crawler) ScanFiles(ctx context.Context, root string, files []string, onOp func(*ir.Operation)) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	scope := c.newScope(ctx, root)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if !strings.EqualFold(filepath.Ext(path), sourceExt) {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			c.logger.Debug("skipping missing file", "file", path)
			continue
		}
		if err := c.scanFile(scope, path, onOp); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if strings.EqualFold(name, ign) {
			return true
		}
	}
	return false
}

// scope carries what is shared by every file of one scan.
type scope struct {
	root       string
	repository string // used when a path has no src segment
}

func (c *Crawler) newScope(ctx context.Context, root string) scope {
	c.projects = make(map[string]*ir.Project)
	repo := filepath.Base(root)
	if top, err := git.TopLevel(ctx, root); err == nil {
		repo = filepath.Base(top)
	}
	return scope{root: root, repository: repo}
}

func (c *Crawler) scanFile(s scope, path string, onOp func(*ir.Operation)) error {
	ops, err := c.extractor.ExtractFromFile(path)
	if err != nil {
		c.logger.Warn("extraction failed", "file", path, "error", err)
		return nil
	}
	if len(ops) == 0 {
		return nil
	}
	c.logger.Debug("operations found", "file", path, "count", len(ops))

	project := c.projectFor(filepath.Dir(path), s.root)
	repo, rel := Locate(path, s.root)
	if repo == "" {
		repo = s.repository
	}
	for _, op := range ops {
		op.Project = project
		op.Repository = repo
		op.FileRelative = rel
		onOp(op)
	}
	return nil
}

// projectFor returns the project of the nearest directory at or above dir,
// not leaving root, that holds a project file.
func (c *Crawler) projectFor(dir, root string) *ir.Project {
	if p, ok := c.projects[dir]; ok {
		return p
	}

	var p *ir.Project
	matches, _ := filepath.Glob(filepath.Join(dir, "*"+extractor.ProjectExt))
	if len(matches) > 0 {
		sort.Strings(matches)
		var err error
		p, err = extractor.LoadProject(matches[0])
		if err != nil {
			c.logger.Warn("unknown project", "file", matches[0], "error", err)
		}
	} else if parent := filepath.Dir(dir); dir != root && parent != dir && withinRoot(parent, root) {
		p = c.projectFor(parent, root)
	}

	c.projects[dir] = p
	return p
}

func withinRoot(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Locate splits path at its first src segment at or below root: the segment
// before it names the repository and the rest is the repository-relative
// file. Without a src segment repository is empty and the file is relative
// to root. The relative path always uses forward slashes.
func Locate(path, root string) (repository, rel string) {
	segs := strings.Split(filepath.ToSlash(path), "/")
	start := len(strings.Split(filepath.ToSlash(root), "/")) - 1
	if start < 1 {
		start = 1
	}
	for i := start; i < len(segs)-1; i++ {
		if strings.EqualFold(segs[i], srcDir) {
			return segs[i-1], strings.Join(segs[i+1:], "/")
		}
	}
	if r, err := filepath.Rel(root, path); err == nil && r != "." {
		return "", filepath.ToSlash(r)
	}
	return "", filepath.Base(path)
}
