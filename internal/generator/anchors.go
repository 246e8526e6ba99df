package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Anchor is the fragment a heading is reachable under: lowercase, spaces
// become dashes, anything but letters, digits, dashes and underscores is
// dropped.
func Anchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(heading) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// anchorIDs generates goldmark heading ids with Anchor so that rendered HTML
// and the anchor check agree with the links the writers emit. Repeated
// headings get -1, -2 ... suffixes.
type anchorIDs struct {
	used map[string]bool
}

func newAnchorIDs() *anchorIDs {
	return &anchorIDs{used: map[string]bool{}}
}

func (a *anchorIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	base := Anchor(string(value))
	if base == "" {
		base = "heading"
	}
	id := base
	for i := 1; a.used[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	a.used[id] = true
	return []byte(id)
}

func (a *anchorIDs) Put(value []byte) {
	a.used[string(value)] = true
}

// headingIDs returns the ids of every heading in a Markdown document.
func (g *Generator) headingIDs(src []byte) map[string]bool {
	pc := parser.NewContext(parser.WithIDs(newAnchorIDs()))
	doc := g.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	ids := map[string]bool{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.Heading); ok {
			if id, ok := n.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					ids[string(b)] = true
				}
			}
		}
		return ast.WalkContinue, nil
	})
	return ids
}

// links returns the destinations of every link in a Markdown document.
func (g *Generator) links(src []byte) []string {
	doc := g.md.Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			out = append(out, string(link.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}

// BrokenAnchor is an index link whose file or heading does not exist.
type BrokenAnchor struct {
	Link   string
	Reason string
}

// checkAnchors resolves every local link of index against the headings of
// the generated files.
func (g *Generator) checkAnchors(index []byte, files map[string][]byte) []BrokenAnchor {
	ids := make(map[string]map[string]bool, len(files))
	var broken []BrokenAnchor
	for _, dest := range g.links(index) {
		if strings.Contains(dest, "://") {
			continue
		}
		file, fragment, _ := strings.Cut(strings.TrimPrefix(dest, "./"), "#")
		src, ok := files[file]
		if !ok {
			broken = append(broken, BrokenAnchor{Link: dest, Reason: "missing file " + file})
			continue
		}
		if fragment == "" {
			continue
		}
		if ids[file] == nil {
			ids[file] = g.headingIDs(src)
		}
		if !ids[file][fragment] {
			broken = append(broken, BrokenAnchor{Link: dest, Reason: "missing heading #" + fragment})
		}
	}
	return broken
}

// htmlLinks points links between generated Markdown files at their HTML
// renderings.
type htmlLinks struct{}

func (htmlLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		link, ok := n.(*ast.Link)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if strings.Contains(dest, "://") {
			return ast.WalkContinue, nil
		}
		file, fragment, hasFragment := strings.Cut(dest, "#")
		if !strings.HasSuffix(file, ".md") {
			return ast.WalkContinue, nil
		}
		dest = strings.TrimSuffix(file, ".md") + ".html"
		if hasFragment {
			dest += "#" + fragment
		}
		link.Destination = []byte(dest)
		return ast.WalkContinue, nil
	})
}
