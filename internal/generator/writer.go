package generator

import (
	"fmt"
	"io"
	"path"
	"strings"

	"odatadoc/internal/ir"
)

const missingDocumentation = "MISSING DOCUMENTATION"

// Options controls what the writers emit.
type Options struct {
	Mode            string // "backend" or "frontend"
	HideDescription bool
	DocsAlert       bool
	HTML            bool
}

// Writer renders operations as Markdown. WriteTable writes one summary table
// of the index file, WriteOperation one section of a category file.
type Writer interface {
	WriteTable(w io.Writer, title string, ops []*ir.Operation)
	WriteOperation(w io.Writer, op *ir.Operation)
}

// NewWriter returns the writer for opts.Mode.
func NewWriter(opts Options) (Writer, error) {
	switch opts.Mode {
	case "", "backend":
		return &BackendWriter{opts: opts}, nil
	case "frontend":
		return &FrontendWriter{opts: opts}, nil
	}
	return nil, fmt.Errorf("unknown render mode %q", opts.Mode)
}

// CategoryFile is the name of the file that holds the operations of op's
// category. The slug comes from comment text, so path separators and leading
// dots are dropped to keep the file inside the output directory.
func CategoryFile(op *ir.Operation) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, op.CategorySlug)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "uncategorized"
	}
	return name + ".md"
}

// operationLink points from the index to the operation's section.
func operationLink(op *ir.Operation) string {
	return fmt.Sprintf("[%s](./%s#%s)", op.OperationName, strings.ToLower(CategoryFile(op)), Anchor(op.OperationName))
}

func operationType(op *ir.Operation) string {
	if op.IsAction {
		return "Action"
	}
	return "Function"
}

func docMark(op *ir.Operation) string {
	if op.Documentation == "" {
		return ""
	}
	return "ok"
}

func categoryOrDash(op *ir.Operation) string {
	if op.Category == "" {
		return "-"
	}
	return op.Category
}

// splitRelative returns the file name and directory of a forward slash path.
func splitRelative(rel string) (file, dir string) {
	file = path.Base(rel)
	dir = path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	return file, dir
}

// writeAttribute writes one requirement line with prefixes removed from
// every value. Empty lists write nothing.
func writeAttribute(w io.Writer, name string, values []string, prefixes ...string) {
	if len(values) == 0 {
		return
	}
	out := make([]string, len(values))
	for i, v := range values {
		for _, prefix := range prefixes {
			v = strings.ReplaceAll(v, prefix, "")
		}
		out[i] = v
	}
	fmt.Fprintf(w, "- **%s**: %s\n", name, strings.Join(out, ", "))
}

func hasRequirements(op *ir.Operation) bool {
	return len(op.ContentTypes)+len(op.AllowedRoles)+len(op.RequiredPermissions)+
		len(op.RequiredPolicies)+len(op.Scenarios) > 0
}

// writeHead writes the bullet list under an operation heading. The last
// bullet is closed with a period.
func writeHead(w io.Writer, head []string) {
	fmt.Fprint(w, strings.Join(head, "\n"))
	fmt.Fprintln(w, ".")
}

func writeDocumentation(w io.Writer, op *ir.Operation, alert bool) {
	switch {
	case op.Documentation != "":
		fmt.Fprintln(w, op.Documentation)
	case alert:
		fmt.Fprintln(w, missingDocumentation)
	}
}

func writeParameter(w io.Writer, p ir.Parameter) {
	optional := ""
	if p.IsOptional {
		optional = " optional"
	}
	fmt.Fprintf(w, "- **%s** (%s)%s: %s\n", p.Name, ir.FormatType(p.Type), optional, p.Documentation)
}
