package extractor

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"odatadoc/internal/ir"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "csharp", "cs", "c#":
		langExt = &CSharpExtractor{}
		lang = "csharp"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

// ExtractFromFile parses a single source file and extracts its operations.
func (e *Extractor) ExtractFromFile(filepath string) ([]*ir.Operation, error) {
	sourceCode, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filepath, err)
	}
	return e.ExtractFromSource(filepath, sourceCode)
}

// ExtractFromSource extracts operations from source already in memory.
// filepath is only recorded on the operations.
func (e *Extractor) ExtractFromSource(filepath string, sourceCode []byte) ([]*ir.Operation, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", filepath, err)
	}
	defer tree.Close()

	namespace := e.detectNamespace(tree.RootNode(), sourceCode)

	query, err := sitter.NewQuery([]byte(e.langExtractor.GetQuery()), e.langExtractor.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var ops []*ir.Operation
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captureName := query.CaptureNameForId(c.Index)
			op := e.langExtractor.ExtractUnit(captureName, c.Node, sourceCode, filepath, namespace)
			if op != nil {
				ops = append(ops, op)
			}
		}
	}

	return ops, nil
}

// detectNamespace finds a file-scoped namespace. Block namespaces are
// resolved per declaration by the language extractor.
func (e *Extractor) detectNamespace(root *sitter.Node, sourceCode []byte) string {
	if e.langName != "csharp" {
		return ""
	}
	nsQuery, err := sitter.NewQuery([]byte(`(file_scoped_namespace_declaration name: (_) @ns)`), e.langExtractor.GetLanguage())
	if err != nil {
		return ""
	}
	defer nsQuery.Close()
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(nsQuery, root)
	if m, ok := qc.NextMatch(); ok && len(m.Captures) > 0 {
		return m.Captures[0].Node.Content(sourceCode)
	}
	return ""
}
