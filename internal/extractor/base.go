package extractor

import (
	"errors"

	sitter "github.com/smacker/go-tree-sitter"

	"odatadoc/internal/ir"
)

// ErrUnsupportedLanguage is returned by NewExtractor for a language without
// a LanguageExtractor.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// LanguageExtractor defines the interface that each language parser must implement.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	GetQuery() string
	// ExtractUnit returns the operation declared by a captured node, or nil
	// when the node is not an operation. namespace is the file-level
	// namespace, if any.
	ExtractUnit(captureName string, node *sitter.Node, sourceCode []byte, filepath string, namespace string) *ir.Operation
}
