// Package doccomment turns XML documentation comments of C# members into
// Markdown fragments.
//
// A comment goes through a fixed sequence of rewrites on one element tree:
// category extraction, links, code, parameter binding, blocks, examples,
// exceptions and finally whitespace normalization of the serialized text.
// Every stage relies on the ones before it having flattened their elements,
// so the order is not configurable.
//
// Transform keeps no state between calls and is safe to run concurrently on
// different members.
package doccomment

// Member is what the engine needs to know about a documented member.
type Member struct {
	Comment    string   // raw comment text, markers included
	Parameters []string // declared parameter names, in order
	VoidReturn bool
}

// Result is the Markdown body of a comment plus the metadata harvested from it.
type Result struct {
	Category   Category                `json:"category"`
	Body       string                  `json:"body"`
	Parameters map[string]ParameterDoc `json:"parameters,omitempty"`
	Returns    *ReturnDoc              `json:"returns,omitempty"`
}

// Transform runs the documentation pipeline on one member. The returned error
// is a *MalformedMarkupError when the comment cannot be parsed.
func Transform(m Member) (*Result, error) {
	res := &Result{
		Category:   NewCategory(""),
		Parameters: make(map[string]ParameterDoc),
	}

	root, err := Load(m.Comment)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return res, nil
	}

	res.Category = extractCategory(root)
	rewriteLinks(root)
	rewriteCode(root)
	bindParameters(root, m, res)
	rewriteBlocks(root)
	appendExamples(root)
	appendExceptions(root)

	res.Body = NormalizeWhitespace(root.InnerMarkup())
	return res, nil
}
