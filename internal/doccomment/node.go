package doccomment

import (
	"sort"
	"strings"
)

// Kind identifies the documentation element an Element stands for.
// It is resolved once from the tag name when the comment is parsed.
type Kind int

const (
	KindUnknown Kind = iota
	KindRoot
	KindCategory
	KindSee
	KindSeeAlso
	KindC
	KindCode
	KindValue
	KindParamRef
	KindParam
	KindReturns
	KindPara
	KindSummary
	KindRemarks
	KindNoDoc
	KindExample
	KindException
)

// CategoryTag is the custom element naming the documentation category of a member.
const CategoryTag = "snCategory"

// rootTag wraps the loaded lines into a single document element.
const rootTag = "doc"

var kindByTag = map[string]Kind{
	CategoryTag: KindCategory,
	"see":       KindSee,
	"seealso":   KindSeeAlso,
	"c":         KindC,
	"code":      KindCode,
	"value":     KindValue,
	"paramref":  KindParamRef,
	"param":     KindParam,
	"returns":   KindReturns,
	"para":      KindPara,
	"summary":   KindSummary,
	"remarks":   KindRemarks,
	"nodoc":     KindNoDoc,
	"example":   KindExample,
	"exception": KindException,
}

func kindOf(tag string) Kind {
	if k, ok := kindByTag[tag]; ok {
		return k
	}
	return KindUnknown
}

// Node is an *Element, a *Text or a *Comment.
type Node interface {
	node()
}

// Element is a markup element of the comment tree.
type Element struct {
	Kind     Kind
	Tag      string
	Attrs    map[string]string
	Children []Node

	// open is the start tag exactly as it appeared in the source,
	// so untouched elements serialize back verbatim.
	open string
}

// Text is a run of character data. Content is kept in markup form, with
// &, < and > escaped, whether it was read from the comment or produced by a
// rewrite.
type Text struct {
	Content string
}

// Comment is a markup comment. It is serialized but has no text.
type Comment struct {
	Content string
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Comment) node() {}

var (
	textEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	textUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// escapeText puts plain text into the markup form of Text.Content.
func escapeText(s string) string { return textEscaper.Replace(s) }

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// InnerText concatenates all character data below e, tags and comments
// stripped and escapes resolved.
func (e *Element) InnerText() string {
	var sb strings.Builder
	writeText(&sb, e)
	return textUnescaper.Replace(sb.String())
}

func writeText(sb *strings.Builder, e *Element) {
	for _, c := range e.Children {
		switch n := c.(type) {
		case *Text:
			sb.WriteString(n.Content)
		case *Element:
			writeText(sb, n)
		}
	}
}

// InnerMarkup serializes the children of e, keeping the markup of elements
// that no stage has rewritten.
func (e *Element) InnerMarkup() string {
	var sb strings.Builder
	for _, c := range e.Children {
		writeNode(&sb, c)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Text:
		sb.WriteString(n.Content)
	case *Comment:
		sb.WriteString("<!--" + n.Content + "-->")
	case *Element:
		open := n.open
		if open == "" {
			open = n.startTag()
		}
		if len(n.Children) == 0 && strings.HasSuffix(open, "/>") {
			sb.WriteString(open)
			return
		}
		sb.WriteString(open)
		for _, c := range n.Children {
			writeNode(sb, c)
		}
		sb.WriteString("</" + n.Tag + ">")
	}
}

func (e *Element) startTag() string {
	var sb strings.Builder
	sb.WriteString("<" + e.Tag)
	names := make([]string, 0, len(e.Attrs))
	for name := range e.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(" " + name + `="` + attrEscaper.Replace(e.Attrs[name]) + `"`)
	}
	sb.WriteString(">")
	return sb.String()
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `"`, "&quot;")

// rewrite walks the subtree below e in document order. Every element matching
// match is handed to fn; when fn reports ok the element is replaced by the
// returned node (removed when the node is nil) and its subtree is not visited.
// Elements fn declines are descended into.
func rewrite(e *Element, match func(*Element) bool, fn func(*Element) (Node, bool)) {
	out := e.Children[:0]
	for _, c := range e.Children {
		el, isElem := c.(*Element)
		if !isElem {
			out = append(out, c)
			continue
		}
		if match(el) {
			if repl, ok := fn(el); ok {
				if repl != nil {
					out = append(out, repl)
				}
				continue
			}
		}
		rewrite(el, match, fn)
		out = append(out, el)
	}
	e.Children = out
}

// removeFirst detaches the first element below e, in document order, that
// satisfies match.
func removeFirst(e *Element, match func(*Element) bool) *Element {
	for i, c := range e.Children {
		el, ok := c.(*Element)
		if !ok {
			continue
		}
		if match(el) {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			return el
		}
		if found := removeFirst(el, match); found != nil {
			return found
		}
	}
	return nil
}

// childrenOf returns the direct child elements of e with the given kind.
func childrenOf(e *Element, kind Kind) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}

// removeChild detaches target from the direct children of e.
func removeChild(e *Element, target *Element) {
	for i, c := range e.Children {
		if c == Node(target) {
			e.Children = append(e.Children[:i], e.Children[i+1:]...)
			return
		}
	}
}

func ofKind(kinds ...Kind) func(*Element) bool {
	return func(e *Element) bool {
		for _, k := range kinds {
			if e.Kind == k {
				return true
			}
		}
		return false
	}
}
