package doccomment

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// lineMarker prefixes every line of a documentation comment in source.
const lineMarker = "///"

// lineBreak joins loaded lines and every line break the stages generate.
const lineBreak = "\n"

// MalformedMarkupError reports a documentation comment that is not a
// well-formed element tree.
type MalformedMarkupError struct {
	Line int // line of the comment body, 1-based; 0 when unknown
	Err  error
}

func (e *MalformedMarkupError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed documentation markup at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed documentation markup: %v", e.Err)
}

func (e *MalformedMarkupError) Unwrap() error { return e.Err }

// cleanLines strips the comment marker and the surrounding whitespace from
// every non-empty line of raw and joins them again.
func cleanLines(raw string) string {
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\r' || r == '\n' })
	for i, l := range lines {
		l = strings.TrimPrefix(strings.TrimSpace(l), lineMarker)
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, lineBreak)
}

// Load parses a raw documentation comment into a tree rooted at a synthetic
// document element. An empty comment yields a nil root and no error.
func Load(raw string) (*Element, error) {
	if raw == "" {
		return nil, nil
	}
	src := "<" + rootTag + ">" + cleanLines(raw) + "</" + rootTag + ">"
	return parse(src)
}

func parse(src string) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = true

	var (
		root  *Element
		stack []*Element
	)
	for {
		begin := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, &MalformedMarkupError{Err: errors.New("content after the document element")}
			}
			el := &Element{
				Tag:   t.Name.Local,
				Kind:  kindOf(t.Name.Local),
				Attrs: make(map[string]string, len(t.Attr)),
				open:  src[begin:dec.InputOffset()],
			}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				el.Kind = KindRoot
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Text{Content: escapeText(string(t))})
		case xml.Comment:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &Comment{Content: string(t)})
		}
	}

	if root == nil || len(stack) != 0 {
		return nil, &MalformedMarkupError{Err: io.ErrUnexpectedEOF}
	}
	return root, nil
}

func malformed(err error) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &MalformedMarkupError{Line: syntaxErr.Line, Err: err}
	}
	return &MalformedMarkupError{Err: err}
}
