package doccomment

import "strings"

const fence = "```"

// rewriteLinks turns see and seealso references into emphasized text.
// References without a cref keep their markup.
func rewriteLinks(root *Element) {
	rewrite(root, ofKind(KindSeeAlso, KindSee), func(e *Element) (Node, bool) {
		cref, ok := e.Attr("cref")
		if !ok {
			return nil, false
		}
		return &Text{Content: "_" + escapeText(cref) + "_"}, true
	})
}

// rewriteCode turns inline code spans into backtick spans and code blocks
// into fenced blocks. Inline spans go first so that spans nested in a block
// end up as backticks inside the fence.
func rewriteCode(root *Element) {
	rewrite(root, ofKind(KindC), func(e *Element) (Node, bool) {
		return &Text{Content: "`" + e.InnerMarkup() + "`"}, true
	})
	rewrite(root, ofKind(KindCode), func(e *Element) (Node, bool) {
		lang, _ := e.Attr("lang")
		return &Text{Content: fenceBlock(e.InnerMarkup(), lang)}, true
	})
}

// fenceBlock wraps src in a fenced code block. Line breaks around src are
// only added where src does not already carry one.
func fenceBlock(src, lang string) string {
	src = strings.TrimRight(src, " \t")

	lead := lineBreak
	if strings.HasPrefix(src, "\r") || strings.HasPrefix(src, "\n") {
		lead = ""
	}
	trail := lineBreak
	if strings.HasSuffix(src, "\r") || strings.HasSuffix(src, "\n") {
		trail = ""
	}
	return fence + " " + lang + lead + src + trail + fence + lineBreak
}

// rewriteEmphasis turns value elements with content and paramref elements
// with a name into emphasized text.
func rewriteEmphasis(root *Element) {
	rewrite(root, ofKind(KindValue), func(e *Element) (Node, bool) {
		inner := e.InnerMarkup()
		if inner == "" {
			return nil, false
		}
		return &Text{Content: "_" + inner + "_"}, true
	})
	rewrite(root, ofKind(KindParamRef), func(e *Element) (Node, bool) {
		name, ok := e.Attr("name")
		if !ok {
			return nil, false
		}
		return &Text{Content: "_" + escapeText(name) + "_"}, true
	})
}
