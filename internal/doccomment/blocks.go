package doccomment

import "strings"

const blockBreak = lineBreak + lineBreak

// rewriteBlocks drops suppressed content, then flattens paragraphs (anywhere)
// and the top-level summary and remarks into blank-line separated text.
func rewriteBlocks(root *Element) {
	rewrite(root, ofKind(KindNoDoc), func(*Element) (Node, bool) {
		return nil, true
	})
	rewrite(root, ofKind(KindPara), flattenBlock)
	for _, kind := range []Kind{KindSummary, KindRemarks} {
		for i, c := range root.Children {
			if el, ok := c.(*Element); ok && el.Kind == kind {
				root.Children[i], _ = flattenBlock(el)
			}
		}
	}
}

func flattenBlock(e *Element) (Node, bool) {
	return &Text{Content: blockBreak + escapeText(e.InnerText()) + blockBreak}, true
}

// appendExamples moves the top-level examples to a trailing section.
func appendExamples(root *Element) {
	examples := childrenOf(root, KindExample)
	if len(examples) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(lineBreak + heading("Example", len(examples)) + lineBreak)
	for _, el := range examples {
		sb.WriteString(lineBreak + escapeText(el.InnerText()) + lineBreak)
		removeChild(root, el)
	}
	root.Children = append(root.Children, &Text{Content: sb.String()})
}

// appendExceptions moves the top-level exceptions carrying a cref to a
// trailing bullet list. The heading is pluralized over every top-level
// exception, including the ones left in place for lacking a cref.
func appendExceptions(root *Element) {
	exceptions := childrenOf(root, KindException)

	var sb strings.Builder
	for _, el := range exceptions {
		cref, ok := el.Attr("cref")
		if !ok {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString(lineBreak + heading("Exception", len(exceptions)) + lineBreak)
		}
		sb.WriteString("- " + escapeText(cref) + ": " + escapeText(el.InnerText()) + lineBreak)
		removeChild(root, el)
	}
	if sb.Len() == 0 {
		return
	}
	root.Children = append(root.Children, &Text{Content: sb.String()})
}

func heading(title string, count int) string {
	if count > 1 {
		title += "s"
	}
	return "### " + title
}
