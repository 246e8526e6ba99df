package doccomment

// ParameterDoc is the documentation bound to one parameter of a member.
type ParameterDoc struct {
	Name    string  `json:"name"`
	Text    string  `json:"text"`
	Example *string `json:"example,omitempty"`
}

// ReturnDoc is the documentation bound to the return value of a member.
type ReturnDoc struct {
	Text string `json:"text"`
}

// bindParameters removes the param and returns elements of the document and
// collects their content for the parameters the member actually declares.
func bindParameters(root *Element, m Member, res *Result) {
	rewriteEmphasis(root)

	declared := make(map[string]bool, len(m.Parameters))
	for _, name := range m.Parameters {
		declared[name] = true
	}

	for _, el := range childrenOf(root, KindParam) {
		name, ok := el.Attr("name")
		if !ok {
			continue
		}
		removeChild(root, el)
		if !declared[name] {
			continue
		}

		doc := res.Parameters[name]
		doc.Name = name
		doc.Text = el.InnerMarkup()
		if example, ok := el.Attr("example"); ok {
			doc.Example = &example
		}
		res.Parameters[name] = doc
	}

	returns := childrenOf(root, KindReturns)
	if len(returns) == 0 {
		return
	}
	removeChild(root, returns[0])
	if !m.VoidReturn {
		res.Returns = &ReturnDoc{Text: returns[0].InnerMarkup()}
	}
}
