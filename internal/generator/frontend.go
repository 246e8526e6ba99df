package generator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"odatadoc/internal/ir"
)

const (
	contentTypePrefix = "N.CT."
	rolePrefix        = "N.R."
	portalRoot        = contentTypePrefix + "PortalRoot"
	anyContentTypes   = "GenericContent, ContentType"
)

// FrontendWriter documents operations for client developers: how to call
// them over OData and with which parameters.
type FrontendWriter struct {
	opts Options
}

func (f *FrontendWriter) WriteTable(w io.Writer, title string, ops []*ir.Operation) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(w, "## %s (%d)\n", title, len(ops))

	ordered := append([]*ir.Operation(nil), ops...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Category != ordered[j].Category {
			return ordered[i].Category < ordered[j].Category
		}
		return ordered[i].OperationName < ordered[j].OperationName
	})

	if f.opts.DocsAlert {
		fmt.Fprintln(w, "| Category | Operation | Doc | Type |")
		fmt.Fprintln(w, "| -------- | --------- | --- | ---- |")
	} else {
		fmt.Fprintln(w, "| Category | Operation | Type |")
		fmt.Fprintln(w, "| -------- | --------- | ---- |")
	}
	for _, op := range ordered {
		if f.opts.DocsAlert {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", categoryOrDash(op), operationLink(op), docMark(op), operationType(op))
			continue
		}
		fmt.Fprintf(w, "| %s | %s | %s |\n", categoryOrDash(op), operationLink(op), operationType(op))
	}
	fmt.Fprintln(w)
}

func (f *FrontendWriter) WriteOperation(w io.Writer, op *ir.Operation) {
	fmt.Fprintf(w, "## %s\n", op.OperationName)

	method := "- Method: **GET** or optionally POST"
	if op.IsAction {
		method = "- Method: **POST**"
	}
	head := []string{method}
	if op.Icon != "" {
		head = append(head, fmt.Sprintf("- Icon: **%s**", op.Icon))
	}
	writeHead(w, head)

	if op.Description != "" && !f.opts.HideDescription {
		fmt.Fprintln(w)
		fmt.Fprintln(w, op.Description)
	}

	fmt.Fprintln(w)
	writeDocumentation(w, op, f.opts.DocsAlert)
	fmt.Fprintln(w)

	f.writeRequestExample(w, op)

	fmt.Fprintln(w, "### Parameters:")
	prms := requestParameters(op)
	if len(prms) == 0 {
		fmt.Fprintln(w, "There are no parameters.")
	}
	for _, p := range prms {
		writeParameter(w, p)
	}

	if op.ReturnValue.Type != "void" && op.ReturnValue.Documentation != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Return value:")
		fmt.Fprintf(w, "%s (Type: %s).\n", op.ReturnValue.Documentation, ir.FormatType(op.ReturnValue.Type))
	}

	fmt.Fprintln(w)
	// content types are covered by the request example
	if len(op.AllowedRoles)+len(op.RequiredPermissions)+len(op.RequiredPolicies)+len(op.Scenarios) > 0 {
		fmt.Fprintln(w, "### Requirements:")
		writeAttribute(w, "AllowedRoles", op.AllowedRoles, contentTypePrefix, rolePrefix)
		writeAttribute(w, "RequiredPermissions", op.RequiredPermissions, contentTypePrefix, rolePrefix)
		writeAttribute(w, "RequiredPolicies", op.RequiredPolicies, contentTypePrefix, rolePrefix)
		writeAttribute(w, "Scenarios", op.Scenarios, contentTypePrefix, rolePrefix)
	}

	fmt.Fprintln(w)
}

// requestParameters are the parameters a client sends; the first one is the
// content the operation is called on.
func requestParameters(op *ir.Operation) []ir.Parameter {
	if len(op.Parameters) < 2 {
		return nil
	}
	return op.Parameters[1:]
}

func (f *FrontendWriter) writeRequestExample(w io.Writer, op *ir.Operation) {
	fmt.Fprintln(w, "### Request example:")
	if len(op.Parameters) > 0 {
		fmt.Fprintln(w, op.Parameters[0].Documentation)
	}

	onlyRoot := len(op.ContentTypes) == 1 && op.ContentTypes[0] == portalRoot
	getExample, postExample := requestExamples(op)

	if op.IsAction {
		writePostExample(w, op, onlyRoot, postExample)
	} else {
		writeGetExample(w, op, onlyRoot, getExample)
		if len(op.Parameters) > 1 {
			fmt.Fprintln(w, "or")
			writePostExample(w, op, onlyRoot, postExample)
		}
	}

	switch {
	case onlyRoot:
		fmt.Fprintln(w, "Can only be called on the root content.")
	case len(op.ContentTypes) > 0:
		types := make([]string, len(op.ContentTypes))
		for i, ct := range op.ContentTypes {
			types[i] = strings.ReplaceAll(ct, contentTypePrefix, "")
		}
		joined := strings.Join(types, ", ")
		if joined == anyContentTypes {
			fmt.Fprintln(w, "The `targetContent` can be any content type")
		} else {
			fmt.Fprintf(w, "The `targetContent` can be %s\n", joined)
		}
	}
}

func requestTarget(op *ir.Operation, onlyRoot bool) string {
	if onlyRoot {
		return "/odata.svc/('Root')/" + op.OperationName
	}
	return "/odata.svc/Root/...('targetContent')/" + op.OperationName
}

func writeGetExample(w io.Writer, op *ir.Operation, onlyRoot bool, query string) {
	fmt.Fprintln(w, "```")
	fmt.Fprintf(w, "GET %s%s\n", requestTarget(op, onlyRoot), query)
	fmt.Fprintln(w, "```")
}

func writePostExample(w io.Writer, op *ir.Operation, onlyRoot bool, body string) {
	fmt.Fprintln(w, "```")
	fmt.Fprintf(w, "POST %s\n", requestTarget(op, onlyRoot))
	if body != "" {
		fmt.Fprintln(w, "DATA:")
		fmt.Fprintln(w, body)
	}
	fmt.Fprintln(w, "```")
}

// requestExamples builds the query string of a GET request and the models
// body of a POST request from the parameter examples, falling back to
// placeholders.
func requestExamples(op *ir.Operation) (query, body string) {
	prms := requestParameters(op)
	if len(prms) == 0 {
		return "", ""
	}
	gets := make([]string, len(prms))
	posts := make([]string, len(prms))
	for i, p := range prms {
		gets[i] = queryExample(p)
		posts[i] = bodyExample(p)
	}
	query = "?" + strings.Join(gets, "&")
	body = "models=[{\n  " + strings.Join(posts, ",\n  ") + "\n}]"
	return query, body
}

func elementType(t string) (string, bool) {
	if strings.HasSuffix(t, "[]") {
		return strings.TrimSuffix(t, "[]"), true
	}
	return t, false
}

func queryExample(p ir.Parameter) string {
	typ, isArray := elementType(p.Type)
	if typ == "string" && isArray {
		// ["Task", "Event"] becomes prm=Task&prm=Event
		example := `["_item1_", "_item2_"]`
		if p.Example != nil {
			example = *p.Example
		}
		example = strings.TrimSpace(strings.TrimRight(strings.TrimLeft(example, "["), "]"))
		items := strings.Split(example, ",")
		pairs := make([]string, len(items))
		for i, item := range items {
			pairs[i] = p.Name + "=" + strings.Trim(strings.TrimSpace(item), `"`)
		}
		return strings.Join(pairs, "&")
	}

	example := "_value_"
	if p.Example != nil {
		example = *p.Example
	}
	return p.Name + "=" + strings.Trim(example, `'"`)
}

func bodyExample(p ir.Parameter) string {
	typ, isArray := elementType(p.Type)
	var example string
	switch {
	case p.Example != nil:
		example = *p.Example
	case typ == "string" && isArray:
		example = `["_item1_", "_item2_"]`
	case typ == "string":
		example = `"_value_"`
	case isArray:
		example = "[_item1_, _item2_]"
	default:
		example = "_value_"
	}

	if p.Type == "string" && !isQuoted(example) {
		example = `"` + example + `"`
	}
	return fmt.Sprintf("%q: %s", p.Name, example)
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '"' || first == '\'') && first == last
}
