package generator

import (
	"fmt"
	"io"
	"sort"

	"odatadoc/internal/ir"
)

// BackendWriter documents operations for the developers who maintain them:
// where they live and what guards them.
type BackendWriter struct {
	opts Options
}

func (b *BackendWriter) WriteTable(w io.Writer, title string, ops []*ir.Operation) {
	if len(ops) == 0 {
		return
	}
	fmt.Fprintf(w, "## %s (%d)\n", title, len(ops))

	ordered := append([]*ir.Operation(nil), ops...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].File != ordered[j].File {
			return ordered[i].File < ordered[j].File
		}
		return ordered[i].OperationName < ordered[j].OperationName
	})

	if b.opts.DocsAlert {
		fmt.Fprintln(w, "| Operation | Doc | Category | Type | Repository | Project | File | Directory |")
		fmt.Fprintln(w, "| --------- | --- | -------- | ---- | ---------- | ------- | ---- | --------- |")
	} else {
		fmt.Fprintln(w, "| Operation | Category | Type | Repository | Project | File | Directory |")
		fmt.Fprintln(w, "| --------- | -------- | ---- | ---------- | ------- | ---- | --------- |")
	}
	for _, op := range ordered {
		file, dir := splitRelative(op.FileRelative)
		if b.opts.DocsAlert {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				operationLink(op), docMark(op), categoryOrDash(op), operationType(op),
				op.Repository, op.ProjectName(), file, dir)
			continue
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			operationLink(op), categoryOrDash(op), operationType(op),
			op.Repository, op.ProjectName(), file, dir)
	}
	fmt.Fprintln(w)
}

func (b *BackendWriter) WriteOperation(w io.Writer, op *ir.Operation) {
	fmt.Fprintf(w, "## %s\n", op.OperationName)

	kind := "**FUNCTION**"
	if op.IsAction {
		kind = "**ACTION**"
	}
	head := []string{
		"- Type: " + kind,
		fmt.Sprintf("- Repository: **%s**", op.Repository),
		fmt.Sprintf("- Project: **%s**", op.ProjectName()),
		fmt.Sprintf("- File: **%s**", op.FileRelative),
		fmt.Sprintf("- Class: **%s.%s**", op.Namespace, op.ClassName),
		fmt.Sprintf("- Method: **%s**", op.MethodName),
	}
	if op.Icon != "" {
		head = append(head, fmt.Sprintf("- Icon: **%s**", op.Icon))
	}
	writeHead(w, head)

	if op.Description != "" && !b.opts.HideDescription {
		fmt.Fprintln(w, "### Description:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, op.Description)
	}

	fmt.Fprintln(w)
	writeDocumentation(w, op, b.opts.DocsAlert)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "### Parameters:")
	for _, p := range op.Parameters {
		writeParameter(w, p)
	}
	if op.ReturnValue.Type != "void" {
		fmt.Fprintf(w, "- **Return value** (%s): %s\n", ir.FormatType(op.ReturnValue.Type), op.ReturnValue.Documentation)
	}

	fmt.Fprintln(w)
	if hasRequirements(op) {
		fmt.Fprintln(w, "### Requirements:")
		writeAttribute(w, "ContentTypes", op.ContentTypes)
		writeAttribute(w, "AllowedRoles", op.AllowedRoles)
		writeAttribute(w, "RequiredPermissions", op.RequiredPermissions)
		writeAttribute(w, "RequiredPolicies", op.RequiredPolicies)
		writeAttribute(w, "Scenarios", op.Scenarios)
	}

	fmt.Fprintln(w)
}
