package ir

import (
	"fmt"
	"regexp"
	"strings"

	"odatadoc/internal/doccomment"
)

// ProjectType classifies a C# project by its target framework.
type ProjectType string

const (
	ProjectUnknown      ProjectType = "Unknown"
	ProjectNETStandard  ProjectType = "NETStandard"
	ProjectNETCore      ProjectType = "NETCore"
	ProjectNETFramework ProjectType = "NETFramework"
)

// Project is the C# project that owns a source file.
type Project struct {
	Path          string      `json:"path"`
	Name          string      `json:"name"`
	TypeName      string      `json:"type_name"` // raw target framework moniker
	Type          ProjectType `json:"type"`
	IsTestProject bool        `json:"is_test_project"`
}

// Parameter is a method parameter or, with an empty Name, a return value.
type Parameter struct {
	Name          string  `json:"name,omitempty"`
	Type          string  `json:"type"`
	IsOptional    bool    `json:"is_optional,omitempty"`
	Documentation string  `json:"documentation,omitempty"`
	Example       *string `json:"example,omitempty"`
}

// Operation is one OData function or action found in source.
type Operation struct {
	IsValid       bool   `json:"is_valid"`
	IsAction      bool   `json:"is_action"`
	File          string `json:"file"`
	Line          int    `json:"line"`
	EndLine       int    `json:"end_line"`
	Namespace     string `json:"namespace"`
	ClassName     string `json:"class_name"`
	MethodName    string `json:"method_name"`
	OperationName string `json:"operation_name"`
	Description   string `json:"description,omitempty"`
	Icon          string `json:"icon,omitempty"`

	// Documentation holds the raw comment until Normalize replaces it with
	// the Markdown body.
	Documentation string `json:"documentation,omitempty"`
	Category      string `json:"category"`
	CategorySlug  string `json:"category_slug"`

	ContentTypes        []string `json:"content_types,omitempty"`
	AllowedRoles        []string `json:"allowed_roles,omitempty"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
	RequiredPolicies    []string `json:"required_policies,omitempty"`
	Scenarios           []string `json:"scenarios,omitempty"`

	Parameters  []Parameter `json:"parameters"`
	ReturnValue Parameter   `json:"return_value"`

	Project      *Project `json:"project,omitempty"`
	Repository   string   `json:"repository"`
	FileRelative string   `json:"file_relative"`
}

// ID identifies the operation across scans of the same tree.
func (op *Operation) ID() string {
	return fmt.Sprintf("%s:%s.%s:%d", op.File, op.ClassName, op.MethodName, op.Line)
}

// ProjectName is the owning project's name or "" outside any project.
func (op *Operation) ProjectName() string {
	if op.Project == nil {
		return ""
	}
	return op.Project.Name
}

// Normalize cleans the captured attribute values and turns the raw
// documentation comment into Markdown, binding parameter and return value
// documentation on the way. A comment that fails to parse invalidates the
// operation; the returned error wraps *doccomment.MalformedMarkupError.
func (op *Operation) Normalize() error {
	if op.OperationName == "" {
		op.OperationName = op.MethodName
	} else {
		op.OperationName = trimQuotes(op.OperationName)
	}

	op.ContentTypes = normalizeList(op.ContentTypes)
	op.AllowedRoles = normalizeList(op.AllowedRoles)
	op.RequiredPermissions = normalizeList(op.RequiredPermissions)
	op.RequiredPolicies = normalizeList(op.RequiredPolicies)
	op.Scenarios = normalizeList(op.Scenarios)

	op.Description = strings.TrimSpace(trimQuotes(op.Description))
	op.Icon = trimQuotes(op.Icon)

	names := make([]string, len(op.Parameters))
	for i, p := range op.Parameters {
		names[i] = p.Name
	}
	res, err := doccomment.Transform(doccomment.Member{
		Comment:    op.Documentation,
		Parameters: names,
		VoidReturn: op.ReturnValue.Type == "void",
	})
	if err != nil {
		op.IsValid = false
		return fmt.Errorf("documentation of %s.%s: %w", op.ClassName, op.MethodName, err)
	}

	op.Documentation = res.Body
	op.Category = res.Category.Display
	op.CategorySlug = res.Category.Slug
	for i := range op.Parameters {
		doc, ok := res.Parameters[op.Parameters[i].Name]
		if !ok {
			continue
		}
		op.Parameters[i].Documentation = doc.Text
		op.Parameters[i].Example = doc.Example
	}
	if res.Returns != nil {
		op.ReturnValue.Documentation = res.Returns.Text
	}
	return nil
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// normalizeList splits comma separated entries, trims them and drops
// duplicates while keeping the first occurrence.
func normalizeList(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, entry := range list {
		for _, part := range strings.Split(trimQuotes(entry), ",") {
			part = strings.TrimSpace(part)
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}

var qualifiedName = regexp.MustCompile(`(?:[A-Za-z_]\w*\.)+([A-Za-z_]\w*)`)

// FormatType shortens every qualified name in a C# type to its last segment
// and escapes angle brackets for Markdown.
func FormatType(t string) string {
	t = qualifiedName.ReplaceAllString(t, "$1")
	t = strings.ReplaceAll(t, "<", "&lt;")
	return strings.ReplaceAll(t, ">", "&gt;")
}
