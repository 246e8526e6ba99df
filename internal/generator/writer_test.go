package generator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odatadoc/internal/ir"
)

func strPtr(s string) *string { return &s }

func tableOps() []*ir.Operation {
	return []*ir.Operation{
		{
			File:          "/r/src/Ops/B.cs",
			FileRelative:  "Ops/B.cs",
			OperationName: "Beta",
			Category:      "General",
			CategorySlug:  "general",
			Repository:    "repo",
			Project:       &ir.Project{Name: "Core"},
		},
		{
			File:          "/r/src/A.cs",
			FileRelative:  "A.cs",
			OperationName: "Alpha",
			IsAction:      true,
			Category:      "Security",
			CategorySlug:  "security",
			Documentation: "Doc.",
			Repository:    "repo",
		},
	}
}

func TestNewWriter(t *testing.T) {
	w, err := NewWriter(Options{})
	require.NoError(t, err)
	assert.IsType(t, &BackendWriter{}, w)

	w, err = NewWriter(Options{Mode: "frontend"})
	require.NoError(t, err)
	assert.IsType(t, &FrontendWriter{}, w)

	_, err = NewWriter(Options{Mode: "sideways"})
	assert.Error(t, err)
}

func TestCategoryFile(t *testing.T) {
	assert.Equal(t, "general.md", CategoryFile(&ir.Operation{CategorySlug: "general"}))
	assert.Equal(t, "uncategorized.md", CategoryFile(&ir.Operation{}))
	assert.Equal(t, "escaped.md", CategoryFile(&ir.Operation{CategorySlug: "../../escaped"}))
	assert.Equal(t, "ab.md", CategoryFile(&ir.Operation{CategorySlug: `a/b\`}))
	assert.Equal(t, "uncategorized.md", CategoryFile(&ir.Operation{CategorySlug: "../"}))
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GetTitle", "gettitle"},
		{"Get_Title", "get_title"},
		{"Test Operations (2)", "test-operations-2"},
		{"  Trimmed  ", "trimmed"},
		{".NET Core", "net-core"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Anchor(tt.in))
		})
	}
}

func TestBackendWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	(&BackendWriter{}).WriteTable(&buf, ".NET Core Operations", tableOps())

	want := "## .NET Core Operations (2)\n" +
		"| Operation | Category | Type | Repository | Project | File | Directory |\n" +
		"| --------- | -------- | ---- | ---------- | ------- | ---- | --------- |\n" +
		"| [Alpha](./security.md#alpha) | Security | Action | repo |  | A.cs |  |\n" +
		"| [Beta](./general.md#beta) | General | Function | repo | Core | B.cs | Ops |\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestBackendWriter_WriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	(&BackendWriter{}).WriteTable(&buf, "Nothing", nil)
	assert.Empty(t, buf.String())
}

func TestBackendWriter_WriteOperation(t *testing.T) {
	op := &ir.Operation{
		OperationName: "GetTitle",
		MethodName:    "GetTitle",
		Namespace:     "N.Ops",
		ClassName:     "TitleOps",
		Repository:    "repo",
		FileRelative:  "Ops/Title.cs",
		Project:       &ir.Project{Name: "Core"},
		Description:   "Gets title",
		Documentation: "Returns the title.",
		Parameters: []ir.Parameter{
			{Name: "content", Type: "Content"},
			{Name: "depth", Type: "int", IsOptional: true, Documentation: "Depth."},
		},
		ReturnValue:  ir.Parameter{Type: "System.String", Documentation: "The title."},
		ContentTypes: []string{"N.CT.File"},
		AllowedRoles: []string{"Everyone"},
	}

	var buf bytes.Buffer
	(&BackendWriter{}).WriteOperation(&buf, op)

	want := "## GetTitle\n" +
		"- Type: **FUNCTION**\n" +
		"- Repository: **repo**\n" +
		"- Project: **Core**\n" +
		"- File: **Ops/Title.cs**\n" +
		"- Class: **N.Ops.TitleOps**\n" +
		"- Method: **GetTitle**.\n" +
		"### Description:\n" +
		"\n" +
		"Gets title\n" +
		"\n" +
		"Returns the title.\n" +
		"\n" +
		"### Parameters:\n" +
		"- **content** (Content): \n" +
		"- **depth** (int) optional: Depth.\n" +
		"- **Return value** (String): The title.\n" +
		"\n" +
		"### Requirements:\n" +
		"- **ContentTypes**: N.CT.File\n" +
		"- **AllowedRoles**: Everyone\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestBackendWriter_Options(t *testing.T) {
	op := &ir.Operation{
		OperationName: "Touch",
		IsAction:      true,
		Icon:          "edit",
		Description:   "Touches",
		ReturnValue:   ir.Parameter{Type: "void"},
	}

	var buf bytes.Buffer
	(&BackendWriter{opts: Options{HideDescription: true, DocsAlert: true}}).WriteOperation(&buf, op)
	out := buf.String()

	assert.Contains(t, out, "- Type: **ACTION**")
	assert.Contains(t, out, "- Icon: **edit**.\n")
	assert.NotContains(t, out, "Touches")
	assert.Contains(t, out, "\n"+missingDocumentation+"\n")
	assert.NotContains(t, out, "Return value")
	assert.NotContains(t, out, "### Requirements:")
}

func TestFrontendWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	(&FrontendWriter{opts: Options{DocsAlert: true}}).WriteTable(&buf, "Tests", tableOps())

	want := "## Tests (2)\n" +
		"| Category | Operation | Doc | Type |\n" +
		"| -------- | --------- | --- | ---- |\n" +
		"| General | [Beta](./general.md#beta) |  | Function |\n" +
		"| Security | [Alpha](./security.md#alpha) | ok | Action |\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestFrontendWriter_WriteOperation(t *testing.T) {
	op := &ir.Operation{
		OperationName: "GetTitle",
		Description:   "Gets title",
		Documentation: "Returns the title.",
		Parameters: []ir.Parameter{
			{Name: "content", Type: "Content", Documentation: "Any content."},
			{Name: "depth", Type: "int", IsOptional: true, Documentation: "Depth.", Example: strPtr("3")},
			{Name: "names", Type: "string[]", Documentation: "Names."},
		},
		ReturnValue:  ir.Parameter{Type: "string", Documentation: "The title."},
		ContentTypes: []string{"N.CT.GenericContent", "N.CT.ContentType"},
		AllowedRoles: []string{"N.R.Everyone"},
	}

	var buf bytes.Buffer
	(&FrontendWriter{}).WriteOperation(&buf, op)

	want := "## GetTitle\n" +
		"- Method: **GET** or optionally POST.\n" +
		"\n" +
		"Gets title\n" +
		"\n" +
		"Returns the title.\n" +
		"\n" +
		"### Request example:\n" +
		"Any content.\n" +
		"```\n" +
		"GET /odata.svc/Root/...('targetContent')/GetTitle?depth=3&names=_item1_&names=_item2_\n" +
		"```\n" +
		"or\n" +
		"```\n" +
		"POST /odata.svc/Root/...('targetContent')/GetTitle\n" +
		"DATA:\n" +
		"models=[{\n" +
		"  \"depth\": 3,\n" +
		"  \"names\": [\"_item1_\", \"_item2_\"]\n" +
		"}]\n" +
		"```\n" +
		"The `targetContent` can be any content type\n" +
		"### Parameters:\n" +
		"- **depth** (int) optional: Depth.\n" +
		"- **names** (string[]): Names.\n" +
		"\n" +
		"### Return value:\n" +
		"The title. (Type: string).\n" +
		"\n" +
		"### Requirements:\n" +
		"- **AllowedRoles**: Everyone\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestFrontendWriter_RootAction(t *testing.T) {
	op := &ir.Operation{
		OperationName: "Reset",
		IsAction:      true,
		Parameters:    []ir.Parameter{{Name: "content", Type: "Content"}},
		ReturnValue:   ir.Parameter{Type: "void"},
		ContentTypes:  []string{"N.CT.PortalRoot"},
	}

	var buf bytes.Buffer
	(&FrontendWriter{}).WriteOperation(&buf, op)

	want := "## Reset\n" +
		"- Method: **POST**.\n" +
		"\n" +
		"\n" +
		"### Request example:\n" +
		"\n" +
		"```\n" +
		"POST /odata.svc/('Root')/Reset\n" +
		"```\n" +
		"Can only be called on the root content.\n" +
		"### Parameters:\n" +
		"There are no parameters.\n" +
		"\n" +
		"\n"
	assert.Equal(t, want, buf.String())
}

func TestFrontendWriter_TargetContentTypes(t *testing.T) {
	op := &ir.Operation{
		OperationName: "Count",
		Parameters:    []ir.Parameter{{Name: "content", Type: "Content"}},
		ReturnValue:   ir.Parameter{Type: "int"},
		ContentTypes:  []string{"N.CT.Folder", "N.CT.File"},
	}

	var buf bytes.Buffer
	(&FrontendWriter{}).WriteOperation(&buf, op)
	out := buf.String()

	assert.Contains(t, out, "GET /odata.svc/Root/...('targetContent')/Count\n```\nThe `targetContent` can be Folder, File\n")
	assert.NotContains(t, out, "POST /odata.svc")
	assert.NotContains(t, out, "### Return value:", "undocumented return values are omitted")
}

func TestRequestExamples(t *testing.T) {
	tests := []struct {
		name      string
		param     ir.Parameter
		wantQuery string
		wantBody  string
	}{
		{
			name:      "string placeholder",
			param:     ir.Parameter{Name: "path", Type: "string"},
			wantQuery: "path=_value_",
			wantBody:  `"path": "_value_"`,
		},
		{
			name:      "string example gets quoted",
			param:     ir.Parameter{Name: "path", Type: "string", Example: strPtr("/Root/Content")},
			wantQuery: "path=/Root/Content",
			wantBody:  `"path": "/Root/Content"`,
		},
		{
			name:      "single quoted string example",
			param:     ir.Parameter{Name: "path", Type: "string", Example: strPtr("'/Root'")},
			wantQuery: "path=/Root",
			wantBody:  `"path": '/Root'`,
		},
		{
			name:      "string array example",
			param:     ir.Parameter{Name: "types", Type: "string[]", Example: strPtr(`["Task", "Event"]`)},
			wantQuery: "types=Task&types=Event",
			wantBody:  `"types": ["Task", "Event"]`,
		},
		{
			name:      "array placeholder",
			param:     ir.Parameter{Name: "ids", Type: "int[]"},
			wantQuery: "ids=_value_",
			wantBody:  `"ids": [_item1_, _item2_]`,
		},
		{
			name:      "scalar placeholder",
			param:     ir.Parameter{Name: "depth", Type: "int"},
			wantQuery: "depth=_value_",
			wantBody:  `"depth": _value_`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantQuery, queryExample(tt.param))
			assert.Equal(t, tt.wantBody, bodyExample(tt.param))
		})
	}
}
