package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odatadoc/internal/doccomment"
)

func TestNormalize_AttributeValues(t *testing.T) {
	op := &Operation{
		IsValid:          true,
		MethodName:       "DoIt3",
		Description:      `"  Lorem ipsum  "`,
		Icon:             `"icon94"`,
		ContentTypes:     []string{"N.CT.User", "N.CT.Group", `"OrgUnit"`},
		AllowedRoles:     []string{"N.R.Administrators", `"Editors"`},
		RequiredPolicies: []string{`"Policy1"`},
		RequiredPermissions: []string{
			`"See, Run"`,
		},
		Scenarios:   []string{`"Scenario1, Scenario2"`, `"Scenario2"`, `"Scenario3, Scenario4"`},
		ReturnValue: Parameter{Type: "string"},
	}

	require.NoError(t, op.Normalize())

	assert.Equal(t, "DoIt3", op.OperationName)
	assert.Equal(t, "Lorem ipsum", op.Description)
	assert.Equal(t, "icon94", op.Icon)
	assert.Equal(t, []string{"N.CT.User", "N.CT.Group", "OrgUnit"}, op.ContentTypes)
	assert.Equal(t, []string{"N.R.Administrators", "Editors"}, op.AllowedRoles)
	assert.Equal(t, []string{"See", "Run"}, op.RequiredPermissions)
	assert.Equal(t, []string{"Policy1"}, op.RequiredPolicies)
	assert.Equal(t, []string{"Scenario1", "Scenario2", "Scenario3", "Scenario4"}, op.Scenarios)
	assert.Nil(t, normalizeList(nil))
	assert.True(t, op.IsValid)
}

func TestNormalize_OperationNameQuotes(t *testing.T) {
	op := &Operation{MethodName: "DoIt2", OperationName: `"Op9_Renamed"`}
	require.NoError(t, op.Normalize())
	assert.Equal(t, "Op9_Renamed", op.OperationName)
}

func TestNormalize_Documentation(t *testing.T) {
	op := &Operation{
		IsValid:    true,
		MethodName: "GetTitle",
		Documentation: `/// <summary>Returns the <paramref name="title"/>.</summary>
/// <snCategory>Content Management</snCategory>
/// <param name="content">The target.</param>
/// <param name="title" example="'Hello'">A title.</param>
/// <returns>The title.</returns>`,
		Parameters: []Parameter{
			{Name: "content", Type: "Content"},
			{Name: "title", Type: "string"},
		},
		ReturnValue: Parameter{Type: "string"},
	}

	require.NoError(t, op.Normalize())

	assert.Equal(t, "Returns the _title_.", op.Documentation)
	assert.Equal(t, "Content Management", op.Category)
	assert.Equal(t, "contentmanagement", op.CategorySlug)
	assert.Equal(t, "The target.", op.Parameters[0].Documentation)
	assert.Nil(t, op.Parameters[0].Example)
	assert.Equal(t, "A title.", op.Parameters[1].Documentation)
	require.NotNil(t, op.Parameters[1].Example)
	assert.Equal(t, "'Hello'", *op.Parameters[1].Example)
	assert.Equal(t, "The title.", op.ReturnValue.Documentation)
}

func TestNormalize_VoidDropsReturns(t *testing.T) {
	op := &Operation{
		MethodName:    "Run",
		Documentation: "/// <summary>Runs.</summary>\n/// <returns>Nothing.</returns>",
		ReturnValue:   Parameter{Type: "void"},
	}
	require.NoError(t, op.Normalize())
	assert.Equal(t, "Runs.", op.Documentation)
	assert.Empty(t, op.ReturnValue.Documentation)
}

func TestNormalize_NoDocumentation(t *testing.T) {
	op := &Operation{IsValid: true, MethodName: "Bare"}
	require.NoError(t, op.Normalize())
	assert.Empty(t, op.Documentation)
	assert.Equal(t, doccomment.Uncategorized, op.Category)
	assert.Equal(t, "uncategorized", op.CategorySlug)
}

func TestNormalize_Malformed(t *testing.T) {
	op := &Operation{IsValid: true, ClassName: "C", MethodName: "Broken", Documentation: "/// <summary>open"}
	err := op.Normalize()
	require.Error(t, err)

	var mErr *doccomment.MalformedMarkupError
	assert.ErrorAs(t, err, &mErr)
	assert.False(t, op.IsValid)
	assert.Contains(t, err.Error(), "C.Broken")
}

func TestFormatType(t *testing.T) {
	tests := map[string]string{
		"string":   "string",
		"string[]": "string[]",
		"System.Threading.Tasks.Task<SenseNet.ContentRepository.Content>": "Task&lt;Content&gt;",
		"Dictionary<string, System.Object>":                               "Dictionary&lt;string, Object&gt;",
		"int?":                                                            "int?",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatType(in), in)
	}
}

func TestOperation_IDAndProjectName(t *testing.T) {
	op := &Operation{File: "a/b.cs", ClassName: "Ctl", MethodName: "M", Line: 12}
	assert.Equal(t, "a/b.cs:Ctl.M:12", op.ID())
	assert.Empty(t, op.ProjectName())

	op.Project = &Project{Name: "Services"}
	assert.Equal(t, "Services", op.ProjectName())
}
