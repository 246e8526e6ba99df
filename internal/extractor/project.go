package extractor

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"odatadoc/internal/ir"
)

// ProjectExt is the extension of the project files that open a project scope.
const ProjectExt = ".csproj"

type csproj struct {
	PropertyGroups []struct {
		TargetFramework        string `xml:"TargetFramework"`
		TargetFrameworks       string `xml:"TargetFrameworks"`
		TargetFrameworkVersion string `xml:"TargetFrameworkVersion"`
	} `xml:"PropertyGroup"`
}

// LoadProject describes the project defined by a .csproj file. The error is
// set when the file cannot be read or names no target framework; the
// returned project is still usable and has type ProjectUnknown then.
func LoadProject(path string) (*ir.Project, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	lower := strings.ToLower(name)
	p := &ir.Project{
		Path:          filepath.Dir(path),
		Name:          name,
		Type:          ir.ProjectUnknown,
		IsTestProject: strings.HasSuffix(lower, "test") || strings.HasSuffix(lower, "tests"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read project %s: %w", path, err)
	}
	typeName, err := targetFramework(data)
	if err != nil {
		return p, fmt.Errorf("project %s: %w", path, err)
	}
	p.TypeName = typeName
	p.Type = projectType(typeName)
	return p, nil
}

func targetFramework(data []byte) (string, error) {
	var proj csproj
	if err := xml.Unmarshal(data, &proj); err != nil {
		return "", err
	}
	pick := func(get func(i int) string) string {
		for i := range proj.PropertyGroups {
			if v := strings.TrimSpace(get(i)); v != "" {
				return v
			}
		}
		return ""
	}
	if v := pick(func(i int) string { return proj.PropertyGroups[i].TargetFramework }); v != "" {
		return v, nil
	}
	if v := pick(func(i int) string { return proj.PropertyGroups[i].TargetFrameworks }); v != "" {
		return v, nil
	}
	if v := pick(func(i int) string { return proj.PropertyGroups[i].TargetFrameworkVersion }); v != "" {
		return "netframework" + strings.TrimPrefix(v, "v"), nil
	}
	return "", errors.New("no target framework")
}

func projectType(typeName string) ir.ProjectType {
	switch {
	case strings.HasPrefix(typeName, "netcoreapp"):
		return ir.ProjectNETCore
	case strings.HasPrefix(typeName, "netstandard"):
		return ir.ProjectNETStandard
	case strings.HasPrefix(typeName, "netframework"):
		return ir.ProjectNETFramework
	}
	return ir.ProjectUnknown
}
