package generator

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineReport_Finalize(t *testing.T) {
	r := NewPipelineReport("backend", "out")
	assert.NotEmpty(t, r.RunID)

	ok := r.BeginStage("scan")
	r.EndStage(ok, "", map[string]float64{"operations_found": 3, " ": 1}, []string{" ", "note"}, nil)
	failed := r.BeginStage("write_files")
	r.EndStage(failed, "ok", nil, nil, errors.New("disk full"))
	r.EndStage(r.BeginStage("  "), "ok", nil, nil, nil)

	r.AddSignal("missing_documentation", "render", "info", "1 operation(s) have no documentation.", 1)
	r.AddSignal("broken_anchor", "check_anchors", "WARNING", "index.md -> x.md#y", 1)
	r.AddSignal("generate_failed", "generate", "critical", "boom", 0)
	r.AddSignal("", "generate", "critical", "dropped", 0)

	r.AddCategoryMetric(CategoryMetric{Category: "General", File: "general.md", Operations: 2, MissingDoc: 1})
	r.AddCategoryMetric(CategoryMetric{Category: "Nowhere"})

	r.Finalize()

	require.Len(t, r.Stages, 2)
	assert.Equal(t, "ok", r.Stages[0].Status)
	assert.Equal(t, map[string]float64{"operations_found": 3}, r.Stages[0].Counters)
	assert.Equal(t, []string{"note"}, r.Stages[0].Notes)
	assert.Equal(t, "error", r.Stages[1].Status)
	assert.Equal(t, "disk full", r.Stages[1].Error)

	var codes []string
	for _, s := range r.Signals {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"generate_failed", "broken_anchor", "missing_documentation"}, codes)

	assert.Equal(t, ReportSummary{
		StageCount:        2,
		FailedStages:      1,
		CategoryCount:     1,
		OperationCount:    2,
		MissingDocCount:   1,
		SignalsBySeverity: map[string]int{"critical": 1, "warning": 1, "info": 1},
	}, r.Summary)
}

func TestPipelineReport_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ReportFile)
	r := NewPipelineReport("frontend", filepath.Dir(path))
	r.InputPath = "src"
	require.NoError(t, r.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var loaded PipelineReport
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, "frontend", loaded.Mode)
	assert.Equal(t, "src", loaded.InputPath)
	assert.Equal(t, r.RunID, loaded.RunID)

	var nilReport *PipelineReport
	assert.NoError(t, nilReport.Save(path))
}
