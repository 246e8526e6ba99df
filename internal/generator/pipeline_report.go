package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportFile is the name of the run report written next to the documentation.
const ReportFile = "pipeline_report.json"

// ReportSignal is something a reader of the generated reference should know
// about: a dropped comment, an undocumented operation, a dead link.
type ReportSignal struct {
	Code     string  `json:"code"`
	Stage    string  `json:"stage"`
	Severity string  `json:"severity"` // critical, warning or info
	Message  string  `json:"message"`
	Value    float64 `json:"value,omitempty"`
}

// StageMetric records one step of a scan or generate run.
type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Notes      []string           `json:"notes,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// CategoryMetric describes one generated category file.
type CategoryMetric struct {
	Category   string `json:"category"`
	File       string `json:"file"`
	Operations int    `json:"operations"`
	MissingDoc int    `json:"missing_doc"`
}

type ReportSummary struct {
	StageCount        int            `json:"stage_count"`
	FailedStages      int            `json:"failed_stages"`
	CategoryCount     int            `json:"category_count"`
	OperationCount    int            `json:"operation_count"`
	MissingDocCount   int            `json:"missing_doc_count"`
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

// PipelineReport is the machine readable account of one documentation run,
// saved as ReportFile in the output directory.
type PipelineReport struct {
	Version     string           `json:"version"`
	RunID       string           `json:"run_id"`
	Mode        string           `json:"mode"` // writer used for the run
	GeneratedAt string           `json:"generated_at"`
	InputPath   string           `json:"input_path,omitempty"`
	OutputDir   string           `json:"output_dir"`
	Stages      []StageMetric    `json:"stages"`
	Categories  []CategoryMetric `json:"categories,omitempty"`
	Signals     []ReportSignal   `json:"signals,omitempty"`
	Summary     ReportSummary    `json:"summary"`
}

// StageHandle is returned by BeginStage and closed with EndStage.
type StageHandle struct {
	name    string
	started time.Time
}

func NewPipelineReport(mode, outputDir string) *PipelineReport {
	return &PipelineReport{
		Version:     "v1",
		RunID:       uuid.NewString(),
		Mode:        mode,
		GeneratedAt: now().Format(time.RFC3339),
		OutputDir:   outputDir,
		Stages:      []StageMetric{},
		Categories:  []CategoryMetric{},
		Signals:     []ReportSignal{},
	}
}

func now() time.Time { return time.Now().UTC() }

func (r *PipelineReport) BeginStage(name string) StageHandle {
	return StageHandle{name: strings.TrimSpace(name), started: now()}
}

// EndStage records the stage opened by h. A non-nil err turns an "ok" status
// into "error". Unnamed stages are not recorded.
func (r *PipelineReport) EndStage(h StageHandle, status string, counters map[string]float64, notes []string, err error) {
	if r == nil || h.name == "" {
		return
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "ok"
	}
	end := now()
	stage := StageMetric{
		Name:       h.name,
		Status:     status,
		StartedAt:  h.started.Format(time.RFC3339Nano),
		FinishedAt: end.Format(time.RFC3339Nano),
		DurationMS: end.Sub(h.started).Milliseconds(),
		Counters:   namedCounters(counters),
		Notes:      nonBlank(notes),
	}
	if err != nil {
		stage.Error = err.Error()
		if stage.Status == "ok" {
			stage.Status = "error"
		}
	}
	r.Stages = append(r.Stages, stage)
}

// AddSignal appends a signal. Signals missing a code, stage, severity or
// message are ignored.
func (r *PipelineReport) AddSignal(code, stage, severity, message string, value float64) {
	if r == nil {
		return
	}
	sig := ReportSignal{
		Code:     strings.TrimSpace(code),
		Stage:    strings.TrimSpace(stage),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
		Value:    value,
	}
	for _, field := range []string{sig.Code, sig.Stage, sig.Severity, sig.Message} {
		if field == "" {
			return
		}
	}
	r.Signals = append(r.Signals, sig)
}

// AddCategoryMetric records a written category file.
func (r *PipelineReport) AddCategoryMetric(m CategoryMetric) {
	if r == nil || strings.TrimSpace(m.File) == "" {
		return
	}
	r.Categories = append(r.Categories, m)
}

// Finalize orders the signals, most severe first, and fills the summary.
func (r *PipelineReport) Finalize() {
	if r == nil {
		return
	}
	r.GeneratedAt = now().Format(time.RFC3339)
	sort.SliceStable(r.Signals, func(i, j int) bool {
		a, b := r.Signals[i], r.Signals[j]
		if pa, pb := severityRank(a.Severity), severityRank(b.Severity); pa != pb {
			return pa > pb
		}
		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}
		return a.Code < b.Code
	})
	r.Summary = r.summarize()
}

func (r *PipelineReport) summarize() ReportSummary {
	s := ReportSummary{
		StageCount:        len(r.Stages),
		CategoryCount:     len(r.Categories),
		SignalsBySeverity: map[string]int{"critical": 0, "warning": 0, "info": 0},
	}
	for _, st := range r.Stages {
		if st.Status != "ok" {
			s.FailedStages++
		}
	}
	for _, c := range r.Categories {
		s.OperationCount += c.Operations
		s.MissingDocCount += c.MissingDoc
	}
	for _, sig := range r.Signals {
		s.SignalsBySeverity[sig.Severity]++
	}
	return s
}

// Save finalizes the report and writes it to path as indented JSON,
// creating the directory when needed.
func (r *PipelineReport) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// namedCounters drops counters with a blank name; nil when none remain.
func namedCounters(raw map[string]float64) map[string]float64 {
	var out map[string]float64
	for k, v := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if out == nil {
			out = make(map[string]float64, len(raw))
		}
		out[k] = v
	}
	return out
}

func nonBlank(notes []string) []string {
	var out []string
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func severityRank(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	}
	return 1
}
