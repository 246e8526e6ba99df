package analysis

import (
	"sort"

	"odatadoc/internal/git"
	"odatadoc/internal/ir"
)

// ImpactReport summarizes how changed files affected the documented
// operations.
type ImpactReport struct {
	Edited    []*ir.Operation // still present, method lines or documentation changed
	Added     []*ir.Operation
	Removed   []*ir.Operation
	Unchanged int
}

// AnalyzeImpact compares the operations of the changed files before and
// after a rescan. Change paths must use the same form as Operation.File.
func AnalyzeImpact(changes []git.ChangedFile, before, after []*ir.Operation) *ImpactReport {
	report := &ImpactReport{
		Edited:  []*ir.Operation{},
		Added:   []*ir.Operation{},
		Removed: []*ir.Operation{},
	}

	lines := make(map[string][]int, len(changes))
	for _, change := range changes {
		lines[change.Path] = append(lines[change.Path], change.ChangedLines...)
	}

	previous := make(map[string]*ir.Operation)
	for _, op := range before {
		if _, ok := lines[op.File]; ok {
			previous[key(op)] = op
		}
	}

	seen := make(map[string]bool)
	for _, op := range after {
		k := key(op)
		seen[k] = true
		switch {
		case previous[k] == nil:
			report.Added = append(report.Added, op)
		case isAffected(op, lines[op.File]), previous[k].Documentation != op.Documentation:
			report.Edited = append(report.Edited, op)
		default:
			report.Unchanged++
		}
	}
	for k, op := range previous {
		if !seen[k] {
			report.Removed = append(report.Removed, op)
		}
	}
	sort.Slice(report.Removed, func(i, j int) bool {
		return key(report.Removed[i]) < key(report.Removed[j])
	})

	return report
}

// key identifies an operation across edits that move it within its file.
func key(op *ir.Operation) string {
	return op.File + ":" + op.ClassName + "." + op.MethodName
}

func isAffected(op *ir.Operation, lines []int) bool {
	end := op.EndLine
	if end < op.Line {
		end = op.Line
	}
	for _, line := range lines {
		if line >= op.Line && line <= end {
			return true
		}
	}
	return false
}
