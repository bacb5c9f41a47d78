package lint

import "sort"

// Severity of a single finding. Aggregation takes the per-line maximum.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severityRank = map[Severity]int{
	SeverityInfo:    1,
	SeverityWarning: 2,
	SeverityError:   3,
}

// MaxSeverity returns the more severe of two severities.
func MaxSeverity(a, b Severity) Severity {
	if severityRank[b] > severityRank[a] {
		return b
	}
	return a
}

// RunStatus records how a tool invocation (or the whole overlay) ended.
type RunStatus string

const (
	RunOK          RunStatus = "ok"
	RunTimeout     RunStatus = "timeout"
	RunToolMissing RunStatus = "tool_missing"
	RunToolError   RunStatus = "tool_error"
)

// Finding is one normalized diagnostic from an external tool.
type Finding struct {
	Line     int      `json:"line"` // 1-based
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Tool     string   `json:"tool"`
	Code     string   `json:"code,omitempty"`
}

// ToolRun is the outcome of one tool invocation for one file.
type ToolRun struct {
	Tool   string    `json:"tool"`
	Status RunStatus `json:"status"`
}

// Overlay is the per-file lint heatmap: every retained finding plus the
// per-line aggregated severity.
type Overlay struct {
	Path         string           `json:"path"`
	LineSeverity map[int]Severity `json:"line_severity"`
	Findings     []Finding        `json:"findings"`
	Runs         []ToolRun        `json:"runs"`
	Status       RunStatus        `json:"status"`
}

// mergeFindings produces the deterministic final shape regardless of tool
// completion order: findings sorted by (line, severity desc, tool), and the
// per-line severity maximum.
func mergeFindings(findings []Finding) ([]Finding, map[int]Severity) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		ri, rj := severityRank[findings[i].Severity], severityRank[findings[j].Severity]
		if ri != rj {
			return ri > rj
		}
		return findings[i].Tool < findings[j].Tool
	})

	lines := make(map[int]Severity, len(findings))
	for _, f := range findings {
		lines[f.Line] = MaxSeverity(lines[f.Line], f.Severity)
	}
	return findings, lines
}
