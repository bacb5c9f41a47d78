package minimap

import "errors"

// Status describes how extraction ended for a file. Degraded statuses are
// ordinary results, never errors.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported_language"
	StatusParseError  Status = "parse_error"
)

// Symbol is one declared construct in a source file.
type Symbol struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "function", "method", "class", "type"
	Line     int    `json:"line"` // 1-based declaration line
	Language string `json:"language"`
}

// CallEdge is a best-effort syntactic call site. Callee is the textual name
// at the call site; no cross-file resolution is attempted.
type CallEdge struct {
	Caller string `json:"caller"` // enclosing symbol, or "(file)" at top level
	Callee string `json:"callee"`
	Line   int    `json:"line"`
}

// Minimap is the compact structural summary of one file.
type Minimap struct {
	Path      string     `json:"path"`
	Language  string     `json:"language"`
	Status    Status     `json:"status"`
	Symbols   []Symbol   `json:"symbols"`
	Calls     []CallEdge `json:"calls"`
	Truncated bool       `json:"truncated,omitempty"`
}

// Caps keep pathological files from inflating cache entries. When a cap is
// hit the minimap is marked Truncated rather than failed.
const (
	maxSymbols   = 512
	maxCallEdges = 256
)

// topLevelCaller names the implicit file scope for call edges outside any
// declared symbol.
const topLevelCaller = "(file)"

// errParse signals unparseable content inside the package; the registry
// converts it to StatusParseError and never lets it escape.
var errParse = errors.New("minimap: unparseable content")
