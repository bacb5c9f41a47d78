package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Tool adapts one external analyzer: which languages it covers, how to
// invoke it for a single file, and how to parse its structured output.
// The orchestrator owns the process lifecycle; tools only describe it.
type Tool interface {
	// Name is the tool's display name and its binary name on PATH.
	Name() string
	// Applies reports whether the tool understands the language tag.
	Applies(lang string) bool
	// Command builds the invocation for one file. The context carries the
	// per-tool deadline; the orchestrator enforces termination.
	Command(ctx context.Context, absPath string) *exec.Cmd
	// Parse normalizes the tool's stdout into findings. A parse failure
	// discards the tool's contribution, never the batch.
	Parse(stdout []byte) ([]Finding, error)
}

// DefaultTools returns the built-in analyzer set.
func DefaultTools() []Tool {
	return []Tool{RuffTool{}, ESLintTool{}, ShellcheckTool{}}
}

// RuffTool runs ruff over Python files, JSON output.
type RuffTool struct{}

func (RuffTool) Name() string { return "ruff" }

func (RuffTool) Applies(lang string) bool { return lang == "python" }

func (RuffTool) Command(ctx context.Context, absPath string) *exec.Cmd {
	return exec.CommandContext(ctx, "ruff", "check", "--output-format", "json", absPath)
}

func (RuffTool) Parse(stdout []byte) ([]Finding, error) {
	var items []struct {
		Code     string `json:"code"`
		Message  string `json:"message"`
		Location struct {
			Row int `json:"row"`
		} `json:"location"`
	}
	if err := json.Unmarshal(stdout, &items); err != nil {
		return nil, fmt.Errorf("ruff output: %w", err)
	}

	findings := make([]Finding, 0, len(items))
	for _, item := range items {
		line := item.Location.Row
		if line < 1 {
			line = 1
		}
		findings = append(findings, Finding{
			Line:     line,
			Severity: ruffSeverity(item.Code),
			Message:  item.Message,
			Tool:     "ruff",
			Code:     item.Code,
		})
	}
	return findings, nil
}

// ruffSeverity maps rule-code prefixes to severities. Correctness-class
// rules (pyflakes, pycodestyle errors, bugbear) rank as errors; everything
// else, unrecognized prefixes included, ranks as a warning.
func ruffSeverity(code string) Severity {
	for _, prefix := range []string{"F", "E", "B", "SIM", "PLR"} {
		if strings.HasPrefix(code, prefix) {
			return SeverityError
		}
	}
	return SeverityWarning
}

// ESLintTool runs eslint over JavaScript/TypeScript files, JSON output.
type ESLintTool struct{}

func (ESLintTool) Name() string { return "eslint" }

func (ESLintTool) Applies(lang string) bool {
	return lang == "javascript" || lang == "typescript"
}

func (ESLintTool) Command(ctx context.Context, absPath string) *exec.Cmd {
	return exec.CommandContext(ctx, "eslint", "--format", "json", absPath)
}

func (ESLintTool) Parse(stdout []byte) ([]Finding, error) {
	var files []struct {
		FilePath string `json:"filePath"`
		Messages []struct {
			Line     int    `json:"line"`
			Severity int    `json:"severity"`
			RuleID   string `json:"ruleId"`
			Message  string `json:"message"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(stdout, &files); err != nil {
		return nil, fmt.Errorf("eslint output: %w", err)
	}

	var findings []Finding
	for _, file := range files {
		for _, msg := range file.Messages {
			line := msg.Line
			if line < 1 {
				line = 1
			}
			severity := SeverityWarning
			if msg.Severity >= 2 {
				severity = SeverityError
			}
			code := msg.RuleID
			if code == "" {
				code = "eslint"
			}
			findings = append(findings, Finding{
				Line:     line,
				Severity: severity,
				Message:  msg.Message,
				Tool:     "eslint",
				Code:     code,
			})
		}
	}
	return findings, nil
}

// ShellcheckTool runs shellcheck over shell scripts, JSON output.
type ShellcheckTool struct{}

func (ShellcheckTool) Name() string { return "shellcheck" }

func (ShellcheckTool) Applies(lang string) bool { return lang == "shell" }

func (ShellcheckTool) Command(ctx context.Context, absPath string) *exec.Cmd {
	return exec.CommandContext(ctx, "shellcheck", "--format", "json", absPath)
}

func (ShellcheckTool) Parse(stdout []byte) ([]Finding, error) {
	var items []struct {
		Line    int    `json:"line"`
		Level   string `json:"level"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(stdout, &items); err != nil {
		return nil, fmt.Errorf("shellcheck output: %w", err)
	}

	findings := make([]Finding, 0, len(items))
	for _, item := range items {
		line := item.Line
		if line < 1 {
			line = 1
		}
		var severity Severity
		switch item.Level {
		case "error":
			severity = SeverityError
		case "warning":
			severity = SeverityWarning
		default: // "info", "style"
			severity = SeverityInfo
		}
		findings = append(findings, Finding{
			Line:     line,
			Severity: severity,
			Message:  item.Message,
			Tool:     "shellcheck",
			Code:     "SC" + strconv.Itoa(item.Code),
		})
	}
	return findings, nil
}
