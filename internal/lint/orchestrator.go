package lint

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultToolTimeout bounds each external tool invocation.
const DefaultToolTimeout = 20 * time.Second

// waitDelay is how long Wait may block on lingering pipe readers after the
// process is killed on context cancellation.
const waitDelay = 5 * time.Second

// Orchestrator runs external analyzers for single files under a global
// process bound. It is the only component that spawns processes and it owns
// their lifecycle end to end: launch, capture, timeout kill, cleanup.
type Orchestrator struct {
	tools   []Tool
	timeout time.Duration
	sem     *semaphore.Weighted
}

// NewOrchestrator creates an orchestrator. workers bounds how many tool
// processes may run at once across all files; 0 selects GOMAXPROCS.
// timeout of 0 selects DefaultToolTimeout.
func NewOrchestrator(tools []Tool, timeout time.Duration, workers int) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Orchestrator{
		tools:   tools,
		timeout: timeout,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

// toolResult is one tool's contribution, written to a dedicated slot so the
// fan-in needs no locking.
type toolResult struct {
	run      ToolRun
	findings []Finding
}

// Run executes every applicable tool for one file and merges their findings
// into a heatmap overlay. Tool failures degrade to per-run statuses; the
// overlay itself is always produced. Findings for the file are complete only
// once all applicable tools finished or timed out.
func (o *Orchestrator) Run(ctx context.Context, relPath, absPath, lang string) *Overlay {
	overlay := &Overlay{
		Path:         relPath,
		LineSeverity: map[int]Severity{},
		Findings:     []Finding{},
		Runs:         []ToolRun{},
		Status:       RunOK,
	}

	var applicable []Tool
	for _, t := range o.tools {
		if t.Applies(lang) {
			applicable = append(applicable, t)
		}
	}
	if len(applicable) == 0 {
		return overlay
	}

	results := make([]toolResult, len(applicable))
	g, gctx := errgroup.WithContext(ctx)
	for i, tool := range applicable {
		g.Go(func() error {
			results[i] = o.runTool(gctx, tool, absPath)
			return nil
		})
	}
	// Workers never return errors; degraded runs become statuses.
	_ = g.Wait()

	var all []Finding
	for _, res := range results {
		overlay.Runs = append(overlay.Runs, res.run)
		if res.run.Status == RunOK {
			all = append(all, res.findings...)
		}
	}
	sort.Slice(overlay.Runs, func(i, j int) bool {
		return overlay.Runs[i].Tool < overlay.Runs[j].Tool
	})

	overlay.Findings, overlay.LineSeverity = mergeFindings(all)
	overlay.Status = aggregateStatus(overlay.Runs)
	return overlay
}

// runTool executes one tool under the global semaphore with a per-run
// deadline. The process is force-killed when the deadline or the caller's
// context expires; Wait is bounded by waitDelay so no zombie survives.
func (o *Orchestrator) runTool(ctx context.Context, tool Tool, absPath string) toolResult {
	res := toolResult{run: ToolRun{Tool: tool.Name(), Status: RunOK}}

	if _, err := exec.LookPath(tool.Name()); err != nil {
		res.run.Status = RunToolMissing
		return res
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		res.run.Status = RunToolError
		return res
	}
	defer o.sem.Release(1)

	tctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := tool.Command(tctx, absPath)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if tctx.Err() != nil {
		res.run.Status = RunTimeout
		return res
	}
	if runErr != nil {
		// Linters exit non-zero when they have findings; only a missing
		// payload marks the run as failed.
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || stdout.Len() == 0 {
			res.run.Status = RunToolError
			return res
		}
	}

	payload := bytes.TrimSpace(stdout.Bytes())
	if len(payload) == 0 {
		// Clean exit with no output means no findings.
		return res
	}

	findings, err := tool.Parse(payload)
	if err != nil {
		res.run.Status = RunToolError
		return res
	}
	res.findings = findings
	return res
}

// aggregateStatus folds per-tool outcomes into the overlay status. Any tool
// completing normally keeps the overlay usable; otherwise the most severe
// degradation wins.
func aggregateStatus(runs []ToolRun) RunStatus {
	if len(runs) == 0 {
		return RunOK
	}
	worst := RunOK
	rank := map[RunStatus]int{RunOK: 0, RunToolMissing: 1, RunToolError: 2, RunTimeout: 3}
	for _, run := range runs {
		if run.Status == RunOK {
			return RunOK
		}
		if rank[run.Status] > rank[worst] {
			worst = run.Status
		}
	}
	return worst
}
