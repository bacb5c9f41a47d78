package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/repolens/internal/watch"
)

var (
	quietFlag bool
	watchFlag bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the repository into per-file annotations",
	Long: `Analyze fingerprints every candidate file and produces its annotations:
a structural minimap (symbols and call edges) and a lint heatmap from
external tools. Results are cached by content fingerprint, so unchanged
files are free on repeat runs.

Examples:
  # Analyze the current directory
  repolens analyze

  # Analyze without progress output
  repolens analyze --quiet

  # Keep watching and re-analyze files as they change
  repolens analyze --watch
`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	analyzeCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-analyze incrementally")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling analysis...")
		cancel()
	}()

	sess, err := newSession(NewCLIProgressReporter(quietFlag))
	if err != nil {
		return err
	}
	defer sess.Close()

	paths, err := sess.discovery.Discover()
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	results, _, err := sess.engine.AnalyzeAll(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		for _, res := range results {
			if res.Skipped != "" {
				log.Printf("skipped %s: %s", res.Path, res.Skipped)
			}
		}
	}

	if watchFlag {
		watcher, err := watch.New(sess.engine, sess.discovery, sess.rootDir)
		if err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer watcher.Stop()
		watcher.Start(ctx)

		if !quietFlag {
			log.Println("Watching for changes. Press Ctrl+C to stop.")
		}
		<-ctx.Done()
	}

	return nil
}
