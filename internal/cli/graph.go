package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/repolens/internal/query"
)

// graphCmd represents the graph command group
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Query the call graph extracted from file minimaps",
	Long: `Graph queries the directed call graph assembled from per-file call
edges. Names are matched as extracted, without cross-file resolution:
a call site records the callee name as written at that site.

Available commands:
  callers <name>  - symbols that call <name>
  callees <name>  - symbols that <name> calls`,
}

var graphCallersCmd = &cobra.Command{
	Use:   "callers <name>",
	Short: "List symbols that call the named symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(args[0], true)
	},
}

var graphCalleesCmd = &cobra.Command{
	Use:   "callees <name>",
	Short: "List symbols the named symbol calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphCallersCmd)
	graphCmd.AddCommand(graphCalleesCmd)
}

func runGraph(name string, callers bool) error {
	sess, err := newSession(nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	entries, err := sess.cache.Entries()
	if err != nil {
		return fmt.Errorf("failed to read cache entries: %w", err)
	}
	cg := query.BuildCallGraph(entries)

	var relations []query.CallRelation
	if callers {
		relations, err = cg.Callers(name)
	} else {
		relations, err = cg.Callees(name)
	}
	if err != nil {
		return fmt.Errorf("graph query failed: %w", err)
	}

	if len(relations) == 0 {
		fmt.Printf("No %s found for %q.\n", direction(callers), name)
		return nil
	}
	for _, rel := range relations {
		fmt.Printf("%s  (%s)\n", rel.Symbol, strings.Join(rel.Paths, ", "))
	}
	return nil
}

func direction(callers bool) string {
	if callers {
		return "callers"
	}
	return "callees"
}
