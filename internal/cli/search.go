package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/repolens/internal/query"
)

var (
	searchMode    string
	searchGlob    string
	searchKind    string
	searchContext int
	searchMax     int
	searchRegex   bool
	searchMerge   bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search analyzed files by text, symbol, or relevance",
	Long: `Search builds a session index from the current annotation cache and
queries it. The index is never written to disk.

Modes:
  text       - scan file lines; exact matches rank above case-insensitive
  symbol     - match declared symbol names from file minimaps
  relevance  - full-text relevance ranking over indexed lines

Examples:
  repolens search "cache_lookup"
  repolens search --mode symbol --kind function cacheLookup
  repolens search --mode relevance "retry backoff jitter"
  repolens search --glob "src/**/*.py" --context 3 parse
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "text", "Search mode: text, symbol, or relevance")
	searchCmd.Flags().StringVarP(&searchGlob, "glob", "g", "", "Restrict results to paths matching this glob")
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "Symbol kind filter for symbol mode (function, method, class, type)")
	searchCmd.Flags().IntVarP(&searchContext, "context", "C", -1, "Context lines around each match (-1 uses config)")
	searchCmd.Flags().IntVarP(&searchMax, "max", "n", 0, "Maximum results (0 uses config)")
	searchCmd.Flags().BoolVarP(&searchRegex, "regex", "e", false, "Treat the query as a regular expression (text mode)")
	searchCmd.Flags().BoolVar(&searchMerge, "merge", false, "Merge nearby matches in the same file into one span")
}

func runSearch(cmd *cobra.Command, args []string) error {
	sess, err := newSession(nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	idx, err := buildIndex(sess)
	if err != nil {
		return err
	}

	contextLines := sess.cfg.Query.ContextLines
	if searchContext >= 0 {
		contextLines = searchContext
	}
	maxResults := sess.cfg.Query.MaxResults
	if searchMax > 0 {
		maxResults = searchMax
	}

	var matches []query.Match
	switch searchMode {
	case "text":
		opts := query.TextOptions{
			Regex:        searchRegex,
			PathGlob:     searchGlob,
			ContextLines: contextLines,
			MaxResults:   maxResults,
		}
		if searchMerge {
			opts.MergeGap = sess.cfg.Query.MergeGap
		}
		matches, err = idx.SearchText(args[0], opts)
	case "symbol":
		matches, err = idx.SearchSymbols(args[0], query.SemanticOptions{
			Kind:          searchKind,
			PathGlob:      searchGlob,
			ContextWindow: contextLines,
			MaxResults:    maxResults,
		})
	case "relevance":
		var searcher *query.RelevanceSearcher
		searcher, err = query.NewRelevanceSearcher(idx)
		if err != nil {
			return fmt.Errorf("failed to build relevance index: %w", err)
		}
		defer searcher.Close()
		matches, err = searcher.Search(args[0], maxResults)
	default:
		return fmt.Errorf("unknown search mode %q (want text, symbol, or relevance)", searchMode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printMatches(idx, matches)
	return nil
}

// buildIndex assembles the session query index from current cache entries.
func buildIndex(sess *session) (*query.Index, error) {
	entries, err := sess.cache.Entries()
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("annotation cache is empty; run 'repolens analyze' first")
	}
	return query.Build(entries, sess.provider), nil
}

// printMatches renders matches with their snippet and any heat markers.
func printMatches(idx *query.Index, matches []query.Match) {
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return
	}

	for _, m := range matches {
		if m.Symbol != nil {
			fmt.Printf("%s:%d  %s %s  (score %.1f)\n", m.Path, m.Line, m.Symbol.Kind, m.Symbol.Name, m.Score)
		} else {
			fmt.Printf("%s:%d  (score %.1f)\n", m.Path, m.Line, m.Score)
		}

		lines := idx.Snippet(m.Path, m.StartLine, m.EndLine)
		for i, text := range lines {
			lineNo := m.StartLine + i
			marker := " "
			if sev, ok := idx.HeatAt(m.Path, lineNo); ok {
				marker = string(sev[0]) // e=error, w=warning, i=info
			}
			fmt.Printf("  %4d %s %s\n", lineNo, marker, text)
		}
		fmt.Println()
	}
	fmt.Printf("%d match(es)\n", len(matches))
}
