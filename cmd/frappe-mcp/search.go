package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/search"
)

var (
	searchScope string
	searchFuzzy bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search for a symbol across the app source files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := search.New(cfg.AppRoot())
		matches, err := engine.Search(args[0], search.Options{
			Scope:          search.Scope(searchScope),
			Fuzzy:          searchFuzzy,
			Limit:          searchLimit,
			IgnorePatterns: cfg.IgnorePatterns,
		})
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Printf("No matches for %q\n", args[0])
			return nil
		}

		fmt.Printf("Found %d match(es) for %q:\n", len(matches), args[0])
		for i, m := range matches {
			fmt.Printf("\n%d. %s:%d\n", i+1, m.File, m.Line)
			if snippet := engine.Snippet(m, cfg.SnippetContext); snippet != "" {
				fmt.Println(snippet)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchScope, "in", string(search.ScopeAll), "search scope: backend, frontend or all")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "use fuzzy matching")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "maximum matches to return (default 50)")
}
