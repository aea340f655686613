package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/docs"
)

var (
	docsDir      string
	docsCategory string
	docsFuzzy    bool
	docsLimit    int
	docsList     bool
	docsShow     string
)

var docsCmd = &cobra.Command{
	Use:   "docs [query]",
	Short: "Search a directory of markdown reference docs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := docsDir
		if dir == "" {
			dir = cfg.DocsDir
		}
		if dir == "" {
			return fmt.Errorf("no docs directory configured, set docs_dir or pass --dir")
		}

		lib, err := docs.Build(dir)
		if err != nil {
			return err
		}

		if docsShow != "" {
			content, err := lib.Get(docsShow)
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		}

		if docsList {
			categories := lib.List(docsCategory)
			names := make([]string, 0, len(categories))
			for name := range categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s:\n", name)
				for _, path := range categories[name] {
					fmt.Printf("   %s\n", path)
				}
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("a query is required unless --list or --show is given")
		}
		results := lib.Search(args[0], docsCategory, docsFuzzy, docsLimit)
		if len(results) == 0 {
			fmt.Printf("No documentation found for %q\n", args[0])
			return nil
		}
		fmt.Printf("Found %d result(s) for %q:\n", len(results), args[0])
		for _, r := range results {
			fmt.Printf("\n- %s (%s) %s\n  %s\n", r.Title, r.Category, r.Path, r.Snippet)
		}
		return nil
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsDir, "dir", "", "docs directory (default: docs_dir from config)")
	docsCmd.Flags().StringVar(&docsCategory, "category", "", "restrict to one category")
	docsCmd.Flags().BoolVar(&docsFuzzy, "fuzzy", false, "use fuzzy matching")
	docsCmd.Flags().IntVar(&docsLimit, "limit", 0, "maximum results (default 50)")
	docsCmd.Flags().BoolVar(&docsList, "list", false, "list documents by category instead of searching")
	docsCmd.Flags().StringVar(&docsShow, "show", "", "print one document by path")
}
