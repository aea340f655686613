package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/catalog"
)

var doctypesModule string

var doctypesCmd = &cobra.Command{
	Use:   "doctypes",
	Short: "List cataloged DocTypes, grouped by module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		doctypes := store.ListDoctypes(doctypesModule)
		if len(doctypes) == 0 {
			if doctypesModule != "" {
				fmt.Printf("No DocTypes found in module %q\n", doctypesModule)
			} else {
				fmt.Println("No DocTypes found in the current app")
			}
			return nil
		}

		byModule := map[string][]catalog.DocType{}
		for _, dt := range doctypes {
			byModule[dt.Module] = append(byModule[dt.Module], dt)
		}
		modules := make([]string, 0, len(byModule))
		for name := range byModule {
			modules = append(modules, name)
		}
		sort.Strings(modules)

		fmt.Printf("Found %d DocType(s) across %d module(s):\n", len(doctypes), len(byModule))
		for _, name := range modules {
			group := byModule[name]
			sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
			fmt.Printf("\n## Module: %s\n", name)
			for _, dt := range group {
				fmt.Printf("   - %s\n", dt.Name)
			}
		}
		return nil
	},
}

func init() {
	doctypesCmd.Flags().StringVar(&doctypesModule, "module", "", "only list DocTypes of this module")
}
