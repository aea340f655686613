package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/links"
)

var linksDepth int

var linksCmd = &cobra.Command{
	Use:   "links <doctype>",
	Short: "Show which DocTypes a DocType references through its schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		dt, suggestion, ok := store.GetDoctype(args[0])
		if !ok {
			fmt.Printf("DocType %q not found in analyzed data\n", args[0])
			if suggestion != "" {
				fmt.Printf("Did you mean %q?\n", suggestion)
			}
			return nil
		}

		graph, err := links.Analyze(store, dt.Name, linksDepth)
		if err != nil {
			return err
		}

		direct, table, sel := graph.Counts()
		fmt.Printf("Link analysis for DocType %q, depth %d\n", graph.Root, graph.Depth)
		fmt.Printf("Analyzed %d DocType(s): %d direct link(s), %d child table(s), %d select reference(s)\n",
			len(graph.Nodes), direct, table, sel)

		for _, name := range graph.DoctypeNames() {
			fmt.Printf("\n## %s\n", name)
			out := graph.Nodes[name]
			if len(out) == 0 {
				fmt.Println("   no outgoing links")
				continue
			}
			for _, l := range out {
				marker := ""
				if l.Required {
					marker = " [required]"
				}
				fmt.Printf("   - %s (%s) -> %s, %s%s\n", l.Label, l.Fieldname, l.Target, l.Kind, marker)
			}
		}
		return nil
	},
}

func init() {
	linksCmd.Flags().IntVar(&linksDepth, "depth", 0, "levels of referenced DocTypes to follow (default 2)")
}
