package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fieldUsageLimit int

var fieldUsageCmd = &cobra.Command{
	Use:   "field-usage <doctype> <field>",
	Short: "Show where a DocType field is referenced",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		res := store.LookupFieldUsage(args[0], args[1], fieldUsageLimit)
		if !res.Found {
			fmt.Println(res.Message)
			if res.Suggestion != "" {
				fmt.Printf("Did you mean %q?\n", res.Suggestion)
			}
			return nil
		}

		fmt.Printf("%s.%s: %d occurrence(s), showing %d\n",
			res.Doctype, res.Field, res.Total, len(res.Occurrences))
		for _, occ := range res.Occurrences {
			fmt.Printf("   %s:%d  %s (%s)\n", occ.File, occ.Line, occ.Kind, occ.Var)
		}
		return nil
	},
}

func init() {
	fieldUsageCmd.Flags().IntVar(&fieldUsageLimit, "limit", 0, "maximum occurrences to show (default 10)")
}
