package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/search"
)

var signatureScope string

var signatureCmd = &cobra.Command{
	Use:   "signature <name>",
	Short: "Find function definitions by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := search.New(cfg.AppRoot())
		sigs, err := engine.FindSignatures(args[0], search.Scope(signatureScope), cfg.IgnorePatterns)
		if err != nil {
			return err
		}
		if len(sigs) == 0 {
			fmt.Printf("No function named %q found\n", args[0])
			return nil
		}
		for _, s := range sigs {
			fmt.Printf("%s:%d: %s\n", s.File, s.Line, s.Signature)
		}
		return nil
	},
}

func init() {
	signatureCmd.Flags().StringVar(&signatureScope, "in", string(search.ScopeAll), "search scope: backend, frontend or all")
}
