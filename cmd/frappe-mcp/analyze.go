package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Index the configured app and write the analysis snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := analysis.Run(cfg)
		if err != nil {
			return err
		}
		if err := a.Save(cfg.AnalysisFile); err != nil {
			return err
		}

		fmt.Printf("Cataloged %d DocType(s) across %d module(s)\n", len(a.Doctypes), len(a.Modules))
		if a.SymbolRefs != nil {
			st := a.SymbolRefs.Stats
			fmt.Printf("Scanned %d file(s), %d Python; %d field hit(s) on %d detected DocType(s)\n",
				st.FilesScanned, st.PyFiles, st.TotalFieldHits, st.DoctypesDetected)
		}
		fmt.Printf("Snapshot written to %s\n", cfg.AnalysisFile)
		return nil
	},
}
