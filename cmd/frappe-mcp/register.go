package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/catalog"
)

var (
	registerModule   string
	registerBackend  string
	registerFrontend string
	registerMeta     string
)

// registerCmd records a DocType that exists outside the cataloged layout,
// e.g. one just scaffolded and not yet picked up by a rebuild.
var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Add a DocType to the analysis snapshot by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		dt := catalog.DocType{
			Name:         args[0],
			Module:       registerModule,
			BackendFile:  registerBackend,
			FrontendFile: registerFrontend,
			MetaFile:     registerMeta,
		}
		if err := store.RegisterDocType(dt); err != nil {
			return err
		}
		fmt.Printf("Registered DocType %q\n", dt.Name)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerModule, "module", "", "owning module name")
	registerCmd.Flags().StringVar(&registerBackend, "backend", "", "backend .py path, app-relative")
	registerCmd.Flags().StringVar(&registerFrontend, "frontend", "", "frontend .js path, app-relative")
	registerCmd.Flags().StringVar(&registerMeta, "meta", "", "metadata .json path, app-relative")
}
