package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/anvie/frappe-mcp/internal/analysis"
	"github.com/anvie/frappe-mcp/internal/config"
)

var (
	// Version is set by build flags.
	Version = "dev"

	cfgFile string
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "frappe-mcp",
	Short: "Heuristic DocType field-usage indexer for Frappe apps",
	Long: `frappe-mcp indexes a Frappe application without parsing Python: it
catalogs DocTypes from the module manifest, infers variable-to-DocType
bindings from constructor calls, and records every field access it can
attribute. The resulting snapshot answers where a field is read, written
or declared.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()

		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logrus.WithError(err).Warn("failed to load config, using defaults")
			cfg = config.Default()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./frappe-mcp.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(doctypesCmd)
	rootCmd.AddCommand(fieldUsageCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(registerCmd)
}

// openStore loads the persisted snapshot and rebuilds it when the app's
// sources have changed since it was written.
func openStore() (*analysis.Store, error) {
	s := analysis.NewStore(cfg)
	if err := s.Load(); err != nil {
		return nil, err
	}
	if err := s.EnsureFresh(); err != nil {
		return nil, err
	}
	return s, nil
}
