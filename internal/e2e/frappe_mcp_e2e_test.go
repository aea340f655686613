// Package e2e walks the whole pipeline over a realistic fixture app:
// catalog, usage scan, snapshot persistence, store lookups and symbol
// search, end to end.
package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvie/frappe-mcp/internal/analysis"
	"github.com/anvie/frappe-mcp/internal/config"
	"github.com/anvie/frappe-mcp/internal/refs"
	"github.com/anvie/frappe-mcp/internal/search"
)

// fixtureApp builds a two-module app with self-record controllers, bound
// variables, an inline chain, type hints and frontend files.
func fixtureApp(t *testing.T) *config.Config {
	t.Helper()
	bench := t.TempDir()
	appDir := filepath.Join(bench, "apps", "shopapp", "shopapp")

	files := map[string]string{
		"modules.txt": "Billing\nInventory\n",

		"billing/doctype/invoice/invoice.json": `{"name": "Invoice", "module": "Billing"}`,
		"billing/doctype/invoice/invoice.py": strings.Join([]string{
			"import frappe",
			"from frappe.model.document import Document",
			"from frappe.types import DF",
			"",
			"",
			"class Invoice(Document):",
			"    # begin: auto-generated types",
			"    customer: DF.Link | None",
			"    total: DF.Currency",
			"    # end: auto-generated types",
			"",
			"    def validate(self):",
			"        pass",
			"",
			"",
			"def on_submit(doc, method):",
			"    doc.total = doc.total + doc.tax",
			"    if doc.get(\"customer\"):",
			"        doc.set(\"status\", \"Submitted\")",
		}, "\n"),
		"billing/doctype/invoice/invoice.js": strings.Join([]string{
			"frappe.ui.form.on(\"Invoice\", {",
			"    refresh(frm) {",
			"    },",
			"});",
		}, "\n"),

		"inventory/doctype/stock_entry/stock_entry.json": `{"name": "Stock Entry"}`,
		"inventory/doctype/stock_entry/stock_entry.py": strings.Join([]string{
			"import frappe",
			"",
			"",
			"def restock(name):",
			"    entry = frappe.get_doc(\"Stock Entry\", name)",
			"    entry.warehouse",
			"    entry.items.append(row)",
			"    qty = frappe.get_doc(\"Stock Entry\", name).get(\"qty\")",
		}, "\n"),

		"api/billing_api.py": strings.Join([]string{
			"import frappe",
			"",
			"",
			"def outstanding(customer):",
			"    inv = frappe.get_doc({'doctype': \"Invoice\", 'customer': customer})",
			"    return inv.outstanding_amount",
		}, "\n"),
	}
	for rel, content := range files {
		full := filepath.Join(appDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	cfg := config.Default()
	cfg.FrappeBenchDir = bench
	cfg.AppRelativePath = filepath.Join("apps", "shopapp")
	cfg.AppName = "shopapp"
	cfg.AnalysisFile = filepath.Join(bench, "analyzed_output.toml")
	cfg.AppAbsolutePath = filepath.Join(bench, "apps", "shopapp")
	return cfg
}

func TestFullPipeline(t *testing.T) {
	cfg := fixtureApp(t)

	store := analysis.NewStore(cfg)
	require.NoError(t, store.EnsureFresh())

	// Catalog side: both modules, canonical names from metadata.
	assert.Len(t, store.Modules(), 2)
	assert.Len(t, store.ListDoctypes(""), 2)
	assert.Len(t, store.ListDoctypes("Billing"), 1)

	inv, _, ok := store.GetDoctype("invoice")
	require.True(t, ok)
	assert.Equal(t, "Invoice", inv.Name)
	assert.Equal(t, "apps/shopapp/billing/doctype/invoice/invoice.py", inv.BackendFile)
	assert.NotEmpty(t, inv.FrontendFile)

	// Self-record accesses in the controller file.
	total := store.LookupFieldUsage("Invoice", "total", 0)
	require.True(t, total.Found)
	assert.GreaterOrEqual(t, total.Total, 2)

	status := store.LookupFieldUsage("Invoice", "status", 0)
	require.True(t, status.Found)
	assert.Equal(t, refs.KindSet, status.Occurrences[0].Kind)

	// Type hints become occurrences carrying the declared type.
	hinted := store.LookupFieldUsage("Invoice", "customer", 0)
	require.True(t, hinted.Found)
	kinds := make([]string, 0, len(hinted.Occurrences))
	for _, occ := range hinted.Occurrences {
		kinds = append(kinds, occ.Kind)
	}
	assert.Contains(t, kinds, refs.KindTypeHint+":Link")

	// Bound variables, dict-form binding and the inline chain.
	warehouse := store.LookupFieldUsage("Stock Entry", "warehouse", 0)
	assert.True(t, warehouse.Found)
	outstanding := store.LookupFieldUsage("Invoice", "outstanding_amount", 0)
	assert.True(t, outstanding.Found)
	qty := store.LookupFieldUsage("Stock Entry", "qty", 0)
	require.True(t, qty.Found)
	assert.Equal(t, refs.InlineVar, qty.Occurrences[0].Var)

	// Unknown doctype resolves to a suggestion, not an error.
	miss := store.LookupFieldUsage("Invoize", "total", 0)
	assert.False(t, miss.Found)
	assert.Equal(t, "Invoice", miss.Suggestion)

	// The snapshot on disk round-trips to the same usage data.
	back, err := analysis.Load(cfg.AnalysisFile)
	require.NoError(t, err)
	require.NotNil(t, back.SymbolRefs)
	assert.Equal(t, total.Total, len(back.SymbolRefs.Doctypes["Invoice"].Fields["total"]))

	// Symbol search over the same tree.
	engine := search.New(cfg.AppRoot())
	matches, err := engine.Search("outstanding_amount", search.Options{Scope: search.ScopeBackend})
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "shopapp/api/billing_api.py", matches[0].File)
	assert.Contains(t, engine.Snippet(matches[0], cfg.SnippetContext), "→")

	sigs, err := engine.FindSignatures("outstanding", search.ScopeBackend, nil)
	require.NoError(t, err)
	require.Len(t, sigs, 1)
}
