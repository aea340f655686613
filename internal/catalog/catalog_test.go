package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeApp lays out a minimal Frappe app tree under dir/<app>/<app>/.
func writeApp(t *testing.T, root, app string, files map[string]string) string {
	t.Helper()
	appRoot := filepath.Join(root, app)
	for rel, content := range files {
		full := filepath.Join(appRoot, app, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return appRoot
}

func TestBuildCatalog(t *testing.T) {
	root := writeApp(t, t.TempDir(), "erp", map[string]string{
		"modules.txt": "Billing\n\nMissing Module\n",
		"billing/doctype/invoice/invoice.json": `{"doctype": "DocType", "name": "Invoice"}`,
		"billing/doctype/invoice/invoice.py":   "class Invoice(Document):\n\tpass\n",
		"billing/doctype/invoice/invoice.js":   "frappe.ui.form.on('Invoice', {});\n",
	})

	cat, err := Build(root, "erp")
	require.NoError(t, err)

	require.Len(t, cat.Modules, 1)
	assert.Equal(t, "Billing", cat.Modules[0].Name)
	assert.Equal(t, "erp/billing", cat.Modules[0].Location)

	require.Len(t, cat.Doctypes, 1)
	dt := cat.Doctypes[0]
	assert.Equal(t, "Invoice", dt.Name)
	assert.Equal(t, "Billing", dt.Module)
	assert.Equal(t, "erp/billing/doctype/invoice/invoice.py", dt.BackendFile)
	assert.Equal(t, "erp/billing/doctype/invoice/invoice.js", dt.FrontendFile)
	assert.Equal(t, "erp/billing/doctype/invoice/invoice.json", dt.MetaFile)
}

func TestMissingMetadataSkipsEntity(t *testing.T) {
	root := writeApp(t, t.TempDir(), "erp", map[string]string{
		"modules.txt":                      "Billing\n",
		"billing/doctype/orphan/orphan.py": "doc.title = 'x'\n",
	})

	cat, err := Build(root, "erp")
	require.NoError(t, err)
	assert.Empty(t, cat.Doctypes, "doctype without metadata must never appear")
}

func TestHumanizedFallbackName(t *testing.T) {
	root := writeApp(t, t.TempDir(), "erp", map[string]string{
		"modules.txt": "Billing\n",
		"billing/doctype/credit_note/credit_note.json": `{"fields": []}`,
	})

	cat, err := Build(root, "erp")
	require.NoError(t, err)
	require.Len(t, cat.Doctypes, 1)
	assert.Equal(t, "Credit Note", cat.Doctypes[0].Name)
}

func TestReservedDirsIgnored(t *testing.T) {
	root := writeApp(t, t.TempDir(), "erp", map[string]string{
		"modules.txt": "Billing\n",
		"billing/doctype/__pycache__/__pycache__.json": "{}",
		"billing/doctype/invoice/invoice.json":         `{"name": "Invoice"}`,
	})

	cat, err := Build(root, "erp")
	require.NoError(t, err)
	require.Len(t, cat.Doctypes, 1)
	assert.Equal(t, "Invoice", cat.Doctypes[0].Name)
}

func TestMissingManifestIsFatal(t *testing.T) {
	root := filepath.Join(t.TempDir(), "erp")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "erp"), 0o755))

	_, err := Build(root, "erp")
	assert.True(t, errors.Is(err, ErrManifestMissing), "got %v", err)
}

func TestMissingRootIsFatal(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}

func TestByNameAndSuggest(t *testing.T) {
	cat := &Catalog{Doctypes: []DocType{
		{Name: "Sales Invoice"},
		{Name: "Sales Order"},
	}}

	dt, ok := cat.ByName("sales invoice")
	assert.True(t, ok)
	assert.Equal(t, "Sales Invoice", dt.Name)

	_, ok = cat.ByName("Purchase Order")
	assert.False(t, ok)

	assert.Equal(t, "Sales Invoice", cat.Suggest("Sales Invoce"))
	assert.Equal(t, "", cat.Suggest("zzzzqqqq"))
}
