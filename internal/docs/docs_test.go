package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLibrary(t *testing.T, files map[string]string) *Library {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	lib, err := Build(dir)
	require.NoError(t, err)
	return lib
}

func TestBuildIndexesMarkdownOnly(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"intro.md":            "# Getting Started\n\nWelcome.\n",
		"api/rest.md":         "# REST API\n\nEndpoints.\n",
		"api/notes.txt":       "ignored\n",
		"scripting/server.md": "No heading here, just prose.\n",
	})
	assert.Equal(t, 3, lib.Len())
}

func TestBuildMissingDir(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestTitleAndCategory(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"api/rest.md":          "# REST API\n\nbody\n",
		"server_scripts.md":    "no heading\n",
		"guides/child_docs.md": "body only\n",
	})

	results := lib.Search("body", "", false, 0)
	byPath := map[string]Result{}
	for _, r := range results {
		byPath[r.Path] = r
	}

	assert.Equal(t, "REST API", byPath["api/rest.md"].Title)
	assert.Equal(t, "api", byPath["api/rest.md"].Category)
	assert.Equal(t, "Child Docs", byPath["guides/child_docs.md"].Title)
	assert.Equal(t, "guides", byPath["guides/child_docs.md"].Category)

	results = lib.Search("heading", "", false, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "Server Scripts", results[0].Title)
	assert.Equal(t, "general", results[0].Category)
}

func TestExactSearchMatchesTitleOrContent(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"a.md": "# Webhooks\n\nnothing relevant\n",
		"b.md": "# Other\n\ntrigger a webhook on save\n",
		"c.md": "# Unrelated\n\nplain text\n",
	})
	results := lib.Search("WEBHOOK", "", false, 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 100.0, r.Score)
	}
}

func TestCategoryFilter(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"api/rest.md":     "# REST\n\nshared term\n",
		"guides/intro.md": "# Intro\n\nshared term\n",
	})
	results := lib.Search("shared", "API", false, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "api/rest.md", results[0].Path)
}

func TestFuzzySearchBoostsTitle(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"a.md": "# controller hooks\n\nunrelated body\n",
		"b.md": "# Other\n\nthe word controller appears only in the body\n",
	})
	results := lib.Search("controller", "", true, 0)
	require.Len(t, results, 2)
	assert.Equal(t, "a.md", results[0].Path, "title match must rank first")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchLimit(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"a.md": "needle\n",
		"b.md": "needle\n",
		"c.md": "needle\n",
	})
	assert.Len(t, lib.Search("needle", "", false, 2), 2)
}

func TestSnippetAroundMatch(t *testing.T) {
	long := strings.Repeat("padding ", 20) + "the needle sits here" + strings.Repeat(" trailing", 20)
	lib := buildLibrary(t, map[string]string{"a.md": "# Doc\n\n" + long + "\n"})

	results := lib.Search("needle", "", false, 0)
	require.Len(t, results, 1)
	s := results[0].Snippet
	assert.Contains(t, s, "needle")
	assert.True(t, strings.HasPrefix(s, "..."), "snippet should mark a truncated head: %q", s)
	assert.True(t, strings.HasSuffix(s, "..."), "snippet should mark a truncated tail: %q", s)
	assert.NotContains(t, s, "#", "markdown markers must be stripped")
}

func TestSnippetFallbackWhenQueryOnlyInTitle(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"data_migrations.md": "First line of prose.\nSecond line.\nThird line.\n",
	})
	results := lib.Search("data migrations", "", false, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "First line of prose. Second line.", results[0].Snippet)
}

func TestSnippetClampKeepsRuneBoundary(t *testing.T) {
	// One leading ASCII byte pushes every later rune off the 150-byte cut.
	long := "x" + strings.Repeat("あ", 100)
	got := clampSnippet(long, DefaultSnippetLength)

	assert.True(t, utf8.ValidString(got), "clamp must not split a rune: %q", got)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), DefaultSnippetLength+len("..."))
}

func TestGet(t *testing.T) {
	lib := buildLibrary(t, map[string]string{"api/rest.md": "# REST\ncontent\n"})

	got, err := lib.Get("api/rest.md")
	require.NoError(t, err)
	assert.Equal(t, "# REST\ncontent\n", got)

	_, err = lib.Get("nope.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	lib := buildLibrary(t, map[string]string{
		"api/rest.md":     "x\n",
		"api/rpc.md":      "x\n",
		"guides/intro.md": "x\n",
		"root.md":         "x\n",
	})
	all := lib.List("")
	assert.Len(t, all, 3)
	assert.Len(t, all["api"], 2)
	assert.Len(t, all["general"], 1)

	onlyAPI := lib.List("api")
	assert.Len(t, onlyAPI, 1)
	assert.Len(t, onlyAPI["api"], 2)
}
