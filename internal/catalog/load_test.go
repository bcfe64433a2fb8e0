package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
)

const sampleTour = `language: go
pages:
  - title: Hello
    code: |
      package main
  - title: "  Markdown  "
    markdown: "Some *emphasis*"
    code: x := 1
  - title: Raw
    body: <p>raw</p>
    markdown: "more"
    code: ""
`

func TestDefaultTour(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 17, c.Len())
	assert.Equal(t, "typescript", c.Language())
	assert.Equal(t, "Basic Syntax", c.Get(0).Title)
	assert.Equal(t, "FAQ Playground", c.Get(c.Len()-1).Title)
	assert.Equal(t, `"keyof", "in", "[property]"`, c.Get(7).Title)
	assert.Contains(t, c.Get(0).Code, "const isDone: boolean = true;")
	assert.Contains(t, c.Get(1).Code, "enum Status {\n  OK,\n  Error\n}")

	for i := 0; i < c.Len(); i++ {
		assert.Empty(t, c.Get(i).Body, "page %d", i+1)
		assert.NotEmpty(t, c.Get(i).Code, "page %d", i+1)
	}
}

func TestBuiltinTourLintsClean(t *testing.T) {
	doc, err := ParseBuiltin()
	require.NoError(t, err)
	assert.False(t, HasErrors(Lint(doc)))
}

func TestParseAndBuild(t *testing.T) {
	doc, err := Parse([]byte(sampleTour), "sample.yml")
	require.NoError(t, err)
	require.Len(t, doc.Pages, 3)
	assert.Equal(t, "sample.yml", doc.Source)
	assert.Equal(t, 3, doc.Pages[0].Line)

	c, err := doc.Build()
	require.NoError(t, err)

	assert.Equal(t, "go", c.Language())
	assert.Equal(t, "package main\n", c.Get(0).Code)
	assert.Equal(t, "Markdown", c.Get(1).Title)
	assert.Equal(t, "<p>Some <em>emphasis</em></p>\n", c.Get(1).Body)
	assert.Equal(t, "<p>raw</p><p>more</p>\n", c.Get(2).Body)
	assert.Equal(t, "", c.Get(2).Code)
}

func TestBuildNormalizesTitles(t *testing.T) {
	// "e" followed by a combining acute accent.
	doc := &Document{Pages: []PageEntry{{Title: "Cafe\u0301", Code: "x"}}}
	c, err := doc.Build()
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", c.Get(0).Title)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"bad yaml", "pages: [", tourerrors.ErrCodeContentSyntax},
		{"unknown top-level key", "pagez: []", tourerrors.ErrCodeContentSyntax},
		{"misspelled body", "pages:\n  - title: A\n    bodi: <p>x</p>\n    code: x\n", tourerrors.ErrCodeContentSyntax},
		{"misspelled markdown", "pages:\n  - title: A\n    markdwon: '*x*'\n", tourerrors.ErrCodeContentSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "broken.yml")
			require.Error(t, err)
			assert.Equal(t, tt.code, tourerrors.GetCode(err))
			assert.True(t, tourerrors.IsType(err, tourerrors.ErrorTypeContent))
			assert.Contains(t, err.Error(), "broken.yml")
		})
	}
}

func TestParseNamesUnknownPageKey(t *testing.T) {
	_, err := Parse([]byte("pages:\n  - title: A\n    code: x\n  - title: B\n    bodi: <p>x</p>\n"), "tour.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 5: unknown page key "bodi"`)
}

func TestBuildErrors(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		doc, err := Parse(nil, "empty.yml")
		require.NoError(t, err)

		_, err = doc.Build()
		require.Error(t, err)
		assert.Equal(t, tourerrors.ErrCodeContentEmpty, tourerrors.GetCode(err))
		assert.ErrorIs(t, err, ErrEmptyCatalog)
	})

	t.Run("blank title", func(t *testing.T) {
		doc, err := Parse([]byte("pages:\n  - title: ok\n  - title: ''\n    code: x\n"), "t.yml")
		require.NoError(t, err)

		_, err = doc.Build()
		require.Error(t, err)
		assert.Equal(t, tourerrors.ErrCodeTitleMissing, tourerrors.GetCode(err))
		assert.ErrorIs(t, err, ErrEmptyTitle)

		var te *tourerrors.TourError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, 2, te.Context["page"])
		assert.Equal(t, 3, te.Context["line"])
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tour.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTour), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.Equal(t, tourerrors.ErrCodeFileNotFound, tourerrors.GetCode(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileKeepsDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tour.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTour), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Len(t, doc.Pages, 3)
}

func TestOpen(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, 17, c.Len())
}
