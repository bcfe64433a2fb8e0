package view

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/typetour/internal/catalog"
	"github.com/conneroisu/typetour/internal/navigation"
)

var testOptions = Options{
	Height:   600,
	Width:    "100%",
	Language: "plaintext",
	Theme:    "vs-light",
	FontSize: 21,
}

func newNav(t *testing.T, language string) *navigation.Controller {
	t.Helper()
	c, err := catalog.New(language, []catalog.Page{
		{Title: "Basic <Syntax>", Code: "const a: number = 1;"},
		{Title: "Body", Body: `<p class="note">raw <b>html</b></p>`, Code: "</script><script>alert(1)</script>"},
		{Title: "Last", Code: "x"},
	})
	require.NoError(t, err)
	return navigation.New(c)
}

func render(t *testing.T, v View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(v).Render(context.Background(), &buf))
	return buf.String()
}

func TestProjectFirstPage(t *testing.T) {
	v := Project(newNav(t, "typescript"), testOptions)

	assert.Equal(t, "Basic <Syntax>", v.Title)
	assert.Equal(t, "", v.Body)
	assert.Equal(t, "const a: number = 1;", v.Code)
	assert.Equal(t, Editor{
		Height:    600,
		Width:     "100%",
		Language:  "typescript",
		Theme:     "vs-light",
		Options:   EditorOptions{FontSize: 21},
		Value:     "const a: number = 1;",
		LoaderURL: DefaultLoaderURL,
	}, v.Editor)
	assert.Equal(t, Control{Label: "Previous", Enabled: false}, v.Previous)
	assert.Equal(t, Control{Label: "Next", Enabled: true}, v.Next)
	assert.Equal(t, "1 / 3", v.Position)
	assert.Equal(t, 0, v.Cursor)
	assert.Equal(t, 3, v.Total)
}

func TestProjectLastPage(t *testing.T) {
	nav := newNav(t, "typescript")
	nav.Advance()
	nav.Advance()

	v := Project(nav, testOptions)
	assert.Equal(t, "Last", v.Title)
	assert.True(t, v.Previous.Enabled)
	assert.False(t, v.Next.Enabled)
	assert.Equal(t, "3 / 3", v.Position)
}

func TestProjectFallsBackToConfiguredLanguage(t *testing.T) {
	v := Project(newNav(t, ""), testOptions)
	assert.Equal(t, "plaintext", v.Editor.Language)
}

func TestProjectCustomLoader(t *testing.T) {
	opts := testOptions
	opts.LoaderURL = "/vendor/monaco/vs"
	v := Project(newNav(t, "go"), opts)
	assert.Equal(t, "/vendor/monaco/vs", v.Editor.LoaderURL)
}

func TestViewJSON(t *testing.T) {
	data, err := json.Marshal(Project(newNav(t, "typescript"), testOptions))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "1 / 3", decoded["position"])
	editor := decoded["editor"].(map[string]interface{})
	assert.Equal(t, float64(21), editor["options"].(map[string]interface{})["fontSize"])
}

func TestPageEscapesTitleAndRendersRawBody(t *testing.T) {
	nav := newNav(t, "typescript")
	out := render(t, Project(nav, testOptions))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<h1 id="tour-title">Basic &lt;Syntax&gt;</h1>`)
	assert.Contains(t, out, `<div id="tour-body"></div>`)
	assert.Contains(t, out, `<span id="tour-position">1 / 3</span>`)
	assert.Contains(t, out, `<p id="tour-status" class="tour-status" role="status"></p>`)
	assert.Contains(t, out, `id="tour-previous" type="submit" disabled>Previous</button>`)
	assert.Contains(t, out, `id="tour-next" type="submit">Next</button>`)
	assert.Contains(t, out, `style="height:600px;width:100%"`)

	nav.Advance()
	out = render(t, Project(nav, testOptions))
	assert.Contains(t, out, `<div id="tour-body"><p class="note">raw <b>html</b></p></div>`)
	assert.Contains(t, out, `<div id="tour-editor" data-page="2" style="height:600px;width:100%">`)
	assert.Contains(t, out, `id="tour-previous" type="submit">Previous</button>`)
}

func TestEditorConfigIslandCannotBreakOut(t *testing.T) {
	nav := newNav(t, "typescript")
	nav.Advance()
	out := render(t, Project(nav, testOptions))

	start := strings.Index(out, `<script type="application/json" id="tour-editor-config">`)
	require.NotEqual(t, -1, start)
	island := out[start:]
	island = island[len(`<script type="application/json" id="tour-editor-config">`):strings.Index(island, "</script>")]

	var cfg Editor
	require.NoError(t, json.Unmarshal([]byte(island), &cfg))
	assert.Equal(t, "</script><script>alert(1)</script>", cfg.Value)
	assert.Equal(t, "typescript", cfg.Language)

	assert.Contains(t, out, "&lt;/script&gt;&lt;script&gt;alert(1)&lt;/script&gt;</textarea>")
}

func TestAssetsEmbedded(t *testing.T) {
	js, err := Assets.ReadFile("static/tour.js")
	require.NoError(t, err)
	assert.Contains(t, string(js), "onDidChangeModelContent")
	// A reconnected socket realigns its session with the displayed page.
	assert.Contains(t, string(js), `type: "seek"`)

	css, err := Assets.ReadFile("static/tour.css")
	require.NoError(t, err)
	assert.Contains(t, string(css), ".tour-button:disabled")
}
