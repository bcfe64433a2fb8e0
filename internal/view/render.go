package view

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Assets holds the stylesheet and the editor bootstrap script.
//
//go:embed static/tour.css static/tour.js
var Assets embed.FS

// Page renders the complete HTML document for v.
func Page(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(v.Title)+` - typetour</title>`+
			`<link rel="stylesheet" href="/static/tour.css"></head><body><main class="tour">`); err != nil {
			return err
		}

		for _, c := range []templ.Component{Heading(v), Body(v), EditorMount(v), Controls(v)} {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</main><script src="`+templ.EscapeString(v.Editor.LoaderURL)+`/loader.js"></script>`+
			`<script src="/static/tour.js"></script></body></html>`)
		return err
	})
}

// Heading renders the page title. The title is escaped.
func Heading(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1 id="tour-title">`+templ.EscapeString(v.Title)+`</h1>`)
		return err
	})
}

// Body renders the page body as trusted raw markup. No sanitization is
// applied; content authors own what goes in here.
func Body(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="tour-body">`); err != nil {
			return err
		}
		if err := templ.Raw(v.Body).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// EditorMount renders the editor region: a JSON configuration island for
// the bootstrap script, and a plain form that works without it.
func EditorMount(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		config, err := json.Marshal(v.Editor)
		if err != nil {
			return fmt.Errorf("encoding editor config: %w", err)
		}

		var b strings.Builder
		b.WriteString(`<div class="tour-editor">`)
		b.WriteString(`<script type="application/json" id="tour-editor-config">`)
		// json.Marshal escapes <, > and &, so the island cannot close the script tag.
		b.Write(config)
		b.WriteString(`</script>`)
		fmt.Fprintf(&b, `<div id="tour-editor" data-page="%d" style="height:%dpx;width:%s"></div>`,
			v.Cursor+1, v.Editor.Height, templ.EscapeString(v.Editor.Width))
		b.WriteString(`<noscript><form method="post" action="/code" class="tour-fallback">`)
		fmt.Fprintf(&b, `<textarea name="code" rows="20" spellcheck="false" data-language="%s">%s</textarea>`,
			templ.EscapeString(v.Editor.Language), templ.EscapeString(v.Code))
		b.WriteString(`<button class="tour-button" type="submit">Save</button></form></noscript>`)
		b.WriteString(`</div>`)

		_, err = io.WriteString(w, b.String())
		return err
	})
}

// Controls renders the Previous/Next buttons around the position indicator.
func Controls(v View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<nav class="tour-button-group">`)
		writeButton(&b, "/previous", "tour-previous", v.Previous)
		fmt.Fprintf(&b, `<span id="tour-position">%s</span>`, templ.EscapeString(v.Position))
		writeButton(&b, "/next", "tour-next", v.Next)
		b.WriteString(`</nav>`)
		b.WriteString(`<p id="tour-status" class="tour-status" role="status"></p>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeButton(b *strings.Builder, action, id string, c Control) {
	fmt.Fprintf(b, `<form method="post" action="%s"><button class="tour-button" id="%s" type="submit"`, action, id)
	if !c.Enabled {
		b.WriteString(` disabled`)
	}
	fmt.Fprintf(b, `>%s</button></form>`, templ.EscapeString(c.Label))
}
