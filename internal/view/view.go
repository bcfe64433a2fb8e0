// Package view projects the navigation state into what the browser shows:
// the page heading, the raw body markup, the editor widget configuration,
// and the Previous/Next controls with the position indicator.
package view

import (
	"github.com/conneroisu/typetour/internal/catalog"
)

// DefaultLoaderURL is where the browser fetches the Monaco editor from.
const DefaultLoaderURL = "https://cdn.jsdelivr.net/npm/monaco-editor@0.52.0/min/vs"

// Source is the navigation state a view is projected from.
type Source interface {
	Current() catalog.Page
	Cursor() int
	Len() int
	HasPrevious() bool
	HasNext() bool
	Position() string
	Language() string
}

// Options are the static editor settings. They are the same for every page.
type Options struct {
	Height    int
	Width     string
	Language  string // used when the catalog does not name one
	Theme     string
	FontSize  int
	LoaderURL string
}

// EditorOptions mirrors the widget's own options object.
type EditorOptions struct {
	FontSize int `json:"fontSize"`
}

// Editor is the configuration handed to the editor widget.
type Editor struct {
	Height    int           `json:"height"`
	Width     string        `json:"width"`
	Language  string        `json:"language"`
	Theme     string        `json:"theme"`
	Options   EditorOptions `json:"options"`
	Value     string        `json:"value"`
	LoaderURL string        `json:"loaderUrl"`
}

// Control is a navigation button.
type Control struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// View is everything needed to draw one page.
type View struct {
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Code     string  `json:"code"`
	Editor   Editor  `json:"editor"`
	Previous Control `json:"previous"`
	Next     Control `json:"next"`
	Position string  `json:"position"`
	Cursor   int     `json:"cursor"`
	Total    int     `json:"total"`
}

// Project builds the view of the current page.
func Project(src Source, opts Options) View {
	page := src.Current()

	language := src.Language()
	if language == "" {
		language = opts.Language
	}
	loader := opts.LoaderURL
	if loader == "" {
		loader = DefaultLoaderURL
	}

	return View{
		Title: page.Title,
		Body:  page.Body,
		Code:  page.Code,
		Editor: Editor{
			Height:    opts.Height,
			Width:     opts.Width,
			Language:  language,
			Theme:     opts.Theme,
			Options:   EditorOptions{FontSize: opts.FontSize},
			Value:     page.Code,
			LoaderURL: loader,
		},
		Previous: Control{Label: "Previous", Enabled: src.HasPrevious()},
		Next:     Control{Label: "Next", Enabled: src.HasNext()},
		Position: src.Position(),
		Cursor:   src.Cursor(),
		Total:    src.Len(),
	}
}
