// Package catalog holds the ordered, fixed-length list of tour pages.
//
// A catalog is built once from a content document and never resized or
// reordered. Pages are identified by position. The only mutable attribute of
// a page is its code snippet, which is overwritten in place through SetCode
// whenever the editor reports a change.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when a catalog would have no pages.
	ErrEmptyCatalog = errors.New("catalog has no pages")

	// ErrEmptyTitle is returned when a page has a blank title.
	ErrEmptyTitle = errors.New("page title is empty")
)

// Page is a single tour page.
type Page struct {
	Title string `json:"title" yaml:"title"`
	// Body is trusted raw HTML rendered unescaped above the editor. Empty
	// when the page has none.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`
	Code string `json:"code" yaml:"code"`
}

// Catalog is the ordered page list of a tour. It is not safe for concurrent
// use; each session owns its own clone.
type Catalog struct {
	pages    []Page
	language string
}

// New builds a catalog from pages tagged with the given snippet language.
// The slice is copied.
func New(language string, pages []Page) (*Catalog, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, p := range pages {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("page %d: %w", i+1, ErrEmptyTitle)
		}
	}

	owned := make([]Page, len(pages))
	copy(owned, pages)

	return &Catalog{pages: owned, language: language}, nil
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	return len(c.pages)
}

// Language returns the snippet language tag shared by every page.
func (c *Catalog) Language() string {
	return c.language
}

// Get returns the page at index. Callers keep index within [0, Len()); an
// out-of-range index is a programming error and panics.
func (c *Catalog) Get(index int) Page {
	c.mustContain(index)
	return c.pages[index]
}

// SetCode replaces the code of the page at index. Title and body are left
// untouched and the content is not inspected.
func (c *Catalog) SetCode(index int, code string) {
	c.mustContain(index)
	c.pages[index].Code = code
}

// Titles returns the page titles in order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.pages))
	for i, p := range c.pages {
		titles[i] = p.Title
	}
	return titles
}

// Pages returns a copy of all pages in order.
func (c *Catalog) Pages() []Page {
	out := make([]Page, len(c.pages))
	copy(out, c.pages)
	return out
}

// Clone returns an independent copy whose edits do not affect c.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{pages: c.Pages(), language: c.language}
}

func (c *Catalog) mustContain(index int) {
	if index < 0 || index >= len(c.pages) {
		panic(fmt.Sprintf("catalog: index %d out of range [0, %d)", index, len(c.pages)))
	}
}
