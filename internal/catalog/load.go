package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	tourerrors "github.com/conneroisu/typetour/internal/errors"
)

//go:embed content/tour.yml
var builtinTour []byte

// BuiltinSource names the embedded tour in errors and diagnostics.
const BuiltinSource = "builtin:tour.yml"

// Document is a parsed content file, before it is turned into a Catalog.
type Document struct {
	Source   string      `yaml:"-"`
	Language string      `yaml:"language"`
	Pages    []PageEntry `yaml:"pages"`
}

// PageEntry is one page as written by a content author.
type PageEntry struct {
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
	Markdown string `yaml:"markdown"`
	Code     string `yaml:"code"`

	// Line is the line of the page entry in the source file.
	Line int `yaml:"-"`
}

var pageKeys = map[string]bool{"title": true, "body": true, "markdown": true, "code": true}

// UnmarshalYAML records the source line of each page. Node.Decode does not
// carry the decoder's KnownFields setting, so unknown keys are checked here.
func (p *PageEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			if !pageKeys[key.Value] {
				return fmt.Errorf("line %d: unknown page key %q", key.Line, key.Value)
			}
		}
	}

	type plain PageEntry
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*p = PageEntry(decoded)
	p.Line = value.Line
	return nil
}

// Parse decodes a content document. Unknown top-level keys are rejected so
// that a misspelled section does not silently drop content.
func Parse(data []byte, source string) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, tourerrors.NewContentError(tourerrors.ErrCodeContentSyntax,
			"cannot parse content file", err).WithPath(source)
	}
	doc.Source = source

	return &doc, nil
}

// Build converts the document into a catalog. Titles are trimmed and
// normalized to NFC. Markdown is rendered to HTML and appended to the raw
// body. Code is kept byte for byte.
func (d *Document) Build() (*Catalog, error) {
	if len(d.Pages) == 0 {
		return nil, tourerrors.NewContentError(tourerrors.ErrCodeContentEmpty,
			"content file has no pages", ErrEmptyCatalog).WithPath(d.Source)
	}

	md := goldmark.New()
	pages := make([]Page, 0, len(d.Pages))

	for i, entry := range d.Pages {
		title := norm.NFC.String(strings.TrimSpace(entry.Title))
		if title == "" {
			return nil, tourerrors.NewContentError(tourerrors.ErrCodeTitleMissing,
				"page title is required", ErrEmptyTitle).
				WithPath(d.Source).
				WithContext("page", i+1).
				WithContext("line", entry.Line)
		}

		body := entry.Body
		if entry.Markdown != "" {
			var buf bytes.Buffer
			if err := md.Convert([]byte(entry.Markdown), &buf); err != nil {
				return nil, tourerrors.NewContentError(tourerrors.ErrCodeMarkdown,
					"cannot render markdown", err).
					WithPath(d.Source).
					WithContext("page", i+1)
			}
			body += buf.String()
		}

		pages = append(pages, Page{Title: title, Body: body, Code: entry.Code})
	}

	return New(d.Language, pages)
}

// ReadFile reads and parses the content document stored at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, tourerrors.NewContentError(tourerrors.ErrCodeFileNotFound,
				"content file not found", err).WithPath(path)
		}
		return nil, tourerrors.Wrap(err, tourerrors.ErrorTypeIO, tourerrors.ErrCodeFileNotFound,
			"cannot read content file").WithPath(path)
	}
	return Parse(data, path)
}

// LoadFile reads, parses, and builds the catalog stored at path.
func LoadFile(path string) (*Catalog, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// ParseBuiltin returns the embedded tour as a document.
func ParseBuiltin() (*Document, error) {
	return Parse(builtinTour, BuiltinSource)
}

// Default returns the embedded TypeScript tour.
func Default() (*Catalog, error) {
	doc, err := ParseBuiltin()
	if err != nil {
		return nil, fmt.Errorf("builtin tour: %w", err)
	}
	return doc.Build()
}

// Open loads the catalog at path, or the embedded tour when path is empty.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}
