package catalog

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Severity grades a lint diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single authoring problem found in a content document.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Page     int      `json:"page,omitempty"` // 1-based, 0 for the whole document
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	loc := "document"
	if d.Page > 0 {
		loc = fmt.Sprintf("page %d", d.Page)
	}
	if d.Line > 0 {
		loc += fmt.Sprintf(" (line %d)", d.Line)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, loc, d.Message)
}

// HasErrors reports whether any diagnostic would stop the document from
// loading.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// voidElements never have a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Lint inspects a document for problems a content author would want to
// know about. Only missing pages and blank titles are errors; everything
// else is advisory. Snippet code is never inspected beyond emptiness.
func Lint(doc *Document) []Diagnostic {
	var diags []Diagnostic

	if strings.TrimSpace(doc.Language) == "" {
		diags = append(diags, Diagnostic{
			Severity: SeverityInfo,
			Message:  "no language set, the editor.language setting will be used",
		})
	}

	if len(doc.Pages) == 0 {
		return append(diags, Diagnostic{Severity: SeverityError, Message: "document has no pages"})
	}

	seen := make(map[string]int, len(doc.Pages))
	for i, p := range doc.Pages {
		page := i + 1
		at := func(sev Severity, format string, args ...interface{}) {
			diags = append(diags, Diagnostic{
				Severity: sev,
				Page:     page,
				Line:     p.Line,
				Message:  fmt.Sprintf(format, args...),
			})
		}

		title := norm.NFC.String(strings.TrimSpace(p.Title))
		if title == "" {
			at(SeverityError, "title is required")
		} else if first, dup := seen[title]; dup {
			at(SeverityWarning, "title %q duplicates page %d", title, first)
		} else {
			seen[title] = page
		}

		if strings.TrimSpace(p.Code) == "" {
			at(SeverityWarning, "code is empty")
		}

		if p.Body != "" && p.Markdown != "" {
			at(SeverityInfo, "both body and markdown are set, markdown is appended after body")
		}

		for _, problem := range checkMarkup(p.Body) {
			at(SeverityWarning, "body markup: %s", problem)
		}
	}

	return diags
}

// checkMarkup reports unbalanced tags in a fragment of HTML. It does not
// sanitize or otherwise judge the markup.
func checkMarkup(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	var problems []string
	var open []string

	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				problems = append(problems, z.Err().Error())
			}
			for i := len(open) - 1; i >= 0; i-- {
				problems = append(problems, fmt.Sprintf("<%s> is never closed", open[i]))
			}
			return problems
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if !voidElements[tag] {
				open = append(open, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if len(open) > 0 && open[len(open)-1] == tag {
				open = open[:len(open)-1]
				continue
			}
			problems = append(problems, fmt.Sprintf("unexpected </%s>", tag))
		}
	}
}
