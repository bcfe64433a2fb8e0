// Package navigation tracks which page of a catalog is being shown.
//
// A Controller holds a single cursor that always stays within the bounds of
// its catalog. Stepping past either end is a no-op, never a wrap-around, and
// none of the operations can fail.
package navigation

import (
	"fmt"

	"github.com/conneroisu/typetour/internal/catalog"
)

// Controller is the cursor over a catalog. It is not safe for concurrent
// use; a session goroutine owns it.
type Controller struct {
	catalog *catalog.Catalog
	cursor  int
}

// New returns a controller positioned on the first page of c. Catalogs are
// never empty, so the cursor is always valid.
func New(c *catalog.Catalog) *Controller {
	return &Controller{catalog: c}
}

// Cursor returns the index of the current page.
func (n *Controller) Cursor() int {
	return n.cursor
}

// Len returns the number of pages in the catalog.
func (n *Controller) Len() int {
	return n.catalog.Len()
}

// Language returns the catalog's snippet language.
func (n *Controller) Language() string {
	return n.catalog.Language()
}

// Current returns the page under the cursor.
func (n *Controller) Current() catalog.Page {
	return n.catalog.Get(n.cursor)
}

// Advance moves to the next page. At the last page it does nothing and
// returns false.
func (n *Controller) Advance() bool {
	if !n.HasNext() {
		return false
	}
	n.cursor++
	return true
}

// Retreat moves to the previous page. At the first page it does nothing and
// returns false.
func (n *Controller) Retreat() bool {
	if !n.HasPrevious() {
		return false
	}
	n.cursor--
	return true
}

// Seek jumps to index, clamped to the catalog bounds, and returns the
// resulting cursor.
func (n *Controller) Seek(index int) int {
	last := n.catalog.Len() - 1
	switch {
	case index < 0:
		n.cursor = 0
	case index > last:
		n.cursor = last
	default:
		n.cursor = index
	}
	return n.cursor
}

// HasPrevious reports whether the Previous control is enabled.
func (n *Controller) HasPrevious() bool {
	return n.cursor > 0
}

// HasNext reports whether the Next control is enabled.
func (n *Controller) HasNext() bool {
	return n.cursor < n.catalog.Len()-1
}

// Position returns the page indicator, e.g. "3 / 17".
func (n *Controller) Position() string {
	return fmt.Sprintf("%d / %d", n.cursor+1, n.catalog.Len())
}

// SetCode stores edited snippet text on the current page.
func (n *Controller) SetCode(code string) {
	n.catalog.SetCode(n.cursor, code)
}
