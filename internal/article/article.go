package article

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Article is one publishable document, fully rendered.
type Article struct {
	ID          string
	Slug        string
	Status      string
	Label       string
	Title       string
	Description string
	JS          string
	Content     string
}

// Property names read from each page.
const (
	PropertySlug        = "Id"
	PropertyLabel       = "Label"
	PropertyTitle       = "Title"
	PropertyDescription = "Description"
	PropertyJS          = "JS"
)

// JSEnabled reports whether the page script should be included.
func (a Article) JSEnabled() bool { return a.JS == "1" }

// FallbackName derives a path-safe name from a title: lower-cased with
// spaces replaced by underscores.
func FallbackName(title string) string {
	return strings.ReplaceAll(cases.Lower(language.Und).String(title), " ", "_")
}
