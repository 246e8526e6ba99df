package doccomment

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Uncategorized is the display name of members without a category marker.
const Uncategorized = "Uncategorized"

// Category is the documentation category of a member and its link slug.
type Category struct {
	Display string `json:"display"`
	Slug    string `json:"slug"`
}

// NewCategory builds a Category from a display name, defaulting empty names
// to Uncategorized.
func NewCategory(display string) Category {
	if display == "" {
		display = Uncategorized
	}
	return Category{Display: display, Slug: Slug(display)}
}

// Slug lowercases display and removes its spaces. A slug starting with
// "index" loses its first character.
func Slug(display string) string {
	slug := cases.Lower(language.Und).String(strings.ReplaceAll(display, " ", ""))
	if strings.HasPrefix(slug, "index") {
		slug = slug[1:]
	}
	return slug
}

// extractCategory detaches the first category marker found anywhere in the
// tree. Later markers stay where they are.
func extractCategory(root *Element) Category {
	marker := removeFirst(root, ofKind(KindCategory))
	if marker == nil {
		return NewCategory("")
	}
	return NewCategory(marker.InnerText())
}
