// Package content converts document blocks into the PHP-hosted markup
// fragments embedded in each article page.
package content

import (
	"strings"

	"git.home.luguber.info/inful/ncms/internal/notion"
)

// CoverEmoji marks a callout as a cover image placeholder.
const CoverEmoji = "\U0001F5BC\uFE0F"

// Block is one renderable content unit. The set of implementations is
// closed: Heading, Paragraph, ListItem, Callout, Table and Unsupported.
type Block interface {
	block()
}

// Heading is a top-level heading.
type Heading struct{ Text string }

// Paragraph is a body paragraph. Empty paragraphs render nothing.
type Paragraph struct{ Text string }

// ListItem is one bulleted or numbered item.
type ListItem struct {
	Text    string
	Ordered bool
}

// Callout is a cover-image callout; its text becomes the image alt text.
type Callout struct{ Text string }

// Table is a reference to a table whose rows are fetched at render time.
type Table struct{ ID string }

// Unsupported is any block type without a markup mapping.
type Unsupported struct{ Type string }

func (Heading) block()     {}
func (Paragraph) block()   {}
func (ListItem) block()    {}
func (Callout) block()     {}
func (Table) block()       {}
func (Unsupported) block() {}

// FromNotion maps one source block to its variant. Blocks whose declared
// payload is missing become Unsupported.
func FromNotion(b notion.Block) Block {
	switch b.Type {
	case notion.TypeHeading1:
		if b.Heading1 != nil {
			return Heading{Text: notion.PlainText(b.Heading1.RichText)}
		}
	case notion.TypeParagraph:
		if b.Paragraph != nil {
			return Paragraph{Text: notion.PlainText(b.Paragraph.RichText)}
		}
	case notion.TypeBulletedListItem:
		if b.BulletedListItem != nil {
			return ListItem{Text: notion.PlainText(b.BulletedListItem.RichText)}
		}
	case notion.TypeNumberedListItem:
		if b.NumberedListItem != nil {
			return ListItem{Text: notion.PlainText(b.NumberedListItem.RichText), Ordered: true}
		}
	case notion.TypeCallout:
		if b.Callout != nil && isCover(b.Callout.Icon) {
			return Callout{Text: notion.PlainText(b.Callout.RichText)}
		}
	case notion.TypeTable:
		return Table{ID: b.ID}
	}
	return Unsupported{Type: b.Type}
}

// Convert maps source blocks in order.
func Convert(blocks []notion.Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, FromNotion(b))
	}
	return out
}

// isCover accepts the picture-frame emoji with or without its variation selector.
func isCover(icon *notion.Icon) bool {
	if icon == nil || icon.Type != "emoji" {
		return false
	}
	return strings.TrimSuffix(icon.Emoji, "\uFE0F") == strings.TrimSuffix(CoverEmoji, "\uFE0F")
}
