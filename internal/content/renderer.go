package content

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/notion"
)

// ChildLister fetches the direct children of a block.
type ChildLister interface {
	ListBlockChildren(ctx context.Context, blockID string) ([]notion.Block, error)
}

// Renderer turns blocks into markup. Tables need one extra fetch of their rows.
type Renderer struct {
	source ChildLister
}

// NewRenderer creates a renderer fetching table rows from source.
func NewRenderer(source ChildLister) *Renderer {
	return &Renderer{source: source}
}

// Render processes blocks in order and concatenates their markup.
// Consecutive list items of the same kind share one list element.
// Only a failed table row fetch returns an error.
func (r *Renderer) Render(ctx context.Context, blocks []Block) (string, error) {
	var sb strings.Builder
	var openList string

	closeList := func() {
		if openList != "" {
			sb.WriteString("\t</" + openList + ">\n")
			openList = ""
		}
	}

	for _, b := range blocks {
		if !contributes(b) {
			if u, ok := b.(Unsupported); ok {
				slog.Debug("Skipping unsupported block", logfields.BlockType(u.Type))
			}
			continue
		}
		item, isItem := b.(ListItem)
		if !isItem {
			closeList()
		}

		switch v := b.(type) {
		case Heading:
			sb.WriteString("\t<h3>" + inline(v.Text) + "</h3>\n")
		case Paragraph:
			sb.WriteString("\t<p class='first-letter-high'>\n\t\t" + inline(v.Text) + "\n\t</p>\n")
		case ListItem:
			tag := "ul"
			if item.Ordered {
				tag = "ol"
			}
			if openList != tag {
				closeList()
				sb.WriteString("\t<" + tag + ">\n")
				openList = tag
			}
			sb.WriteString("\t<li><div>" + inline(v.Text) + "</div></li>\n")
		case Callout:
			sb.WriteString("<?php $alt='" + html.EscapeString(v.Text) + "'; require('../HTML/Fragment/Component_cover.php') ?>\n")
			sb.WriteString("\t<h2 class='center'><?php echo $desc; ?></h2>\n")
		case Table:
			markup, err := r.renderTable(ctx, v)
			if err != nil {
				return "", err
			}
			sb.WriteString(markup)
		}
	}
	closeList()

	return sb.String(), nil
}

// RenderBlocks converts source blocks and renders them.
func (r *Renderer) RenderBlocks(ctx context.Context, blocks []notion.Block) (string, error) {
	return r.Render(ctx, Convert(blocks))
}

func (r *Renderer) renderTable(ctx context.Context, t Table) (string, error) {
	rows, err := r.source.ListBlockChildren(ctx, t.ID)
	if err != nil {
		return "", fmt.Errorf("fetch rows of table %s: %w", t.ID, err)
	}

	var sb strings.Builder
	sb.WriteString("\t<table>\n")
	for _, row := range rows {
		if row.TableRow == nil {
			continue
		}
		sb.WriteString("\t\t<tr>")
		for _, cell := range row.TableRow.Cells {
			sb.WriteString("<td>" + html.EscapeString(notion.PlainText(cell)) + "</td>")
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("\t</table>\n")
	return sb.String(), nil
}

// inline escapes text and renders embedded newlines as line breaks.
func inline(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>\n\t\t")
}

// contributes reports whether b produces any markup. Blocks that do not
// leave an open list intact.
func contributes(b Block) bool {
	switch v := b.(type) {
	case Paragraph:
		return v.Text != ""
	case Unsupported:
		return false
	}
	return true
}
