package article

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/ncms/internal/content"
	"git.home.luguber.info/inful/ncms/internal/logfields"
	"git.home.luguber.info/inful/ncms/internal/notion"
)

// Extractor turns document records into articles. Pages are processed one
// at a time in input order.
type Extractor struct {
	source         content.ChildLister
	renderer       *content.Renderer
	statusProperty string
	publishValue   string
}

// NewExtractor creates an extractor that keeps only pages whose
// statusProperty select equals publishValue.
func NewExtractor(source content.ChildLister, statusProperty, publishValue string) *Extractor {
	return &Extractor{
		source:         source,
		renderer:       content.NewRenderer(source),
		statusProperty: statusProperty,
		publishValue:   publishValue,
	}
}

// Extract returns one article per publishable page. Input pages are not
// modified. A failed block fetch aborts extraction.
func (e *Extractor) Extract(ctx context.Context, pages []notion.Page) ([]Article, error) {
	articles := make([]Article, 0, len(pages))
	for _, page := range pages {
		status := selectValue(page.Properties, e.statusProperty)
		if status != e.publishValue {
			slog.Debug("Skipping unpublishable page", logfields.ArticleID(page.ID), logfields.Status(status))
			continue
		}

		a := Article{
			ID:          page.ID,
			Slug:        titleValue(page.Properties, PropertySlug),
			Status:      status,
			Label:       richTextValue(page.Properties, PropertyLabel),
			Title:       richTextValue(page.Properties, PropertyTitle),
			Description: richTextValue(page.Properties, PropertyDescription),
			JS:          selectValue(page.Properties, PropertyJS),
		}
		if a.JS == "" {
			a.JS = "0"
		}

		blocks, err := e.source.ListBlockChildren(ctx, page.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch blocks of page %s: %w", page.ID, err)
		}
		if a.Content, err = e.renderer.RenderBlocks(ctx, blocks); err != nil {
			return nil, fmt.Errorf("render page %s: %w", page.ID, err)
		}

		slog.Info("Extracted article", logfields.Slug(a.Slug), logfields.Title(a.Title), logfields.ArticleID(a.ID))
		articles = append(articles, a)
	}
	return articles, nil
}

// Property readers return "" when the property is absent or of another type.

func titleValue(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok || (p.Type != "" && p.Type != "title") {
		return ""
	}
	return notion.PlainText(p.Title)
}

func richTextValue(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok || (p.Type != "" && p.Type != "rich_text") {
		return ""
	}
	return notion.PlainText(p.RichText)
}

func selectValue(props map[string]notion.Property, name string) string {
	p, ok := props[name]
	if !ok || p.Select == nil || (p.Type != "" && p.Type != "select") {
		return ""
	}
	return p.Select.Name
}
