package notion

import "strings"

// Wire types for the subset of the Notion API the pipeline consumes.
// Unknown fields are ignored by the decoder.

// RichText is one styled run of text. Only the plain rendering is used.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// PlainText concatenates runs with no separator.
func PlainText(runs []RichText) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// SelectOption is the value of a select property.
type SelectOption struct {
	Name string `json:"name"`
}

// Property is a typed page property value. Exactly one of the payload
// fields is meaningful, selected by Type.
type Property struct {
	ID       string        `json:"id,omitempty"`
	Type     string        `json:"type,omitempty"`
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
}

// Page is one document record of a database.
type Page struct {
	ID         string              `json:"id"`
	Properties map[string]Property `json:"properties"`
}

// TextPayload carries the runs of paragraph, heading and list item blocks.
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
}

// Icon of a callout block.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// CalloutPayload carries a callout's runs and icon.
type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// TableRowPayload carries one row: a list of cells, each a list of runs.
type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// Block is one unit of document content. The payload field matching Type
// is populated; all others are nil.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *TextPayload     `json:"paragraph,omitempty"`
	Heading1         *TextPayload     `json:"heading_1,omitempty"`
	BulletedListItem *TextPayload     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload     `json:"numbered_list_item,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`
}

// Block type names.
const (
	TypeParagraph        = "paragraph"
	TypeHeading1         = "heading_1"
	TypeBulletedListItem = "bulleted_list_item"
	TypeNumberedListItem = "numbered_list_item"
	TypeCallout          = "callout"
	TypeTable            = "table"
	TypeTableRow         = "table_row"
)

// Filter is a database query filter on a single property.
type Filter struct {
	Property string        `json:"property"`
	Select   *SelectFilter `json:"select,omitempty"`
}

// SelectFilter matches a select property by option name.
type SelectFilter struct {
	Equals string `json:"equals"`
}

// SelectEquals builds the filter {"property":p,"select":{"equals":v}}.
func SelectEquals(property, value string) *Filter {
	return &Filter{Property: property, Select: &SelectFilter{Equals: value}}
}

type queryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type list[T any] struct {
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

func (l list[T]) cursor() string {
	if !l.HasMore || l.NextCursor == nil {
		return ""
	}
	return *l.NextCursor
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}
