package artifacts

import (
	"context"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/article"
)

// RegistryHeader is the first line of the id-keyed registry.
var RegistryHeader = Row{"Status", "Id", "Label", "Title", "JS", "Description"}

// Registry is the article metadata table. Rows are
// status, key, label, title, js, description; column 2 is the key.
type Registry struct {
	name    string
	path    string
	header  Row
	keyByID bool
}

// NewRegistry returns the slug-keyed registry without a header.
func NewRegistry(path string) *Registry {
	return &Registry{name: "registry", path: path}
}

// NewRegistryIndex returns the document-id-keyed registry with a header line.
func NewRegistryIndex(path string) *Registry {
	return &Registry{name: "registry_index", path: path, header: RegistryHeader, keyByID: true}
}

func (r *Registry) Name() string { return r.name }
func (r *Registry) Path() string { return r.path }

// Load reads the existing registry.
func (r *Registry) Load() (*KeyedTable, error) {
	t := NewKeyedTable(1, r.header)
	if err := t.Load(r.path); err != nil {
		return nil, err
	}
	return t, nil
}

// Merge upserts one row per article.
func (r *Registry) Merge(t *KeyedTable, articles []article.Article) {
	for _, a := range articles {
		key := a.Slug
		if r.keyByID {
			key = a.ID
		}
		t.Merge(Row{a.Status, key, a.Label, a.Title, a.JS, a.Description})
	}
}

func (r *Registry) Write(t *KeyedTable) error { return t.Write(r.path) }

// Sync runs Load, Merge and Write.
func (r *Registry) Sync(_ context.Context, articles []article.Article) error {
	t, err := r.Load()
	if err != nil {
		return err
	}
	r.Merge(t, articles)
	return r.Write(t)
}

// URLTable maps site paths to their index and image names. Rows are
// path, "index", "jpg" keyed by path.
type URLTable struct {
	path      string
	separator string
}

// NewURLTable creates the table; separator replaces "/" in slugs.
func NewURLTable(path, separator string) *URLTable {
	return &URLTable{path: path, separator: separator}
}

func (u *URLTable) Name() string { return "url_table" }
func (u *URLTable) Path() string { return u.path }

// Key converts a slug to the table's path column.
func (u *URLTable) Key(slug string) string {
	return strings.ReplaceAll(slug, "/", u.separator)
}

func (u *URLTable) Load() (*KeyedTable, error) {
	t := NewKeyedTable(0, nil)
	if err := t.Load(u.path); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *URLTable) Merge(t *KeyedTable, articles []article.Article) {
	for _, a := range articles {
		t.Merge(Row{u.Key(a.Slug), "index", "jpg"})
	}
}

func (u *URLTable) Write(t *KeyedTable) error { return t.Write(u.path) }

func (u *URLTable) Sync(_ context.Context, articles []article.Article) error {
	t, err := u.Load()
	if err != nil {
		return err
	}
	u.Merge(t, articles)
	return u.Write(t)
}
