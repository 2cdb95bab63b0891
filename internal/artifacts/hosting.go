package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/atomicfile"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Redirect is a permanent redirect rule of the hosting config.
type Redirect struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Type        int    `json:"type"`
}

// Rewrite is an internal rewrite rule of the hosting config.
type Rewrite struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// HostingDocument is a parsed hosting config. Only hosting.redirects and
// hosting.rewrites are interpreted; every other key round-trips untouched.
type HostingDocument struct {
	root    map[string]json.RawMessage
	hosting map[string]json.RawMessage
}

// Redirects and Rewrites decode the current rule lists.
func (d *HostingDocument) Redirects() ([]Redirect, error) {
	var out []Redirect
	return out, decodeOptional(d.hosting["redirects"], &out)
}

func (d *HostingDocument) Rewrites() ([]Rewrite, error) {
	var out []Rewrite
	return out, decodeOptional(d.hosting["rewrites"], &out)
}

// Replace discards both rule lists and rebuilds them from articles.
func (d *HostingDocument) Replace(articles []article.Article) error {
	redirects := []Redirect{}
	rewrites := []Rewrite{}
	for _, a := range articles {
		if parts := strings.Split(a.Slug, "/"); len(parts) > 1 {
			redirects = append(redirects, Redirect{
				Source:      "/" + parts[len(parts)-1],
				Destination: "/" + a.Slug,
				Type:        301,
			})
		}
		rewrites = append(rewrites,
			Rewrite{Source: "/" + a.Slug + ".json", Destination: "/" + a.Slug + "/index.json"},
			Rewrite{Source: "/" + a.Slug + ".jpg", Destination: "/" + a.Slug + "/index.jpg"},
		)
	}

	var err error
	if d.hosting["redirects"], err = marshalRaw(redirects); err != nil {
		return err
	}
	d.hosting["rewrites"], err = marshalRaw(rewrites)
	return err
}

// Bytes encodes the document with four-space indentation.
func (d *HostingDocument) Bytes() ([]byte, error) {
	hosting, err := marshalRaw(d.hosting)
	if err != nil {
		return nil, err
	}
	d.root["hosting"] = hosting

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HostingConfig is the full-replace redirect/rewrite artifact.
type HostingConfig struct {
	path string
}

func NewHostingConfig(path string) *HostingConfig { return &HostingConfig{path: path} }

func (h *HostingConfig) Name() string { return "hosting" }
func (h *HostingConfig) Path() string { return h.path }

// Load parses the existing config or returns the default document when
// the file does not exist. A missing hosting key is initialized.
func (h *HostingConfig) Load() (*HostingDocument, error) {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return defaultHostingDocument(), nil
	}
	if err != nil {
		return nil, errors.ArtifactError("failed to read hosting config").WithCause(err).WithContext("path", h.path).Build()
	}

	doc := &HostingDocument{}
	if err := json.Unmarshal(data, &doc.root); err != nil {
		return nil, errors.ArtifactError("failed to parse hosting config").WithCause(err).WithContext("path", h.path).Build()
	}
	if doc.root == nil {
		doc.root = map[string]json.RawMessage{}
	}
	raw, ok := doc.root["hosting"]
	if !ok {
		doc.hosting = map[string]json.RawMessage{}
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc.hosting); err != nil || doc.hosting == nil {
		return nil, errors.ArtifactError("hosting config: \"hosting\" is not an object").WithCause(err).WithContext("path", h.path).Build()
	}
	return doc, nil
}

func (h *HostingConfig) Write(doc *HostingDocument) error {
	data, err := doc.Bytes()
	if err != nil {
		return errors.ArtifactError("failed to encode hosting config").WithCause(err).WithContext("path", h.path).Build()
	}
	if err := atomicfile.WriteFile(h.path, data, 0); err != nil {
		return errors.ArtifactError("failed to write hosting config").WithCause(err).WithContext("path", h.path).Build()
	}
	return nil
}

func (h *HostingConfig) Sync(_ context.Context, articles []article.Article) error {
	doc, err := h.Load()
	if err != nil {
		return err
	}
	if err := doc.Replace(articles); err != nil {
		return errors.ArtifactError("failed to build hosting rules").WithCause(err).Build()
	}
	return h.Write(doc)
}

func defaultHostingDocument() *HostingDocument {
	return &HostingDocument{
		root: map[string]json.RawMessage{},
		hosting: map[string]json.RawMessage{
			"public":    json.RawMessage(`"public"`),
			"ignore":    json.RawMessage(`[".htaccess"]`),
			"redirects": json.RawMessage(`[]`),
			"rewrites":  json.RawMessage(`[]`),
		},
	}
}

func marshalRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func decodeOptional(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
