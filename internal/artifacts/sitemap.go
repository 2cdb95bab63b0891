package artifacts

import (
	"bytes"
	"context"
	"encoding/xml"
	"os"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/atomicfile"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// SitemapNamespace is the sitemaps.org schema namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// Sitemap is the full-replace list of article URLs.
type Sitemap struct {
	path    string
	baseURL string
}

func NewSitemap(path, baseURL string) *Sitemap {
	return &Sitemap{path: path, baseURL: baseURL}
}

func (s *Sitemap) Name() string { return "sitemap" }
func (s *Sitemap) Path() string { return s.path }

// Load returns the locations of the existing sitemap, nil if it does not exist.
func (s *Sitemap) Load() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ArtifactError("failed to read sitemap").WithCause(err).WithContext("path", s.path).Build()
	}

	var set urlset
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, errors.ArtifactError("failed to parse sitemap").WithCause(err).WithContext("path", s.path).Build()
	}
	locs := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	return locs, nil
}

// Render produces the sitemap for articles, in article order.
func (s *Sitemap) Render(articles []article.Article) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<urlset xmlns="` + SitemapNamespace + `">` + "\n")
	for _, a := range articles {
		buf.WriteString("\t<url>\n\t\t<loc>")
		_ = xml.EscapeText(&buf, []byte(s.baseURL+"/"+a.Slug))
		buf.WriteString("</loc>\n\t</url>\n")
	}
	buf.WriteString("</urlset>")
	return buf.Bytes()
}

func (s *Sitemap) Write(data []byte) error {
	if err := atomicfile.WriteFile(s.path, data, 0); err != nil {
		return errors.ArtifactError("failed to write sitemap").WithCause(err).WithContext("path", s.path).Build()
	}
	return nil
}

// Sync validates the previous sitemap, then replaces it.
func (s *Sitemap) Sync(_ context.Context, articles []article.Article) error {
	if _, err := s.Load(); err != nil {
		return err
	}
	return s.Write(s.Render(articles))
}
