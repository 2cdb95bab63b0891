package artifacts

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/article"
	"git.home.luguber.info/inful/ncms/internal/atomicfile"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
	"git.home.luguber.info/inful/ncms/internal/logfields"
)

const (
	pageScriptInclude = "<?php require('../JS/Base/page.js'); ?>"
	pageFooter        = "<?php require('../HTML/Fragment/Component_bottom.php') ?>"
)

// OutputTree writes one PHP page per article below a component directory.
// It remembers the files written during its lifetime, so use one per run.
type OutputTree struct {
	dir     string
	written map[string]struct{}
}

func NewOutputTree(dir string) *OutputTree {
	return &OutputTree{dir: dir, written: map[string]struct{}{}}
}

// PageFor renders the PHP page wrapping an article's content.
func PageFor(a article.Article) string {
	js := ""
	if a.JSEnabled() {
		js = pageScriptInclude
	}
	return strings.Join([]string{
		"<div id='message'>",
		"\t" + a.Content,
		"</div>",
		js,
		pageFooter,
	}, "\n")
}

// Target resolves the file an article is written to and records it.
// An empty slug falls back to the title-derived name. When the index file
// was already written in this run, the title-derived file name is used,
// suffixed with _2, _3, ... until it is unused.
func (t *OutputTree) Target(a article.Article) (string, error) {
	name := strings.TrimSpace(a.Slug)
	if name == "" {
		name = article.FallbackName(a.Title)
		slog.Warn("Article has no slug, using title-derived directory",
			logfields.ArticleID(a.ID), logfields.Title(a.Title), logfields.Path(name))
	}

	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", errors.FileSystemError(fmt.Sprintf("article path %q escapes the output directory", name)).
			WithContext("article_id", a.ID).
			Build()
	}

	file := filepath.Join(t.dir, rel, "index.php")
	if t.taken(file) {
		base := article.FallbackName(a.Title)
		if base == "" {
			base = "page"
		}
		file = filepath.Join(t.dir, rel, base+".php")
		for n := 2; t.taken(file); n++ {
			file = filepath.Join(t.dir, rel, fmt.Sprintf("%s_%d.php", base, n))
		}
		slog.Warn("Index page already written in this run, using title-derived file",
			logfields.ArticleID(a.ID), logfields.Path(file))
	}
	t.written[file] = struct{}{}
	return file, nil
}

func (t *OutputTree) taken(file string) bool {
	_, ok := t.written[file]
	return ok
}

// Write renders and writes one article page, returning its path.
func (t *OutputTree) Write(a article.Article) (string, error) {
	file, err := t.Target(a)
	if err != nil {
		return "", err
	}
	if err := atomicfile.WriteFile(file, []byte(PageFor(a)), 0); err != nil {
		return file, errors.FileSystemError("failed to write article page").
			WithCause(err).
			WithContext("path", file).
			WithContext("article_id", a.ID).
			Build()
	}
	return file, nil
}
