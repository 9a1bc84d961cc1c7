package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"blog-cms/pkg/models"
)

//go:embed templates/article.html
var templateFS embed.FS

// PageSite carries the site-wide values every article page shows.
type PageSite struct {
	Name string
	Lang string
}

type pageData struct {
	SiteName string
	Lang     string
	Article  models.Article
	Body     template.HTML
}

type PublishResult struct {
	Pages int `json:"pages"`
}

// Publisher writes the site document and regenerates the static article pages.
type Publisher struct {
	store    *Store
	pagesDir string
	site     PageSite
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewPublisher parses the article template at templatePath, or the built-in
// one when templatePath is empty.
func NewPublisher(store *Store, pagesDir string, site PageSite, templatePath string, logger *slog.Logger) (*Publisher, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if templatePath != "" {
		tmpl, err = template.ParseFiles(templatePath)
	} else {
		tmpl, err = template.ParseFS(templateFS, "templates/article.html")
	}
	if err != nil {
		return nil, fmt.Errorf("parse article template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, pagesDir: pagesDir, site: site, tmpl: tmpl, logger: logger}, nil
}

// PagePath is where the page of article id is written.
func (p *Publisher) PagePath(id int64) string {
	return filepath.Join(p.pagesDir, fmt.Sprintf("%d.html", id))
}

// Publish replaces the stored document with doc, then renders one page per
// article. Pages of articles no longer in doc are left in place.
func (p *Publisher) Publish(ctx context.Context, doc models.Document) (PublishResult, error) {
	if err := p.store.Save(doc); err != nil {
		return PublishResult{}, fmt.Errorf("%w: %v", ErrDocumentSave, err)
	}
	p.logger.Info("document saved", "path", p.store.Path(), "articles", len(doc.Articles))
	return p.generate(ctx, doc.Articles)
}

// Regenerate renders the pages of the stored document without rewriting it.
func (p *Publisher) Regenerate(ctx context.Context) (PublishResult, error) {
	doc, err := p.store.Load()
	if err != nil {
		return PublishResult{}, err
	}
	return p.generate(ctx, doc.Articles)
}

// RenderPage writes the HTML page of a.
func (p *Publisher) RenderPage(w io.Writer, a models.Article) error {
	return p.tmpl.Execute(w, pageData{
		SiteName: p.site.Name,
		Lang:     p.site.Lang,
		Article:  a,
		Body:     template.HTML(a.Content),
	})
}

func (p *Publisher) generate(ctx context.Context, articles []models.Article) (PublishResult, error) {
	var res PublishResult
	if err := os.MkdirAll(p.pagesDir, 0755); err != nil {
		return res, fmt.Errorf("%w: %v", ErrPageGeneration, err)
	}

	var buf bytes.Buffer
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %v", ErrPageGeneration, err)
		}
		buf.Reset()
		if err := p.RenderPage(&buf, a); err != nil {
			return res, fmt.Errorf("%w: article %d: %v", ErrPageGeneration, a.ID, err)
		}
		if err := writeFileAtomic(p.PagePath(a.ID), buf.Bytes(), 0644); err != nil {
			return res, fmt.Errorf("%w: article %d: %v", ErrPageGeneration, a.ID, err)
		}
		res.Pages++
	}
	p.logger.Info("pages generated", "dir", p.pagesDir, "pages", res.Pages)
	return res, nil
}
