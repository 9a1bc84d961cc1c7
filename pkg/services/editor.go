package services

import (
	"fmt"
	"html"
	"strings"
	"time"

	"blog-cms/pkg/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"
)

const ExcerptLength = 100

// DateInputLayout is the layout of the optional date field of the article form.
const DateInputLayout = "2006-01-02"

// ArticleInput is what the admin article form submits.
type ArticleInput struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
	ImageURL   string   `json:"imageUrl"`
	Content    string   `json:"content"`
	DateInput  string   `json:"dateInput"` // YYYY-MM-DD, blank for today or unchanged
}

// Trimmed returns in with surrounding whitespace removed from every field,
// so blank-looking values fail validation.
func (in ArticleInput) Trimmed() ArticleInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Content = strings.TrimSpace(in.Content)
	in.DateInput = strings.TrimSpace(in.DateInput)
	categories := make([]string, len(in.Categories))
	for i, c := range in.Categories {
		categories[i] = strings.TrimSpace(c)
	}
	in.Categories = categories
	return in
}

func (in ArticleInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Author, validation.Required),
		validation.Field(&in.Content, validation.Required),
		validation.Field(&in.Categories,
			validation.Required.Error("select at least one category"),
			validation.Each(validation.Required),
		),
		validation.Field(&in.DateInput, validation.Date(DateInputLayout)),
	)
}

// Excerpt strips markup from body and keeps the first ExcerptLength characters.
func Excerpt(body string) string {
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(body))
	runes := []rune(text)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return string(runes) + "..."
}

// Editor is one admin's working copy of the site document. Nothing it does
// touches disk; the buffer is persisted only by publishing Document().
// An Editor is not safe for concurrent use.
type Editor struct {
	doc       models.Document
	editingID int64
	dirty     bool
	locale    Locale
	now       func() time.Time
	lastID    int64
}

type EditorOption func(*Editor)

func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) { e.now = now }
}

func WithLocale(loc Locale) EditorOption {
	return func(e *Editor) { e.locale = loc }
}

func NewEditor(doc models.Document, opts ...EditorOption) *Editor {
	e := &Editor{
		doc:    doc.Clone(),
		locale: Turkish,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.doc.Normalize()
	return e
}

// Document returns a deep copy of the buffer.
func (e *Editor) Document() models.Document {
	return e.doc.Clone()
}

func (e *Editor) Dirty() bool { return e.dirty }

func (e *Editor) MarkSaved() { e.dirty = false }

func (e *Editor) EditingID() int64 { return e.editingID }

// BeginEdit opens an edit session on an existing article.
func (e *Editor) BeginEdit(id int64) error {
	if e.doc.FindArticle(id) < 0 {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	e.editingID = id
	return nil
}

func (e *Editor) CancelEdit() { e.editingID = 0 }

// Submit updates the article under edit, or creates one when no edit is open.
func (e *Editor) Submit(in ArticleInput) ([]models.Article, error) {
	if e.editingID == 0 {
		return e.CreateArticle(in)
	}
	articles, err := e.UpdateArticle(e.editingID, in)
	if err != nil {
		return nil, err
	}
	e.editingID = 0
	return articles, nil
}

// CreateArticle validates in and prepends a new article.
func (e *Editor) CreateArticle(in ArticleInput) ([]models.Article, error) {
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	date, err := e.dateFor(in.DateInput, "")
	if err != nil {
		return nil, err
	}

	a := e.fill(models.Article{ID: e.newID()}, in)
	a.Date = date
	e.doc.Articles = append([]models.Article{a}, e.doc.Articles...)
	e.dirty = true
	return e.articles(), nil
}

// UpdateArticle replaces the fields of an article, keeping its ID and views.
// A blank date input keeps the previous date.
func (e *Editor) UpdateArticle(id int64, in ArticleInput) ([]models.Article, error) {
	i := e.doc.FindArticle(id)
	if i < 0 {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	in = in.Trimmed()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	old := e.doc.Articles[i]
	date, err := e.dateFor(in.DateInput, old.Date)
	if err != nil {
		return nil, err
	}

	a := e.fill(models.Article{ID: old.ID, Views: old.Views}, in)
	a.Date = date
	e.doc.Articles[i] = a
	e.dirty = true
	return e.articles(), nil
}

func (e *Editor) DeleteArticle(id int64) ([]models.Article, error) {
	i := e.doc.FindArticle(id)
	if i < 0 {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	e.doc.Articles = append(e.doc.Articles[:i:i], e.doc.Articles[i+1:]...)
	if e.editingID == id {
		e.editingID = 0
	}
	e.dirty = true
	return e.articles(), nil
}

// AddCategory appends a category. Names are not checked for uniqueness.
func (e *Editor) AddCategory(name, kind string) ([]models.Category, error) {
	name = strings.TrimSpace(name)
	err := validation.Errors{
		"name": validation.Validate(name, validation.Required),
		"type": validation.Validate(kind, validation.Required,
			validation.In(models.CategoryMain, models.CategorySub, models.CategoryYear)),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	e.doc.Categories = append(e.doc.Categories, models.Category{ID: e.newID(), Name: name, Type: kind})
	e.dirty = true
	return e.categories(), nil
}

// DeleteCategory removes a category. Articles still listing its name keep it.
func (e *Editor) DeleteCategory(id int64) ([]models.Category, error) {
	for i, c := range e.doc.Categories {
		if c.ID == id {
			e.doc.Categories = append(e.doc.Categories[:i:i], e.doc.Categories[i+1:]...)
			e.dirty = true
			return e.categories(), nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
}

func (e *Editor) SetAnnouncementText(text string) models.Announcement {
	e.doc.Announcement.Text = text
	e.dirty = true
	return e.doc.Announcement
}

func (e *Editor) ToggleAnnouncement() models.Announcement {
	e.doc.Announcement.Active = !e.doc.Announcement.Active
	e.dirty = true
	return e.doc.Announcement
}

// AddFile registers an uploaded resource under a display name.
func (e *Editor) AddFile(name, url string) ([]models.UploadedFile, error) {
	err := validation.Errors{
		"name": validation.Validate(name, validation.Required),
		"url":  validation.Validate(url, validation.Required),
	}.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	e.doc.Files = append(e.doc.Files, models.UploadedFile{ID: e.newID(), Name: name, URL: url})
	e.dirty = true
	return e.files(), nil
}

// RemoveFile drops the reference only; the stored binary stays on disk.
func (e *Editor) RemoveFile(id int64) ([]models.UploadedFile, error) {
	for i, f := range e.doc.Files {
		if f.ID == id {
			e.doc.Files = append(e.doc.Files[:i:i], e.doc.Files[i+1:]...)
			e.dirty = true
			return e.files(), nil
		}
	}
	return nil, fmt.Errorf("file %d: %w", id, ErrNotFound)
}

func (e *Editor) fill(a models.Article, in ArticleInput) models.Article {
	a.Title = in.Title
	a.Author = in.Author
	a.Categories = append([]string{}, in.Categories...)
	a.ImageURL = in.ImageURL
	a.Content = in.Content
	a.Excerpt = Excerpt(in.Content)
	return a
}

func (e *Editor) dateFor(input, previous string) (string, error) {
	if input != "" {
		d, err := time.Parse(DateInputLayout, input)
		if err != nil {
			return "", fmt.Errorf("%w: date: %v", ErrValidation, err)
		}
		return e.locale.FormatDate(d), nil
	}
	if previous != "" {
		return previous, nil
	}
	return e.locale.FormatDate(e.now()), nil
}

// newID returns a time-based identifier greater than any issued or stored one.
func (e *Editor) newID() int64 {
	id := e.now().UnixMilli()
	floor := e.lastID
	for _, a := range e.doc.Articles {
		floor = max(floor, a.ID)
	}
	for _, c := range e.doc.Categories {
		floor = max(floor, c.ID)
	}
	for _, f := range e.doc.Files {
		floor = max(floor, f.ID)
	}
	if id <= floor {
		id = floor + 1
	}
	e.lastID = id
	return id
}

func (e *Editor) articles() []models.Article {
	return e.doc.Clone().Articles
}

func (e *Editor) categories() []models.Category {
	return append([]models.Category{}, e.doc.Categories...)
}

func (e *Editor) files() []models.UploadedFile {
	return append([]models.UploadedFile{}, e.doc.Files...)
}
