package models

const (
	CategoryMain = "main"
	CategorySub  = "sub"
	CategoryYear = "year"
)

// Category is joined to articles by Name, never by ID.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Announcement struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// UploadedFile references a binary in the resources directory.
type UploadedFile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"data"` // key kept for existing data.json files
}

// Document is the whole persisted site state.
type Document struct {
	Articles     []Article      `json:"articles"`
	Categories   []Category     `json:"categories"`
	Announcement Announcement   `json:"announcement"`
	Files        []UploadedFile `json:"files"`
}

// EmptyDocument returns a document whose collections encode as [] rather than null.
func EmptyDocument() Document {
	return Document{
		Articles:   []Article{},
		Categories: []Category{},
		Files:      []UploadedFile{},
	}
}

// Normalize replaces nil collections with empty ones.
func (d *Document) Normalize() {
	if d.Articles == nil {
		d.Articles = []Article{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Files == nil {
		d.Files = []UploadedFile{}
	}
	for i := range d.Articles {
		if d.Articles[i].Categories == nil {
			d.Articles[i].Categories = []string{}
		}
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{
		Articles:     make([]Article, len(d.Articles)),
		Categories:   append([]Category{}, d.Categories...),
		Announcement: d.Announcement,
		Files:        append([]UploadedFile{}, d.Files...),
	}
	for i, a := range d.Articles {
		out.Articles[i] = a.Clone()
	}
	return out
}

// FindArticle returns the index of the article with id, or -1.
func (d Document) FindArticle(id int64) int {
	for i := range d.Articles {
		if d.Articles[i].ID == id {
			return i
		}
	}
	return -1
}
