package models

// Article is a published blog post as stored in the site document.
type Article struct {
	ID         int64    `json:"id"` // creation time in Unix milliseconds
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Categories []string `json:"categories"`
	ImageURL   string   `json:"imageUrl"`
	Content    string   `json:"content"` // trusted HTML body
	Excerpt    string   `json:"excerpt"`
	Date       string   `json:"date"` // localized, e.g. "12 Ekim 2023"
	Views      int      `json:"views"`
}

// HasCategory reports whether the article lists name among its categories.
func (a Article) HasCategory(name string) bool {
	for _, c := range a.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with a.
func (a Article) Clone() Article {
	a.Categories = append([]string{}, a.Categories...)
	return a
}
