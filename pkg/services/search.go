package services

import (
	"strings"

	"blog-cms/pkg/models"
)

// MinQueryLength is enforced by callers before Search is reached.
const MinQueryLength = 3

type SearchResult struct {
	Query    string           `json:"query"`
	NoQuery  bool             `json:"noQuery"`
	Articles []models.Article `json:"articles"`
}

// Search keeps the articles whose title, excerpt, author or any category
// contains query, ignoring case. Input order is preserved.
func Search(query string, articles []models.Article, loc Locale) SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{NoQuery: true, Articles: []models.Article{}}
	}

	loc = loc.orDefault()
	needle := loc.lower(query)
	contains := func(field string) bool {
		return field != "" && strings.Contains(loc.lower(field), needle)
	}

	matches := []models.Article{}
	for _, a := range articles {
		if contains(a.Title) || contains(a.Excerpt) || contains(a.Author) {
			matches = append(matches, a)
			continue
		}
		for _, c := range a.Categories {
			if contains(c) {
				matches = append(matches, a)
				break
			}
		}
	}
	return SearchResult{Query: query, Articles: matches}
}
