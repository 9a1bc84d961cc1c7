package services

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"blog-cms/pkg/models"
)

const DefaultDiscoveryCount = 5

// FeedFilter narrows the home feed. Category takes precedence over Year.
type FeedFilter struct {
	Category string `form:"category" json:"category,omitempty"`
	Year     string `form:"year" json:"year,omitempty"`
}

type FeedOptions struct {
	Filter         FeedFilter
	Cursor         int // number of ranked articles to reveal
	DiscoveryCount int
	Now            time.Time
	Rand           *rand.Rand
	Locale         Locale
}

type Feed struct {
	Articles  []models.Article `json:"articles"`
	HasMore   bool             `json:"hasMore"`
	Total     int              `json:"total"`
	Discovery []models.Article `json:"discovery"`
}

// Score is views / (days since publish + 1).
func Score(a models.Article, now time.Time, loc Locale) float64 {
	days := DaysBetween(loc.PublishedAt(a.Date), now)
	return float64(a.Views) / float64(days+1)
}

// FilterArticles applies the category or year filter without reordering.
func FilterArticles(articles []models.Article, f FeedFilter) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		switch {
		case f.Category != "":
			if !a.HasCategory(f.Category) {
				continue
			}
		case f.Year != "":
			if !strings.Contains(a.Date, f.Year) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// Rank returns a copy of articles ordered by descending score; ties keep
// their input order.
func Rank(articles []models.Article, now time.Time, loc Locale) []models.Article {
	type scored struct {
		article models.Article
		score   float64
	}
	items := make([]scored, len(articles))
	for i, a := range articles {
		items[i] = scored{article: a, score: Score(a, now, loc)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]models.Article, len(items))
	for i, it := range items {
		out[i] = it.article
	}
	return out
}

// Discover picks n articles uniformly at random without replacement.
func Discover(articles []models.Article, n int, rng *rand.Rand) []models.Article {
	if n > len(articles) {
		n = len(articles)
	}
	if n <= 0 {
		return []models.Article{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]models.Article, 0, n)
	for _, i := range rng.Perm(len(articles))[:n] {
		out = append(out, articles[i])
	}
	return out
}

// AssembleFeed filters, ranks and paginates articles for the home page and
// draws the discovery sample from the unfiltered collection.
func AssembleFeed(articles []models.Article, opts FeedOptions) Feed {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	cursor := opts.Cursor
	if cursor < 0 {
		cursor = 0
	}

	ranked := Rank(FilterArticles(articles, opts.Filter), now, opts.Locale.orDefault())
	visible := ranked
	if len(ranked) > cursor {
		visible = ranked[:cursor]
	}

	return Feed{
		Articles:  visible,
		HasMore:   len(ranked) > cursor,
		Total:     len(ranked),
		Discovery: Discover(articles, opts.DiscoveryCount, opts.Rand),
	}
}
