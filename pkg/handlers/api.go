package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"blog-cms/pkg/metrics"
	"blog-cms/pkg/models"
	"blog-cms/pkg/services"

	"github.com/gin-gonic/gin"
)

// API holds the services the HTTP handlers work with.
type API struct {
	Store          *services.Store
	Publisher      *services.Publisher
	Media          *services.Media
	Sessions       *services.EditorSessions
	Locale         services.Locale
	PageSize       int
	DiscoveryCount int
	AdminPassword  string
	Logger         *slog.Logger
	Now            func() time.Time
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// loadDocument never fails: a broken or unreadable file reads as an empty site.
func (a *API) loadDocument() models.Document {
	doc, err := a.Store.Load()
	if err != nil {
		a.Logger.Warn("document unreadable, serving empty document", "path", a.Store.Path(), "error", err)
		return models.EmptyDocument()
	}
	return doc
}

func (a *API) GetData(c *gin.Context) {
	c.JSON(http.StatusOK, a.loadDocument())
}

func (a *API) SaveData(c *gin.Context) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.publish(c, doc)
}

func (a *API) publish(c *gin.Context, doc models.Document) bool {
	res, err := a.Publisher.Publish(c.Request.Context(), doc)
	metrics.PagesGenerated.Add(float64(res.Pages))
	if err != nil {
		a.Logger.Error("publish failed", "error", err)
		switch {
		case errors.Is(err, services.ErrDocumentSave):
			metrics.Publishes.WithLabelValues("save_error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Document could not be saved", "stage": "save"})
		default:
			metrics.Publishes.WithLabelValues("generate_error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Article pages could not be generated", "stage": "generate"})
		}
		return false
	}
	metrics.Publishes.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Saved and pages generated", "pages": res.Pages})
	return true
}

func (a *API) IncrementView(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	views, err := a.Store.IncrementViews(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		a.Logger.Error("view increment failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Write error"})
		return
	}
	metrics.ArticleViews.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "views": views})
}

func (a *API) GetFeed(c *gin.Context) {
	var filter services.FeedFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}

	limit := a.PageSize
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	doc := a.loadDocument()
	c.JSON(http.StatusOK, services.AssembleFeed(doc.Articles, services.FeedOptions{
		Filter:         filter,
		Cursor:         limit,
		DiscoveryCount: a.DiscoveryCount,
		Now:            a.now(),
		Locale:         a.Locale,
	}))
}

func (a *API) SearchArticles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if n := utf8.RuneCountInString(query); n > 0 && n < services.MinQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must be at least 3 characters"})
		return
	}

	doc := a.loadDocument()
	c.JSON(http.StatusOK, services.Search(query, doc.Articles, a.Locale))
}
