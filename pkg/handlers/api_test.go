package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"blog-cms/pkg/models"
	"blog-cms/pkg/services"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	dir     string
	store   *services.Store
	router  *gin.Engine
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := services.NewStore(filepath.Join(dir, "data.json"))
	publisher, err := services.NewPublisher(store, filepath.Join(dir, "articles"), services.PageSite{Name: "BALLAB", Lang: "tr"}, "", logger)
	require.NoError(t, err)

	now := time.Date(2023, 10, 20, 12, 0, 0, 0, time.UTC)
	api := &API{
		Store:          store,
		Publisher:      publisher,
		Media:          services.NewMedia(filepath.Join(dir, "resources"), "/resources"),
		Sessions:       services.NewEditorSessions(store.Load, services.WithClock(func() time.Time { return now })),
		Locale:         services.Turkish,
		PageSize:       5,
		DiscoveryCount: 5,
		AdminPassword:  "gizli",
		Logger:         logger,
		Now:            func() time.Time { return now },
	}

	r := gin.New()
	api.Register(r, cookie.NewStore([]byte("test-secret")), StaticDirs{
		Resources: filepath.Join(dir, "resources"),
		Articles:  filepath.Join(dir, "articles"),
	})
	return &testServer{t: t, dir: dir, store: store, router: r}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return w
}

func (s *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req)
}

func (s *testServer) login() {
	w := s.request(http.MethodPost, "/api/login", gin.H{"password": "gizli"})
	require.Equal(s.t, http.StatusOK, w.Code)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func fixture() models.Document {
	doc := models.EmptyDocument()
	doc.Articles = []models.Article{
		{ID: 1, Title: "Kapadokya Gezisi", Author: "Ayşe", Categories: []string{"Gezi"}, Content: "<p>a</p>", Excerpt: "a...", Date: "15 Ekim 2023", Views: 40},
		{ID: 2, Title: "Okul Şenliği", Author: "Can", Categories: []string{"Etkinlik"}, Content: "<p>b</p>", Excerpt: "b...", Date: "10 Ekim 2023", Views: 3},
		{ID: 3, Title: "Kış Kampı", Author: "Ayşe", Categories: []string{"Gezi"}, Content: "<p>c</p>", Excerpt: "c...", Date: "1 Ocak 2022", Views: 100},
	}
	return doc
}

func TestGetDataCorruptFile(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(s.store.Path(), []byte("{broken"), 0600))

	w := s.request(http.MethodGet, "/api/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EmptyDocument(), decode[models.Document](t, w))
}

func TestSaveData(t *testing.T) {
	s := newTestServer(t)

	w := s.request(http.MethodPost, "/api/data", fixture())
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 3, body["pages"])

	w = s.request(http.MethodGet, "/api/data", nil)
	assert.Equal(t, fixture(), decode[models.Document](t, w))

	_, err := os.Stat(filepath.Join(s.dir, "articles", "2.html"))
	assert.NoError(t, err)
}

func TestSaveDataInvalidJSON(t *testing.T) {
	s := newTestServer(t)
	w := s.request(http.MethodPost, "/api/data", "{nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", decode[map[string]any](t, w)["error"])
}

func TestSaveDataGenerationError(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "articles"), []byte("file"), 0600))

	w := s.request(http.MethodPost, "/api/data", fixture())
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "generate", decode[map[string]any](t, w)["stage"])

	stored, err := s.store.Load()
	require.NoError(t, err)
	assert.Len(t, stored.Articles, 3)
}

func TestIncrementView(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))

	w := s.request(http.MethodPost, "/api/view/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode[map[string]any](t, w)["views"])

	w = s.request(http.MethodPost, "/api/view/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decode[map[string]any](t, w)["error"])

	w = s.request(http.MethodPost, "/api/view/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))

	w := s.request(http.MethodGet, "/api/search?q=ab", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.request(http.MethodGet, "/api/search?q=gez", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[services.SearchResult](t, w)
	assert.Len(t, res.Articles, 2)

	w = s.request(http.MethodGet, "/api/search?q=zzzz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(mustField(t, w, "articles")))

	w = s.request(http.MethodGet, "/api/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[services.SearchResult](t, w).NoQuery)
}

func mustField(t *testing.T, w *httptest.ResponseRecorder, name string) json.RawMessage {
	t.Helper()
	fields := decode[map[string]json.RawMessage](t, w)
	raw, ok := fields[name]
	require.True(t, ok, "missing field %q", name)
	return raw
}

func TestFeed(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))

	w := s.request(http.MethodGet, "/api/feed?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed := decode[services.Feed](t, w)
	require.Len(t, feed.Articles, 2)
	assert.Equal(t, int64(1), feed.Articles[0].ID)
	assert.True(t, feed.HasMore)
	assert.Equal(t, 3, feed.Total)

	w = s.request(http.MethodGet, "/api/feed?category=Gezi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	feed = decode[services.Feed](t, w)
	assert.Len(t, feed.Articles, 2)
	assert.False(t, feed.HasMore)

	w = s.request(http.MethodGet, "/api/feed?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMedia(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "kapak.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[map[string]any](t, w)
	assert.Equal(t, "image/png", res["mime"])
	filename, _ := res["filename"].(string)
	assert.Equal(t, "/resources/"+filename, res["url"])
	_, err = os.Stat(filepath.Join(s.dir, "resources", filename))
	assert.NoError(t, err)

	w = s.request(http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditorRequiresLogin(t *testing.T) {
	s := newTestServer(t)
	w := s.request(http.MethodGet, "/api/admin/editor", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodPost, "/api/login", gin.H{"password": "yanlis"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodPost, "/api/login", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditorFlow(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))
	s.login()

	input := gin.H{
		"title": "Yeni Yazı", "author": "Deniz", "content": "<p>İçerik</p>",
		"categories": []string{},
	}
	w := s.request(http.MethodPost, "/api/admin/editor/articles", input)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	input["categories"] = []string{"Gezi"}
	w = s.request(http.MethodPost, "/api/admin/editor/articles", input)
	require.Equal(t, http.StatusOK, w.Code)
	articles := decode[[]models.Article](t, w)
	require.Len(t, articles, 4)
	created := articles[0]
	assert.Equal(t, "Yeni Yazı", created.Title)
	assert.Equal(t, "20 Ekim 2023", created.Date)
	assert.Equal(t, "İçerik...", created.Excerpt)

	stored, err := s.store.Load()
	require.NoError(t, err)
	assert.Len(t, stored.Articles, 3, "nothing is written before save")

	w = s.request(http.MethodGet, "/api/admin/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[editorState](t, w)
	assert.True(t, state.Dirty)

	w = s.request(http.MethodPost, "/api/admin/editor/save", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err = s.store.Load()
	require.NoError(t, err)
	require.Len(t, stored.Articles, 4)
	assert.Equal(t, created.ID, stored.Articles[0].ID)
	_, err = os.Stat(filepath.Join(s.dir, "articles", strconv.FormatInt(created.ID, 10)+".html"))
	assert.NoError(t, err)

	w = s.request(http.MethodGet, "/api/admin/editor", nil)
	assert.False(t, decode[editorState](t, w).Dirty)
}

func TestEditorFailedSaveKeepsBuffer(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "articles"), []byte("file"), 0600))
	s.login()

	w := s.request(http.MethodPost, "/api/admin/editor/articles", gin.H{
		"title": "Bahar Şenliği", "author": "Deniz", "content": "<p>x</p>",
		"categories": []string{"Etkinlik"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/api/admin/editor/save", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "generate", decode[map[string]any](t, w)["stage"])

	w = s.request(http.MethodGet, "/api/admin/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[editorState](t, w)
	assert.True(t, state.Dirty)
	require.Len(t, state.Document.Articles, 4)
	assert.Equal(t, "Bahar Şenliği", state.Document.Articles[0].Title)

	// Once the pages directory is usable again the same buffer saves.
	require.NoError(t, os.Remove(filepath.Join(s.dir, "articles")))
	w = s.request(http.MethodPost, "/api/admin/editor/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.request(http.MethodGet, "/api/admin/editor", nil)
	assert.False(t, decode[editorState](t, w).Dirty)
}

func TestOpenEditorsGauge(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.request(http.MethodGet, "/api/admin/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, s.metricLines(), "blog_open_editors 1")

	w = s.request(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, s.metricLines(), "blog_open_editors 0")
}

func (s *testServer) metricLines() []string {
	w := s.request(http.MethodGet, "/metrics", nil)
	require.Equal(s.t, http.StatusOK, w.Code)
	return strings.Split(w.Body.String(), "\n")
}

func TestEditorEditAndDelete(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Save(fixture()))
	s.login()

	w := s.request(http.MethodPost, "/api/admin/editor/articles/99/edit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.request(http.MethodPost, "/api/admin/editor/articles/2/edit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[editorState](t, w).EditingID)

	w = s.request(http.MethodPost, "/api/admin/editor/submit", gin.H{
		"title": "Okul Şenliği 2023", "author": "Can", "content": "<p>b</p>",
		"categories": []string{"Etkinlik"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	articles := decode[[]models.Article](t, w)
	require.Len(t, articles, 3)
	assert.Equal(t, "Okul Şenliği 2023", articles[1].Title)
	assert.Equal(t, "10 Ekim 2023", articles[1].Date)
	assert.Equal(t, 3, articles[1].Views)

	w = s.request(http.MethodDelete, "/api/admin/editor/articles/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Article](t, w), 2)

	w = s.request(http.MethodPost, "/api/admin/editor/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[editorState](t, w)
	assert.False(t, state.Dirty)
	assert.Len(t, state.Document.Articles, 3)
}

func TestEditorCategoriesAndAnnouncement(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.request(http.MethodPost, "/api/admin/editor/categories", gin.H{"name": "Gezi", "type": "main"})
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]models.Category](t, w)
	require.Len(t, categories, 1)

	w = s.request(http.MethodPost, "/api/admin/editor/categories", gin.H{"name": "Gezi", "type": "other"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.request(http.MethodDelete, "/api/admin/editor/categories/"+strconv.FormatInt(categories[0].ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Category](t, w))

	w = s.request(http.MethodPut, "/api/admin/editor/announcement", gin.H{"text": "Kayıtlar başladı"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.request(http.MethodPost, "/api/admin/editor/announcement/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Announcement{Text: "Kayıtlar başladı", Active: true}, decode[models.Announcement](t, w))
}

func TestLogoutDropsAccess(t *testing.T) {
	s := newTestServer(t)
	s.login()

	w := s.request(http.MethodGet, "/api/admin/editor", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.request(http.MethodGet, "/api/admin/editor", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
