package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"blog-cms/pkg/metrics"
	"blog-cms/pkg/models"
	"blog-cms/pkg/services"

	"github.com/gin-gonic/gin"
)

type editorState struct {
	Document  models.Document `json:"document"`
	EditingID int64           `json:"editingId"`
	Dirty     bool            `json:"dirty"`
}

func stateOf(e *services.Editor) editorState {
	return editorState{Document: e.Document(), EditingID: e.EditingID(), Dirty: e.Dirty()}
}

// editor runs fn against the caller's editor buffer and writes its result,
// mapping service errors to status codes.
func (a *API) editor(c *gin.Context, fn func(*services.Editor) (any, error)) {
	token, err := editorToken(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session could not be saved"})
		return
	}

	var out any
	err = a.Sessions.With(token, func(e *services.Editor) error {
		var err error
		out, err = fn(e)
		return err
	})
	a.trackEditors()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) trackEditors() {
	metrics.OpenEditors.Set(float64(a.Sessions.Len()))
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func (a *API) EditorState(c *gin.Context) {
	a.editor(c, func(e *services.Editor) (any, error) {
		return stateOf(e), nil
	})
}

func (a *API) CreateArticle(c *gin.Context) {
	var in services.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.CreateArticle(in)
	})
}

func (a *API) UpdateArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in services.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.UpdateArticle(id, in)
	})
}

func (a *API) SubmitArticle(c *gin.Context) {
	var in services.ArticleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.Submit(in)
	})
}

func (a *API) DeleteArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.DeleteArticle(id)
	})
}

func (a *API) BeginEdit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		if err := e.BeginEdit(id); err != nil {
			return nil, err
		}
		return stateOf(e), nil
	})
}

func (a *API) CancelEdit(c *gin.Context) {
	a.editor(c, func(e *services.Editor) (any, error) {
		e.CancelEdit()
		return stateOf(e), nil
	})
}

func (a *API) AddCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.AddCategory(req.Name, req.Type)
	})
}

func (a *API) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.DeleteCategory(id)
	})
}

func (a *API) UpdateAnnouncement(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.SetAnnouncementText(req.Text), nil
	})
}

func (a *API) ToggleAnnouncement(c *gin.Context) {
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.ToggleAnnouncement(), nil
	})
}

func (a *API) AddFile(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.AddFile(req.Name, req.URL)
	})
}

func (a *API) RemoveFile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a.editor(c, func(e *services.Editor) (any, error) {
		return e.RemoveFile(id)
	})
}

// SaveEditor publishes the caller's buffer. On failure the buffer is kept so
// the save can be retried.
func (a *API) SaveEditor(c *gin.Context) {
	token, err := editorToken(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session could not be saved"})
		return
	}
	err = a.Sessions.With(token, func(e *services.Editor) error {
		if a.publish(c, e.Document()) {
			e.MarkSaved()
		}
		return nil
	})
	a.trackEditors()
	if err != nil {
		respondError(c, err)
	}
}

// ResetEditor drops unsaved changes and reloads the stored document.
func (a *API) ResetEditor(c *gin.Context) {
	token, err := editorToken(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session could not be saved"})
		return
	}
	a.Sessions.Reset(token)
	a.EditorState(c)
}
