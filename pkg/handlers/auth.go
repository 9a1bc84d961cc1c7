package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionAdmin  = "admin"
	sessionEditor = "editor"
)

func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	if ok, _ := session.Get(sessionAdmin).(bool); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (a *API) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password required"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.AdminPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Wrong password"})
		return
	}

	session := sessions.Default(c)
	if old, ok := session.Get(sessionEditor).(string); ok {
		a.Sessions.Reset(old)
		a.trackEditors()
	}
	session.Set(sessionAdmin, true)
	session.Set(sessionEditor, uuid.NewString())
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session could not be saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionEditor).(string); ok {
		a.Sessions.Reset(token)
		a.trackEditors()
	}
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// editorToken returns the editor buffer token of the admin session,
// issuing one if the session predates it.
func editorToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionEditor).(string); ok && token != "" {
		return token, nil
	}
	token := uuid.NewString()
	session.Set(sessionEditor, token)
	return token, session.Save()
}
