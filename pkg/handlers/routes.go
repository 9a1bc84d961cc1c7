package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StaticDirs are the directories served read-only next to the API.
type StaticDirs struct {
	Resources string
	Articles  string
	Public    string
}

// LimitBody caps request bodies at n bytes.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func (a *API) Register(r *gin.Engine, store sessions.Store, dirs StaticDirs) {
	r.Use(sessions.Sessions("blogsession", store))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/data", a.GetData)
		api.POST("/data", a.SaveData)
		api.POST("/view/:id", a.IncrementView)
		api.POST("/upload", a.UploadMedia)
		api.GET("/feed", a.GetFeed)
		api.GET("/search", a.SearchArticles)
		api.POST("/login", a.Login)
		api.POST("/logout", a.Logout)

		editor := api.Group("/admin/editor")
		editor.Use(AuthRequired)
		{
			editor.GET("", a.EditorState)
			editor.POST("/articles", a.CreateArticle)
			editor.PUT("/articles/:id", a.UpdateArticle)
			editor.DELETE("/articles/:id", a.DeleteArticle)
			editor.POST("/articles/:id/edit", a.BeginEdit)
			editor.POST("/submit", a.SubmitArticle)
			editor.POST("/edit/cancel", a.CancelEdit)
			editor.POST("/categories", a.AddCategory)
			editor.DELETE("/categories/:id", a.DeleteCategory)
			editor.PUT("/announcement", a.UpdateAnnouncement)
			editor.POST("/announcement/toggle", a.ToggleAnnouncement)
			editor.POST("/files", a.AddFile)
			editor.DELETE("/files/:id", a.RemoveFile)
			editor.POST("/save", a.SaveEditor)
			editor.POST("/reset", a.ResetEditor)
		}
	}

	r.Static("/resources", dirs.Resources)
	r.Static("/articles", dirs.Articles)
	if dirs.Public != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(dirs.Public))))
	}
}
