package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Content     *ContentHandler
	Highlights  *HighlightHandler
	Comments    *CommentHandler
	Collections *CollectionHandler
	Files       *FileHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/content", deps.Content.Create)
	api.GET("/content", deps.Content.List)
	api.GET("/content/:id", deps.Content.Get)
	api.PATCH("/content/:id", deps.Content.Update)
	api.DELETE("/content/:id", deps.Content.Delete)
	api.GET("/content/:id/export", deps.Content.Export)

	api.POST("/highlights", deps.Highlights.Create)
	api.GET("/highlights", deps.Highlights.List)
	api.GET("/highlights/:id", deps.Highlights.Get)
	api.PATCH("/highlights/:id", deps.Highlights.Update)
	api.DELETE("/highlights/:id", deps.Highlights.Delete)
	api.POST("/highlights/:id/reply", deps.Highlights.Reply)

	api.POST("/comments", deps.Comments.Create)
	api.GET("/comments", deps.Comments.List)
	api.GET("/comments/:id", deps.Comments.Get)
	api.PATCH("/comments/:id", deps.Comments.Update)
	api.DELETE("/comments/:id", deps.Comments.Delete)

	api.POST("/collections", deps.Collections.Create)
	api.GET("/collections", deps.Collections.List)
	api.GET("/collections/:id", deps.Collections.Get)
	api.PATCH("/collections/:id", deps.Collections.Update)
	api.DELETE("/collections/:id", deps.Collections.Delete)

	api.POST("/upload/pdf", deps.Files.UploadPDF)
	api.GET("/files/:key", deps.Files.Get)
}
