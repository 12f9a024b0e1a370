package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marginote/marginote/internal/pkg/response"
	"github.com/marginote/marginote/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req service.CreateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *CommentHandler) List(c *gin.Context) {
	highlightID := c.Query("highlight_id")
	if highlightID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "highlight_id is required")
		return
	}
	items, err := h.comments.ListByHighlight(c.Request.Context(), highlightID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req service.UpdateCommentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
