package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marginote/marginote/internal/pkg/response"
	"github.com/marginote/marginote/internal/service"
)

type HighlightHandler struct {
	highlights *service.HighlightService
	replies    *service.ReplyService
}

func NewHighlightHandler(highlights *service.HighlightService, replies *service.ReplyService) *HighlightHandler {
	return &HighlightHandler{highlights: highlights, replies: replies}
}

func (h *HighlightHandler) Create(c *gin.Context) {
	var req service.CreateHighlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	highlight, err := h.highlights.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, highlight)
}

func (h *HighlightHandler) List(c *gin.Context) {
	contentID := c.Query("content_id")
	if contentID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "content_id is required")
		return
	}
	items, err := h.highlights.ListByContent(c.Request.Context(), contentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *HighlightHandler) Get(c *gin.Context) {
	highlight, err := h.highlights.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, highlight)
}

func (h *HighlightHandler) Update(c *gin.Context) {
	var req service.UpdateHighlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	highlight, err := h.highlights.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, highlight)
}

func (h *HighlightHandler) Delete(c *gin.Context) {
	if err := h.highlights.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type replyRequest struct {
	Instructions string `json:"instructions"`
}

// Reply asks the LLM collaborator for the next comment in the highlight's
// thread.
func (h *HighlightHandler) Reply(c *gin.Context) {
	var req replyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
			return
		}
	}
	comment, err := h.replies.GenerateReply(c.Request.Context(), c.Param("id"), req.Instructions)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, comment)
}
