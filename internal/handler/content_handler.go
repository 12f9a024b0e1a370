package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marginote/marginote/internal/pkg/response"
	"github.com/marginote/marginote/internal/service"
)

type ContentHandler struct {
	contents *service.ContentService
	export   *service.ExportService
}

func NewContentHandler(contents *service.ContentService, export *service.ExportService) *ContentHandler {
	return &ContentHandler{contents: contents, export: export}
}

// Create accepts JSON for articles and videos, multipart form data for PDF
// uploads.
func (h *ContentHandler) Create(c *gin.Context) {
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		h.createPDF(c)
		return
	}
	var req service.CreateContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	content, err := h.contents.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, content)
}

func (h *ContentHandler) createPDF(c *gin.Context) {
	if c.PostForm("type") != "pdf" {
		response.Error(c, http.StatusBadRequest, "invalid", "multipart upload is only for pdf type")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "failed to open file")
		return
	}
	defer opened.Close()

	content, err := h.contents.CreatePDF(c.Request.Context(), service.CreatePDFInput{
		Title:         c.PostForm("title"),
		Author:        c.PostForm("author"),
		Tags:          parseJSONList(c.PostForm("tags")),
		CollectionIDs: parseJSONList(c.PostForm("collection_ids")),
		FileName:      file.Filename,
		ContentType:   file.Header.Get("Content-Type"),
		Size:          file.Size,
		File:          opened,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, content)
}

func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.contents.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *ContentHandler) Get(c *gin.Context) {
	content, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, content)
}

func (h *ContentHandler) Update(c *gin.Context) {
	var req service.UpdateContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	content, err := h.contents.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, content)
}

func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.contents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ContentHandler) Export(c *gin.Context) {
	result, err := h.export.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

func parseJSONList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
