package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marginote/marginote/internal/filestore"
	"github.com/marginote/marginote/internal/pkg/response"
)

type FileHandler struct {
	store   filestore.Store
	baseURL string
}

type UploadResponse struct {
	FileID       string `json:"file_id"`
	FileName     string `json:"file_name"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	FileURL      string `json:"file_url"`
}

func NewFileHandler(store filestore.Store, baseURL string) *FileHandler {
	return &FileHandler{store: store, baseURL: baseURL}
}

// UploadPDF persists a pdf payload out-of-band and returns the stable file
// reference used to populate pdf content metadata.
func (h *FileHandler) UploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "file is required")
		return
	}
	if file.Header.Get("Content-Type") != "application/pdf" {
		response.Error(c, http.StatusBadRequest, "invalid", "only pdf files are allowed")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "failed to open file")
		return
	}
	defer opened.Close()

	fileID := uuid.NewString()
	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	key := fileID + ext
	if err := h.store.Save(c.Request.Context(), key, opened, file.Size); err != nil {
		response.Error(c, http.StatusBadGateway, "dependency_failed", "failed to store file")
		return
	}
	response.Created(c, UploadResponse{
		FileID:       fileID,
		FileName:     key,
		OriginalName: file.Filename,
		Size:         file.Size,
		FileURL:      h.store.URL(key, h.baseURL),
	})
}

// Get serves locally stored files; other store types expose their own URLs.
func (h *FileHandler) Get(c *gin.Context) {
	if h.store.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/pdf")
	_, _ = io.Copy(c.Writer, file)
}
