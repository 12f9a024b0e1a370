package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marginote/marginote/internal/pkg/response"
	"github.com/marginote/marginote/internal/service"
)

type CollectionHandler struct {
	collections *service.CollectionService
}

func NewCollectionHandler(collections *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collections: collections}
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req service.CreateCollectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	collection, err := h.collections.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, collection)
}

func (h *CollectionHandler) List(c *gin.Context) {
	items, err := h.collections.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}

// Get returns the collection with its member content inlined.
func (h *CollectionHandler) Get(c *gin.Context) {
	collection, err := h.collections.GetWithContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, collection)
}

func (h *CollectionHandler) Update(c *gin.Context) {
	var req service.UpdateCollectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	collection, err := h.collections.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, collection)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	if err := h.collections.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
