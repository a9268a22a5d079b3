package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/middleware"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/service"
)

// ContentHandler exposes the story and media collections
type ContentHandler struct {
	content *service.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(content *service.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

// owner resolves the data owner for a request: the authenticated user,
// falling back to the shared anonymous bucket
func owner(c *gin.Context) string {
	if id := middleware.GetUserID(c); id != "" {
		return id
	}
	return domain.AnonymousOwner
}

func contentType(c *gin.Context) (domain.ContentType, bool) {
	switch c.Param("type") {
	case "stories":
		return domain.ContentTypeStory, true
	case "media":
		return domain.ContentTypeMedia, true
	}
	common.ErrorResponse(c, http.StatusBadRequest, "unknown content type", nil)
	return "", false
}

// List handles GET /content/:type
func (h *ContentHandler) List(c *gin.Context) {
	typ, ok := contentType(c)
	if !ok {
		return
	}
	records, err := h.content.List(c.Request.Context(), owner(c), typ)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list content", err)
		return
	}
	common.SuccessResponse(c, records, &common.Meta{Total: int64(len(records))})
}

// Get handles GET /content/:type/:id
func (h *ContentHandler) Get(c *gin.Context) {
	typ, ok := contentType(c)
	if !ok {
		return
	}
	rec, err := h.content.Get(c.Request.Context(), owner(c), typ, c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "content not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load content", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

// Create handles POST /content/:type
func (h *ContentHandler) Create(c *gin.Context) {
	typ, ok := contentType(c)
	if !ok {
		return
	}
	var req domain.ContentRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rec, err := h.content.Create(c.Request.Context(), owner(c), typ, req)
	if err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, "validation failed", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create content", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: rec})
}

// Update handles PUT /content/:type/:id
func (h *ContentHandler) Update(c *gin.Context) {
	typ, ok := contentType(c)
	if !ok {
		return
	}
	var req domain.ContentRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	rec, err := h.content.Update(c.Request.Context(), owner(c), typ, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "content not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update content", err)
		return
	}
	common.SuccessResponse(c, rec, nil)
}

// Delete handles DELETE /content/:type/:id
func (h *ContentHandler) Delete(c *gin.Context) {
	typ, ok := contentType(c)
	if !ok {
		return
	}
	if err := h.content.Delete(c.Request.Context(), owner(c), typ, c.Param("id")); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "content not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete content", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
