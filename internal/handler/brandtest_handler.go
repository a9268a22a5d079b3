package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/service"
)

// BrandTestHandler exposes the brand test comparison engine
type BrandTestHandler struct {
	brandTests *service.BrandTestService
}

// NewBrandTestHandler creates a new BrandTestHandler
func NewBrandTestHandler(brandTests *service.BrandTestService) *BrandTestHandler {
	return &BrandTestHandler{brandTests: brandTests}
}

type createVariantRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Content     string            `json:"content"`
	Audiences   []string          `json:"audiences"`
	Config      domain.TestConfig `json:"config"`
}

// Create handles POST /brand-tests
func (h *BrandTestHandler) Create(c *gin.Context) {
	var req createVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	variant, err := h.brandTests.CreateVariant(c.Request.Context(), owner(c),
		req.Name, req.Description, req.Content, req.Audiences, req.Config)
	if err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, "validation failed", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create variant", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: variant})
}

// List handles GET /brand-tests
func (h *BrandTestHandler) List(c *gin.Context) {
	variants, err := h.brandTests.List(c.Request.Context(), owner(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list variants", err)
		return
	}
	common.SuccessResponse(c, variants, &common.Meta{Total: int64(len(variants))})
}

// Get handles GET /brand-tests/:id
func (h *BrandTestHandler) Get(c *gin.Context) {
	variant, err := h.brandTests.Get(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to load variant")
		return
	}
	common.SuccessResponse(c, variant, nil)
}

// Start handles POST /brand-tests/:id/start
func (h *BrandTestHandler) Start(c *gin.Context) {
	variant, err := h.brandTests.Start(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to start variant")
		return
	}
	common.SuccessResponse(c, variant, nil)
}

// Complete handles POST /brand-tests/:id/complete
func (h *BrandTestHandler) Complete(c *gin.Context) {
	variant, err := h.brandTests.Complete(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to complete variant")
		return
	}
	common.SuccessResponse(c, variant, nil)
}

// Analyze handles POST /brand-tests/:id/analyze
func (h *BrandTestHandler) Analyze(c *gin.Context) {
	result, err := h.brandTests.Analyze(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to analyze variant")
		return
	}
	common.SuccessResponse(c, result, nil)
}

// Compare handles POST /brand-tests/compare
func (h *BrandTestHandler) Compare(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.brandTests.Compare(c.Request.Context(), owner(c), req.IDs)
	if err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, "validation failed", err)
			return
		}
		h.respondError(c, err, "comparison failed")
		return
	}
	common.SuccessResponse(c, result, nil)
}

func (h *BrandTestHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, common.ErrVariantNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "variant not found", err)
	case errors.Is(err, common.ErrInvalidTransition):
		common.ErrorResponse(c, http.StatusConflict, "invalid status transition", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
