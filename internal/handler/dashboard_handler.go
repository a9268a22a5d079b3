package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/middleware"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/service"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
)

// DashboardHandler exposes the dashboard counters and the activity log
type DashboardHandler struct {
	metrics    *service.MetricsService
	activities *service.ActivityService
	store      *storage.Adapter
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(metrics *service.MetricsService, activities *service.ActivityService, store *storage.Adapter) *DashboardHandler {
	return &DashboardHandler{metrics: metrics, activities: activities, store: store}
}

// GetMetrics handles GET /dashboard/metrics
func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	m, err := h.metrics.Get(c.Request.Context(), owner(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load metrics", err)
		return
	}
	common.SuccessResponse(c, m, nil)
}

type counterRequest struct {
	Counter string   `json:"counter"`
	Value   *float64 `json:"value,omitempty"`
}

// UpdateCounter handles POST /dashboard/metrics/:action with action
// one of increment, decrement, set
func (h *DashboardHandler) UpdateCounter(c *gin.Context) {
	var req counterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	var err error
	var m interface{}
	switch c.Param("action") {
	case "increment":
		m, err = h.metrics.Increment(ctx, owner(c), req.Counter)
	case "decrement":
		m, err = h.metrics.Decrement(ctx, owner(c), req.Counter)
	case "set":
		if req.Value == nil {
			common.ErrorResponse(c, http.StatusBadRequest, "value is required for set", nil)
			return
		}
		m, err = h.metrics.SetValue(ctx, owner(c), req.Counter, *req.Value)
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "unknown counter action", nil)
		return
	}
	if err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, "validation failed", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update counter", err)
		return
	}
	common.SuccessResponse(c, m, nil)
}

// ListActivities handles GET /dashboard/activities
func (h *DashboardHandler) ListActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	items, err := h.activities.List(c.Request.Context(), owner(c), limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load activities", err)
		return
	}
	common.SuccessResponse(c, items, &common.Meta{Total: int64(len(items))})
}

// RecordActivity handles POST /dashboard/activities
func (h *DashboardHandler) RecordActivity(c *gin.Context) {
	var req struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	item, err := h.activities.Record(c.Request.Context(), owner(c), activityType(req.Type), req.Message, middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to record activity", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: item})
}

func activityType(s string) domain.ActivityType {
	switch domain.ActivityType(s) {
	case domain.ActivityContent, domain.ActivityBrand, domain.ActivityAnalytics, domain.ActivitySystem:
		return domain.ActivityType(s)
	}
	return domain.ActivitySystem
}

// ClearData handles DELETE /dashboard/data (admin only): wipes the
// owner's collections from both persistence backends
func (h *DashboardHandler) ClearData(c *gin.Context) {
	if err := h.store.Clear(c.Request.Context(), owner(c)); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to clear data", err)
		return
	}
	common.SuccessResponse(c, gin.H{"cleared": true}, nil)
}
