package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/service"
)

// SearchHandler exposes the relevance engine, search history and
// saved searches
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles POST /search
func (h *SearchHandler) Search(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	resp, err := h.search.Search(c.Request.Context(), owner(c), req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "search failed", err)
		return
	}
	common.SuccessResponse(c, resp, &common.Meta{
		Limit:  req.Limit,
		Offset: req.Offset,
		Total:  int64(resp.Total),
	})
}

// SearchGet handles GET /search with query params for simple callers
func (h *SearchHandler) SearchGet(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	req := domain.SearchRequest{
		Query:             c.Query("q"),
		SortBy:            c.Query("sort"),
		SortOrder:         c.Query("order"),
		Limit:             limit,
		Offset:            offset,
		IncludeHighlights: c.Query("highlights") == "true",
		IncludeFacets:     c.Query("facets") == "true",
	}
	resp, err := h.search.Search(c.Request.Context(), owner(c), req)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "search failed", err)
		return
	}
	common.SuccessResponse(c, resp, &common.Meta{
		Limit:  req.Limit,
		Offset: req.Offset,
		Total:  int64(resp.Total),
	})
}

// Suggestions handles GET /search/suggestions?q=
func (h *SearchHandler) Suggestions(c *gin.Context) {
	out := h.search.Suggestions(c.Request.Context(), owner(c), c.Query("q"))
	if out == nil {
		out = []string{}
	}
	common.SuccessResponse(c, out, nil)
}

// History handles GET /search/history
func (h *SearchHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	history, err := h.search.History(c.Request.Context(), owner(c), limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load search history", err)
		return
	}
	common.SuccessResponse(c, history, &common.Meta{Total: int64(len(history))})
}

// RecentQueries handles GET /search/recent
func (h *SearchHandler) RecentQueries(c *gin.Context) {
	recent, err := h.search.RecentQueries(c.Request.Context(), owner(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load recent queries", err)
		return
	}
	common.SuccessResponse(c, recent, nil)
}

type saveSearchRequest struct {
	Name    string               `json:"name"`
	Query   string               `json:"query"`
	Filters domain.SearchFilters `json:"filters"`
}

// SaveSearch handles POST /search/saved
func (h *SearchHandler) SaveSearch(c *gin.Context) {
	var req saveSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	saved, err := h.search.SaveSearch(c.Request.Context(), owner(c), req.Name, req.Query, req.Filters)
	if err != nil {
		var verrs common.ValidationErrors
		if errors.As(err, &verrs) {
			common.ErrorResponse(c, http.StatusBadRequest, "validation failed", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to save search", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: saved})
}

// ListSavedSearches handles GET /search/saved
func (h *SearchHandler) ListSavedSearches(c *gin.Context) {
	list, err := h.search.ListSavedSearches(c.Request.Context(), owner(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list saved searches", err)
		return
	}
	common.SuccessResponse(c, list, &common.Meta{Total: int64(len(list))})
}

// DeleteSavedSearch handles DELETE /search/saved/:id
func (h *SearchHandler) DeleteSavedSearch(c *gin.Context) {
	err := h.search.DeleteSavedSearch(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrSavedSearchNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "saved search not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete saved search", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// ExecuteSavedSearch handles POST /search/saved/:id/execute
func (h *SearchHandler) ExecuteSavedSearch(c *gin.Context) {
	resp, err := h.search.ExecuteSavedSearch(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrSavedSearchNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "saved search not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "search failed", err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}
