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

// BackupHandler exposes backup, restore and export operations
type BackupHandler struct {
	backups  *service.BackupService
	exporter *service.ExportService
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backups *service.BackupService, exporter *service.ExportService) *BackupHandler {
	return &BackupHandler{backups: backups, exporter: exporter}
}

// Create handles POST /backups
func (h *BackupHandler) Create(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
	}
	_ = c.ShouldBindJSON(&req)

	meta, err := h.backups.CreateBackup(c.Request.Context(), owner(c), middleware.GetUserID(c), req.Description)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "backup failed", err)
		return
	}
	c.JSON(http.StatusCreated, common.APIResponse{Data: meta})
}

// List handles GET /backups
func (h *BackupHandler) List(c *gin.Context) {
	history, err := h.backups.ListHistory(c.Request.Context(), owner(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list backups", err)
		return
	}
	common.SuccessResponse(c, history, &common.Meta{Total: int64(len(history))})
}

// Verify handles GET /backups/:id/verify
func (h *BackupHandler) Verify(c *gin.Context) {
	valid, problems, err := h.backups.Verify(c.Request.Context(), owner(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrBackupNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "backup not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "verification failed", err)
		return
	}
	common.SuccessResponse(c, gin.H{"valid": valid, "problems": problems}, nil)
}

// Restore handles POST /backups/:id/restore (admin only)
func (h *BackupHandler) Restore(c *gin.Context) {
	var opts domain.RestoreOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	opts.BackupID = c.Param("id")

	report, err := h.backups.Restore(c.Request.Context(), owner(c), opts)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrBackupNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "backup not found", err)
		case errors.Is(err, common.ErrBackupIncomplete):
			common.ErrorResponse(c, http.StatusConflict, "backup is not restorable", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "restore failed", err)
		}
		return
	}
	common.SuccessResponse(c, report, nil)
}

// Delete handles DELETE /backups/:id (admin only)
func (h *BackupHandler) Delete(c *gin.Context) {
	if err := h.backups.DeleteBackup(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrBackupNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "backup not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to delete backup", err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// Export handles POST /exports
func (h *BackupHandler) Export(c *gin.Context) {
	var opts service.ExportOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), owner(c), opts)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "export failed", err)
		return
	}
	if !result.Success {
		common.ErrorResponse(c, http.StatusBadRequest, result.Error, nil)
		return
	}
	common.SuccessResponse(c, result, nil)
}
