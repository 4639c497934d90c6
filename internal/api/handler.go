package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crmstream/crm-sync/internal/errors"
	"github.com/crmstream/crm-sync/internal/models"
)

// SyncService defines the sync operations exposed over HTTP
type SyncService interface {
	TriggerSync() error
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	GetSyncStatus(ctx context.Context, accountID string) (*models.SyncStatus, error)
	ListSyncStatuses(ctx context.Context) ([]*models.SyncStatus, error)
}

type Handler struct {
	service SyncService
	logger  *logrus.Logger
}

func NewHandler(service SyncService, logger *logrus.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ListAccounts returns all connected CRM accounts
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.service.ListAccounts(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list accounts"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// TriggerSync starts a background sync run
func (h *Handler) TriggerSync(c *gin.Context) {
	if err := h.service.TriggerSync(); err != nil {
		if errors.IsSyncInProgress(err) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to trigger sync")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to trigger sync"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sync started"})
}

// ListSyncStatuses returns the sync status of all accounts
func (h *Handler) ListSyncStatuses(c *gin.Context) {
	statuses, err := h.service.ListSyncStatuses(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sync statuses")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list sync statuses"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// GetSyncStatus returns the sync status of one account
func (h *Handler) GetSyncStatus(c *gin.Context) {
	accountID := c.Param("id")

	status, err := h.service.GetSyncStatus(c.Request.Context(), accountID)
	if err != nil {
		if errors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to get sync status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to get sync status"})
		return
	}
	c.JSON(http.StatusOK, status)
}
