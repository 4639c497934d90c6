package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title CRM Sync API
// @version 1.0
// @description API for monitoring and triggering CRM action sync runs
// @host localhost:8080
// @BasePath /api/v1

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// @Summary List connected accounts
		// @Description Get all CRM accounts tracked by the sync engine
		// @Tags accounts
		// @Produce json
		// @Success 200 {array} AccountResponse
		// @Failure 500 {object} ErrorResponse
		// @Router /accounts [get]
		v1.GET("/accounts", h.ListAccounts)

		sync := v1.Group("/sync")
		{
			// @Summary Trigger a sync run
			// @Description Start a background sync of all accounts
			// @Tags sync
			// @Produce json
			// @Success 202 {object} map[string]string "Sync started"
			// @Failure 409 {object} ErrorResponse "Run already in progress"
			// @Failure 500 {object} ErrorResponse
			// @Router /sync [post]
			sync.POST("", h.TriggerSync)

			// @Summary Get all sync statuses
			// @Description Get the sync status of all accounts
			// @Tags sync
			// @Produce json
			// @Success 200 {array} SyncStatusResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /sync [get]
			sync.GET("", h.ListSyncStatuses)

			// @Summary Get account sync status
			// @Description Get the sync status of one account
			// @Tags sync
			// @Produce json
			// @Param id path string true "Account ID"
			// @Success 200 {object} SyncStatusResponse
			// @Failure 404 {object} ErrorResponse
			// @Failure 500 {object} ErrorResponse
			// @Router /sync/{id} [get]
			sync.GET("/:id", h.GetSyncStatus)
		}
	}

	return r
}
