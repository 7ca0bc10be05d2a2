// internal/handler/discovery_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"iot-hub/internal/journal"
	"iot-hub/internal/service"
	"iot-hub/internal/utils"
)

// DiscoveryHandler handles discovery lifecycle and statistics requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	journal          *journal.Journal
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler. journal may be nil
// when the event journal is disabled.
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, j *journal.Journal, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		journal:          j,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/scan", h.TriggerScan)
	router.GET("/statistics", h.GetStatistics)
	router.GET("/events", h.GetEvents)

	discovery := router.Group("/discovery")
	{
		discovery.GET("/status", h.GetStatus)
		discovery.POST("/start", h.StartDiscovery)
		discovery.POST("/stop", h.StopDiscovery)
	}
}

// TriggerScan requests an immediate discovery scan
// @Summary Trigger scan
// @Description Request an immediate discovery scan without waiting for the interval
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 202 {object} utils.APIResponse "Scan requested"
// @Router /scan [post]
func (h *DiscoveryHandler) TriggerScan(c *gin.Context) {
	h.discoveryService.TriggerScan()
	utils.SuccessResponse(c, http.StatusAccepted, "Scan requested", nil)
}

// GetStatistics returns discovery statistics
// @Summary Get statistics
// @Description Get discovery counters and the per-classification catalog breakdown
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.StatisticsResponse} "Statistics retrieved"
// @Router /statistics [get]
func (h *DiscoveryHandler) GetStatistics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved", h.discoveryService.Statistics())
}

// GetEvents returns the recent discovery event history
// @Summary Get event history
// @Description Get recent discovery events from the journal, newest first
// @Tags Discovery
// @Accept json
// @Produce json
// @Param limit query int false "Maximum entries" default(100)
// @Param device_id query string false "Filter by device ID"
// @Success 200 {object} utils.APIResponse{data=object{count=int,events=[]journal.Entry}} "Events retrieved"
// @Failure 503 {object} utils.APIResponse "Journal disabled"
// @Router /events [get]
func (h *DiscoveryHandler) GetEvents(c *gin.Context) {
	if h.journal == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Event journal is disabled", nil)
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	var entries []journal.Entry
	var err error
	if deviceID := c.Query("device_id"); deviceID != "" {
		entries, err = h.journal.ForDevice(c.Request.Context(), deviceID, limit)
	} else {
		entries, err = h.journal.Recent(c.Request.Context(), limit)
	}
	if err != nil {
		h.logger.Error("Failed to read event journal", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to read events", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Events retrieved", gin.H{
		"count":  len(entries),
		"events": entries,
	})
}

// GetStatus returns the discovery loop state
// @Summary Get discovery status
// @Description Get whether periodic scanning is running and at what interval
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.DiscoveryStatus} "Status retrieved"
// @Router /discovery/status [get]
func (h *DiscoveryHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Status retrieved", h.discoveryService.Status())
}

// StartDiscovery starts periodic scanning
// @Summary Start discovery
// @Description Start periodic scanning, optionally overriding the interval
// @Tags Discovery
// @Accept json
// @Produce json
// @Param request body service.StartRequest false "Start request"
// @Success 200 {object} utils.APIResponse{data=service.DiscoveryStatus} "Discovery started"
// @Failure 400 {object} utils.APIResponse "Invalid interval"
// @Router /discovery/start [post]
func (h *DiscoveryHandler) StartDiscovery(c *gin.Context) {
	var req service.StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	interval, err := req.ParseInterval()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid interval", err)
		return
	}

	h.discoveryService.Start(interval)
	utils.SuccessResponse(c, http.StatusOK, "Discovery started", h.discoveryService.Status())
}

// StopDiscovery stops periodic scanning
// @Summary Stop discovery
// @Description Stop periodic scanning; the device catalog is preserved
// @Tags Discovery
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=service.DiscoveryStatus} "Discovery stopped"
// @Router /discovery/stop [post]
func (h *DiscoveryHandler) StopDiscovery(c *gin.Context) {
	h.discoveryService.Stop()
	utils.SuccessResponse(c, http.StatusOK, "Discovery stopped", h.discoveryService.Status())
}
