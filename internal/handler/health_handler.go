// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"iot-hub/internal/config"
	"iot-hub/internal/service"
	"iot-hub/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	discoveryService *service.DiscoveryService
	config           *config.Config
	logger           *utils.ServiceLogger
	startedAt        time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(discoveryService *service.DiscoveryService, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		discoveryService: discoveryService,
		config:           config,
		logger:           utils.NewServiceLogger(logger, "health-handler"),
		startedAt:        time.Now(),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including discovery loop state
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	stats := h.discoveryService.Statistics()

	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).String(),
		Checks:    make(map[string]CheckResult),
	}

	discoveryStatus := "healthy"
	discoveryMessage := "Discovery loop running"
	if !stats.DiscoveryEnabled {
		discoveryMessage = "Discovery loop stopped"
	}
	health.Checks["discovery"] = CheckResult{
		Status:  discoveryStatus,
		Message: discoveryMessage,
		Data: map[string]interface{}{
			"total_scans":    stats.TotalScans,
			"total_devices":  stats.TotalDevices,
			"online_devices": stats.OnlineDevices,
		},
	}

	c.JSON(http.StatusOK, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Description Check if service is ready to accept traffic
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
