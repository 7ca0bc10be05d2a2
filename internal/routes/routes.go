// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"iot-hub/internal/config"
	"iot-hub/internal/events"
	"iot-hub/internal/handler"
	"iot-hub/internal/journal"
	"iot-hub/internal/middleware"
	"iot-hub/internal/service"
	"iot-hub/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	deviceService    *service.DeviceService
	discoveryService *service.DiscoveryService
	bus              *events.Bus
	journal          *journal.Journal
	registry         *prometheus.Registry
	wsHandler        *handler.WebSocketHandler
}

// NewRouter creates a new router instance. journal and registry may be nil
// when the corresponding features are disabled.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	deviceService *service.DeviceService,
	discoveryService *service.DiscoveryService,
	bus *events.Bus,
	j *journal.Journal,
	registry *prometheus.Registry,
) *Router {
	return &Router{
		config:           config,
		logger:           logger,
		deviceService:    deviceService,
		discoveryService: discoveryService,
		bus:              bus,
		journal:          j,
		registry:         registry,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// WebSocketHandler exposes the handler so shutdown can disconnect clients
func (r *Router) WebSocketHandler() *handler.WebSocketHandler {
	return r.wsHandler
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Server))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.discoveryService, r.config, r.logger)
	deviceHandler := handler.NewDeviceHandler(r.deviceService, r.logger)
	discoveryHandler := handler.NewDiscoveryHandler(r.discoveryService, r.journal, r.logger)
	r.wsHandler = handler.NewWebSocketHandler(r.bus, r.logger)

	// Health check routes
	healthHandler.RegisterRoutes(router.Group(""))

	// API v1 routes
	apiV1 := router.Group("/api/v1/iot")
	deviceHandler.RegisterRoutes(apiV1)
	discoveryHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	r.wsHandler.RegisterRoutes(router.Group("/ws"))

	// Prometheus metrics
	if r.registry != nil {
		router.GET(r.config.Metrics.Path, gin.WrapH(
			promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}),
		))
	}

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
