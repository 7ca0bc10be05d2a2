// internal/handler/device_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"iot-hub/internal/model"
	"iot-hub/internal/service"
	"iot-hub/internal/utils"
)

// DeviceHandler handles device catalog HTTP requests
type DeviceHandler struct {
	deviceService *service.DeviceService
	logger        *utils.ServiceLogger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(deviceService *service.DeviceService, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
		logger:        utils.NewServiceLogger(logger, "device-handler"),
	}
}

// RegisterRoutes registers device catalog routes
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.GET("/online", h.ListOnlineDevices)
		devices.GET("/types/:type", h.ListDevicesByType)
		devices.GET("/capabilities/:capability", h.ListDevicesByCapability)

		deviceRoutes := devices.Group("/:id")
		{
			deviceRoutes.GET("", h.GetDevice)
			deviceRoutes.GET("/info", h.GetDeviceInfo)
			deviceRoutes.POST("/command", h.ExecuteCommand)
			deviceRoutes.POST("/refresh", h.RefreshDevice)
		}
	}
}

// ListDevices lists all discovered devices
// @Summary List devices
// @Description Get every device in the discovery catalog
// @Tags Devices
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{count=int,devices=[]service.DeviceSummary}} "Devices retrieved successfully"
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices := h.deviceService.ListDevices()

	summaries := make([]service.DeviceSummary, 0, len(devices))
	for _, device := range devices {
		summaries = append(summaries, service.Summarize(device))
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", gin.H{
		"count":   len(summaries),
		"devices": summaries,
	})
}

// ListOnlineDevices lists devices currently reachable
// @Summary List online devices
// @Description Get only the devices that are currently online
// @Tags Devices
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{count=int,devices=[]service.DeviceSummary}} "Online devices retrieved successfully"
// @Router /devices/online [get]
func (h *DeviceHandler) ListOnlineDevices(c *gin.Context) {
	devices := h.deviceService.ListOnlineDevices()

	summaries := make([]service.DeviceSummary, 0, len(devices))
	for _, device := range devices {
		summaries = append(summaries, service.Summarize(device))
	}

	utils.SuccessResponse(c, http.StatusOK, "Online devices retrieved successfully", gin.H{
		"count":   len(summaries),
		"devices": summaries,
	})
}

// ListDevicesByType lists devices of one classification
// @Summary List devices by type
// @Description Get devices filtered by classification
// @Tags Devices
// @Accept json
// @Produce json
// @Param type path string true "Classification" Enums(CAMERA, SENSOR, CONTROLLER, DISPLAY, GENERIC, UNKNOWN)
// @Success 200 {object} utils.APIResponse{data=object{count=int,devices=[]service.DeviceSummary}} "Devices retrieved successfully"
// @Failure 400 {object} utils.APIResponse "Invalid classification"
// @Router /devices/types/{type} [get]
func (h *DeviceHandler) ListDevicesByType(c *gin.Context) {
	class, err := model.ParseClassification(c.Param("type"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid classification", err)
		return
	}

	devices := h.deviceService.ListDevicesByClassification(class)

	summaries := make([]service.DeviceSummary, 0, len(devices))
	for _, device := range devices {
		summaries = append(summaries, service.Summarize(device))
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", gin.H{
		"count":   len(summaries),
		"devices": summaries,
	})
}

// ListDevicesByCapability lists devices exposing one capability
// @Summary List devices by capability
// @Description Get devices filtered by capability flag
// @Tags Devices
// @Accept json
// @Produce json
// @Param capability path string true "Capability name" Enums(camera, sensors, display, actuators, storage, networking, auth, realtime_stream, file_upload, system_control)
// @Success 200 {object} utils.APIResponse{data=object{count=int,devices=[]service.DeviceSummary}} "Devices retrieved successfully"
// @Failure 400 {object} utils.APIResponse "Invalid capability"
// @Router /devices/capabilities/{capability} [get]
func (h *DeviceHandler) ListDevicesByCapability(c *gin.Context) {
	capability, err := model.ParseCapability(c.Param("capability"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid capability", err)
		return
	}

	devices := h.deviceService.ListDevicesByCapability(capability)

	summaries := make([]service.DeviceSummary, 0, len(devices))
	for _, device := range devices {
		summaries = append(summaries, service.Summarize(device))
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", gin.H{
		"count":   len(summaries),
		"devices": summaries,
	})
}

// GetDevice returns one device with full catalog detail
// @Summary Get device
// @Description Get full catalog detail for one device
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse{data=model.Device} "Device retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Router /devices/{id} [get]
func (h *DeviceHandler) GetDevice(c *gin.Context) {
	device, err := h.deviceService.GetDevice(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", device)
}

// GetDeviceInfo queries live details from the device
// @Summary Get live device info
// @Description Query the device itself for live details via its driver
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse "Device info retrieved successfully"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Failure 409 {object} utils.APIResponse "Device is offline"
// @Failure 502 {object} utils.APIResponse "No driver for device"
// @Router /devices/{id}/info [get]
func (h *DeviceHandler) GetDeviceInfo(c *gin.Context) {
	info, err := h.deviceService.GetDeviceInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondRoutingError(c, err, "Failed to query device info")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device info retrieved successfully", info)
}

// ExecuteCommand runs a named command on the device
// @Summary Execute device command
// @Description Route a named command to the driver that claimed the device
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Param request body service.CommandRequest true "Command request"
// @Success 200 {object} utils.APIResponse "Command executed successfully"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Failure 409 {object} utils.APIResponse "Device is offline"
// @Failure 502 {object} utils.APIResponse "Command failed"
// @Router /devices/{id}/command [post]
func (h *DeviceHandler) ExecuteCommand(c *gin.Context) {
	var req service.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := c.Param("id")
	if err := h.deviceService.ExecuteCommand(c.Request.Context(), id, req.Command, req.Params); err != nil {
		h.respondRoutingError(c, err, "Command execution failed")
		return
	}

	h.logger.Info("Command executed",
		zap.String("device_id", id),
		zap.String("command", req.Command),
	)
	utils.SuccessResponse(c, http.StatusOK, "Command executed successfully", gin.H{
		"device_id": id,
		"command":   req.Command,
	})
}

// RefreshDevice re-probes a device for reclassification
// @Summary Refresh device
// @Description Re-run driver probing against the device, allowing its classification to change
// @Tags Devices
// @Accept json
// @Produce json
// @Param id path string true "Device ID"
// @Success 200 {object} utils.APIResponse{data=object{claimed=bool,device=model.Device}} "Device refreshed"
// @Failure 404 {object} utils.APIResponse "Device not found"
// @Failure 409 {object} utils.APIResponse "Device has no HTTP service"
// @Router /devices/{id}/refresh [post]
func (h *DeviceHandler) RefreshDevice(c *gin.Context) {
	id := c.Param("id")

	claimed, err := h.deviceService.RefreshDevice(c.Request.Context(), id)
	if err != nil {
		h.respondRoutingError(c, err, "Failed to refresh device")
		return
	}

	device, err := h.deviceService.GetDevice(id)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device refreshed", gin.H{
		"claimed": claimed,
		"device":  device,
	})
}

// respondRoutingError maps the service sentinel errors to HTTP statuses
func (h *DeviceHandler) respondRoutingError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Device not found", err)
	case errors.Is(err, service.ErrDeviceOffline), errors.Is(err, service.ErrNoTransport):
		utils.ErrorResponse(c, http.StatusConflict, "Device not reachable", err)
	case errors.Is(err, service.ErrNoDriver), errors.Is(err, service.ErrCommandFailed):
		utils.ErrorResponse(c, http.StatusBadGateway, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
