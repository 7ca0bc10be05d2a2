// internal/service/device_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"iot-hub/internal/discovery"
	internalDriver "iot-hub/internal/driver"
	"iot-hub/internal/metrics"
	"iot-hub/internal/model"
	"iot-hub/internal/transport"
	"iot-hub/internal/utils"
	"iot-hub/pkg/devicetypes"
	"iot-hub/pkg/driver"
)

// Sentinel errors for command routing. Handlers map these to HTTP statuses
// with errors.Is.
var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceOffline  = errors.New("device is offline")
	ErrNoDriver       = errors.New("no driver for device")
	ErrCommandFailed  = errors.New("command execution failed")
	ErrNoTransport    = errors.New("device has no http service")
)

// DeviceService is the catalog-facing facade: it answers device queries
// from the discovery engine's catalog and routes commands to the driver
// that claimed each device
type DeviceService struct {
	engine    *discovery.Engine
	registry  *internalDriver.Registry
	client    transport.Client
	collector *metrics.Collector
	logger    *utils.ServiceLogger
}

// NewDeviceService creates a new device service instance. collector may be
// nil when metrics are disabled.
func NewDeviceService(
	engine *discovery.Engine,
	registry *internalDriver.Registry,
	client transport.Client,
	collector *metrics.Collector,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		engine:    engine,
		registry:  registry,
		client:    client,
		collector: collector,
		logger:    utils.NewServiceLogger(logger, "device-service"),
	}
}

// ListDevices returns every device in the catalog
func (ds *DeviceService) ListDevices() []*model.Device {
	return ds.engine.Devices()
}

// ListOnlineDevices returns only the devices currently reachable
func (ds *DeviceService) ListOnlineDevices() []*model.Device {
	return ds.engine.OnlineDevices()
}

// GetDevice returns one device by catalog ID
func (ds *DeviceService) GetDevice(id string) (*model.Device, error) {
	device := ds.engine.Device(id)
	if device == nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return device, nil
}

// GetDeviceByAddress returns one device by its network address
func (ds *DeviceService) GetDeviceByAddress(address string) (*model.Device, error) {
	device := ds.engine.DeviceByAddress(address)
	if device == nil {
		return nil, fmt.Errorf("%w: address %s", ErrDeviceNotFound, address)
	}
	return device, nil
}

// ListDevicesByClassification filters the catalog by device family
func (ds *DeviceService) ListDevicesByClassification(class model.Classification) []*model.Device {
	return ds.engine.DevicesByClassification(class)
}

// ListDevicesByCapability filters the catalog by capability flag
func (ds *DeviceService) ListDevicesByCapability(capability model.Capability) []*model.Device {
	return ds.engine.DevicesByCapability(capability)
}

// GetDeviceInfo queries live details from the device via its driver.
// The device must be online; detail keys depend on the driver.
func (ds *DeviceService) GetDeviceInfo(ctx context.Context, id string) (map[string]any, error) {
	device, d, err := ds.resolveOnline(id)
	if err != nil {
		return nil, err
	}

	info := d.Describe(ctx, device, ds.client)
	if info == nil {
		info = map[string]any{}
	}
	if commands, ok := devicetypes.KnownCommands[string(device.Classification)]; ok {
		info["supported_commands"] = commands
	}
	return info, nil
}

// ExecuteCommand routes a named command to the driver that claimed the
// device. Failures short-circuit in order: unknown device, offline device,
// no driver, command rejection.
func (ds *DeviceService) ExecuteCommand(ctx context.Context, id, command string, params map[string]any) error {
	device, d, err := ds.resolveOnline(id)
	if err != nil {
		ds.recordCommand(false)
		return err
	}

	deviceLogger := utils.NewDeviceLogger(ds.logger.Logger, device.ID, string(device.Classification), device.Address)

	if !d.ExecuteCommand(ctx, device, command, params, ds.client) {
		ds.recordCommand(false)
		deviceLogger.Warn("Command failed", zap.String("command", command))
		return fmt.Errorf("%w: %s on %s", ErrCommandFailed, command, id)
	}

	ds.recordCommand(true)
	deviceLogger.Info("Command executed", zap.String("command", command))
	return nil
}

// RefreshDevice re-probes a device, allowing its classification and
// capabilities to change. Reports whether a driver claimed the device.
func (ds *DeviceService) RefreshDevice(ctx context.Context, id string) (bool, error) {
	claimed, err := ds.engine.Refresh(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, discovery.ErrUnknownDevice):
			return false, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		case errors.Is(err, discovery.ErrNoTransport):
			return false, fmt.Errorf("%w: %s", ErrNoTransport, id)
		}
		return false, err
	}
	return claimed, nil
}

// resolveOnline looks up a device and its driver, enforcing the routing
// preconditions in order
func (ds *DeviceService) resolveOnline(id string) (*model.Device, driver.Driver, error) {
	device := ds.engine.Device(id)
	if device == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	if !device.IsOnline {
		return nil, nil, fmt.Errorf("%w: %s", ErrDeviceOffline, id)
	}

	d := ds.registry.FindFor(device)
	if d == nil {
		return nil, nil, fmt.Errorf("%w: %s (%s)", ErrNoDriver, id, device.Classification)
	}
	return device, d, nil
}

func (ds *DeviceService) recordCommand(success bool) {
	if ds.collector == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	ds.collector.CommandsTotal.WithLabelValues(result).Inc()
}

// CommandRequest is the payload for POST /devices/:id/command
type CommandRequest struct {
	Command string         `json:"command" binding:"required"`
	Params  map[string]any `json:"params,omitempty"`
}

// DeviceSummary is the list-view projection of a catalog entry
type DeviceSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Classification string   `json:"classification"`
	Capabilities   []string `json:"capabilities"`
	IsOnline       bool     `json:"is_online"`
	LastSeen       string   `json:"last_seen"`
}

// Summarize converts a device to its list-view projection
func Summarize(device *model.Device) DeviceSummary {
	return DeviceSummary{
		ID:             device.ID,
		Name:           device.Name,
		Address:        device.Address,
		Classification: string(device.Classification),
		Capabilities:   device.Capabilities.Names(),
		IsOnline:       device.IsOnline,
		LastSeen:       device.LastSeen.Format(time.RFC3339),
	}
}
