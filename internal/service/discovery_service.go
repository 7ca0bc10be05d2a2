// internal/service/discovery_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"iot-hub/internal/discovery"
	"iot-hub/internal/utils"
)

// DiscoveryService controls the discovery engine lifecycle and exposes its
// statistics
type DiscoveryService struct {
	engine *discovery.Engine
	logger *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service instance
func NewDiscoveryService(engine *discovery.Engine, logger *zap.Logger) *DiscoveryService {
	return &DiscoveryService{
		engine: engine,
		logger: utils.NewServiceLogger(logger, "discovery-service"),
	}
}

// Requested scan intervals are clamped to a sane operating range.
const (
	minScanInterval = 5 * time.Second
	maxScanInterval = 5 * time.Minute
)

// Start launches periodic scanning. A non-positive interval keeps the
// configured default; explicit intervals are clamped to 5s..5m.
func (s *DiscoveryService) Start(interval time.Duration) {
	if interval > 0 {
		if interval < minScanInterval {
			interval = minScanInterval
		}
		if interval > maxScanInterval {
			interval = maxScanInterval
		}
	}
	s.engine.Start(interval)
}

// Stop halts periodic scanning. The catalog is preserved.
func (s *DiscoveryService) Stop() {
	s.engine.Stop()
}

// IsActive reports whether periodic scanning is running
func (s *DiscoveryService) IsActive() bool {
	return s.engine.IsActive()
}

// TriggerScan requests an immediate scan without blocking
func (s *DiscoveryService) TriggerScan() {
	s.engine.TriggerScan()
}

// ScanNow runs one scan cycle synchronously and returns the number of
// newly discovered devices
func (s *DiscoveryService) ScanNow(ctx context.Context) int {
	return s.engine.Scan(ctx)
}

// Status returns the loop state for the status endpoint
func (s *DiscoveryService) Status() DiscoveryStatus {
	return DiscoveryStatus{
		Active:   s.engine.IsActive(),
		Interval: s.engine.Interval().String(),
	}
}

// Statistics aggregates engine counters with the per-classification
// catalog breakdown
func (s *DiscoveryService) Statistics() StatisticsResponse {
	stats := s.engine.Statistics()

	breakdown := map[string]int{}
	for class, count := range s.engine.ClassificationBreakdown() {
		breakdown[string(class)] = count
	}

	return StatisticsResponse{
		DiscoveryEnabled:  stats.Enabled,
		DiscoveryInterval: stats.Interval.String(),
		TotalScans:        stats.TotalScans,
		DevicesDiscovered: stats.DevicesFound,
		LastScanDuration:  stats.LastScanDuration.String(),
		TotalDevices:      stats.TotalDevices,
		OnlineDevices:     stats.OnlineDevices,
		ByClassification:  breakdown,
	}
}

// DiscoveryStatus is the response body for GET /discovery/status
type DiscoveryStatus struct {
	Active   bool   `json:"active"`
	Interval string `json:"interval"`
}

// StatisticsResponse is the response body for GET /statistics
type StatisticsResponse struct {
	DiscoveryEnabled  bool           `json:"discovery_enabled"`
	DiscoveryInterval string         `json:"discovery_interval"`
	TotalScans        uint64         `json:"total_scans"`
	DevicesDiscovered uint64         `json:"devices_discovered"`
	LastScanDuration  string         `json:"last_scan_duration"`
	TotalDevices      int            `json:"total_devices"`
	OnlineDevices     int            `json:"online_devices"`
	ByClassification  map[string]int `json:"by_classification"`
}

// StartRequest is the payload for POST /discovery/start
type StartRequest struct {
	Interval string `json:"interval,omitempty"`
}

// ParseInterval converts the optional interval field, returning zero when
// absent so the engine keeps its configured default
func (r *StartRequest) ParseInterval() (time.Duration, error) {
	if r.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(r.Interval)
}
