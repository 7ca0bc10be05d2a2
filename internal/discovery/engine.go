// internal/discovery/engine.go
package discovery

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"iot-hub/internal/driver"
	"iot-hub/internal/events"
	"iot-hub/internal/metrics"
	"iot-hub/internal/model"
	"iot-hub/internal/network"
	"iot-hub/internal/transport"
)

// tickInterval is how often the running loop checks whether the configured
// scan interval has elapsed. TriggerScan resets the last-scan marker, so a
// manual scan starts within one tick rather than synchronously.
const tickInterval = 1 * time.Second

// Config tunes the discovery engine
type Config struct {
	// ScanInterval is the default period between scan cycles
	ScanInterval time.Duration
	// ProbeTimeout bounds each transport call made during a cycle
	ProbeTimeout time.Duration
	// OfflineRetention evicts devices offline longer than this window at
	// the end of a cycle; zero keeps devices forever
	OfflineRetention time.Duration
}

// Statistics is a point-in-time snapshot of the engine's counters
type Statistics struct {
	Enabled          bool          `json:"discovery_enabled"`
	Interval         time.Duration `json:"discovery_interval"`
	TotalScans       uint64        `json:"total_scans"`
	DevicesFound     uint64        `json:"devices_discovered"`
	LastScanDuration time.Duration `json:"last_scan_duration"`
	TotalDevices     int           `json:"total_devices"`
	OnlineDevices    int           `json:"online_devices"`
}

// Engine owns the device catalog. It periodically enumerates network
// clients, probes new ones against the driver registry in registration
// order, and rechecks liveness of known devices.
//
// The catalog is written only by the scan goroutine and the Refresh path;
// queries return deep copies under a read lock, so the facade can serve
// them concurrently with a scan in progress.
type Engine struct {
	enumerator network.Enumerator
	client     transport.Client
	registry   *driver.Registry
	bus        *events.Bus
	collector  *metrics.Collector
	logger     *zap.Logger
	cfg        Config

	mu      sync.RWMutex
	devices map[string]*model.Device

	runMu    sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration

	scanMu           sync.Mutex
	lastScan         time.Time
	totalScans       uint64
	devicesFound     uint64
	lastScanDuration time.Duration
}

// NewEngine creates a discovery engine. collector may be nil when metrics
// are disabled.
func NewEngine(
	enumerator network.Enumerator,
	client transport.Client,
	registry *driver.Registry,
	bus *events.Bus,
	collector *metrics.Collector,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 30 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return &Engine{
		enumerator: enumerator,
		client:     client,
		registry:   registry,
		bus:        bus,
		collector:  collector,
		logger:     logger.With(zap.String("component", "discovery")),
		cfg:        cfg,
		devices:    make(map[string]*model.Device),
		interval:   cfg.ScanInterval,
	}
}

// Start launches the periodic scan loop. Calling Start on a running engine
// only updates the interval.
func (e *Engine) Start(interval time.Duration) {
	if interval <= 0 {
		interval = e.cfg.ScanInterval
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.interval = interval
	if e.running {
		e.logger.Info("Discovery already running, interval updated",
			zap.Duration("interval", interval),
		)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true

	go e.run(ctx, e.done)

	e.logger.Info("Discovery started", zap.Duration("interval", interval))
}

// Stop terminates the scan loop and waits for any in-flight cycle to finish
// applying, so no cycle is scheduled or half-applied after Stop returns.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.runMu.Unlock()

	cancel()
	<-done

	e.logger.Info("Discovery stopped")
}

// IsActive reports whether the periodic loop is running
func (e *Engine) IsActive() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}

// Interval returns the configured scan interval
func (e *Engine) Interval() time.Duration {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.interval
}

// TriggerScan forces the next loop iteration to scan immediately by
// resetting the last-scan marker. It does not block until the scan runs.
func (e *Engine) TriggerScan() {
	e.scanMu.Lock()
	e.lastScan = time.Time{}
	e.scanMu.Unlock()

	e.logger.Info("Manual scan requested")
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scanMu.Lock()
			due := time.Since(e.lastScan) >= e.currentInterval()
			e.scanMu.Unlock()

			if due {
				e.Scan(ctx)
				e.scanMu.Lock()
				e.lastScan = time.Now()
				e.scanMu.Unlock()
			}
		}
	}
}

func (e *Engine) currentInterval() time.Duration {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.interval
}

// Scan runs one discovery cycle synchronously and returns the number of
// newly classified devices. Per-client failures are absorbed; the cycle
// always completes.
func (e *Engine) Scan(ctx context.Context) int {
	start := time.Now()
	newDevices := 0

	clients, err := e.enumerator.Clients()
	if err != nil {
		e.logger.Warn("Client enumeration failed, skipping cycle", zap.Error(err))
		e.finishScan(start, 0)
		return 0
	}

	e.logger.Debug("Scan cycle started", zap.Int("clients", len(clients)))

	seen := make(map[string]bool, len(clients))
	for _, client := range clients {
		if ctx.Err() != nil {
			break
		}
		if !client.HasAddress() {
			e.logger.Debug("Skipping client without address",
				zap.String("mac", client.MACAddress),
			)
			continue
		}

		id := model.NewDeviceID(client.MACAddress)
		seen[id] = true

		if existing := e.get(id); existing != nil {
			e.recheckDevice(ctx, existing, client)
		} else if e.discoverDevice(ctx, client) {
			newDevices++
		}
	}

	// Clients that dropped off the network go offline without waiting for
	// a presence check to time out.
	if ctx.Err() == nil {
		e.markMissingOffline(seen)
	}

	if e.cfg.OfflineRetention > 0 {
		e.evictStale()
	}

	e.finishScan(start, newDevices)
	return newDevices
}

// discoverDevice handles a client not yet in the catalog: presence check,
// then the driver registry in registration order. Reports whether a new
// catalog entry was created.
func (e *Engine) discoverDevice(ctx context.Context, client network.Client) bool {
	device := model.NewDevice(client.MACAddress, client.Address, client.Hostname)

	e.logger.Info("New network client",
		zap.String("device_id", device.ID),
		zap.String("address", device.Address),
	)

	device.HasHTTPService = e.checkHTTPService(ctx, device.Address)
	if !device.HasHTTPService {
		e.logger.Debug("Client has no HTTP service", zap.String("address", device.Address))
		return false
	}

	if !e.probeDevice(ctx, device) {
		e.logger.Debug("No driver claimed device", zap.String("address", device.Address))
		return false
	}

	device.IsOnline = true
	e.put(device)

	e.scanMu.Lock()
	e.devicesFound++
	e.scanMu.Unlock()
	if e.collector != nil {
		e.collector.DevicesDiscovered.Inc()
	}

	e.publish(model.EventDeviceDiscovered, device)
	return true
}

// recheckDevice refreshes address bookkeeping and liveness for a known
// device. Classification and capabilities are sticky here; only an
// explicit Refresh may change them.
func (e *Engine) recheckDevice(ctx context.Context, device *model.Device, client network.Client) {
	e.mu.Lock()
	device.Address = client.Address
	device.BaseURL = "http://" + client.Address
	if client.Hostname != "" {
		device.Hostname = client.Hostname
	}
	device.LastSeen = time.Now()
	wasOnline := device.IsOnline
	hasHTTP := device.HasTransport()
	address := device.Address
	e.mu.Unlock()

	if !hasHTTP {
		return
	}

	isOnline := e.checkHTTPService(ctx, address)
	if isOnline != wasOnline {
		e.setOnline(device, isOnline)
	}
}

// checkHTTPService is the single best-effort reachability test: any real
// HTTP status, including an error status, counts as present. Only a
// transport-layer failure disqualifies.
func (e *Engine) checkHTTPService(ctx context.Context, address string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	defer cancel()

	resp := e.client.Get(probeCtx, "http://"+address+"/")
	return resp.OK()
}

// probeDevice walks the registry in registration order; first successful
// probe wins
func (e *Engine) probeDevice(ctx context.Context, device *model.Device) bool {
	for _, d := range e.registry.Drivers() {
		probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout*4)
		claimed := d.Probe(probeCtx, device, e.client)
		cancel()

		if claimed {
			e.logger.Info("Device classified",
				zap.String("device_id", device.ID),
				zap.String("driver", d.Name()),
				zap.String("classification", string(device.Classification)),
			)
			return true
		}
	}
	return false
}

// Refresh re-runs the full probe cycle for one known device, allowing
// reclassification. The catalog entry is only replaced when a driver
// claims the refreshed probe; a failed refresh leaves it untouched.
func (e *Engine) Refresh(ctx context.Context, id string) (bool, error) {
	device := e.get(id)
	if device == nil {
		return false, ErrUnknownDevice
	}
	if !device.HasTransport() {
		return false, ErrNoTransport
	}

	// Probe a cleared copy so a failed refresh cannot wipe sticky state.
	fresh := device.Clone()
	fresh.Classification = model.ClassUnknown
	fresh.Capabilities = 0
	fresh.Endpoints = nil

	if !e.probeDevice(ctx, fresh) {
		return false, nil
	}

	e.mu.Lock()
	device.Classification = fresh.Classification
	device.Capabilities = fresh.Capabilities
	device.Endpoints = fresh.Endpoints
	device.Name = fresh.Name
	device.IsOnline = true
	device.LastSeen = time.Now()
	e.mu.Unlock()

	return true, nil
}

// markMissingOffline flips devices absent from the enumeration offline
func (e *Engine) markMissingOffline(seen map[string]bool) {
	e.mu.RLock()
	var missing []*model.Device
	for id, device := range e.devices {
		if !seen[id] && device.IsOnline {
			missing = append(missing, device)
		}
	}
	e.mu.RUnlock()

	for _, device := range missing {
		e.setOnline(device, false)
	}
}

// setOnline updates the liveness flag and emits a status event on the
// transition. Capabilities and classification are left untouched.
func (e *Engine) setOnline(device *model.Device, online bool) {
	e.mu.Lock()
	if device.IsOnline == online {
		e.mu.Unlock()
		return
	}
	device.IsOnline = online
	device.LastSeen = time.Now()
	e.mu.Unlock()

	e.logger.Info("Device status changed",
		zap.String("device_id", device.ID),
		zap.String("address", device.Address),
		zap.Bool("online", online),
	)

	eventType := model.EventDeviceOnline
	if !online {
		eventType = model.EventDeviceOffline
	}
	e.publish(eventType, device)
}

// evictStale drops devices that have been offline past the retention window
func (e *Engine) evictStale() {
	cutoff := time.Now().Add(-e.cfg.OfflineRetention)

	e.mu.Lock()
	defer e.mu.Unlock()

	for id, device := range e.devices {
		if !device.IsOnline && device.LastSeen.Before(cutoff) {
			delete(e.devices, id)
			e.logger.Info("Evicted stale device",
				zap.String("device_id", id),
				zap.Time("last_seen", device.LastSeen),
			)
		}
	}
}

func (e *Engine) finishScan(start time.Time, newDevices int) {
	duration := time.Since(start)

	e.scanMu.Lock()
	e.totalScans++
	e.lastScanDuration = duration
	e.scanMu.Unlock()

	if e.collector != nil {
		e.collector.ScansTotal.Inc()
		e.collector.ScanDuration.Observe(duration.Seconds())
		e.updateGauges()
	}

	e.logger.Debug("Scan cycle completed",
		zap.Duration("duration", duration),
		zap.Int("new_devices", newDevices),
	)
}

func (e *Engine) updateGauges() {
	e.mu.RLock()
	defer e.mu.RUnlock()

	online := 0
	byClass := make(map[model.Classification]int)
	for _, device := range e.devices {
		if device.IsOnline {
			online++
		}
		byClass[device.Classification]++
	}

	e.collector.DevicesTotal.Set(float64(len(e.devices)))
	e.collector.DevicesOnline.Set(float64(online))
	e.collector.DevicesByClass.Reset()
	for class, count := range byClass {
		e.collector.DevicesByClass.WithLabelValues(string(class)).Set(float64(count))
	}
}

func (e *Engine) publish(eventType model.EventType, device *model.Device) {
	e.mu.RLock()
	snapshot := device.Clone()
	e.mu.RUnlock()

	e.bus.Publish(model.Event{
		Type:      eventType,
		Device:    snapshot,
		Timestamp: time.Now(),
	})
}

// Statistics snapshots the engine counters
func (e *Engine) Statistics() Statistics {
	e.scanMu.Lock()
	stats := Statistics{
		TotalScans:       e.totalScans,
		DevicesFound:     e.devicesFound,
		LastScanDuration: e.lastScanDuration,
	}
	e.scanMu.Unlock()

	stats.Enabled = e.IsActive()
	stats.Interval = e.Interval()

	e.mu.RLock()
	stats.TotalDevices = len(e.devices)
	for _, device := range e.devices {
		if device.IsOnline {
			stats.OnlineDevices++
		}
	}
	e.mu.RUnlock()

	return stats
}

// catalog accessors

func (e *Engine) get(id string) *model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.devices[id]
}

func (e *Engine) put(device *model.Device) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices[device.ID] = device
}

// Device returns a snapshot of one catalog entry, or nil
func (e *Engine) Device(id string) *model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if device, ok := e.devices[id]; ok {
		return device.Clone()
	}
	return nil
}

// DeviceByAddress returns a snapshot of the entry with the given network
// address, or nil
func (e *Engine) DeviceByAddress(address string) *model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, device := range e.devices {
		if device.Address == address {
			return device.Clone()
		}
	}
	return nil
}

// Devices returns a snapshot of the whole catalog
func (e *Engine) Devices() []*model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*model.Device, 0, len(e.devices))
	for _, device := range e.devices {
		out = append(out, device.Clone())
	}
	return out
}

// OnlineDevices returns a snapshot of the devices currently online
func (e *Engine) OnlineDevices() []*model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []*model.Device
	for _, device := range e.devices {
		if device.IsOnline {
			out = append(out, device.Clone())
		}
	}
	return out
}

// DevicesByClassification returns a snapshot filtered by classification
func (e *Engine) DevicesByClassification(class model.Classification) []*model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []*model.Device{}
	for _, device := range e.devices {
		if device.Classification == class {
			out = append(out, device.Clone())
		}
	}
	return out
}

// DevicesByCapability returns a snapshot filtered by capability flag
func (e *Engine) DevicesByCapability(capability model.Capability) []*model.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := []*model.Device{}
	for _, device := range e.devices {
		if device.HasCapability(capability) {
			out = append(out, device.Clone())
		}
	}
	return out
}

// ClassificationBreakdown counts catalog entries per classification
func (e *Engine) ClassificationBreakdown() map[model.Classification]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	breakdown := make(map[model.Classification]int)
	for _, device := range e.devices {
		breakdown[device.Classification]++
	}
	return breakdown
}
