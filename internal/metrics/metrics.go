// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "iot_hub_"

// Collector holds the discovery subsystem's prometheus instruments
type Collector struct {
	ScansTotal        prometheus.Counter
	DevicesDiscovered prometheus.Counter
	ScanDuration      prometheus.Histogram
	DevicesTotal      prometheus.Gauge
	DevicesOnline     prometheus.Gauge
	DevicesByClass    *prometheus.GaugeVec
	CommandsTotal     *prometheus.CounterVec
}

// NewCollector creates and registers the discovery metrics on the given
// registerer
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "scans_total",
			Help: "Total discovery scan cycles",
		}),
		DevicesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "devices_discovered_total",
			Help: "Total devices discovered and classified",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "scan_duration_seconds",
			Help:    "Duration of one discovery scan cycle",
			Buckets: prometheus.DefBuckets,
		}),
		DevicesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_total",
			Help: "Devices currently in the catalog",
		}),
		DevicesOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_online",
			Help: "Devices currently online",
		}),
		DevicesByClass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: metricPrefix + "devices_by_classification",
			Help: "Devices in the catalog by classification",
		}, []string{"classification"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "commands_total",
			Help: "Device commands executed by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.ScansTotal,
		c.DevicesDiscovered,
		c.ScanDuration,
		c.DevicesTotal,
		c.DevicesOnline,
		c.DevicesByClass,
		c.CommandsTotal,
	)
	return c
}
