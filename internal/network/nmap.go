// internal/network/nmap.go
package network

import (
	"context"
	"fmt"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"
)

// NmapEnumerator lists network clients by running a ping sweep of the
// configured target ranges. Slower than the ARP backend but finds clients
// the hub has never exchanged traffic with.
type NmapEnumerator struct {
	targets []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewNmapEnumerator creates a ping-sweep enumerator for the given CIDR
// ranges or individual addresses
func NewNmapEnumerator(targets []string, timeout time.Duration, logger *zap.Logger) *NmapEnumerator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &NmapEnumerator{
		targets: targets,
		timeout: timeout,
		logger:  logger.With(zap.String("enumerator", "nmap")),
	}
}

// Clients runs the sweep and converts up hosts into client records.
// MAC addresses are only visible when nmap runs with raw socket privileges;
// hosts without one are skipped since the catalog is keyed by MAC.
func (e *NmapEnumerator) Clients() ([]Client, error) {
	if len(e.targets) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(e.targets...),
		nmap.WithPingScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("ping sweep failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		e.logger.Warn("Ping sweep completed with warnings", zap.Strings("warnings", *warnings))
	}

	var clients []Client
	for _, host := range result.Hosts {
		if host.Status.State != "up" {
			continue
		}

		var client Client
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				client.Address = addr.Addr
			case "mac":
				client.MACAddress = addr.Addr
			}
		}
		if len(host.Hostnames) > 0 {
			client.Hostname = host.Hostnames[0].Name
		}

		if client.MACAddress == "" || !client.HasAddress() {
			continue
		}
		clients = append(clients, client)
	}

	e.logger.Debug("Ping sweep enumerated",
		zap.Int("hosts_up", len(result.Hosts)),
		zap.Int("clients", len(clients)),
	)
	return clients, nil
}
