// internal/network/arp.go
package network

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

const defaultARPTablePath = "/proc/net/arp"

// incomplete ARP entries carry this hardware address
const incompleteMAC = "00:00:00:00:00:00"

// ARPEnumerator lists network clients from the kernel neighbor table.
// This is the default backend: it sees every client the hub has exchanged
// traffic with, without generating any probe traffic of its own.
type ARPEnumerator struct {
	tablePath string
	iface     string
	logger    *zap.Logger
}

// NewARPEnumerator creates an ARP table enumerator. iface restricts results
// to one network interface; empty means all interfaces.
func NewARPEnumerator(iface string, logger *zap.Logger) *ARPEnumerator {
	return &ARPEnumerator{
		tablePath: defaultARPTablePath,
		iface:     iface,
		logger:    logger.With(zap.String("enumerator", "arp")),
	}
}

// Clients parses the neighbor table into client records
func (e *ARPEnumerator) Clients() ([]Client, error) {
	f, err := os.Open(e.tablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ARP table: %w", err)
	}
	defer f.Close()

	var clients []Client
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		if first {
			// header row
			first = false
			continue
		}

		// IP address, HW type, Flags, HW address, Mask, Device
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		ip, mac, dev := fields[0], fields[3], fields[5]
		if mac == incompleteMAC {
			continue
		}
		if e.iface != "" && dev != e.iface {
			continue
		}

		clients = append(clients, Client{
			MACAddress: mac,
			Address:    ip,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ARP table: %w", err)
	}

	e.logger.Debug("ARP table enumerated", zap.Int("clients", len(clients)))
	return clients, nil
}
