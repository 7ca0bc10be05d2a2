// internal/network/enumerator.go
package network

// Client represents one network client currently associated with the
// local network, as reported by an enumerator backend
type Client struct {
	MACAddress string `json:"mac_address"`
	Address    string `json:"address"`
	Hostname   string `json:"hostname,omitempty"`
}

// HasAddress reports whether the client has been assigned a reachable
// network address. "0.0.0.0" means the lease is still pending.
func (c Client) HasAddress() bool {
	return c.Address != "" && c.Address != "0.0.0.0"
}

// Enumerator lists the clients currently associated with the local network.
// Backends are expected to be cheap to call once per discovery cycle.
type Enumerator interface {
	Clients() ([]Client, error)
}
