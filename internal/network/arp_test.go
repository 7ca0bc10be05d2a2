// internal/network/arp_test.go
package network

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleARPTable = `IP address       HW type     Flags       HW address            Mask     Device
192.168.1.10     0x1         0x2         aa:bb:cc:dd:ee:01     *        wlan0
192.168.1.11     0x1         0x0         00:00:00:00:00:00     *        wlan0
192.168.1.12     0x1         0x2         aa:bb:cc:dd:ee:02     *        eth0
`

func writeARPTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestARPEnumeratorParsesTable(t *testing.T) {
	e := NewARPEnumerator("", zap.NewNop())
	e.tablePath = writeARPTable(t, sampleARPTable)

	clients, err := e.Clients()
	require.NoError(t, err)
	require.Len(t, clients, 2)

	assert.Equal(t, "192.168.1.10", clients[0].Address)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", clients[0].MACAddress)
	assert.Equal(t, "192.168.1.12", clients[1].Address)
}

func TestARPEnumeratorSkipsIncompleteEntries(t *testing.T) {
	e := NewARPEnumerator("", zap.NewNop())
	e.tablePath = writeARPTable(t, sampleARPTable)

	clients, err := e.Clients()
	require.NoError(t, err)
	for _, client := range clients {
		assert.NotEqual(t, incompleteMAC, client.MACAddress)
	}
}

func TestARPEnumeratorFiltersInterface(t *testing.T) {
	e := NewARPEnumerator("eth0", zap.NewNop())
	e.tablePath = writeARPTable(t, sampleARPTable)

	clients, err := e.Clients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:02", clients[0].MACAddress)
}

func TestARPEnumeratorMissingTable(t *testing.T) {
	e := NewARPEnumerator("", zap.NewNop())
	e.tablePath = filepath.Join(t.TempDir(), "missing")

	_, err := e.Clients()
	assert.Error(t, err)
}

func TestClientHasAddress(t *testing.T) {
	assert.True(t, Client{Address: "10.0.0.5"}.HasAddress())
	assert.False(t, Client{Address: ""}.HasAddress())
	assert.False(t, Client{Address: "0.0.0.0"}.HasAddress())
}
