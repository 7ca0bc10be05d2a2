// internal/driver/driver_test.go
package driver

import (
	"context"
	"errors"
	"net/http"
	neturl "net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"iot-hub/internal/model"
	"iot-hub/internal/transport"
)

// fakeClient serves canned statuses keyed by "METHOD /path". Paths not in
// the map behave like a refused connection.
type fakeClient struct {
	statuses map[string]int
	bodies   map[string]string
	calls    []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		statuses: make(map[string]int),
		bodies:   make(map[string]string),
	}
}

func (f *fakeClient) serve(method, path string, status int) {
	f.statuses[method+" "+path] = status
}

func (f *fakeClient) serveBody(method, path string, status int, body string) {
	f.serve(method, path, status)
	f.bodies[method+" "+path] = body
}

func (f *fakeClient) respond(method, rawURL string) transport.Response {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return transport.Response{Err: err}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	key := method + " " + path
	f.calls = append(f.calls, key)

	status, ok := f.statuses[key]
	if !ok {
		return transport.Response{Err: errors.New("connection refused")}
	}
	return transport.Response{StatusCode: status, Body: f.bodies[key]}
}

func (f *fakeClient) Get(ctx context.Context, url string) transport.Response {
	return f.respond(http.MethodGet, url)
}

func (f *fakeClient) Post(ctx context.Context, url string, body string) transport.Response {
	return f.respond(http.MethodPost, url)
}

func (f *fakeClient) Delete(ctx context.Context, url string) transport.Response {
	return f.respond(http.MethodDelete, url)
}

func testDevice() *model.Device {
	return model.NewDevice("aa:bb:cc:dd:ee:ff", "192.168.1.40", "")
}

func TestEndpointExists(t *testing.T) {
	client := newFakeClient()
	client.serve(http.MethodGet, "/open", http.StatusOK)
	client.serve(http.MethodGet, "/locked", http.StatusUnauthorized)
	client.serve(http.MethodGet, "/forbidden", http.StatusForbidden)
	client.serve(http.MethodGet, "/missing", http.StatusNotFound)
	client.serve(http.MethodGet, "/broken", http.StatusInternalServerError)

	ctx := context.Background()
	base := "http://192.168.1.40"

	// An auth challenge still proves the endpoint is implemented.
	assert.True(t, endpointExists(ctx, client, base, "/open"))
	assert.True(t, endpointExists(ctx, client, base, "/locked"))
	assert.True(t, endpointExists(ctx, client, base, "/forbidden"))

	assert.False(t, endpointExists(ctx, client, base, "/missing"))
	assert.False(t, endpointExists(ctx, client, base, "/broken"))
	assert.False(t, endpointExists(ctx, client, base, "/unreachable"))
}

func TestToQueryValue(t *testing.T) {
	assert.Equal(t, "high", toQueryValue("high"))
	assert.Equal(t, "80", toQueryValue(80))
	assert.Equal(t, "90", toQueryValue(float64(90)))
	assert.Equal(t, "true", toQueryValue(true))
}
