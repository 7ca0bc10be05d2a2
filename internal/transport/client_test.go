// internal/transport/client_test.go
package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, zap.NewNop())
	resp := client.Get(context.Background(), srv.URL)

	require.True(t, resp.OK())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestHTTPClientPostSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"quality":90}`, string(body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, zap.NewNop())
	resp := client.Post(context.Background(), srv.URL, `{"quality":90}`)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestHTTPClientDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, zap.NewNop())
	resp := client.Delete(context.Background(), srv.URL)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHTTPClientErrorStatusIsStillOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, zap.NewNop())
	resp := client.Get(context.Background(), srv.URL)

	// An HTTP error status is a real answer from a real server.
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHTTPClientTransportFailure(t *testing.T) {
	client := NewHTTPClient(100*time.Millisecond, zap.NewNop())

	// Reserved TEST-NET-1 address, nothing listens there.
	resp := client.Get(context.Background(), "http://192.0.2.1:9/")

	assert.False(t, resp.OK())
	assert.Error(t, resp.Err)
	assert.Zero(t, resp.StatusCode)
}

func TestHTTPClientHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewHTTPClient(10*time.Second, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	resp := client.Get(ctx, srv.URL)
	assert.False(t, resp.OK())
}

func TestHTTPClientTruncatesLargeBodies(t *testing.T) {
	large := make([]byte, 128*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(large)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, zap.NewNop())
	resp := client.Get(context.Background(), srv.URL)

	require.True(t, resp.OK())
	assert.Len(t, resp.Body, 64*1024)
}
