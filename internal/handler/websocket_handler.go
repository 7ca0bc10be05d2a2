// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"iot-hub/internal/events"
	"iot-hub/internal/model"
	"iot-hub/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// WebSocketHandler streams discovery events to connected clients
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	bus      *events.Bus
	logger   *utils.ServiceLogger

	mu      sync.Mutex
	clients map[string]*wsClient
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	sub  *events.Subscription
}

// EventMessage is the wire format for streamed events
type EventMessage struct {
	Type      string        `json:"type"`
	Device    *model.Device `json:"device"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(bus *events.Bus, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bus:     bus,
		logger:  utils.NewServiceLogger(logger, "websocket-handler"),
		clients: make(map[string]*wsClient),
	}
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events", h.HandleEventStream)
}

// HandleEventStream upgrades the connection and streams discovery events
// until the client disconnects
func (h *WebSocketHandler) HandleEventStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	// A slow client drops events rather than stalling the scan goroutine.
	client.sub = h.bus.Subscribe(func(event model.Event) {
		payload, err := json.Marshal(EventMessage{
			Type:      string(event.Type),
			Device:    event.Device,
			Timestamp: event.Timestamp,
		})
		if err != nil {
			return
		}
		select {
		case client.send <- payload:
		default:
		}
	})

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.Info("WebSocket client connected",
		zap.String("client_id", client.id),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump forwards queued events and keeps the connection alive with pings
func (h *WebSocketHandler) writePump(client *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes and discards client frames to detect disconnects
func (h *WebSocketHandler) readPump(client *wsClient) {
	defer h.disconnect(client)

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) disconnect(client *wsClient) {
	client.sub.Unsubscribe()

	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()

	client.conn.Close()

	h.logger.Info("WebSocket client disconnected", zap.String("client_id", client.id))
}

// Close disconnects all clients, used during shutdown
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.disconnect(client)
	}
}
