package handlers

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/mdgraph/backend/internal/knowledge"
	"github.com/mdgraph/backend/pkg/logger"
)

// GraphBuilder builds the current corpus graph for new subscribers.
type GraphBuilder interface {
	BuildCorpusGraph(ctx context.Context, root string) (*knowledge.CorpusResult, error)
}

// GraphMessage is what subscribers of /ws/graph receive.
type GraphMessage struct {
	Type   string                  `json:"type"`
	Result *knowledge.CorpusResult `json:"result,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

// WebSocketHandler pushes the corpus graph to every subscriber whenever the
// corpus watcher rebuilds it.
type WebSocketHandler struct {
	builder GraphBuilder
	root    string

	mu          sync.Mutex
	subscribers map[*websocket.Conn]struct{}
}

func NewWebSocketHandler(builder GraphBuilder, root string) *WebSocketHandler {
	return &WebSocketHandler{
		builder:     builder,
		root:        root,
		subscribers: make(map[*websocket.Conn]struct{}),
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket subscriber connected")

	h.subscribe(c)
	defer func() {
		h.unsubscribe(c)
		c.Close()
		logger.Info("WebSocket subscriber disconnected")
	}()

	h.sendCurrent(c)

	for {
		var msg struct {
			Type string `json:"type"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			return
		}

		if msg.Type == "refresh" {
			h.sendCurrent(c)
		}
	}
}

func (h *WebSocketHandler) sendCurrent(c *websocket.Conn) {
	result, err := h.builder.BuildCorpusGraph(context.Background(), h.root)
	if err != nil {
		logger.Error("Failed to build graph for subscriber", zap.Error(err))
		h.write(c, GraphMessage{Type: "error", Error: "Failed to build corpus graph"})
		return
	}
	h.write(c, GraphMessage{Type: "graph", Result: result})
}

// Publish implements watch.Publisher.
func (h *WebSocketHandler) Publish(result *knowledge.CorpusResult) {
	msg := GraphMessage{Type: "graph", Result: result}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subscribers {
		if err := c.WriteJSON(msg); err != nil {
			logger.Warn("Dropping websocket subscriber", zap.Error(err))
			delete(h.subscribers, c)
			c.Close()
		}
	}

	logger.Debug("Graph published", zap.Int("subscribers", len(h.subscribers)))
}

func (h *WebSocketHandler) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *WebSocketHandler) subscribe(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[c] = struct{}{}
}

func (h *WebSocketHandler) unsubscribe(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, c)
}

// write serializes with Publish; a connection allows one writer at a time.
func (h *WebSocketHandler) write(c *websocket.Conn, msg GraphMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to write to websocket subscriber", zap.Error(err))
	}
}
