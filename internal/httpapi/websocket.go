package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/pkg/utils"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 30 * time.Second
)

// WebSocketHandler serves GET /ws/v1/stream: a client sends one
// SpatialQuery as its first text frame, and the handler re-resolves it
// against the live index every interval for as long as the connection
// stays open.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	engine   *query.Engine
	logger   *utils.Logger
	interval time.Duration
}

// NewWebSocketHandler builds a WebSocketHandler resolving against e,
// pushing updates every interval.
func NewWebSocketHandler(e *query.Engine, logger *utils.Logger, interval time.Duration) *WebSocketHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		engine:   e,
		logger:   logger,
		interval: interval,
	}
}

// HandleStream upgrades the connection and streams ranked results
// until the client disconnects or sends a malformed query.
func (h *WebSocketHandler) HandleStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}

	var q query.SpatialQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		conn.WriteJSON(gin.H{"code": "invalid_body", "message": err.Error()})
		return
	}
	if err := q.Validate(); err != nil {
		conn.WriteJSON(gin.H{"code": "invalid_query", "message": err.Error()})
		return
	}

	closed := make(chan struct{})
	go h.drainClientReads(conn, closed)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.pushResults(conn, q)
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			if err := h.pushResults(conn, q); err != nil {
				return
			}
		}
	}
}

// drainClientReads keeps the read side alive for pong handling and
// notices when the client closes the connection.
func (h *WebSocketHandler) drainClientReads(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) pushResults(conn *websocket.Conn, q query.SpatialQuery) error {
	results, err := h.engine.Resolve(q)
	if err != nil {
		return conn.WriteJSON(gin.H{"code": "invalid_query", "message": err.Error()})
	}
	metrics.WebSocketMessagesOut.WithLabelValues("update").Inc()
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(gin.H{"query_id": q.QueryID, "results": results})
}
