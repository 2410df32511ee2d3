package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/socket"
)

type WebSocketHandler struct {
	log      *logger.Logger
	hub      *socket.Hub
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(log *logger.Logger, hub *socket.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		log: log.With("handler", "WebSocketHandler"),
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The REST layer already authenticated the request.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve upgrades the connection and starts the read/write pumps. The
// client lands subscribed to the engagement channel and can manage
// further subscriptions over the wire.
func (wh *WebSocketHandler) Serve(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		fail(c, errordata.CodeUnauthorized, "missing or invalid token")
		return
	}

	conn, err := wh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wh.log.Warn("Failed to upgrade websocket", "error", err)
		return
	}

	// The WS outlives the HTTP request context.
	ctx, cancel := context.WithCancel(context.Background())
	client := socket.NewClient(conn, wh.hub, rd.UserID, cancel, wh.log)
	wh.hub.Subscribe(client, []string{socket.ChannelEngagement})

	go client.ReadLoop(ctx)
	go client.WriteLoop(ctx)
}
