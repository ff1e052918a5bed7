package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tastelog/tastelog-backend/internal/ws"
	"github.com/tastelog/tastelog-backend/pkg/jwt"
	"github.com/tastelog/tastelog-backend/pkg/logger"
)

// WSHandler handles WebSocket connections
type WSHandler struct {
	hub            *ws.Hub
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, jwtManager *jwt.Manager, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		jwtManager:     jwtManager,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Connect handles GET /ws — WebSocket upgrade.
//
// The bearer token is taken from the "token" query parameter because browser
// WebSocket clients cannot set custom headers. It is verified once at connect
// time; a bad token closes the connection with code 4401 so the client can
// distinguish auth failure from a transport error.
//
// @Summary Realtime messaging WebSocket
// @Tags conversations
// @Router /ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	claims, err := h.jwtManager.Verify(c.Query("token"))
	if err != nil {
		logger.Warn("ws connect rejected: %v", err)
		msg := websocket.FormatCloseMessage(ws.CloseAuthFailure, "invalid token")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		conn.Close()
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
