package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/splitkit/settlement_app/internal/apperrors"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/middleware"
	"github.com/splitkit/settlement_app/internal/realtime"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// wsUpgrader upgrades subscription requests. Origin checking is the
// gateway's job; requests reach this service already authenticated.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// realtimeHandler upgrades clients to websocket subscriptions on the
// event hub.
type realtimeHandler struct {
	memberService portssvc.MemberDirectorySvc
	hub           *realtime.Hub
}

func newRealtimeHandler(ms portssvc.MemberDirectorySvc, hub *realtime.Hub) *realtimeHandler {
	return &realtimeHandler{
		memberService: ms,
		hub:           hub,
	}
}

// registerRealtimeRoutes registers the websocket subscription route.
func registerRealtimeRoutes(rg *gin.RouterGroup, memberService portssvc.MemberDirectorySvc, hub *realtime.Hub) {
	h := newRealtimeHandler(memberService, hub)
	rg.GET("/ws", h.subscribe)
}

// subscribe attaches the calling member to the group's event stream and
// streams events until the client disconnects.
func (h *realtimeHandler) subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	memberID, ok := middleware.GetMemberIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Only group members may observe the group's events.
	member, err := h.memberService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			logger.Error("Failed to verify member for subscription", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify membership"})
		}
		return
	}
	if member.GroupID != groupID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this group"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("member_id", memberID))
	logger.Info("Realtime subscription opened")

	sub := h.hub.Subscribe(groupID, memberID)
	go h.writePump(conn, sub, logger)
	h.readPump(conn, sub)
}

// writePump streams hub events to the client and keeps the connection
// alive with pings.
func (h *realtimeHandler) writePump(conn *websocket.Conn, sub *realtime.Subscription, logger *slog.Logger) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Warn("Realtime write failed, dropping subscriber", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames and closes the subscription when the
// client goes away. Clients never send events; the stream is one-way.
func (h *realtimeHandler) readPump(conn *websocket.Conn, sub *realtime.Subscription) {
	defer sub.Close()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
