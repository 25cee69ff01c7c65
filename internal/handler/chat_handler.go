package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-docchat-be/internal/pkg/apperror"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"
	internalWS "ai-docchat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Close codes mirror their HTTP equivalents so clients can reuse their
// error handling for the handshake.
const (
	closeBadRequest   = 400
	closeUnauthorized = 401
)

type ChatHandler struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatHandler(chatService service.IChatService, hub *internalWS.Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
		logger:      log,
	}
}

// ServeWs upgrades the connection and joins it to a chat room. Admission
// failures are reported as close frames after the upgrade, so browser
// clients always complete the handshake and receive a code they can act on.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	roomParam := c.Params("room")

	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		userID, err := h.authenticate(tokenStr)
		if err != nil {
			h.closeWith(conn, closeUnauthorized, "invalid token")
			return
		}

		session, err := h.chatService.Admit(context.Background(), roomParam, userID)
		if err != nil {
			h.rejectAdmission(conn, roomParam, err)
			return
		}

		client := &internalWS.Client{
			Hub:    h.hub,
			Conn:   conn,
			RoomID: session.Room.Id,
			UserID: userID,
			Send:   make(chan []byte, 256),
		}
		client.OnMessage = func(ctx context.Context, raw []byte) {
			h.handleFrame(ctx, session, client, raw)
		}

		h.logger.Info("ChatHandler", "Chat session started", map[string]interface{}{
			"user_id":   userID,
			"room_uuid": session.Room.RoomUuid,
		})
		internalWS.ServeWs(client)
		h.logger.Info("ChatHandler", "Chat session ended", map[string]interface{}{
			"user_id":   userID,
			"room_uuid": session.Room.RoomUuid,
		})
	})(c)
}

// RegisterRoutes registers the chat websocket endpoint.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat/:room", h.ServeWs)
}

func (h *ChatHandler) authenticate(tokenStr string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, &apperror.AuthError{Reason: "missing token"}
	}
	userIDStr, err := serverutils.ParseUserToken(tokenStr)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(userIDStr)
}

func (h *ChatHandler) rejectAdmission(conn *websocket.Conn, roomParam string, err error) {
	var validationErr *apperror.ValidationError
	var authErr *apperror.AuthError

	switch {
	case errors.As(err, &validationErr):
		h.closeWith(conn, closeBadRequest, validationErr.Reason)
	case errors.As(err, &authErr):
		h.closeWith(conn, closeUnauthorized, authErr.Reason)
	default:
		h.logger.Error("ChatHandler", "Admission failed", map[string]interface{}{
			"room":  roomParam,
			"error": err.Error(),
		})
		h.closeWith(conn, websocket.CloseInternalServerErr, "internal error")
	}
}

func (h *ChatHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// handleFrame processes one inbound frame. Errors never tear the connection
// down: malformed frames are dropped, upstream failures are reported back to
// the sender only. The room has already been persisted to by the time an
// upstream failure can occur, so a retry from the client is safe.
func (h *ChatHandler) handleFrame(ctx context.Context, session *service.ChatSession, client *internalWS.Client, raw []byte) {
	_, err := h.chatService.HandleInbound(ctx, session, raw)
	if err == nil {
		return
	}

	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		h.logger.Warn("ChatHandler", "Dropped malformed frame", map[string]interface{}{
			"user_id": client.UserID,
			"reason":  validationErr.Reason,
		})
		return
	}

	h.logger.Error("ChatHandler", "Inbound frame failed", map[string]interface{}{
		"user_id":   client.UserID,
		"room_uuid": session.Room.RoomUuid,
		"error":     err.Error(),
	})

	var upstreamErr *apperror.UpstreamError
	if errors.As(err, &upstreamErr) {
		payload, marshalErr := json.Marshal(fiber.Map{
			"error": "assistant unavailable, your message was saved",
		})
		if marshalErr == nil {
			client.TrySend(payload)
		}
	}
}
