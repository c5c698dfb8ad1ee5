package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	"github.com/clarity-app/clarity-backend/internal/repository"
	"github.com/clarity-app/clarity-backend/internal/services"
)

// PostMessage runs one conversational exchange: persist the user turn,
// generate a reply, persist it, return it.
func PostMessage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			SessionID string `json:"session_id"`
			Text      string `json:"text"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if req.SessionID == "" {
			return fail(c, fiber.StatusBadRequest, "session_id is required")
		}
		if strings.TrimSpace(req.Text) == "" {
			return fail(c, fiber.StatusBadRequest, "text is required")
		}

		turn, err := svc.Chat.SendMessage(c.Context(), req.SessionID, req.Text)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fail(c, fiber.StatusNotFound, "Session not found")
			}
			return fail(c, fiber.StatusInternalServerError, "Failed to send message")
		}

		return c.JSON(fiber.Map{
			"session_id": turn.SessionID,
			"sender":     turn.Sender,
			"text":       turn.Content,
			"created_at": turn.CreatedAt,
		})
	}
}

type socketMessage struct {
	Text string `json:"text"`
}

type socketReply struct {
	SessionID string `json:"session_id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Detail    string `json:"detail,omitempty"`
}

// ChatSocket serves a live chat connection bound to one session. Each
// inbound {text} frame runs the same exchange as PostMessage and the
// reply turn is written back as a frame.
func ChatSocket(svc *services.Services) func(*websocket.Conn) {
	log := logrus.WithField("component", "ws")

	return func(conn *websocket.Conn) {
		defer conn.Close()

		sessionID := conn.Query("session_id")
		if sessionID == "" {
			conn.WriteJSON(socketReply{Detail: "session_id is required"})
			return
		}

		if _, err := svc.Chat.GetSession(context.Background(), sessionID); err != nil {
			conn.WriteJSON(socketReply{SessionID: sessionID, Detail: "Session not found"})
			return
		}

		for {
			var msg socketMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if strings.TrimSpace(msg.Text) == "" {
				conn.WriteJSON(socketReply{SessionID: sessionID, Detail: "text is required"})
				continue
			}

			turn, err := svc.Chat.SendMessage(context.Background(), sessionID, msg.Text)
			if err != nil {
				log.WithError(err).WithField("session_id", sessionID).Error("Exchange failed")
				conn.WriteJSON(socketReply{SessionID: sessionID, Detail: "Failed to send message"})
				continue
			}

			if err := conn.WriteJSON(socketReply{
				SessionID: turn.SessionID,
				Sender:    turn.Sender,
				Text:      turn.Content,
			}); err != nil {
				return
			}
		}
	}
}
