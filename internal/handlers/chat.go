package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (ch *ChatHandler) SendMessage(c *gin.Context) {
	if ch.chatService == nil {
		notConfigured(c, "chat")
		return
	}
	var req struct {
		SessionID string   `json:"session_id,omitempty"`
		Content   string   `json:"content"`
		Model     string   `json:"model,omitempty"`
		ImageURLs []string `json:"image_urls,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, errordata.CodeBadRequest, "invalid request body")
		return
	}
	var sessionID *uuid.UUID
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			fail(c, errordata.CodeBadRequest, "invalid session_id")
			return
		}
		sessionID = &parsed
	}
	reply, err := ch.chatService.SendMessage(c.Request.Context(), sessionID, req.Content, req.Model, req.ImageURLs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, errordata.CodeBadRequest, "content is required")
		case errors.Is(err, services.ErrSessionNotFound):
			fail(c, errordata.CodeNotFound, "chat session not found")
		default:
			fail(c, errordata.CodeUpstreamFail, "chat completion failed")
		}
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (ch *ChatHandler) ListSessions(c *gin.Context) {
	if ch.chatService == nil {
		notConfigured(c, "chat")
		return
	}
	sessions, err := ch.chatService.ListSessions(c.Request.Context())
	if err != nil {
		fail(c, errordata.CodeServerError, "could not list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (ch *ChatHandler) ListMessages(c *gin.Context) {
	if ch.chatService == nil {
		notConfigured(c, "chat")
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errordata.CodeBadRequest, "invalid session id")
		return
	}
	messages, err := ch.chatService.ListMessages(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, errordata.CodeNotFound, "chat session not found")
			return
		}
		fail(c, errordata.CodeServerError, "could not list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (ch *ChatHandler) DeleteSession(c *gin.Context) {
	if ch.chatService == nil {
		notConfigured(c, "chat")
		return
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errordata.CodeBadRequest, "invalid session id")
		return
	}
	if err := ch.chatService.DeleteSession(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, errordata.CodeNotFound, "chat session not found")
			return
		}
		fail(c, errordata.CodeServerError, "could not delete session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
