package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"contextchat/internal/app"
	"contextchat/internal/model"
	"contextchat/internal/transport/http/response"
)

// ChatSender is the slice of the chat service this handler needs.
type ChatSender interface {
	Send(ctx context.Context, input app.ChatInput) (*app.ChatResult, error)
	History(ctx context.Context, userID, conversationID string, limit int) ([]model.Message, error)
}

type ChatHandler struct {
	chatService ChatSender
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	ProjectID      string `json:"projectId"`
	UserID         string `json:"userId"`
}

func NewChatHandler(chatService ChatSender) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send handles one chat turn. Fallback answers are still 200/success so the
// UI does not have to special-case upstream outages; hard failures (missing
// parameters, unresolvable project, persistence errors) are 500 with the
// success flag down.
func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusInternalServerError, response.ChatResponse{
			Success: false,
			Error:   "invalid request payload",
		})
		return
	}

	result, err := h.chatService.Send(c.Request.Context(), app.ChatInput{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		ProjectID:      req.ProjectID,
		UserID:         req.UserID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ChatResponse{
			Success: false,
			Error:   chatErrorMessage(err),
		})
		return
	}

	c.JSON(http.StatusOK, response.ChatResponse{
		Success:  true,
		Message:  result.Message,
		Fallback: result.Fallback,
	})
}

func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return "Missing required parameters"
	case errors.Is(err, app.ErrProjectNotFound):
		return "Project not found"
	case errors.Is(err, app.ErrUserTurnNotRecorded):
		return "Failed to store user message"
	case errors.Is(err, app.ErrAssistantNotRecorded):
		return "Assistant reply could not be recorded"
	default:
		return "Failed to process chat request"
	}
}

func (h *ChatHandler) History(c *gin.Context) {
	userID := c.Query("userId")
	conversationID := c.Query("conversationId")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.History(c.Request.Context(), userID, conversationID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, history)
}
