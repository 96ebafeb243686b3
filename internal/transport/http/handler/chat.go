package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"faqdesk/internal/ai"
	"faqdesk/internal/app"
	"faqdesk/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type CreateSessionRequest struct {
	Title string `json:"title" binding:"max=128"`
}

type SendTurnRequest struct {
	Text string `json:"text" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.CreateSession(app.CreateSessionInput{
		UserID: userID,
		Title:  req.Title,
	})
	if err != nil {
		h.writeChatError(c, err, "create session failed")
		return
	}
	response.OK(c, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessions, err := h.chatService.ListSessions(userID)
	if err != nil {
		h.writeChatError(c, err, "list sessions failed")
		return
	}
	response.OK(c, sessions)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	if err := h.chatService.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		h.writeChatError(c, err, "delete session failed")
		return
	}
	response.OK(c, gin.H{"deleted_session_id": sessionID})
}

func (h *ChatHandler) GetTurns(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	turns, err := h.chatService.GetTurns(userID, sessionID, limit)
	if err != nil {
		h.writeChatError(c, err, "list turns failed")
		return
	}
	response.OK(c, turns)
}

func (h *ChatHandler) SendTurn(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req SendTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendTurn(c.Request.Context(), app.SendTurnInput{
		UserID:    userID,
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		h.writeChatError(c, err, "send message failed")
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) ConfirmProposal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	outcome, err := h.chatService.ConfirmProposal(c.Request.Context(), userID, sessionID, getActorFromContext(c))
	if err != nil {
		h.writeChatError(c, err, "apply proposal failed")
		return
	}
	response.OK(c, outcome)
}

func (h *ChatHandler) DeclineProposal(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	if err := h.chatService.DeclineProposal(c.Request.Context(), userID, sessionID); err != nil {
		h.writeChatError(c, err, "decline proposal failed")
		return
	}
	response.OK(c, gin.H{"declined": true})
}

func (h *ChatHandler) writeChatError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrFaqNotFound):
		response.Error(c, http.StatusNotFound, response.CodeFaqNotFound, err.Error())
	case errors.Is(err, app.ErrCategoryNotFound):
		response.Error(c, http.StatusNotFound, response.CodeCategoryNotFound, err.Error())
	case errors.Is(err, app.ErrNoPendingProposal):
		response.Error(c, http.StatusNotFound, response.CodeNoPendingProposal, err.Error())
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusBadGateway, response.CodeLLMUnavailable, "the assistant is unavailable, please resend your message")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func parseSessionID(c *gin.Context) (uint, bool) {
	sessionID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sessionID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return 0, false
	}
	return uint(sessionID64), true
}
