package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tastelog/tastelog-backend/internal/common"
	"github.com/tastelog/tastelog-backend/internal/middleware"
	"github.com/tastelog/tastelog-backend/internal/service"
)

// ConversationHandler handles the messaging REST endpoints
type ConversationHandler struct {
	svc *service.ConversationService
}

// NewConversationHandler creates a new ConversationHandler
func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = 50
	}
	return page, perPage
}

// CreateConversation handles POST /api/v1/conversations
// @Summary Create or fetch the conversation with another user
// @Tags conversations
// @Router /api/v1/conversations [post]
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		RecipientID string `json:"recipient_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "INVALID_INPUT", "recipient_id is required", err)
		return
	}

	conv, err := h.svc.CreateOrGet(userID, req.RecipientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.CreatedResponse(c, conv)
}

// ListConversations handles GET /api/v1/conversations
// @Summary List conversations, newest-first, optionally filtered by status
// @Tags conversations
// @Router /api/v1/conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summaries, err := h.svc.ListConversations(userID, c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessResponse(c, summaries)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
// @Summary Send a message in a conversation
// @Tags conversations
// @Router /api/v1/conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "INVALID_INPUT", "body is required", err)
		return
	}

	msg, err := h.svc.SendMessage(c.Param("id"), userID, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.CreatedResponse(c, msg)
}

// ListMessages handles GET /api/v1/conversations/:id/messages
// @Summary Page through a conversation's history, newest-first
// @Tags conversations
// @Router /api/v1/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, perPage := parsePagination(c)

	messages, total, err := h.svc.ListMessages(c.Param("id"), userID, page, perPage)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessWithMeta(c, messages, common.NewMeta(page, perPage, total))
}

// AcceptConversation handles POST /api/v1/conversations/:id/accept
// @Summary Accept a message request
// @Tags conversations
// @Router /api/v1/conversations/{id}/accept [post]
func (h *ConversationHandler) AcceptConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conv, err := h.svc.Accept(c.Param("id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessResponse(c, conv)
}

// DeclineConversation handles POST /api/v1/conversations/:id/decline
// @Summary Decline a message request
// @Tags conversations
// @Router /api/v1/conversations/{id}/decline [post]
func (h *ConversationHandler) DeclineConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conv, err := h.svc.Decline(c.Param("id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessResponse(c, conv)
}

// MarkRead handles POST /api/v1/conversations/:id/read
// @Summary Mark every message from the other participant as read
// @Tags conversations
// @Router /api/v1/conversations/{id}/read [post]
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	readAt, err := h.svc.MarkRead(c.Param("id"), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"read_at": readAt})
}

// UnreadCount handles GET /api/v1/messages/unread-count
// @Summary Global unread badge count (active conversations only)
// @Tags conversations
// @Router /api/v1/messages/unread-count [get]
func (h *ConversationHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	count, err := h.svc.UnreadCount(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"unread_count": count})
}

func (h *ConversationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", "conversation not found", err)
	case errors.Is(err, common.ErrMessageLimitReached):
		common.ErrorResponse(c, http.StatusForbidden, "MESSAGE_LIMIT_REACHED", "message request limit reached; wait for the other person to accept", err)
	case errors.Is(err, common.ErrConversationDeclined):
		common.ErrorResponse(c, http.StatusForbidden, "CONVERSATION_DECLINED", "this conversation was declined", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "not allowed", err)
	case errors.Is(err, common.ErrEmptyMessage), errors.Is(err, common.ErrSelfConversation), errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", err)
	}
}
