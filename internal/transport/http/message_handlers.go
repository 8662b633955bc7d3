package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatup/chatup-server/internal/core"
	"github.com/chatup/chatup-server/internal/store"
)

// MessageHandlers provides HTTP handlers for message operations.
type MessageHandlers struct {
	store  store.Store
	router *core.Router
	log    *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(st store.Store, router *core.Router, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store:  st,
		router: router,
		log:    logger,
	}
}

// CreateMessageRequest is the message creation body.
type CreateMessageRequest struct {
	FromID  int64  `json:"from_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// MarkReadRequest carries the ids to mark as read.
type MarkReadRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID      int64     `json:"id"`
	FromID  int64     `json:"from_id"`
	ToID    int64     `json:"to_id"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
	IsRead  bool      `json:"is_read"`
}

func messageResponse(m *store.Message) MessageResponse {
	return MessageResponse{
		ID:      m.ID,
		FromID:  m.FromID,
		ToID:    m.ToID,
		Content: m.Content,
		SentAt:  m.SentAt,
		IsRead:  m.IsRead,
	}
}

func messageListResponse(msgs []*store.Message) []MessageResponse {
	response := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		response = append(response, messageResponse(m))
	}
	return response
}

// Create persists a message and routes the NewMessage notification.
// Receiver id 0 addresses the general channel.
// POST /api/messages/:receiver_id
func (h *MessageHandlers) Create(c *gin.Context) {
	receiverID, ok := paramInt64(c, "receiver_id")
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid message request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.store.CreateMessage(c.Request.Context(), req.FromID, receiverID, req.Content)
	if err != nil {
		h.log.Error().Err(err).Int64("from_id", req.FromID).Int64("to_id", receiverID).Msg("failed to create message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.router.MessageCreated(msg.FromID, msg.ToID)
	c.JSON(http.StatusCreated, messageResponse(msg))
}

// ListGeneral returns general-channel messages.
// GET /api/messages/general?since=&offset=&limit=
func (h *MessageHandlers) ListGeneral(c *gin.Context) {
	since, ok := sinceQuery(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	msgs, err := h.store.ListGeneralMessages(c.Request.Context(), since, offset, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list general messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, messageListResponse(msgs))
}

// ListBetween returns the conversation between two users, both directions.
// GET /api/messages/:receiver_id/:sender_id?since=&offset=&limit=
func (h *MessageHandlers) ListBetween(c *gin.Context) {
	receiverID, ok := paramInt64(c, "receiver_id")
	if !ok {
		return
	}
	senderID, ok := paramInt64(c, "sender_id")
	if !ok {
		return
	}
	since, ok := sinceQuery(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	msgs, err := h.store.ListMessagesBetween(c.Request.Context(), receiverID, senderID, since, offset, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, messageListResponse(msgs))
}

// Latest returns the timestamp of the newest message in one direction.
// Epoch when the conversation is empty.
// GET /api/messages/:receiver_id/:sender_id/latest
func (h *MessageHandlers) Latest(c *gin.Context) {
	receiverID, ok := paramInt64(c, "receiver_id")
	if !ok {
		return
	}
	senderID, ok := paramInt64(c, "sender_id")
	if !ok {
		return
	}

	latest, err := h.store.LatestMessageDate(c.Request.Context(), receiverID, senderID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to query latest message date")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if latest.IsZero() {
		latest = time.Unix(0, 0).UTC()
	}

	c.JSON(http.StatusOK, gin.H{"latest": latest})
}

// CountUnread returns the unread counter for one sender/receiver pair.
// GET /api/messages/:receiver_id/:sender_id/unread
func (h *MessageHandlers) CountUnread(c *gin.Context) {
	receiverID, ok := paramInt64(c, "receiver_id")
	if !ok {
		return
	}
	senderID, ok := paramInt64(c, "sender_id")
	if !ok {
		return
	}

	count, err := h.store.CountUnread(c.Request.Context(), receiverID, senderID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count unread")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead flags messages as read and routes the MessageRead notification.
// PUT /api/messages/:receiver_id/read
func (h *MessageHandlers) MarkRead(c *gin.Context) {
	receiverID, ok := paramInt64(c, "receiver_id")
	if !ok {
		return
	}

	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid mark read request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	found, err := h.store.MarkMessagesRead(c.Request.Context(), receiverID, req.IDs)
	if err != nil {
		h.log.Error().Err(err).Int64("receiver_id", receiverID).Msg("failed to mark messages read")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	}

	h.router.MessagesRead(receiverID)
	c.Status(http.StatusOK)
}

// Delete removes a message.
// DELETE /api/messages/:id
func (h *MessageHandlers) Delete(c *gin.Context) {
	id, ok := paramInt64(c, "id")
	if !ok {
		return
	}

	deleted, err := h.store.DeleteMessage(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("message_id", id).Msg("failed to delete message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "message not found"})
		return
	}

	c.Status(http.StatusOK)
}

func sinceQuery(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid since timestamp"})
		return nil, false
	}
	return &t, true
}
