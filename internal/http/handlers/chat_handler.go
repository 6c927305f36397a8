// Live-chat HTTP handlers.
//
// This file exposes the chat endpoints:
//   - GET    /chat/messages                     (visitor history, ETag support)
//   - POST   /chat/messages                     (visitor send, Idempotency-Key aware)
//   - PATCH  /chat/messages/{id}/status         (delivery marker)
//   - GET    /admin/inbox                       (latest message per visitor)
//   - GET    /admin/chats/{visitor_id}/messages (conversation, admin)
//   - POST   /admin/chats/{visitor_id}/messages (operator reply)
//
// Handlers are transport-thin: they validate input, call the chat service,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/services"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for writing a chat message.
type SendMessageRequest struct {
	// ID is the client-generated ULID; the server mints one when empty.
	ID string `json:"id" example:"01J9Z3W6ZQ5V1S8X4J0B7K2M3N"`
	// Text is the message body.
	Text string `json:"text" binding:"required" example:"Hi, do you build Shopify stores?"`
}

// UpdateStatusRequest is the JSON payload for the delivery marker.
type UpdateStatusRequest struct {
	Status domain.DeliveryStatus `json:"status" binding:"required" example:"seen"`
}

// MessagesResponse wraps one conversation, oldest first.
type MessagesResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// InboxResponse wraps the admin inbox, newest conversation first.
type InboxResponse struct {
	Inbox []domain.InboxPreview `json:"inbox"`
}

//
// Handlers
//

// ListMessages godoc
// @ID          listMessages
// @Summary     Visitor chat history
// @Description Returns the caller's conversation oldest first. Supports weak ETag via If-None-Match.
// @Tags        Chat
// @Produce     json
//
// @Param       X-Visitor-ID   header  string  true  "Visitor ID"                  example(01J9Z3W6ZQ5V1S8X4J0B7K2M3N)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.MessagesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Missing visitor"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chat/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	h.writeConversation(c, visitorID)
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a visitor message
// @Description Appends a visitor message to the caller's conversation. A repeated Idempotency-Key (or id) returns the stored message.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-Visitor-ID     header  string  true  "Visitor ID"
// @Param       Idempotency-Key  header  string  false "Replay-safe key"  example(01J9Z3W6ZQ5V1S8X4J0B7K2M3N)
// @Param       body             body    handlers.SendMessageRequest  true  "Message"
//
// @Success     201  {object} domain.ChatMessage
// @Success     200  {object} domain.ChatMessage "Replayed"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     409  {object} handlers.ErrorResponse "Id used by another conversation"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chat/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	visitorID, okID := requireVisitor(c)
	if !okID {
		return
	}
	if h.replay(c, visitorID, services.ScopeChat, h.loadMessage) {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.chat.Send(c.Request.Context(), visitorID, strings.TrimSpace(req.ID), req.Text, true)
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, visitorID, services.ScopeChat, m.ID)
	ok(c, http.StatusCreated, m)
}

// UpdateMessageStatus godoc
// @ID          updateMessageStatus
// @Summary     Set a message delivery marker
// @Description Sets sent, delivered or seen on a visitor-authored message.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Message ID"
// @Param       body  body  handlers.UpdateStatusRequest  true  "Status"
//
// @Success     200  {object} domain.ChatMessage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Router      /chat/messages/{id}/status [patch]
func (h *Handlers) UpdateMessageStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	m, err := h.chat.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

// Inbox godoc
// @ID          adminInbox
// @Summary     Admin inbox
// @Description Latest message of every conversation, newest first, with the visitor's display name.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.InboxResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/inbox [get]
func (h *Handlers) Inbox(c *gin.Context) {
	items, err := h.chat.Inbox(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, InboxResponse{Inbox: items})
}

// AdminConversation godoc
// @ID          adminConversation
// @Summary     Read a conversation
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       visitor_id  path  string  true  "Visitor ID"
//
// @Success     200  {object} handlers.MessagesResponse
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Router      /admin/chats/{visitor_id}/messages [get]
func (h *Handlers) AdminConversation(c *gin.Context) {
	h.writeConversation(c, c.Param("visitor_id"))
}

// AdminReply godoc
// @ID          adminReply
// @Summary     Reply to a visitor
// @Description Appends an operator message to the visitor's conversation.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       visitor_id  path  string  true  "Visitor ID"
// @Param       body        body  handlers.SendMessageRequest  true  "Reply"
//
// @Success     201  {object} domain.ChatMessage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     409  {object} handlers.ErrorResponse "Id used by another conversation"
// @Router      /admin/chats/{visitor_id}/messages [post]
func (h *Handlers) AdminReply(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.chat.Send(c.Request.Context(), c.Param("visitor_id"), strings.TrimSpace(req.ID), req.Text, false)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, m)
}

func (h *Handlers) writeConversation(c *gin.Context, visitorID string) {
	ctx := c.Request.Context()
	// ETag pre-check (best effort).
	if v, err := h.chat.Version(ctx, visitorID); err == nil && notModified(c, "chat:"+visitorID, v) {
		return
	}
	items, err := h.chat.History(ctx, visitorID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, MessagesResponse{Messages: items})
}

func (h *Handlers) loadMessage(ctx context.Context, id string) (any, error) {
	return h.chat.Get(ctx, id)
}
