// Package client is the SDK the studio front ends are built on. It wires
// the reconcile stores, visitor identity and notification banner to a
// Backend: the row store and change feed, reached either in-process
// (Direct) or over HTTP and WebSocket (Remote).
package client

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/reconcile"
	"github.com/xevon/studio-backend/internal/services"
)

// ErrNoConversation is returned when replying with no conversation open.
var ErrNoConversation = errors.New("client: no conversation selected")

// Subscription is a live feed subscription. Done is closed when the
// subscription ends, by Close or because the feed went away.
type Subscription interface {
	Close()
	Done() <-chan struct{}
}

// Backend is everything the widgets need from the server. Chat writes
// with IsUser set go through the visitor path; the others are operator
// replies.
type Backend interface {
	ChatHistory(ctx context.Context, visitorID string) ([]domain.ChatMessage, error)
	SendChat(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error)
	Inbox(ctx context.Context) ([]domain.InboxPreview, error)

	PlaceOrder(ctx context.Context, visitorID string, in services.OrderInput) (domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
	MyOrders(ctx context.Context, visitorID string) ([]domain.Order, error)
	AssignOrder(ctx context.Context, id string, repIndex int) (domain.Order, error)

	PostReview(ctx context.Context, visitorID string, in services.ReviewInput) (domain.Review, error)
	Reviews(ctx context.Context, limit int) ([]domain.Review, error)

	SetVisitorName(ctx context.Context, visitorID, name string) error
	TrackVisit(ctx context.Context) (domain.SiteStats, error)

	// Subscribe delivers matching change events to h, one at a time.
	Subscribe(ctx context.Context, topic feed.Topic, h feed.Handler) (Subscription, error)
}

// Copy shown by the widgets.
const (
	IconURL = "https://image2url.com/r2/default/images/1770543518698-44cdd9b3-f860-41c0-98cc-36ec0e607a27.jpeg"

	AutoReplyText = "Please wait a moment, our representative will contact you shortly."

	SentTitle       = "Message Sent"
	SentMessage     = "Our team has been notified."
	SupportTitle    = "Xevon Support"
	NewMessageTitle = "New Message Received"
	NewOrderTitle   = "New Order Received"
)

// chatTopic selects new messages, of one visitor when visitorID is set.
func chatTopic(visitorID string) feed.Topic {
	t := feed.Topic{Table: feed.TableChatMessages, Types: []feed.EventType{feed.Insert}}
	if visitorID != "" {
		t.Filter = &feed.Filter{Column: "visitor_id", Value: visitorID}
	}
	return t
}

// conversationTopic selects new messages and delivery status changes of
// one visitor's conversation.
func conversationTopic(visitorID string) feed.Topic {
	t := chatTopic(visitorID)
	t.Types = []feed.EventType{feed.Insert, feed.Update}
	return t
}

// applyChat routes a chat event to store. It reports whether ev was a
// newly inserted message.
func applyChat(store *reconcile.Store[domain.ChatMessage], ev feed.Event) (domain.ChatMessage, bool) {
	m, err := feed.Decode[domain.ChatMessage](ev)
	if err != nil {
		log.Warn().Err(err).Msg("chat event dropped")
		return m, false
	}
	switch ev.Type {
	case feed.Insert:
		return m, store.ApplyInsert(m)
	case feed.Update:
		store.ApplyUpdate(m)
	}
	return m, false
}
