// Package services – ChatService
//
// ChatService owns the live-chat conversations. Each visitor has exactly one
// conversation, partitioned by visitor id. Visitors and the studio operator
// (the admin console) write through the same Send path; the IsUser flag tells
// them apart.
//
// Record ids are usually chosen by the client before the write so that the
// optimistic stand-in, the write response, and the feed echo all carry the
// same id. Re-sending an id that already exists in the same conversation
// returns the stored row instead of failing, which makes retries safe.
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

// Push copy for new visitor messages.
const (
	NewChatTitle     = "New Live Chat"
	chatPreviewRunes = 50
)

// ChatService coordinates chat persistence, change events and admin push.
type ChatService struct {
	DB     *gorm.DB
	Feed   Publisher
	Notify AdminNotifier

	// MaxTextRunes caps message length; 0 disables the check.
	MaxTextRunes int
}

// NewChatService constructs a ChatService with a 2000-rune message cap.
func NewChatService(db *gorm.DB, pub Publisher, notify AdminNotifier) *ChatService {
	return &ChatService{DB: db, Feed: pub, Notify: notify, MaxTextRunes: 2000}
}

// Send stores a message in visitorID's conversation. id may be empty, in
// which case the server assigns one. fromVisitor distinguishes visitor
// messages (which notify the admin) from operator replies.
func (s *ChatService) Send(ctx context.Context, visitorID, id, text string, fromVisitor bool) (*domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("visitor.id", visitorID),
			attribute.Bool("chat.from_visitor", fromVisitor),
		),
	)
	defer span.End()

	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	if id != "" && !validClientID(id) {
		return nil, ErrInvalidID
	}
	text = normalizeText(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if tooLong(text, s.MaxTextRunes) {
		return nil, ErrTooLong
	}

	m := &domain.ChatMessage{ID: id, VisitorID: visitorID, Text: text, IsUser: fromVisitor}
	if fromVisitor {
		m.Status = domain.DeliverySent
	}
	err := repo.CreateMessage(ctx, s.DB, m)
	if errors.Is(err, repo.ErrDuplicate) {
		prev, gerr := repo.GetMessage(ctx, s.DB, id)
		if gerr != nil {
			return nil, gerr
		}
		if prev.VisitorID != visitorID {
			return nil, ErrIDConflict
		}
		span.SetAttributes(attribute.Bool("chat.replayed", true))
		return prev, nil
	}
	if err != nil {
		return nil, err
	}

	publish(s.Feed, feed.TableChatMessages, feed.Insert, m.VisitorID, m)
	if fromVisitor {
		notifierOrNop(s.Notify).Dispatch(NewChatTitle, fmt.Sprintf("Visitor says: %s...", preview(text, chatPreviewRunes)))
	}
	return m, nil
}

// History returns visitorID's conversation in chronological order.
func (s *ChatService) History(ctx context.Context, visitorID string) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(attribute.String("visitor.id", visitorID)),
	)
	defer span.End()

	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	items, err := repo.ListMessages(ctx, s.DB, visitorID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ChatMessage{}
	}
	return items, nil
}

// Get returns one message.
func (s *ChatService) Get(ctx context.Context, id string) (*domain.ChatMessage, error) {
	m, err := repo.GetMessage(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	return m, err
}

// UpdateStatus records a delivery status for a message and emits an
// update event carrying the full row.
func (s *ChatService) UpdateStatus(ctx context.Context, id string, status domain.DeliveryStatus) (*domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("message.id", id),
			attribute.String("message.status", string(status)),
		),
	)
	defer span.End()

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := repo.UpdateMessageStatus(ctx, s.DB, id, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	m, err := repo.GetMessage(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	publish(s.Feed, feed.TableChatMessages, feed.Update, m.VisitorID, m)
	return m, nil
}

// Inbox returns the admin inbox: the latest message of every conversation,
// most recent first, labelled with the visitor's name when known.
func (s *ChatService) Inbox(ctx context.Context) ([]domain.InboxPreview, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Inbox")
	defer span.End()

	latest, err := repo.LatestMessages(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(latest))
	for _, m := range latest {
		ids = append(ids, m.VisitorID)
	}
	names, err := repo.VisitorNames(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.InboxPreview, 0, len(latest))
	for _, m := range latest {
		name, ok := names[m.VisitorID]
		if !ok || name == "" {
			name = domain.DefaultVisitorName(m.VisitorID)
		}
		out = append(out, domain.InboxPreview{
			VisitorID:   m.VisitorID,
			Name:        name,
			LastMessage: m.Text,
			LastTime:    m.CreatedAt,
		})
	}
	span.SetAttributes(attribute.Int("inbox.size", len(out)))
	return out, nil
}

// Version returns an opaque token that changes whenever visitorID's
// conversation changes. Used for ETags.
func (s *ChatService) Version(ctx context.Context, visitorID string) (string, error) {
	count, maxTS, err := repo.MessagesStats(ctx, s.DB, visitorID)
	if err != nil {
		return "", err
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	return fmt.Sprintf("%d:%d", count, ts), nil
}
