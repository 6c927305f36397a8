package client

import (
	"context"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/services"
)

// Direct is a Backend that calls the services in-process and subscribes to
// the broker directly. cmd tools and tests use it.
type Direct struct {
	ChatSvc    *services.ChatService
	OrderSvc   *services.OrderService
	ReviewSvc  *services.ReviewService
	VisitorSvc *services.VisitorService
	StatsSvc   *services.StatsService
	Broker     *feed.Broker
}

var _ Backend = (*Direct)(nil)

func (d *Direct) ChatHistory(ctx context.Context, visitorID string) ([]domain.ChatMessage, error) {
	return d.ChatSvc.History(ctx, visitorID)
}

func (d *Direct) SendChat(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error) {
	saved, err := d.ChatSvc.Send(ctx, m.VisitorID, m.ID, m.Text, m.IsUser)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return *saved, nil
}

func (d *Direct) Inbox(ctx context.Context) ([]domain.InboxPreview, error) {
	return d.ChatSvc.Inbox(ctx)
}

func (d *Direct) PlaceOrder(ctx context.Context, visitorID string, in services.OrderInput) (domain.Order, error) {
	o, err := d.OrderSvc.Place(ctx, visitorID, in)
	if err != nil {
		return domain.Order{}, err
	}
	return *o, nil
}

func (d *Direct) Orders(ctx context.Context) ([]domain.Order, error) {
	return d.OrderSvc.List(ctx)
}

func (d *Direct) MyOrders(ctx context.Context, visitorID string) ([]domain.Order, error) {
	return d.OrderSvc.ListForVisitor(ctx, visitorID)
}

func (d *Direct) AssignOrder(ctx context.Context, id string, repIndex int) (domain.Order, error) {
	o, err := d.OrderSvc.Assign(ctx, id, repIndex)
	if err != nil {
		return domain.Order{}, err
	}
	return *o, nil
}

func (d *Direct) PostReview(ctx context.Context, visitorID string, in services.ReviewInput) (domain.Review, error) {
	r, err := d.ReviewSvc.Post(ctx, visitorID, in)
	if err != nil {
		return domain.Review{}, err
	}
	return *r, nil
}

func (d *Direct) Reviews(ctx context.Context, limit int) ([]domain.Review, error) {
	return d.ReviewSvc.List(ctx, limit)
}

func (d *Direct) SetVisitorName(ctx context.Context, visitorID, name string) error {
	_, err := d.VisitorSvc.Upsert(ctx, visitorID, name)
	return err
}

func (d *Direct) TrackVisit(ctx context.Context) (domain.SiteStats, error) {
	return d.StatsSvc.TrackVisit(ctx)
}

func (d *Direct) Subscribe(_ context.Context, topic feed.Topic, h feed.Handler) (Subscription, error) {
	return d.Broker.Subscribe(topic, h), nil
}
