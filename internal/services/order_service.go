// Package services – OrderService
//
// OrderService handles package purchases. Orders are placed by visitors as
// pending, assigned to a team member from the admin console, and completed
// out of band. Status only ever moves forward (see domain.OrderStatus).
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/repo"
)

// NewOrderTitle is the push title for freshly placed orders.
const NewOrderTitle = "New Order Received"

// OrderInput is what a visitor submits at checkout.
type OrderInput struct {
	ID              string
	PackageName     string
	Price           string
	CustomerName    string
	CustomerContact string
	Date            string
}

// OrderStats counts orders per status.
type OrderStats struct {
	Pending   int64 `json:"pending"`
	Assigned  int64 `json:"assigned"`
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// OrderService coordinates order persistence, change events and admin push.
type OrderService struct {
	DB     *gorm.DB
	Feed   Publisher
	Notify AdminNotifier

	// MaxFieldRunes caps every free-text order field; 0 disables the check.
	MaxFieldRunes int
}

// NewOrderService constructs an OrderService with a 255-rune field cap.
func NewOrderService(db *gorm.DB, pub Publisher, notify AdminNotifier) *OrderService {
	return &OrderService{DB: db, Feed: pub, Notify: notify, MaxFieldRunes: 255}
}

// Place creates a pending order for visitorID. Re-placing an existing id
// from the same visitor returns the stored order.
func (s *OrderService) Place(ctx context.Context, visitorID string, in OrderInput) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Place",
		trace.WithAttributes(attribute.String("visitor.id", visitorID)),
	)
	defer span.End()

	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	if in.ID != "" && !validClientID(in.ID) {
		return nil, ErrInvalidID
	}
	o := &domain.Order{
		ID:              in.ID,
		VisitorID:       visitorID,
		PackageName:     normalizeLine(in.PackageName),
		Price:           normalizeLine(in.Price),
		CustomerName:    normalizeLine(in.CustomerName),
		CustomerContact: normalizeLine(in.CustomerContact),
		Status:          domain.OrderPending,
		Date:            normalizeLine(in.Date),
	}
	if o.PackageName == "" || o.Price == "" || o.CustomerName == "" || o.CustomerContact == "" {
		return nil, ErrInvalidOrder
	}
	for _, f := range []string{o.PackageName, o.Price, o.CustomerName, o.CustomerContact, o.Date} {
		if tooLong(f, s.MaxFieldRunes) {
			return nil, ErrTooLong
		}
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	if o.Date == "" {
		o.Date = now.Format(time.RFC3339)
	}

	err := repo.CreateOrder(ctx, s.DB, o)
	if errors.Is(err, repo.ErrDuplicate) {
		prev, gerr := repo.GetOrder(ctx, s.DB, in.ID)
		if gerr != nil {
			return nil, gerr
		}
		if prev.VisitorID != visitorID {
			return nil, ErrIDConflict
		}
		return prev, nil
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", o.ID))
	publish(s.Feed, feed.TableOrders, feed.Insert, o.VisitorID, o)
	notifierOrNop(s.Notify).Dispatch(NewOrderTitle,
		fmt.Sprintf("%s purchased by %s (%s)", o.PackageName, o.CustomerName, o.Price))
	return o, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := repo.GetOrder(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// Assign hands the order to the team member at repIndex.
func (s *OrderService) Assign(ctx context.Context, id string, repIndex int) (*domain.Order, error) {
	if repIndex < 0 {
		return nil, ErrInvalidRepIndex
	}
	return s.transition(ctx, "Assign", id, domain.OrderAssigned, &repIndex)
}

// Complete marks the order as completed.
func (s *OrderService) Complete(ctx context.Context, id string) (*domain.Order, error) {
	return s.transition(ctx, "Complete", id, domain.OrderCompleted, nil)
}

func (s *OrderService) transition(ctx context.Context, op, id string, to domain.OrderStatus, repIndex *int) (*domain.Order, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("order.id", id),
			attribute.String("order.to", string(to)),
		),
	)
	defer span.End()

	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cur.Status.CanTransition(to) {
		return nil, ErrInvalidTransition
	}
	if err := repo.TransitionOrder(ctx, s.DB, id, cur.Status, to, repIndex); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// another writer moved it first
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	o, err := repo.GetOrder(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	publish(s.Feed, feed.TableOrders, feed.Update, o.VisitorID, o)
	return o, nil
}

// List returns every order, most recent first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	items, err := repo.ListOrders(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Order{}
	}
	return items, nil
}

// ListPage returns a page of orders and the total count. It applies
// defaults for invalid page/pageSize.
func (s *OrderService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountOrders(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Order{}, 0, nil
	}
	items, err := repo.ListOrdersPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ListForVisitor returns visitorID's orders, most recent first.
func (s *OrderService) ListForVisitor(ctx context.Context, visitorID string) ([]domain.Order, error) {
	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	items, err := repo.ListOrdersByVisitor(ctx, s.DB, visitorID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Order{}
	}
	return items, nil
}

// Stats counts orders per status.
func (s *OrderService) Stats(ctx context.Context) (OrderStats, error) {
	by, err := repo.CountOrdersByStatus(ctx, s.DB)
	if err != nil {
		return OrderStats{}, err
	}
	st := OrderStats{
		Pending:   by[domain.OrderPending],
		Assigned:  by[domain.OrderAssigned],
		Completed: by[domain.OrderCompleted],
	}
	st.Total = st.Pending + st.Assigned + st.Completed
	return st, nil
}

// Version returns an opaque token that changes whenever the order list
// changes. Used for ETags.
func (s *OrderService) Version(ctx context.Context) (string, error) {
	count, maxTS, err := repo.OrdersStats(ctx, s.DB)
	if err != nil {
		return "", err
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixNano()
	}
	return fmt.Sprintf("%d:%d", count, ts), nil
}
