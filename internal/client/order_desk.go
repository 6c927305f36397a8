package client

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/reconcile"
	"github.com/xevon/studio-backend/internal/services"
)

// OrderDesk is the visitor's checkout and order status view.
type OrderDesk struct {
	backend   Backend
	visitorID string
	store     *reconcile.Store[domain.Order]
	busy      atomic.Bool

	mu  sync.Mutex
	sub Subscription
}

// NewOrderDesk builds a desk for visitorID.
func NewOrderDesk(b Backend, visitorID string) *OrderDesk {
	return &OrderDesk{
		backend:   b,
		visitorID: visitorID,
		store:     reconcile.NewStore(visitorID, reconcile.Descending, b.MyOrders),
	}
}

// Open loads the visitor's orders and follows their status changes.
func (d *OrderDesk) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sub != nil {
		return nil
	}
	topic := feed.Topic{
		Table:  feed.TableOrders,
		Filter: &feed.Filter{Column: "visitor_id", Value: d.visitorID},
	}
	sub, err := d.backend.Subscribe(ctx, topic, d.onEvent)
	if err != nil {
		return err
	}
	d.sub = sub
	_ = d.store.Load(ctx)
	return nil
}

// Close stops following changes.
func (d *OrderDesk) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sub != nil {
		d.sub.Close()
		d.sub = nil
	}
}

func (d *OrderDesk) onEvent(ev feed.Event) {
	o, err := feed.Decode[domain.Order](ev)
	if err != nil {
		log.Warn().Err(err).Msg("order event dropped")
		return
	}
	switch ev.Type {
	case feed.Insert:
		d.store.ApplyInsert(o)
	case feed.Update:
		d.store.ApplyUpdate(o)
	}
}

// PlaceOrder writes the order and, once stored, puts it at the top of the
// list. A client id is minted when in.ID is empty.
func (d *OrderDesk) PlaceOrder(ctx context.Context, in services.OrderInput) (domain.Order, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return domain.Order{}, reconcile.ErrBusy
	}
	defer d.busy.Store(false)

	if in.ID == "" {
		in.ID = domain.NewID()
	}
	o, err := d.backend.PlaceOrder(ctx, d.visitorID, in)
	if err != nil {
		return o, err
	}
	d.store.Upsert(o)
	return o, nil
}

// Orders returns the visitor's orders, newest first.
func (d *OrderDesk) Orders() []domain.Order { return d.store.Items() }

// Current returns the most recent order.
func (d *OrderDesk) Current() (domain.Order, bool) {
	items := d.store.Items()
	if len(items) == 0 {
		return domain.Order{}, false
	}
	return items[0], true
}

// OnChange registers fn for order list updates.
func (d *OrderDesk) OnChange(fn func([]domain.Order)) { d.store.OnChange(fn) }
