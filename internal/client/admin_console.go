package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/notify"
	"github.com/xevon/studio-backend/internal/reconcile"
	"github.com/xevon/studio-backend/internal/utils"
)

const bannerPreviewRunes = 30

// AdminConsole is the studio operator's view: the inbox, one open
// conversation at a time, the order list, and banners for new activity.
type AdminConsole struct {
	backend Backend
	selfID  string
	banner  *notify.Banner

	// Reply is the operator's compose box.
	Reply reconcile.Draft

	inbox         *reconcile.Store[domain.InboxPreview]
	orders        *reconcile.Store[domain.Order]
	conversations *reconcile.Registry[domain.ChatMessage]

	mu       sync.Mutex
	subs     []Subscription
	open     string
	openSub  Subscription
	replyFor map[string]*reconcile.Mutation[domain.ChatMessage]
}

// NewAdminConsole builds a console. selfID is the operator's own visitor
// id; chat from it never raises a banner.
func NewAdminConsole(b Backend, selfID string, banner *notify.Banner) *AdminConsole {
	if banner == nil {
		banner = notify.NewBanner(notify.DefaultTTL)
	}
	return &AdminConsole{
		backend: b,
		selfID:  selfID,
		banner:  banner,
		inbox: reconcile.NewStore("", reconcile.Descending, func(ctx context.Context, _ string) ([]domain.InboxPreview, error) {
			return b.Inbox(ctx)
		}),
		orders: reconcile.NewStore("", reconcile.Descending, func(ctx context.Context, _ string) ([]domain.Order, error) {
			return b.Orders(ctx)
		}),
		conversations: reconcile.NewRegistry(reconcile.Ascending, b.ChatHistory),
		replyFor:      make(map[string]*reconcile.Mutation[domain.ChatMessage]),
	}
}

// Start loads the inbox and orders and subscribes to chat and order
// activity. Each change triggers a refetch of the affected list.
func (a *AdminConsole) Start(ctx context.Context) error {
	chatSub, err := a.backend.Subscribe(ctx, chatTopic(""), a.onChat)
	if err != nil {
		return err
	}
	orderSub, err := a.backend.Subscribe(ctx, feed.Topic{Table: feed.TableOrders}, a.onOrder)
	if err != nil {
		chatSub.Close()
		return err
	}
	a.mu.Lock()
	a.subs = append(a.subs, chatSub, orderSub)
	a.mu.Unlock()

	_ = a.inbox.Load(ctx)
	_ = a.orders.Load(ctx)
	return nil
}

// Stop closes every subscription.
func (a *AdminConsole) Stop() {
	a.mu.Lock()
	subs := a.subs
	a.subs = nil
	if a.openSub != nil {
		subs = append(subs, a.openSub)
		a.openSub = nil
	}
	a.open = ""
	a.mu.Unlock()
	for _, s := range subs {
		s.Close()
	}
}

func (a *AdminConsole) onChat(ev feed.Event) {
	m, err := feed.Decode[domain.ChatMessage](ev)
	if err != nil {
		log.Warn().Err(err).Msg("chat event dropped")
		return
	}
	if m.IsUser && m.VisitorID != a.selfID {
		a.banner.Show(notify.Event{Title: NewMessageTitle, Message: visitorSays(m.Text), Icon: IconURL})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.inbox.Load(ctx)
}

func (a *AdminConsole) onOrder(ev feed.Event) {
	o, err := feed.Decode[domain.Order](ev)
	if err != nil {
		log.Warn().Err(err).Msg("order event dropped")
		return
	}
	if ev.Type == feed.Insert {
		a.banner.Show(notify.Event{
			Title:   NewOrderTitle,
			Message: fmt.Sprintf("%s purchased by %s", o.PackageName, o.CustomerName),
			Icon:    IconURL,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = a.orders.Load(ctx)
}

func visitorSays(text string) string {
	return "Visitor says: \"" + utils.Ellipsize(text, bannerPreviewRunes) + "\""
}

// Inbox returns the latest message of every conversation, newest first.
func (a *AdminConsole) Inbox() []domain.InboxPreview { return a.inbox.Items() }

// OnInboxChange registers fn for inbox updates.
func (a *AdminConsole) OnInboxChange(fn func([]domain.InboxPreview)) { a.inbox.OnChange(fn) }

// OpenConversation switches the console to visitorID's conversation. The
// previous conversation stops listening; its store is kept and is only
// ever written by its own fetches and events.
func (a *AdminConsole) OpenConversation(ctx context.Context, visitorID string) ([]domain.ChatMessage, error) {
	store := a.conversations.Store(visitorID)

	a.mu.Lock()
	if a.open == visitorID && a.openSub != nil {
		a.mu.Unlock()
		return store.Items(), nil
	}
	prev := a.openSub
	a.openSub, a.open = nil, ""
	a.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	sub, err := a.backend.Subscribe(ctx, conversationTopic(visitorID), func(ev feed.Event) {
		applyChat(store, ev)
	})
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.open, a.openSub = visitorID, sub
	a.mu.Unlock()

	_ = store.Load(ctx)
	return store.Items(), nil
}

// Conversation returns the cached messages for visitorID.
func (a *AdminConsole) Conversation(visitorID string) []domain.ChatMessage {
	s, ok := a.conversations.Lookup(visitorID)
	if !ok {
		return nil
	}
	return s.Items()
}

// Selected returns the open conversation's visitor id.
func (a *AdminConsole) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}

// SendReply writes the Reply draft into the open conversation. The message
// shows up once the write returns (or its feed echo arrives first).
func (a *AdminConsole) SendReply(ctx context.Context) (domain.ChatMessage, error) {
	visitorID := a.Selected()
	if visitorID == "" {
		return domain.ChatMessage{}, ErrNoConversation
	}
	return a.replyMutation(visitorID).Submit(ctx, &a.Reply, func(text string) domain.ChatMessage {
		return domain.ChatMessage{
			ID:        domain.NewID(),
			VisitorID: visitorID,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		}
	})
}

func (a *AdminConsole) replyMutation(visitorID string) *reconcile.Mutation[domain.ChatMessage] {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.replyFor[visitorID]
	if !ok {
		m = &reconcile.Mutation[domain.ChatMessage]{
			Store: a.conversations.Store(visitorID),
			Write: a.backend.SendChat,
		}
		a.replyFor[visitorID] = m
	}
	return m
}

// Orders returns every order, newest first.
func (a *AdminConsole) Orders() []domain.Order { return a.orders.Items() }

// OnOrdersChange registers fn for order list updates.
func (a *AdminConsole) OnOrdersChange(fn func([]domain.Order)) { a.orders.OnChange(fn) }

// Assign hands an order to the team member at repIndex and applies the
// stored row locally.
func (a *AdminConsole) Assign(ctx context.Context, orderID string, repIndex int) (domain.Order, error) {
	o, err := a.backend.AssignOrder(ctx, orderID, repIndex)
	if err != nil {
		return o, err
	}
	a.orders.Upsert(o)
	return o, nil
}

// Banner returns the console's banner.
func (a *AdminConsole) Banner() *notify.Banner { return a.banner }
