package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/config"
	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/notify"
	"github.com/xevon/studio-backend/internal/reconcile"
)

// ChatWidget is the visitor side of live chat: one conversation, kept in
// sync with the feed, written optimistically.
type ChatWidget struct {
	backend   Backend
	visitorID string
	banner    *notify.Banner
	timing    config.WidgetConfig

	Draft reconcile.Draft

	store  *reconcile.Store[domain.ChatMessage]
	send   *reconcile.Mutation[domain.ChatMessage]
	typing atomic.Bool

	mu  sync.Mutex
	sub Subscription
	wg  sync.WaitGroup
}

// NewChatWidget builds a widget for visitorID. banner may be shared with
// other widgets; nil gets a private one.
func NewChatWidget(b Backend, visitorID string, banner *notify.Banner, timing config.WidgetConfig) *ChatWidget {
	if banner == nil {
		banner = notify.NewBanner(timing.NotifyTTL)
	}
	w := &ChatWidget{backend: b, visitorID: visitorID, banner: banner, timing: timing}
	w.store = reconcile.NewStore(visitorID, reconcile.Ascending, b.ChatHistory)
	w.send = &reconcile.Mutation[domain.ChatMessage]{
		Store:            w.store,
		Write:            b.SendChat,
		ApplyBeforeWrite: true,
		OnSuccess: func(domain.ChatMessage) {
			w.banner.Show(notify.Event{Title: SentTitle, Message: SentMessage, Icon: IconURL})
		},
	}
	return w
}

// Open loads the history and starts listening for new messages. Opening
// an open widget is a no-op.
func (w *ChatWidget) Open(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		return nil
	}
	// subscribe first so nothing written during the load is missed
	sub, err := w.backend.Subscribe(ctx, conversationTopic(w.visitorID), w.onEvent)
	if err != nil {
		return err
	}
	w.sub = sub
	if err := w.store.Load(ctx); err != nil {
		log.Warn().Err(err).Str("visitor", w.visitorID).Msg("chat history unavailable")
	}
	return nil
}

// Close stops listening. A pending auto-reply still runs.
func (w *ChatWidget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sub != nil {
		w.sub.Close()
		w.sub = nil
	}
}

// Send submits the draft. The first message of an empty conversation
// schedules the auto-reply.
func (w *ChatWidget) Send(ctx context.Context) (domain.ChatMessage, error) {
	first := w.store.Len() == 0
	m, err := w.send.Submit(ctx, &w.Draft, func(text string) domain.ChatMessage {
		return domain.ChatMessage{
			ID:        domain.NewID(),
			VisitorID: w.visitorID,
			Text:      text,
			IsUser:    true,
			Status:    domain.DeliverySent,
			CreatedAt: time.Now().UTC(),
		}
	})
	if err != nil {
		return m, err
	}
	if first {
		w.scheduleAutoReply()
	}
	return m, nil
}

func (w *ChatWidget) scheduleAutoReply() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		time.Sleep(w.timing.TypingDelay)
		w.typing.Store(true)
		time.Sleep(w.timing.ReplyDelay)

		reply := domain.ChatMessage{
			ID:        domain.NewID(),
			VisitorID: w.visitorID,
			Text:      AutoReplyText,
			CreatedAt: time.Now().UTC(),
		}
		saved, err := w.backend.SendChat(context.Background(), reply)
		if err != nil {
			log.Error().Err(err).Str("visitor", w.visitorID).Msg("auto-reply failed")
			return
		}
		w.store.Upsert(saved)
		w.typing.Store(false)
	}()
}

func (w *ChatWidget) onEvent(ev feed.Event) {
	m, _ := applyChat(w.store, ev)
	if ev.Type == feed.Insert && !m.IsUser && m.Text != "" {
		w.typing.Store(false)
		w.banner.Show(notify.Event{Title: SupportTitle, Message: m.Text, Icon: IconURL})
	}
}

// Messages returns the conversation, oldest first.
func (w *ChatWidget) Messages() []domain.ChatMessage { return w.store.Items() }

// OnChange registers fn to receive the conversation after every change.
func (w *ChatWidget) OnChange(fn func([]domain.ChatMessage)) { w.store.OnChange(fn) }

// Typing reports whether the operator typing indicator is on.
func (w *ChatWidget) Typing() bool { return w.typing.Load() }

// Sending reports whether a send is in flight.
func (w *ChatWidget) Sending() bool { return w.send.Busy() }

// Wait blocks until scheduled auto-replies have finished.
func (w *ChatWidget) Wait() { w.wg.Wait() }
