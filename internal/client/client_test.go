package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xevon/studio-backend/internal/config"
	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/identity"
	"github.com/xevon/studio-backend/internal/notify"
	"github.com/xevon/studio-backend/internal/reconcile"
	"github.com/xevon/studio-backend/internal/repo"
	"github.com/xevon/studio-backend/internal/services"
)

// ---------- test helpers ----------

type pushCall struct{ title, body string }

type recNotifier struct {
	mu    sync.Mutex
	calls []pushCall
}

func (n *recNotifier) Dispatch(title, body string) {
	n.mu.Lock()
	n.calls = append(n.calls, pushCall{title, body})
	n.mu.Unlock()
}

func newDirect(t *testing.T) (*Direct, *recNotifier) {
	t.Helper()
	dsn := fmt.Sprintf("file:client_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// feed handlers query from their own goroutines
	sqlDB.SetMaxOpenConns(1)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	broker := feed.NewBroker(0)
	t.Cleanup(func() {
		broker.Close()
		_ = sqlDB.Close()
	})
	nt := &recNotifier{}
	return &Direct{
		ChatSvc:    services.NewChatService(db, broker, nt),
		OrderSvc:   services.NewOrderService(db, broker, nt),
		ReviewSvc:  services.NewReviewService(db, broker),
		VisitorSvc: services.NewVisitorService(db, broker),
		StatsSvc:   services.NewStatsService(db, broker),
		Broker:     broker,
	}, nt
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var fastTiming = config.WidgetConfig{
	NotifyTTL:   time.Minute,
	TypingDelay: 10 * time.Millisecond,
	ReplyDelay:  20 * time.Millisecond,
}

func activeTitle(b *notify.Banner) string {
	ev, ok := b.Active()
	if !ok {
		return ""
	}
	return ev.Title
}

// failingBackend wraps a Backend and fails chat writes.
type failingBackend struct {
	Backend
}

func (failingBackend) SendChat(context.Context, domain.ChatMessage) (domain.ChatMessage, error) {
	return domain.ChatMessage{}, errors.New("offline")
}

// ---------- chat widget ----------

func TestChatWidget_SendAndAutoReply(t *testing.T) {
	d, nt := newDirect(t)
	ctx := context.Background()
	banner := notify.NewBanner(time.Minute)

	w := NewChatWidget(d, "v_alice", banner, fastTiming)
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	w.Draft.Set("  hello there  ")
	m, err := w.Send(ctx)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.Text != "hello there" || !m.IsUser || m.VisitorID != "v_alice" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if w.Draft.Value() != "" {
		t.Fatalf("draft should be cleared, got %q", w.Draft.Value())
	}
	if got := activeTitle(banner); got != SentTitle {
		t.Fatalf("banner = %q, want %q", got, SentTitle)
	}

	w.Wait()
	waitFor(t, "auto-reply", func() bool { return len(w.Messages()) == 2 })
	msgs := w.Messages()
	if msgs[0].ID != m.ID || msgs[1].Text != AutoReplyText || msgs[1].IsUser {
		t.Fatalf("unexpected conversation: %+v", msgs)
	}
	if w.Typing() {
		t.Fatalf("typing indicator should be off after the reply")
	}
	waitFor(t, "support banner", func() bool { return activeTitle(banner) == SupportTitle })

	// the echo of our own write must not duplicate it
	time.Sleep(20 * time.Millisecond)
	if n := len(w.Messages()); n != 2 {
		t.Fatalf("expected 2 messages after echoes, got %d", n)
	}

	nt.mu.Lock()
	calls := append([]pushCall(nil), nt.calls...)
	nt.mu.Unlock()
	if len(calls) != 1 || calls[0].title != services.NewChatTitle {
		t.Fatalf("expected one admin push, got %+v", calls)
	}
}

func TestChatWidget_OnlyFirstMessageAutoReplies(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	w := NewChatWidget(d, "v_bob", nil, fastTiming)
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	w.Draft.Set("one")
	if _, err := w.Send(ctx); err != nil {
		t.Fatalf("send: %v", err)
	}
	w.Wait()
	w.Draft.Set("two")
	if _, err := w.Send(ctx); err != nil {
		t.Fatalf("send: %v", err)
	}
	w.Wait()

	waitFor(t, "three messages", func() bool { return len(w.Messages()) == 3 })
	time.Sleep(50 * time.Millisecond)
	replies := 0
	for _, m := range w.Messages() {
		if m.Text == AutoReplyText {
			replies++
		}
	}
	if replies != 1 {
		t.Fatalf("expected exactly one auto-reply, got %d", replies)
	}
}

func TestChatWidget_EmptyDraftAndFailedWrite(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	w := NewChatWidget(failingBackend{d}, "v_carol", nil, fastTiming)
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	w.Draft.Set("   ")
	if _, err := w.Send(ctx); !errors.Is(err, reconcile.ErrEmptyDraft) {
		t.Fatalf("want ErrEmptyDraft, got %v", err)
	}

	w.Draft.Set("are you there?")
	if _, err := w.Send(ctx); err == nil {
		t.Fatalf("expected write error")
	}
	if w.Draft.Value() != "are you there?" {
		t.Fatalf("draft not restored: %q", w.Draft.Value())
	}
	// the optimistic entry stays
	if msgs := w.Messages(); len(msgs) != 1 || msgs[0].Text != "are you there?" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	stored, err := d.ChatSvc.History(ctx, "v_carol")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("failed write must not store rows, got %+v", stored)
	}
}

func TestChatWidget_AppliesStatusUpdates(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	w := NewChatWidget(d, "v_fay", nil, fastTiming)
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	w.Draft.Set("Hello")
	m, err := w.Send(ctx)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	w.Wait()
	waitFor(t, "auto-reply", func() bool { return len(w.Messages()) == 2 })

	if _, err := d.ChatSvc.UpdateStatus(ctx, m.ID, domain.DeliverySeen); err != nil {
		t.Fatalf("update status: %v", err)
	}
	waitFor(t, "status update", func() bool {
		for _, got := range w.Messages() {
			if got.ID == m.ID {
				return got.Status == domain.DeliverySeen
			}
		}
		return false
	})
	msgs := w.Messages()
	if len(msgs) != 2 || msgs[0].ID != m.ID || msgs[0].Text != "Hello" {
		t.Fatalf("update must replace in place: %+v", msgs)
	}
}

func TestChatWidget_AutoReplyLandsAfterClose(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	w := NewChatWidget(d, "v_gus", nil, config.WidgetConfig{
		NotifyTTL:   time.Minute,
		TypingDelay: 30 * time.Millisecond,
		ReplyDelay:  30 * time.Millisecond,
	})
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}

	w.Draft.Set("anyone?")
	if _, err := w.Send(ctx); err != nil {
		t.Fatalf("send: %v", err)
	}
	w.Close()
	w.Wait()

	stored, err := d.ChatSvc.History(ctx, "v_gus")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(stored) != 2 || stored[1].Text != AutoReplyText || stored[1].IsUser {
		t.Fatalf("auto-reply not stored after close: %+v", stored)
	}
}

func TestChatWidget_IgnoresOtherConversations(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	w := NewChatWidget(d, "v_dave", nil, fastTiming)
	if err := w.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	if _, err := d.ChatSvc.Send(ctx, "v_erin", "", "not for dave", true); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := d.ChatSvc.Send(ctx, "v_dave", "", "hi dave", false); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, "operator message", func() bool { return len(w.Messages()) == 1 })
	if got := w.Messages()[0].Text; got != "hi dave" {
		t.Fatalf("unexpected message %q", got)
	}
}

// ---------- admin console ----------

func TestAdminConsole_InboxBannersAndReply(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	if _, err := d.VisitorSvc.Upsert(ctx, "v_frank", "Frank"); err != nil {
		t.Fatalf("upsert visitor: %v", err)
	}

	a := NewAdminConsole(d, "v_admin", notify.NewBanner(time.Minute))
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Stop()

	long := strings.Repeat("x", 40)
	if _, err := d.ChatSvc.Send(ctx, "v_frank", "", long, true); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, "inbox refresh", func() bool { return len(a.Inbox()) == 1 })
	if p := a.Inbox()[0]; p.Name != "Frank" || p.LastMessage != long {
		t.Fatalf("unexpected preview: %+v", p)
	}
	waitFor(t, "message banner", func() bool { return activeTitle(a.Banner()) == NewMessageTitle })
	ev, _ := a.Banner().Active()
	if want := `Visitor says: "` + strings.Repeat("x", 30) + `..."`; ev.Message != want {
		t.Fatalf("banner message = %q, want %q", ev.Message, want)
	}

	// the operator's own visitor id never raises a banner
	a.Banner().Hide()
	if _, err := d.ChatSvc.Send(ctx, "v_admin", "", "testing", true); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, "inbox refresh", func() bool { return len(a.Inbox()) == 2 })
	if _, ok := a.Banner().Active(); ok {
		t.Fatalf("own message should not raise a banner")
	}

	if _, err := a.OpenConversation(ctx, "v_frank"); err != nil {
		t.Fatalf("open conversation: %v", err)
	}
	a.Reply.Set("hi Frank")
	m, err := a.SendReply(ctx)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if m.IsUser || m.VisitorID != "v_frank" {
		t.Fatalf("unexpected reply: %+v", m)
	}
	waitFor(t, "conversation", func() bool { return len(a.Conversation("v_frank")) == 2 })
	time.Sleep(20 * time.Millisecond)
	if n := len(a.Conversation("v_frank")); n != 2 {
		t.Fatalf("reply duplicated: %d messages", n)
	}
	if n := len(a.Conversation("v_admin")); n != 0 {
		t.Fatalf("conversation leaked into another partition")
	}
}

func TestAdminConsole_ReplyWithoutConversation(t *testing.T) {
	d, _ := newDirect(t)
	a := NewAdminConsole(d, "", nil)
	a.Reply.Set("hello")
	if _, err := a.SendReply(context.Background()); !errors.Is(err, ErrNoConversation) {
		t.Fatalf("want ErrNoConversation, got %v", err)
	}
}

func TestAdminConsole_ConversationSwitchKeepsStoresApart(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()
	for _, v := range []string{"v_g", "v_h"} {
		if _, err := d.ChatSvc.Send(ctx, v, "", "from "+v, true); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	a := NewAdminConsole(d, "", nil)
	g, err := a.OpenConversation(ctx, "v_g")
	if err != nil || len(g) != 1 {
		t.Fatalf("open v_g: %v %+v", err, g)
	}
	h, err := a.OpenConversation(ctx, "v_h")
	if err != nil || len(h) != 1 || h[0].Text != "from v_h" {
		t.Fatalf("open v_h: %v %+v", err, h)
	}
	if a.Selected() != "v_h" {
		t.Fatalf("selected = %q", a.Selected())
	}
	if got := a.Conversation("v_g"); len(got) != 1 || got[0].Text != "from v_g" {
		t.Fatalf("v_g store changed: %+v", got)
	}
	a.Stop()
}

func TestAdminConsole_OrdersAndAssign(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	a := NewAdminConsole(d, "", notify.NewBanner(time.Minute))
	if err := a.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.Stop()

	desk := NewOrderDesk(d, "v_ivy")
	o, err := desk.PlaceOrder(ctx, services.OrderInput{
		PackageName: "Starter", Price: "৳99,000", CustomerName: "Ivy", CustomerContact: "+880100",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if o.Status != domain.OrderPending || o.AssignedRepIndex != nil {
		t.Fatalf("new order should be pending and unassigned: %+v", o)
	}
	before, err := d.OrderSvc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	waitFor(t, "orders refresh", func() bool { return len(a.Orders()) == 1 })
	waitFor(t, "order banner", func() bool { return activeTitle(a.Banner()) == NewOrderTitle })
	ev, _ := a.Banner().Active()
	if ev.Message != "Starter purchased by Ivy" {
		t.Fatalf("banner message = %q", ev.Message)
	}

	assigned, err := a.Assign(ctx, o.ID, 2)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.OrderAssigned || assigned.AssignedRepIndex == nil || *assigned.AssignedRepIndex != 2 {
		t.Fatalf("unexpected order: %+v", assigned)
	}
	if got := a.Orders()[0]; got.Status != domain.OrderAssigned {
		t.Fatalf("local list not updated: %+v", got)
	}

	after, err := d.OrderSvc.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get after assign: %v", err)
	}
	if after.PackageName != before.PackageName || after.Price != before.Price ||
		after.CustomerName != before.CustomerName || after.CustomerContact != before.CustomerContact ||
		after.Date != before.Date || after.VisitorID != before.VisitorID ||
		!after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("assign changed more than status and rep:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestAdminConsole_ConversationAppliesStatusUpdates(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	a := NewAdminConsole(d, "", notify.NewBanner(time.Minute))
	m, err := d.ChatSvc.Send(ctx, "v_hal", "", "ping", true)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := a.OpenConversation(ctx, "v_hal"); err != nil {
		t.Fatalf("open conversation: %v", err)
	}
	defer a.Stop()

	if _, err := d.ChatSvc.UpdateStatus(ctx, m.ID, domain.DeliveryDelivered); err != nil {
		t.Fatalf("update status: %v", err)
	}
	waitFor(t, "status update", func() bool {
		msgs := a.Conversation("v_hal")
		return len(msgs) == 1 && msgs[0].Status == domain.DeliveryDelivered
	})
}

// ---------- order desk / reviews / visitor ----------

func TestOrderDesk_PlaceAndFollowStatus(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	desk := NewOrderDesk(d, "v_jack")
	if err := desk.Open(ctx); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer desk.Close()

	if _, ok := desk.Current(); ok {
		t.Fatalf("expected no current order")
	}
	first, err := desk.PlaceOrder(ctx, services.OrderInput{
		PackageName: "Starter", Price: "1", CustomerName: "Jack", CustomerContact: "x",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := desk.PlaceOrder(ctx, services.OrderInput{
		PackageName: "Visionary", Price: "2", CustomerName: "Jack", CustomerContact: "x",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if cur, _ := desk.Current(); cur.ID != second.ID {
		t.Fatalf("current = %s, want %s", cur.ID, second.ID)
	}

	if _, err := d.OrderSvc.Complete(ctx, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	waitFor(t, "status update", func() bool {
		for _, o := range desk.Orders() {
			if o.ID == first.ID {
				return o.Status == domain.OrderCompleted
			}
		}
		return false
	})
	if n := len(desk.Orders()); n != 2 {
		t.Fatalf("expected 2 orders, got %d", n)
	}
}

func TestReviewBoard_PostAndFollow(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	board := NewReviewBoard(d, "v_kim", 0)
	if err := board.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer board.Close()

	if _, err := board.Post(ctx, "", 0); !errors.Is(err, services.ErrInvalidRating) {
		t.Fatalf("want ErrInvalidRating, got %v", err)
	}

	board.Comment.Set("great work")
	rv, err := board.Post(ctx, "", 5)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if rv.Name != services.AnonymousName || rv.Comment != "great work" {
		t.Fatalf("unexpected review: %+v", rv)
	}
	if board.Comment.Value() != "" {
		t.Fatalf("comment should be cleared")
	}

	time.Sleep(2 * time.Millisecond)
	if _, err := d.ReviewSvc.Post(ctx, "v_lee", services.ReviewInput{Name: "Lee", Rating: 4}); err != nil {
		t.Fatalf("post: %v", err)
	}
	waitFor(t, "feed insert", func() bool { return len(board.Reviews()) == 2 })
	if got := board.Reviews()[0].Name; got != "Lee" {
		t.Fatalf("newest first expected, got %q", got)
	}
}

func TestVisitor_NameAndVisitOncePerSession(t *testing.T) {
	d, _ := newDirect(t)
	ctx := context.Background()

	v := NewVisitor(d, identity.New(identity.NewCacheKV("")))
	id := v.ID()
	if !strings.HasPrefix(id, "v_") || v.ID() != id {
		t.Fatalf("unstable visitor id %q", id)
	}

	if err := v.SetName(ctx, "Mina"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if n, ok := v.Name(); !ok || n != "Mina" {
		t.Fatalf("local name = %q %v", n, ok)
	}
	if n, err := d.VisitorSvc.Name(ctx, id); err != nil || n != "Mina" {
		t.Fatalf("backend name = %q %v", n, err)
	}

	st, counted, err := v.TrackVisit(ctx)
	if err != nil || !counted || st.TotalVisits != 1 {
		t.Fatalf("first visit: %+v %v %v", st, counted, err)
	}
	if _, counted, _ := v.TrackVisit(ctx); counted {
		t.Fatalf("second visit in the same session should not count")
	}
}
