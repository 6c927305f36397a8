package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/http/middleware"
	"github.com/xevon/studio-backend/internal/push"
	"github.com/xevon/studio-backend/internal/repo"
	"github.com/xevon/studio-backend/internal/services"
)

const testAdminKey = "letmein"

// ---------- test DB + harness ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type stubPusher struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (p *stubPusher) NotifyAdmin(_ context.Context, title, body string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, title+"|"+body)
	return p.err
}

type harness struct {
	db     *gorm.DB
	r      *gin.Engine
	broker *feed.Broker
	pusher *stubPusher
	auth   *services.AdminAuth
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	broker := feed.NewBroker(feed.DefaultBuffer)
	t.Cleanup(broker.Close)

	idem := services.NewIdempotencyService(db, time.Hour)
	auth := services.NewAdminAuth(testAdminKey, "", time.Hour)
	pusher := &stubPusher{}

	h := New(Services{
		Chat:        services.NewChatService(db, broker, nil),
		Orders:      services.NewOrderService(db, broker, nil),
		Reviews:     services.NewReviewService(db, broker),
		Visitors:    services.NewVisitorService(db, broker),
		Content:     services.NewContentService(db, broker),
		Stats:       services.NewStatsService(db, broker),
		Admin:       auth,
		Idempotency: idem,
		Devices:     &push.Registrar{Tokens: push.ContentTokenStore{DB: db}},
		Push:        pusher,
		Broker:      broker,
	})

	r := gin.New()
	r.Use(middleware.VisitorID())
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{Scope: IdempotencyScope},
		func(ctx context.Context, visitorID, scope, key string) (bool, error) {
			_, found, err := idem.Lookup(ctx, visitorID, scope, key)
			return found, err
		},
	))

	r.GET("/chat/messages", h.ListMessages)
	r.POST("/chat/messages", h.SendMessage)
	r.PATCH("/chat/messages/:id/status", h.UpdateMessageStatus)
	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders/mine", h.MyOrders)
	r.GET("/reviews", h.ListReviews)
	r.POST("/reviews", h.PostReview)
	r.PUT("/visitors/me", h.SetVisitorName)
	r.GET("/visitors/me", h.GetVisitor)
	r.GET("/content/:section", h.GetContent)
	r.POST("/stats/visits", h.TrackVisit)
	r.GET("/stats", h.GetStats)
	r.GET("/feed", h.Feed)
	r.POST("/admin/login", h.AdminLogin)

	admin := r.Group("/admin", middleware.AdminSession(auth.Verify))
	admin.GET("/inbox", h.Inbox)
	admin.GET("/chats/:visitor_id/messages", h.AdminConversation)
	admin.POST("/chats/:visitor_id/messages", h.AdminReply)
	admin.GET("/orders", h.ListOrders)
	admin.GET("/orders/stats", h.OrderStats)
	admin.PUT("/orders/:id/assign", h.AssignOrder)
	admin.PUT("/orders/:id/complete", h.CompleteOrder)
	admin.PUT("/content/:section", h.SaveContent)
	admin.DELETE("/content", h.ResetContent)
	admin.POST("/devices", h.RegisterDevice)
	admin.POST("/notifications/test", h.TestNotification)

	return &harness{db: db, r: r, broker: broker, pusher: pusher, auth: auth}
}

type reqOpt func(*http.Request)

func withVisitor(id string) reqOpt {
	return func(r *http.Request) { r.Header.Set(middleware.HeaderVisitorID, id) }
}

func withKey(key string) reqOpt {
	return func(r *http.Request) { r.Header.Set(middleware.HeaderIdempotencyKey, key) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (h *harness) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func (h *harness) token(t *testing.T) reqOpt {
	t.Helper()
	tok, _, err := h.auth.Login(testAdminKey)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return withHeader("Authorization", "Bearer "+tok)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[ErrorResponse](t, w).Code
}

// ---------- helper tests ----------

func Test_clampPagination_and_newPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query          string
		page, pageSize int
	}{
		{"", 1, 20},
		{"?page=0&page_size=0", 1, 1},
		{"?page=3&page_size=500", 3, 100},
		{"?page=x&page_size=y", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
		p, ps := clampPagination(c)
		if p != tc.page || ps != tc.pageSize {
			t.Fatalf("%q: got (%d,%d) want (%d,%d)", tc.query, p, ps, tc.page, tc.pageSize)
		}
	}

	pg := newPagination(2, 10, 25)
	if pg.TotalPages != 3 || !pg.HasNext {
		t.Fatalf("pagination: %+v", pg)
	}
	if last := newPagination(3, 10, 25); last.HasNext {
		t.Fatalf("last page must not have next: %+v", last)
	}
	if empty := newPagination(1, 20, 0); empty.TotalPages != 0 || empty.HasNext {
		t.Fatalf("empty: %+v", empty)
	}
}

func Test_failService_Mapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrMissingVisitor, http.StatusBadRequest, ErrCodeMissingVisitor},
		{fmt.Errorf("wrap: %w", services.ErrInvalidRating), http.StatusBadRequest, ErrCodeValidation},
		{services.ErrOrderNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrReservedSection, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrInvalidTransition, http.StatusConflict, ErrCodeInvalidTransition},
		{services.ErrIDConflict, http.StatusConflict, ErrCodeConflict},
		{services.ErrAdminDisabled, http.StatusServiceUnavailable, ErrCodeAdminDisabled},
		{services.ErrInvalidAdminKey, http.StatusUnauthorized, ErrCodeUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		failService(c, tc.err)
		if w.Code != tc.status {
			t.Fatalf("%v: status %d want %d", tc.err, w.Code, tc.status)
		}
		if got := errCode(t, w); got != tc.code {
			t.Fatalf("%v: code %q want %q", tc.err, got, tc.code)
		}
	}
}

func TestIdempotencyScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var got string
	capture := func(c *gin.Context) { got = IdempotencyScope(c) }
	r.POST("/api/v1/chat/messages", capture)
	r.POST("/api/v1/orders", capture)
	r.POST("/api/v1/reviews", capture)
	r.GET("/api/v1/orders/mine", capture)
	r.POST("/api/v1/admin/chats/:visitor_id/messages", capture)

	cases := []struct{ method, path, want string }{
		{http.MethodPost, "/api/v1/chat/messages", services.ScopeChat},
		{http.MethodPost, "/api/v1/orders", services.ScopeOrders},
		{http.MethodPost, "/api/v1/reviews", services.ScopeReviews},
		{http.MethodGet, "/api/v1/orders/mine", ""},
		{http.MethodPost, "/api/v1/admin/chats/v1/messages", ""},
	}
	for _, tc := range cases {
		got = "unset"
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, nil))
		if got != tc.want {
			t.Fatalf("%s %s: scope %q want %q", tc.method, tc.path, got, tc.want)
		}
	}
}
