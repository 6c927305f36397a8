package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/http/middleware"
	"github.com/xevon/studio-backend/internal/services"
	"github.com/xevon/studio-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ChatService is the live-chat surface consumed by the handlers.
type ChatService interface {
	Send(ctx context.Context, visitorID, id, text string, fromVisitor bool) (*domain.ChatMessage, error)
	History(ctx context.Context, visitorID string) ([]domain.ChatMessage, error)
	Get(ctx context.Context, id string) (*domain.ChatMessage, error)
	UpdateStatus(ctx context.Context, id string, status domain.DeliveryStatus) (*domain.ChatMessage, error)
	Inbox(ctx context.Context) ([]domain.InboxPreview, error)
	Version(ctx context.Context, visitorID string) (string, error)
}

// OrderService is the order lifecycle consumed by the handlers.
type OrderService interface {
	Place(ctx context.Context, visitorID string, in services.OrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Assign(ctx context.Context, id string, repIndex int) (*domain.Order, error)
	Complete(ctx context.Context, id string) (*domain.Order, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error)
	ListForVisitor(ctx context.Context, visitorID string) ([]domain.Order, error)
	Stats(ctx context.Context) (services.OrderStats, error)
	Version(ctx context.Context) (string, error)
}

// ReviewService posts and lists public reviews.
type ReviewService interface {
	Post(ctx context.Context, visitorID string, in services.ReviewInput) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, limit int) ([]domain.Review, error)
}

// VisitorService stores visitor display names.
type VisitorService interface {
	Upsert(ctx context.Context, visitorID, name string) (*domain.Visitor, error)
	Name(ctx context.Context, visitorID string) (string, error)
}

// ContentService reads and edits the site content document.
type ContentService interface {
	Get(ctx context.Context, section string) (json.RawMessage, error)
	Save(ctx context.Context, section string, data json.RawMessage) (json.RawMessage, error)
	Reset(ctx context.Context) (json.RawMessage, error)
}

// StatsService counts site visits.
type StatsService interface {
	TrackVisit(ctx context.Context) (domain.SiteStats, error)
	Stats(ctx context.Context) (domain.SiteStats, error)
}

// AdminGate issues and checks admin console sessions.
type AdminGate interface {
	Enabled() bool
	Login(key string) (string, time.Time, error)
	Verify(token string) error
}

// IdempotencyStore remembers which resource a keyed write produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, visitorID, scope, key string) (string, bool, error)
	Remember(ctx context.Context, visitorID, scope, key, resourceID string, status int) error
}

// DeviceRegistrar stores the admin device push token.
type DeviceRegistrar interface {
	Register(ctx context.Context, token string) (string, error)
}

// AdminPusher sends a push notification to the admin device.
type AdminPusher interface {
	NotifyAdmin(ctx context.Context, title, body string) error
}

//
// Handler wiring
//

// Services bundles the handler dependencies.
type Services struct {
	Chat        ChatService
	Orders      OrderService
	Reviews     ReviewService
	Visitors    VisitorService
	Content     ContentService
	Stats       StatsService
	Admin       AdminGate
	Idempotency IdempotencyStore
	Devices     DeviceRegistrar
	Push        AdminPusher
	Broker      *feed.Broker
}

// Handlers groups the HTTP endpoints of the studio API.
type Handlers struct {
	chat     ChatService
	orders   OrderService
	reviews  ReviewService
	visitors VisitorService
	content  ContentService
	stats    StatsService
	admin    AdminGate
	idem     IdempotencyStore
	devices  DeviceRegistrar
	push     AdminPusher
	broker   *feed.Broker
	upgrader websocket.Upgrader
}

// New constructs Handlers bound to s.
func New(s Services) *Handlers {
	return &Handlers{
		chat:     s.Chat,
		orders:   s.Orders,
		reviews:  s.Reviews,
		visitors: s.Visitors,
		content:  s.Content,
		stats:    s.Stats,
		admin:    s.Admin,
		idem:     s.Idempotency,
		devices:  s.Devices,
		push:     s.Push,
		broker:   s.Broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// the feed carries no credentials; CORS policy is enforced upstream
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

//
// Helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// requireVisitor returns the caller's visitor id or writes a 400.
func requireVisitor(c *gin.Context) (string, bool) {
	id := middleware.VisitorFrom(c)
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeMissingVisitor, "X-Visitor-ID header required")
		return "", false
	}
	return id, true
}

// replay serves the resource an earlier request with the same
// Idempotency-Key produced. It reports whether a response was written.
func (h *Handlers) replay(c *gin.Context, visitorID, scope string, load func(ctx context.Context, id string) (any, error)) bool {
	if h.idem == nil || !middleware.IsReplay(c) {
		return false
	}
	key, _ := middleware.GetIdempotencyKey(c)
	ctx := c.Request.Context()
	id, found, err := h.idem.Lookup(ctx, visitorID, scope, key)
	if err != nil || !found {
		return false
	}
	prev, err := load(ctx, id)
	if err != nil {
		return false
	}
	c.Header("Idempotency-Replayed", "true")
	ok(c, http.StatusOK, prev)
	return true
}

// remember records a keyed write. Failures only cost the replay shortcut;
// client-chosen ids still make the retry safe.
func (h *Handlers) remember(c *gin.Context, visitorID, scope, resourceID string) {
	key, has := middleware.GetIdempotencyKey(c)
	if h.idem == nil || !has {
		return
	}
	if err := h.idem.Remember(c.Request.Context(), visitorID, scope, key, resourceID, http.StatusCreated); err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Err(err).Str("scope", scope).Msg("idempotency record not stored")
	}
}

// IdempotencyScope names the replayable write a request belongs to, or ""
// for requests the idempotency lookup should skip.
func IdempotencyScope(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	p := c.FullPath()
	switch {
	case strings.HasSuffix(p, "/chat/messages"):
		return services.ScopeChat
	case strings.HasSuffix(p, "/orders"):
		if strings.Contains(p, "/admin/") {
			return ""
		}
		return services.ScopeOrders
	case strings.HasSuffix(p, "/reviews"):
		return services.ScopeReviews
	}
	return ""
}
