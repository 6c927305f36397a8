package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/domain"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/services"
)

// ErrNotLoggedIn is returned by admin calls made before Login.
var ErrNotLoggedIn = errors.New("client: admin session required")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status    int    `json:"-"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %d %s: %s", e.Status, e.Code, e.Message)
}

// Remote is a Backend reached over the public HTTP API. The feed is read
// over WebSocket; a dropped connection ends the subscription and is not
// retried.
type Remote struct {
	http    *resty.Client
	base    string
	dialer  *websocket.Dialer
	pageMax int

	mu    sync.RWMutex
	token string
}

var _ Backend = (*Remote)(nil)

// NewRemote returns a client for the API rooted at baseURL, for example
// "http://localhost:8080/api/v1".
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	base := strings.TrimRight(baseURL, "/")
	return &Remote{
		http: resty.New().
			SetBaseURL(base).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		base:    base,
		dialer:  websocket.DefaultDialer,
		pageMax: 100,
	}
}

// Login exchanges the admin key for a session token used by admin calls.
func (r *Remote) Login(ctx context.Context, key string) (time.Time, error) {
	var out struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := r.do(ctx, r.http.R().SetBody(map[string]string{"key": key}).SetResult(&out), http.MethodPost, "/admin/login"); err != nil {
		return time.Time{}, err
	}
	r.mu.Lock()
	r.token = out.Token
	r.mu.Unlock()
	return out.ExpiresAt, nil
}

func (r *Remote) ChatHistory(ctx context.Context, visitorID string) ([]domain.ChatMessage, error) {
	var out struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	err := r.do(ctx, r.visitor(visitorID).SetResult(&out), http.MethodGet, "/chat/messages")
	return out.Messages, err
}

// SendChat posts visitor messages as the visitor and operator replies as
// the admin. The record id doubles as the Idempotency-Key.
func (r *Remote) SendChat(ctx context.Context, m domain.ChatMessage) (domain.ChatMessage, error) {
	body := map[string]string{"id": m.ID, "text": m.Text}
	var out domain.ChatMessage
	if m.IsUser {
		req := r.visitor(m.VisitorID).SetBody(body).SetResult(&out)
		if m.ID != "" {
			req.SetHeader("Idempotency-Key", m.ID)
		}
		return out, r.do(ctx, req, http.MethodPost, "/chat/messages")
	}
	req, err := r.admin()
	if err != nil {
		return out, err
	}
	req.SetBody(body).SetResult(&out).SetPathParam("visitor", m.VisitorID)
	return out, r.do(ctx, req, http.MethodPost, "/admin/chats/{visitor}/messages")
}

func (r *Remote) Inbox(ctx context.Context) ([]domain.InboxPreview, error) {
	req, err := r.admin()
	if err != nil {
		return nil, err
	}
	var out struct {
		Inbox []domain.InboxPreview `json:"inbox"`
	}
	err = r.do(ctx, req.SetResult(&out), http.MethodGet, "/admin/inbox")
	return out.Inbox, err
}

func (r *Remote) PlaceOrder(ctx context.Context, visitorID string, in services.OrderInput) (domain.Order, error) {
	var out domain.Order
	req := r.visitor(visitorID).
		SetBody(map[string]string{
			"id":               in.ID,
			"package_name":     in.PackageName,
			"price":            in.Price,
			"customer_name":    in.CustomerName,
			"customer_contact": in.CustomerContact,
			"date":             in.Date,
		}).
		SetResult(&out)
	if in.ID != "" {
		req.SetHeader("Idempotency-Key", in.ID)
	}
	return out, r.do(ctx, req, http.MethodPost, "/orders")
}

// Orders walks every page of the admin order list.
func (r *Remote) Orders(ctx context.Context) ([]domain.Order, error) {
	var all []domain.Order
	for page := 1; ; page++ {
		req, err := r.admin()
		if err != nil {
			return nil, err
		}
		var out struct {
			Orders     []domain.Order `json:"orders"`
			Pagination struct {
				HasNext bool `json:"has_next"`
			} `json:"pagination"`
		}
		req.SetQueryParams(map[string]string{
			"page":      strconv.Itoa(page),
			"page_size": strconv.Itoa(r.pageMax),
		}).SetResult(&out)
		if err := r.do(ctx, req, http.MethodGet, "/admin/orders"); err != nil {
			return nil, err
		}
		all = append(all, out.Orders...)
		if !out.Pagination.HasNext {
			return all, nil
		}
	}
}

func (r *Remote) MyOrders(ctx context.Context, visitorID string) ([]domain.Order, error) {
	var out struct {
		Orders []domain.Order `json:"orders"`
	}
	err := r.do(ctx, r.visitor(visitorID).SetResult(&out), http.MethodGet, "/orders/mine")
	return out.Orders, err
}

func (r *Remote) AssignOrder(ctx context.Context, id string, repIndex int) (domain.Order, error) {
	var out domain.Order
	req, err := r.admin()
	if err != nil {
		return out, err
	}
	req.SetPathParam("id", id).SetBody(map[string]int{"rep_index": repIndex}).SetResult(&out)
	return out, r.do(ctx, req, http.MethodPut, "/admin/orders/{id}/assign")
}

func (r *Remote) PostReview(ctx context.Context, visitorID string, in services.ReviewInput) (domain.Review, error) {
	var out domain.Review
	req := r.visitor(visitorID).
		SetBody(map[string]any{"id": in.ID, "name": in.Name, "rating": in.Rating, "comment": in.Comment}).
		SetResult(&out)
	if in.ID != "" {
		req.SetHeader("Idempotency-Key", in.ID)
	}
	return out, r.do(ctx, req, http.MethodPost, "/reviews")
}

func (r *Remote) Reviews(ctx context.Context, limit int) ([]domain.Review, error) {
	var out struct {
		Reviews []domain.Review `json:"reviews"`
	}
	req := r.http.R().SetResult(&out)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	err := r.do(ctx, req, http.MethodGet, "/reviews")
	return out.Reviews, err
}

func (r *Remote) SetVisitorName(ctx context.Context, visitorID, name string) error {
	return r.do(ctx, r.visitor(visitorID).SetBody(map[string]string{"name": name}), http.MethodPut, "/visitors/me")
}

func (r *Remote) TrackVisit(ctx context.Context) (domain.SiteStats, error) {
	var out domain.SiteStats
	return out, r.do(ctx, r.http.R().SetResult(&out), http.MethodPost, "/stats/visits")
}

// Subscribe opens a WebSocket to /feed for topic. Events are handled in
// arrival order on one goroutine.
func (r *Remote) Subscribe(ctx context.Context, topic feed.Topic, h feed.Handler) (Subscription, error) {
	u, err := r.feedURL(topic)
	if err != nil {
		return nil, err
	}
	conn, resp, err := r.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("client: feed dial %s: %s: %w", topic.Table, resp.Status, err)
		}
		return nil, fmt.Errorf("client: feed dial %s: %w", topic.Table, err)
	}
	s := &remoteSub{conn: conn, done: make(chan struct{})}
	go s.read(topic, h)
	return s, nil
}

func (r *Remote) feedURL(topic feed.Topic) (string, error) {
	u, err := url.Parse(r.base + "/feed")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := url.Values{}
	q.Set("table", topic.Table)
	if len(topic.Types) == 1 {
		q.Set("event", string(topic.Types[0]))
	}
	if topic.Filter != nil {
		q.Set("column", topic.Filter.Column)
		q.Set("value", topic.Filter.Value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Remote) visitor(visitorID string) *resty.Request {
	return r.http.R().SetHeader("X-Visitor-ID", visitorID)
}

func (r *Remote) admin() (*resty.Request, error) {
	r.mu.RLock()
	tok := r.token
	r.mu.RUnlock()
	if tok == "" {
		return nil, ErrNotLoggedIn
	}
	return r.http.R().SetAuthToken(tok), nil
}

func (r *Remote) do(ctx context.Context, req *resty.Request, method, path string) error {
	var apiErr APIError
	resp, err := req.SetContext(ctx).SetError(&apiErr).Execute(method, path)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Code == "" {
			apiErr.Message = resp.String()
		}
		return &apiErr
	}
	return nil
}

type remoteSub struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

func (s *remoteSub) Done() <-chan struct{} { return s.done }

func (s *remoteSub) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = s.conn.Close()
	})
}

func (s *remoteSub) read(topic feed.Topic, h feed.Handler) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Warn().Err(err).Str("table", topic.Table).Msg("feed disconnected")
				s.Close()
			}
			return
		}
		var ev feed.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn().Err(err).Str("table", topic.Table).Msg("feed frame dropped")
			continue
		}
		h(ev)
	}
}
