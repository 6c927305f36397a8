// Package httpapi assembles the Gin engine: the middleware chain, the
// public visitor API, the bearer-gated admin API and the change feed, all
// mounted under the configured base path.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/xevon/studio-backend/internal/config"
	"github.com/xevon/studio-backend/internal/feed"
	"github.com/xevon/studio-backend/internal/http/handlers"
	"github.com/xevon/studio-backend/internal/http/middleware"
	"github.com/xevon/studio-backend/internal/push"
	"github.com/xevon/studio-backend/internal/services"
)

// Deps carries the long-lived collaborators the routes are built on.
type Deps struct {
	DB     *gorm.DB
	Broker *feed.Broker
	// Push delivers admin notifications. Nil disables push (tests).
	Push *push.Notifier
}

// adminPush adapts an optional Notifier to both notifier roles.
type adminPush struct{ n *push.Notifier }

func (p adminPush) Dispatch(title, body string) {
	if p.n != nil {
		p.n.Dispatch(title, body)
	}
}

func (p adminPush) NotifyAdmin(ctx context.Context, title, body string) error {
	if p.n == nil {
		return push.ErrNoToken
	}
	return p.n.NotifyAdmin(ctx, title, body)
}

// RegisterRoutes installs the middleware chain and every route on r and
// returns the handlers it built.
//
// The chain runs tracing, request id, access log, recovery, body cap,
// metrics, visitor id, idempotency, rate limit, CORS, security headers and
// gzip, in that order. Idempotency sits before the limiter so a replayed
// write is never rejected with 429.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) *handlers.Handlers {
	r.HandleMethodNotAllowed = true
	db := deps.DB

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskQueryParams: []string{"value"},
		SkipPaths:       []string{"/health", "/metrics"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Visitor partition
	r.Use(middleware.VisitorID())

	// 8) Idempotency validation (before rate limiting)
	idem := services.NewIdempotencyService(db, cfg.IdempotencyTTL)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{Scope: handlers.IdempotencyScope},
		func(ctx context.Context, visitorID, scope, key string) (bool, error) {
			_, found, err := idem.Lookup(ctx, visitorID, scope, key)
			return found, err
		},
	))

	// 9) Token buckets per visitor/IP, reads and writes apart
	rl := middleware.NewRateLimiter(middleware.RateLimits{
		ReadRPS:    cfg.Rate.RPS,
		ReadBurst:  cfg.Rate.Burst,
		WriteRPS:   cfg.Rate.WriteRPS,
		WriteBurst: cfg.Rate.WriteBurst,
	}, middleware.KeyByVisitorOrIP())
	r.Use(rl.Handler())

	// 10) CORS: allow-all unless origins are configured
	r.Use(corsChain(cfg.CORS.AllowedOrigins)...)

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		EnablePolicy:    true,
		NoStorePrefixes: []string{joinPath(cfg.APIBasePath, "/admin")},
		DocsPrefixes:    []string{"/swagger"},
	}))

	// Compression; the feed hijacks the connection and must stay raw
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`/feed$`, `^/metrics$`}),
	))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/broker/push
	notifier := adminPush{n: deps.Push}
	auth := services.NewAdminAuth(cfg.Admin.Key, cfg.Admin.JWTKey, cfg.Admin.TokenTTL)
	h := handlers.New(handlers.Services{
		Chat:        services.NewChatService(db, deps.Broker, notifier),
		Orders:      services.NewOrderService(db, deps.Broker, notifier),
		Reviews:     services.NewReviewService(db, deps.Broker),
		Visitors:    services.NewVisitorService(db, deps.Broker),
		Content:     services.NewContentService(db, deps.Broker),
		Stats:       services.NewStatsService(db, deps.Broker),
		Admin:       auth,
		Idempotency: idem,
		Devices:     &push.Registrar{Tokens: push.ContentTokenStore{DB: db}},
		Push:        notifier,
		Broker:      deps.Broker,
	})

	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api/v1"
	{
		// Live chat
		api.GET("/chat/messages", h.ListMessages)
		api.POST("/chat/messages", h.SendMessage)
		api.PATCH("/chat/messages/:id/status", h.UpdateMessageStatus)

		// Orders
		api.POST("/orders", h.PlaceOrder)
		api.GET("/orders/mine", h.MyOrders)

		// Reviews
		api.GET("/reviews", h.ListReviews)
		api.POST("/reviews", h.PostReview)

		// Visitors
		api.PUT("/visitors/me", h.SetVisitorName)
		api.GET("/visitors/me", h.GetVisitor)

		// Content and stats
		api.GET("/content/:section", h.GetContent)
		api.POST("/stats/visits", h.TrackVisit)
		api.GET("/stats", h.GetStats)

		// Change feed
		api.GET("/feed", h.Feed)

		api.POST("/admin/login", h.AdminLogin)
	}

	admin := api.Group("/admin", middleware.AdminSession(auth.Verify))
	{
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
	}
	return h
}

// corsChain builds the CORS middleware. With no allowlist every origin is
// accepted and ACAO is set even on requests without Origin, so plain probes
// see it too. With an allowlist, matching origins are echoed back.
func corsChain(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderVisitorID, middleware.HeaderIdempotencyKey, "If-None-Match",
		},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func joinPath(prefix, p string) string {
	return strings.TrimSuffix(prefix, "/") + p
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
