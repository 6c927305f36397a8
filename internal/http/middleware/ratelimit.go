package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Request classes. Writes (chat messages, orders, reviews, content saves)
// get their own, usually tighter, bucket so a visitor polling the feed or
// the order list never starves their own submissions.
const (
	classRead  = "read"
	classWrite = "write"
)

// RateLimits is the token-bucket policy for both request classes.
type RateLimits struct {
	ReadRPS    float64
	ReadBurst  int
	WriteRPS   float64
	WriteBurst int
	// IdleTTL is how long an unused bucket is kept. Zero means 10 minutes.
	IdleTTL time.Duration
}

// keyFunc selects the identity a request is limited under.
type keyFunc func(*gin.Context) string

// KeyByVisitorOrIP keys on the visitor id when VisitorID ran, else the
// client IP. The prefixes keep the two namespaces apart.
func KeyByVisitorOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := VisitorFrom(c); id != "" {
			return "visitor:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimiter holds one limiter per (class, identity). Buckets live in a
// go-cache whose janitor drops the idle ones. Safe for concurrent use.
type RateLimiter struct {
	limits  RateLimits
	keyFn   keyFunc
	buckets *cache.Cache
}

// NewRateLimiter builds a limiter for limits. Bursts below 1 are raised to 1.
func NewRateLimiter(limits RateLimits, keyFn keyFunc) *RateLimiter {
	if limits.ReadBurst < 1 {
		limits.ReadBurst = 1
	}
	if limits.WriteBurst < 1 {
		limits.WriteBurst = 1
	}
	if limits.IdleTTL <= 0 {
		limits.IdleTTL = 10 * time.Minute
	}
	buckets := cache.New(limits.IdleTTL, limits.IdleTTL/2)
	buckets.OnEvicted(func(string, interface{}) { rateBucketsEvicted.Inc() })
	return &RateLimiter{limits: limits, keyFn: keyFn, buckets: buckets}
}

func requestClass(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return classRead
	default:
		return classWrite
	}
}

// bucketFor returns the limiter for class and key, creating it on first
// use. Every hit pushes the bucket's expiry out by IdleTTL.
func (rl *RateLimiter) bucketFor(class, key string) *rate.Limiter {
	id := class + "|" + key
	if v, ok := rl.buckets.Get(id); ok {
		lim := v.(*rate.Limiter)
		rl.buckets.SetDefault(id, lim)
		return lim
	}

	rps, burst := rl.limits.ReadRPS, rl.limits.ReadBurst
	if class == classWrite {
		rps, burst = rl.limits.WriteRPS, rl.limits.WriteBurst
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	if err := rl.buckets.Add(id, lim, cache.DefaultExpiration); err != nil {
		// lost the race to a concurrent request for the same identity
		if v, ok := rl.buckets.Get(id); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// retryAfter is the whole number of seconds until lim grants a token,
// at least 1.
func retryAfter(lim *rate.Limiter) int {
	r := lim.Reserve()
	if !r.OK() {
		return 1
	}
	d := r.Delay()
	r.Cancel()
	return max(1, int(math.Ceil(d.Seconds())))
}

// IsRateBypass reports whether IdempotencyValidator flagged the request as
// a replay, which the limiter lets through without spending a token.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the limits. A rejected request gets 429, a Retry-After
// computed from the bucket's refill rate and the standard error envelope
// with code "rate_limited".
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		class := requestClass(c.Request.Method)
		lim := rl.bucketFor(class, rl.keyFn(c))
		if lim.Allow() {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(routeLabel(c)).Inc()
		LoggerFrom(c).Debug().Str("class", class).Msg("rate limited")
		c.Header("Retry-After", strconv.Itoa(retryAfter(lim)))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "too many requests; slow down",
		})
	}
}
