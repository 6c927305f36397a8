package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries a client-chosen key for a write. A chat
// widget or order form retrying after a dropped response sends the same key
// and gets the record its first attempt produced.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultIdemMaxLen = 200
)

var idemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the key IdempotencyValidator accepted.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s, _ := c.Value(ctxKeyIdemKey).(string)
	return s, s != ""
}

// IsReplay reports whether the visitor already completed a write under this
// key and scope. Handlers serve the stored record instead of writing again.
func IsReplay(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyIdemReplay).(bool)
	return b
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Scope names the write a request belongs to. An empty scope skips the
	// lookup, so reads and unkeyed admin writes pass straight through.
	Scope func(*gin.Context) string
}

// IdempotencyLookup reports whether visitorID completed a write under
// (scope, key) that is still inside its retention window.
type IdempotencyLookup func(ctx context.Context, visitorID, scope, key string) (bool, error)

// IdempotencyValidator checks the Idempotency-Key header and flags replays.
// A malformed key is rejected with 400. A key that matches a completed write
// marks the request as a replay, which also exempts it from rate limiting.
// Lookup failures are logged and the request continues as a fresh write.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdemMaxLen
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !idemKeyPattern.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "Idempotency-Key must be 1-" + strconv.Itoa(maxLen) + " characters of [A-Za-z0-9._~-:]",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		var scope string
		if opts.Scope != nil {
			scope = opts.Scope(c)
		}
		if scope == "" || lookup == nil {
			c.Next()
			return
		}

		found, err := lookup(c.Request.Context(), VisitorFrom(c), scope, key)
		switch {
		case err != nil:
			LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
		case found:
			idemReplays.WithLabelValues(scope).Inc()
			c.Set(ctxKeyIdemReplay, true)
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	}
}
