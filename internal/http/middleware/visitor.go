package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderVisitorID carries the caller's visitor id. It selects the chat
// partition and owns orders and reviews; it is not a credential.
const HeaderVisitorID = "X-Visitor-ID"

const (
	ctxKeyVisitorID = "visitorID"
	ctxKeyAdmin     = "admin"
)

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// VisitorID validates the X-Visitor-ID header and stashes it in the Gin
// context. Requests without the header pass through; a malformed header is
// rejected with 400.
func VisitorID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderVisitorID))
		if id == "" {
			c.Next()
			return
		}
		if !visitorIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_visitor_id",
				"message": "invalid X-Visitor-ID",
			})
			return
		}
		c.Set(ctxKeyVisitorID, id)
		c.Next()
	}
}

// VisitorFrom returns the visitor id stored by VisitorID, or "".
func VisitorFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyVisitorID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// AdminSession requires a bearer token accepted by verify. It guards the
// admin console routes.
func AdminSession(verify func(token string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		tok, found := strings.CutPrefix(auth, "Bearer ")
		if !found || strings.TrimSpace(tok) == "" || verify(strings.TrimSpace(tok)) != nil {
			c.Header("WWW-Authenticate", `Bearer realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "admin session required",
			})
			return
		}
		c.Set(ctxKeyAdmin, true)
		c.Next()
	}
}

// IsAdmin reports whether AdminSession accepted the request.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyAdmin)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}
