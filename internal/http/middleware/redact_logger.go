// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger for the studio API.
// It scrubs obvious PII from request metadata, attaches a request-scoped
// zerolog.Logger for handlers, and emits one structured line per request.
//
// Checkout and login payloads carry customer contact details and the admin
// key, so bodies are never logged. Query strings and headers are scrubbed
// with pattern redaction; named query parameters and headers are masked
// outright.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskQueryParams: []string{"value"},
//	    SkipPaths:       []string{"/health", "/metrics"},
//	}))
package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	redactedValue = "[REDACTED]"
	// ctxKeyLogger holds the request-scoped *zerolog.Logger.
	ctxKeyLogger = "logger"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders lists extra header names whose values are replaced with
// "[REDACTED]". Matching is case-insensitive and merged with the built-in
// set (Authorization, Cookie, Set-Cookie, Idempotency-Key).
//
// MaskQueryParams lists query parameters whose values are replaced with
// "[REDACTED]" before pattern redaction runs on the rest of the query.
//
// SkipPaths lists exact request paths that only log when they fail
// (status >= 500). Health probes and metric scrapes go here.
type RedactOptions struct {
	MaskHeaders     []string
	MaskQueryParams []string
	SkipPaths       []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so hex runs inside ids never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// redactPII replaces ids, emails and phone numbers, in that order. The
// phone pattern is the loosest and must run last.
func redactPII(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

func lowerSet(base []string, extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(base)+len(extra))
	for _, group := range [][]string{base, extra} {
		for _, v := range group {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				set[v] = struct{}{}
			}
		}
	}
	return set
}

// scrubQuery masks the named parameters and pattern-redacts the rest. A
// query that does not parse falls back to pattern redaction of the raw text.
func scrubQuery(raw string, masked map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	if len(masked) > 0 {
		if vals, err := url.ParseQuery(raw); err == nil {
			keys := make([]string, 0, len(vals))
			for k := range vals {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				for _, v := range vals[k] {
					if _, ok := masked[strings.ToLower(k)]; ok {
						v = redactedValue
					} else {
						v = redactPII(v)
					}
					parts = append(parts, k+"="+v)
				}
			}
			raw = strings.Join(parts, "&")
			return truncate(raw, maxQueryLogLength)
		}
	}
	return truncate(redactPII(raw), maxQueryLogLength)
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed and stores a request-scoped logger (see
// LoggerFrom) for downstream handlers.
//
// Level follows outcome: error for 5xx or collected Gin errors, warn for
// 4xx, info otherwise. A 101 status marks a finished feed session and is
// logged with its full duration. Place it after RequestID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet(
		[]string{"authorization", "cookie", "set-cookie", strings.ToLower(HeaderIdempotencyKey)},
		opts.MaskHeaders,
	)
	maskQuery := lowerSet(nil, opts.MaskQueryParams)
	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqID := c.GetString(requestIDKey)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		scoped := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(ctxKeyLogger, &scoped)

		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[c.Request.URL.Path]; ok && status < http.StatusInternalServerError {
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				headers[k] = redactedValue
				continue
			}
			headers[k] = redactPII(strings.Join(vv, ", "))
		}

		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = scoped.Error().Str("errors", c.Errors.String())
		case status >= 500:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		default:
			ev = scoped.Info()
		}
		if vid := VisitorFrom(c); vid != "" {
			ev = ev.Str("visitor_id", vid)
		}
		if IsAdmin(c) {
			ev = ev.Bool("admin", true)
		}
		if status == http.StatusSwitchingProtocols {
			ev = ev.Bool("websocket", true)
		}

		ev.
			Str("query", scrubQuery(c.Request.URL.RawQuery, maskQuery)).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
