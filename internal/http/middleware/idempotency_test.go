package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("key present before validation: %q", k)
	}
	if IsReplay(c) {
		t.Fatalf("replay must default to false")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("replay flag ignored")
	}
}

type idemSeen struct {
	key            string
	replay, bypass bool
}

// keyedRouter mounts the validator with a fixed scope in front of POST /orders
// and records what the handler saw.
func keyedRouter(maxLen int, lookup IdempotencyLookup, seen *idemSeen) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(VisitorID())
	r.Use(IdempotencyValidator(IdempotencyOptions{
		MaxLen: maxLen,
		Scope: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost {
				return "orders"
			}
			return ""
		},
	}, lookup))
	h := func(c *gin.Context) {
		seen.key, _ = GetIdempotencyKey(c)
		seen.replay, seen.bypass = IsReplay(c), IsRateBypass(c)
		c.Status(http.StatusCreated)
	}
	r.POST("/orders", h)
	r.PATCH("/orders/:id", h)
	return r
}

func keyed(method, path, visitor, key string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if visitor != "" {
		req.Header.Set(HeaderVisitorID, visitor)
	}
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	return req
}

func TestIdempotencyValidator_NoHeaderSkipsLookup(t *testing.T) {
	var seen idemSeen
	called := false
	r := keyedRouter(0, func(context.Context, string, string, string) (bool, error) {
		called = true
		return true, nil
	}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, keyed(http.MethodPost, "/orders", "anon-1", ""))
	if w.Code != http.StatusCreated || called || seen.key != "" || seen.replay {
		t.Fatalf("code=%d called=%v seen=%+v", w.Code, called, seen)
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	var seen idemSeen
	r := keyedRouter(8, nil, &seen)

	for _, key := range []string{"order-12345", "has space", "semi;colon"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, keyed(http.MethodPost, "/orders", "anon-1", key))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", key, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["code"] != "bad_idempotency_key" || !strings.Contains(body["message"].(string), "1-8") {
			t.Fatalf("%q: unexpected body %v", key, body)
		}
	}
}

func TestIdempotencyValidator_MissHitAndError(t *testing.T) {
	stored := map[string]bool{"anon-1|orders|order-1": true}
	var gotArgs []string
	lookup := func(_ context.Context, visitorID, scope, key string) (bool, error) {
		gotArgs = append(gotArgs, visitorID+"|"+scope+"|"+key)
		if key == "broken" {
			return false, errors.New("sqlite busy")
		}
		return stored[visitorID+"|"+scope+"|"+key], nil
	}
	var seen idemSeen
	r := keyedRouter(0, lookup, &seen)

	cases := []struct {
		visitor, key string
		replay       bool
	}{
		{"anon-1", "order-1", true},
		{"anon-2", "order-1", false}, // keys are per visitor
		{"anon-1", "order-2", false},
		{"anon-1", "broken", false},
	}
	for _, tc := range cases {
		seen = idemSeen{}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, keyed(http.MethodPost, "/orders", tc.visitor, tc.key))
		if w.Code != http.StatusCreated {
			t.Fatalf("%+v: status %d", tc, w.Code)
		}
		if seen.key != tc.key || seen.replay != tc.replay || seen.bypass != tc.replay {
			t.Fatalf("%+v: seen %+v", tc, seen)
		}
	}
	if len(gotArgs) != 4 || gotArgs[1] != "anon-2|orders|order-1" {
		t.Fatalf("lookup args: %v", gotArgs)
	}
}

func TestIdempotencyValidator_EmptyScopeStashesKeyOnly(t *testing.T) {
	called := false
	var seen idemSeen
	r := keyedRouter(0, func(context.Context, string, string, string) (bool, error) {
		called = true
		return true, nil
	}, &seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, keyed(http.MethodPatch, "/orders/o1", "anon-1", "k-1"))
	if w.Code != http.StatusCreated || called || seen.replay || seen.key != "k-1" {
		t.Fatalf("code=%d called=%v seen=%+v", w.Code, called, seen)
	}
}
