// Package handlers implements the studio's HTTP endpoints on Gin: visitor
// chat, orders, reviews, visitor names, site content and stats, the admin
// console, and the change-feed WebSocket.
//
// Every failure answers with ErrorResponse. Clients branch on its code,
// listed below; generic codes follow the status, domain codes name the rule
// that was broken.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Written by middleware before a handler runs.
	ErrCodeBadVisitorID      = "bad_visitor_id"
	ErrCodeBadIdempotencyKey = "bad_idempotency_key"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeMissingVisitor    = "missing_visitor"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeAdminDisabled     = "admin_disabled"
	ErrCodePushFailed        = "push_failed"
	ErrCodeListFailed        = "list_failed"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
