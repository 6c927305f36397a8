// Package services defines the business logic of the studio backend: live
// chat, orders, reviews, visitors, site content, visit statistics, and the
// admin gate. This file centralizes service-level error values so they can
// be returned consistently and mapped to HTTP results by the handlers.
package services

import "errors"

// Input errors.
var (
	// ErrMissingVisitor is returned when an operation needs a visitor id and
	// none was supplied.
	ErrMissingVisitor = errors.New("visitor id is required")

	// ErrEmptyText is returned for blank chat messages.
	ErrEmptyText = errors.New("text is empty")

	// ErrTooLong is returned when a text field exceeds its rune limit.
	ErrTooLong = errors.New("text too long")

	// ErrInvalidStatus is returned for an unknown delivery status.
	ErrInvalidStatus = errors.New("invalid delivery status")

	// ErrInvalidOrder is returned when a required order field is missing.
	ErrInvalidOrder = errors.New("package, price, customer name and contact are required")

	// ErrInvalidRepIndex is returned for a negative representative index.
	ErrInvalidRepIndex = errors.New("representative index must be >= 0")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidName is returned for a blank visitor name.
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidContent is returned when section data is not a JSON object.
	ErrInvalidContent = errors.New("content must be a JSON object")

	// ErrInvalidID is returned when a client-chosen record id is malformed.
	ErrInvalidID = errors.New("invalid record id")
)

// Lookup and state errors.
var (
	// ErrMessageNotFound indicates that the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrOrderNotFound indicates that the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrVisitorNotFound indicates that the visitor never stored a name.
	ErrVisitorNotFound = errors.New("visitor not found")

	// ErrSectionNotFound indicates an unknown content section.
	ErrSectionNotFound = errors.New("content section not found")

	// ErrReservedSection is returned when a client tries to overwrite a
	// section the backend manages itself.
	ErrReservedSection = errors.New("content section is managed by the server")

	// ErrInvalidTransition is returned when an order status change would
	// move backwards or skip the lifecycle.
	ErrInvalidTransition = errors.New("order status transition not allowed")

	// ErrIDConflict is returned when a client-chosen id is already taken by
	// a record in another partition.
	ErrIDConflict = errors.New("record id already in use")
)

// Admin gate errors.
var (
	// ErrAdminDisabled is returned when no admin key is configured.
	ErrAdminDisabled = errors.New("admin console disabled")

	// ErrInvalidAdminKey is returned when the admin key does not match.
	ErrInvalidAdminKey = errors.New("invalid admin key")

	// ErrInvalidToken is returned for a missing, expired or forged session.
	ErrInvalidToken = errors.New("invalid admin session")
)
