package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xevon/studio-backend/internal/http/middleware"
	"github.com/xevon/studio-backend/internal/services"
)

// ErrorResponse is the error envelope every endpoint returns.
//
// Code is one of the ErrCode constants and is what clients branch on.
// Message is safe to show: server-side failures never echo the underlying
// error, which only reaches the request log.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"invalid_transition"`
	Message   string `json:"message" example:"order status transition not allowed"`
}

// internalMessage replaces the message of every 5xx envelope.
const internalMessage = "something went wrong; try again later"

// fail aborts with an ErrorResponse. 5xx failures are logged with the
// original message and answered with internalMessage; rejected admin
// credentials are logged at warn so brute-force attempts show up.
func fail(c *gin.Context, status int, code, msg string) {
	lg := middleware.LoggerFrom(c)
	switch {
	case status >= http.StatusInternalServerError:
		lg.Error().Int("status", status).Str("code", code).Str("cause", msg).Msg("api error")
		msg = internalMessage
	case status == http.StatusUnauthorized:
		lg.Warn().Str("code", code).Msg("admin credentials rejected")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// notModified sets a weak ETag built from name and version and reports
// whether the client already holds it.
func notModified(c *gin.Context, name, version string) bool {
	etag := `W/"` + name + ":" + version + `"`
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// serviceError binds a service sentinel to its HTTP result.
type serviceError struct {
	err    error
	status int
	code   string
}

// serviceErrors is checked in order; the first errors.Is match wins.
var serviceErrors = []serviceError{
	{services.ErrMissingVisitor, http.StatusBadRequest, ErrCodeMissingVisitor},

	{services.ErrEmptyText, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrTooLong, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidStatus, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidOrder, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidRepIndex, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidRating, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidName, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidContent, http.StatusBadRequest, ErrCodeValidation},
	{services.ErrInvalidID, http.StatusBadRequest, ErrCodeValidation},

	{services.ErrMessageNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrOrderNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrReviewNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrVisitorNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrSectionNotFound, http.StatusNotFound, ErrCodeNotFound},

	{services.ErrReservedSection, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrInvalidTransition, http.StatusConflict, ErrCodeInvalidTransition},
	{services.ErrIDConflict, http.StatusConflict, ErrCodeConflict},

	{services.ErrAdminDisabled, http.StatusServiceUnavailable, ErrCodeAdminDisabled},
	{services.ErrInvalidAdminKey, http.StatusUnauthorized, ErrCodeUnauthorized},
	{services.ErrInvalidToken, http.StatusUnauthorized, ErrCodeUnauthorized},
}

// failService maps err through serviceErrors; anything unknown is a 500.
func failService(c *gin.Context, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			fail(c, se.status, se.code, se.err.Error())
			return
		}
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}
