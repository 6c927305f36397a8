package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xevon/studio-backend/internal/push"
)

// Copy of the test notification sent from the admin settings page.
const (
	testPushTitle = "System Alert"
	testPushBody  = "Quantum uplink verified. Push notifications operational."
)

// LoginRequest carries the admin key.
type LoginRequest struct {
	Key string `json:"key" binding:"required"`
}

// LoginResponse is an admin session.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterDeviceRequest carries the admin device push token. An empty
// token registers a simulated device.
type RegisterDeviceRequest struct {
	Token string `json:"token"`
}

// RegisterDeviceResponse echoes the stored token.
type RegisterDeviceResponse struct {
	Token     string `json:"token"`
	Simulated bool   `json:"simulated"`
}

// AdminLogin godoc
// @ID          adminLogin
// @Summary     Open an admin session
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Admin key"
// @Success     200  {object} handlers.LoginResponse
// @Failure     401  {object} handlers.ErrorResponse "Wrong key"
// @Failure     503  {object} handlers.ErrorResponse "Admin console disabled"
// @Router      /admin/login [post]
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "key required")
		return
	}
	tok, exp, err := h.admin.Login(req.Key)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: tok, ExpiresAt: exp})
}

// RegisterDevice godoc
// @ID          registerDevice
// @Summary     Register the admin device for push
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.RegisterDeviceRequest  true  "Device token"
// @Success     200  {object} handlers.RegisterDeviceResponse
// @Router      /admin/devices [post]
func (h *Handlers) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	tok, err := h.devices.Register(c.Request.Context(), req.Token)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, RegisterDeviceResponse{Token: tok, Simulated: push.IsSimulated(tok)})
}

// TestNotification godoc
// @ID          testNotification
// @Summary     Send a test push to the admin device
// @Tags        Admin
// @Security    BearerAuth
// @Success     204  {string} string "No Content"
// @Failure     502  {object} handlers.ErrorResponse "Push provider failed"
// @Router      /admin/notifications/test [post]
func (h *Handlers) TestNotification(c *gin.Context) {
	if err := h.push.NotifyAdmin(c.Request.Context(), testPushTitle, testPushBody); err != nil {
		fail(c, http.StatusBadGateway, ErrCodePushFailed, err.Error())
		return
	}
	noContent(c)
}
