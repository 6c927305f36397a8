// Package push delivers admin push notifications through the FCM legacy
// HTTP API and keeps the admin device token under the admin_settings
// content section.
//
// Delivery is best effort: the Notifier logs every failure and never
// returns one to the chat or order flow that triggered it.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/xevon/studio-backend/internal/config"
)

// SimulatedPrefix marks tokens minted without a real device registration.
// Messages to such tokens are logged instead of sent.
const SimulatedPrefix = "simulated_"

var (
	// ErrNotConfigured is returned when no server key is configured.
	ErrNotConfigured = errors.New("push: server key not configured")
	// ErrNoToken is returned when no admin device token is registered.
	ErrNoToken = errors.New("push: no admin device token registered")
	// ErrUnauthorized is returned when FCM rejects the server key.
	ErrUnauthorized = errors.New("push: server key rejected")
	// ErrDeliveryFailed is returned when FCM accepts the request but
	// reports a failed delivery.
	ErrDeliveryFailed = errors.New("push: delivery failed")
)

// IsSimulated reports whether token is a simulated registration.
func IsSimulated(token string) bool { return strings.HasPrefix(token, SimulatedPrefix) }

// Result summarizes one send.
type Result struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Simulated   bool  `json:"simulated"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
	Icon  string `json:"icon,omitempty"`
}

type fcmRequest struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
	Priority     string          `json:"priority"`
}

type fcmResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// Sender posts notifications to a single device token.
type Sender struct {
	http      *resty.Client
	endpoint  string
	serverKey string
	icon      string
}

// NewSender builds a Sender from the push configuration.
func NewSender(cfg config.PushConfig) *Sender {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Sender{
		http:      client,
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		icon:      cfg.IconURL,
	}
}

// SendToToken delivers title/body to token.
func (s *Sender) SendToToken(ctx context.Context, token, title, body string) (*Result, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	if IsSimulated(token) {
		log.Info().Str("token", token).Str("title", title).Str("body", body).Msg("push simulated; not sent")
		return &Result{Simulated: true, Success: 1}, nil
	}
	if s.serverKey == "" {
		return nil, ErrNotConfigured
	}

	var out fcmResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+s.serverKey).
		SetBody(fcmRequest{
			To:           token,
			Notification: fcmNotification{Title: title, Body: body, Sound: "default", Icon: s.icon},
			Priority:     "high",
		}).
		SetResult(&out).
		Post(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("push: request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.IsError() {
		return nil, fmt.Errorf("push: status %s: %s", resp.Status(), resp.String())
	}

	res := &Result{MulticastID: out.MulticastID, Success: out.Success, Failure: out.Failure}
	if out.Failure > 0 {
		reason := "unknown"
		for _, r := range out.Results {
			if r.Error != "" {
				reason = r.Error
				break
			}
		}
		return res, fmt.Errorf("%w: %s", ErrDeliveryFailed, reason)
	}
	return res, nil
}

// SimulatedToken mints a token that marks a registration without a real
// device behind it.
func SimulatedToken(now time.Time) string {
	return fmt.Sprintf("%stoken_%d", SimulatedPrefix, now.UnixMilli())
}
