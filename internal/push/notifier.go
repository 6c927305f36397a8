package push

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var pushResults = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "push_notifications_total",
		Help: "Admin push notifications by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(pushResults)
}

// TokenSender is the delivery half of the push collaborator.
type TokenSender interface {
	SendToToken(ctx context.Context, token, title, body string) (*Result, error)
}

// Notifier sends notifications to the registered admin device.
type Notifier struct {
	Tokens  TokenStore
	Sender  TokenSender
	Timeout time.Duration

	wg sync.WaitGroup
}

// NotifyAdmin delivers title/body to the admin device and reports the
// outcome. Callers on a user-facing path should use Dispatch instead.
func (n *Notifier) NotifyAdmin(ctx context.Context, title, body string) error {
	token, err := n.Tokens.LoadToken(ctx)
	if errors.Is(err, ErrNoToken) {
		pushResults.WithLabelValues("skipped").Inc()
		log.Debug().Str("title", title).Msg("push skipped: no admin device registered")
		return err
	}
	if err != nil {
		pushResults.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("title", title).Msg("push token lookup failed")
		return err
	}

	res, err := n.Sender.SendToToken(ctx, token, title, body)
	if err != nil {
		pushResults.WithLabelValues("failed").Inc()
		ev := log.Error().Err(err).Str("title", title)
		if res != nil {
			ev = ev.Int("failure", res.Failure)
		}
		ev.Msg("push delivery failed")
		return err
	}
	if res.Simulated {
		pushResults.WithLabelValues("simulated").Inc()
	} else {
		pushResults.WithLabelValues("sent").Inc()
	}
	return nil
}

// Dispatch sends in the background. Failures are logged only.
func (n *Notifier) Dispatch(title, body string) {
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = n.NotifyAdmin(ctx, title, body)
	}()
}

// Wait blocks until every dispatched notification has finished.
func (n *Notifier) Wait() { n.wg.Wait() }
