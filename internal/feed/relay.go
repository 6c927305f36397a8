package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisRelay mirrors locally published events to a Redis channel and
// injects events published by other instances into the local broker, so
// subscribers connected to any instance see every change.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	origin  string
	broker  *Broker
	timeout time.Duration
}

// NewRedisRelay wires broker to channel on client. Call Start to begin.
func NewRedisRelay(client redis.UniversalClient, channel string, broker *Broker) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		broker:  broker,
		timeout: 2 * time.Second,
	}
}

// Origin returns this instance's relay identity.
func (r *RedisRelay) Origin() string { return r.origin }

// Start subscribes to the channel, confirms the subscription, registers
// the publish tap and pumps remote events until ctx is cancelled.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("feed relay: subscribe %s: %w", r.channel, err)
	}

	r.broker.OnPublish(r.mirror)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					log.Warn().Str("channel", r.channel).Msg("feed relay channel closed")
					return
				}
				r.receive([]byte(msg.Payload))
			}
		}
	}()

	log.Info().Str("channel", r.channel).Str("origin", r.origin).Msg("feed relay started")
	return nil
}

func (r *RedisRelay) mirror(ev Event) {
	payload, err := r.encode(ev)
	if err != nil {
		relayErrors.WithLabelValues("encode").Inc()
		log.Error().Err(err).Str("table", ev.Table).Msg("feed relay encode failed")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		relayErrors.WithLabelValues("publish").Inc()
		log.Error().Err(err).Str("table", ev.Table).Msg("feed relay publish failed")
	}
}

func (r *RedisRelay) encode(ev Event) ([]byte, error) {
	ev.Origin = r.origin
	return json.Marshal(ev)
}

// receive decodes a relayed event and injects it locally unless this
// instance produced it.
func (r *RedisRelay) receive(payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		relayErrors.WithLabelValues("decode").Inc()
		log.Error().Err(err).Msg("feed relay decode failed")
		return
	}
	if ev.Origin == r.origin {
		return
	}
	ev.Origin = ""
	r.broker.Inject(ev)
}
