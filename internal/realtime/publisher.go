package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RedisChannel = "mayfair:events"
	AMQPExchange = "mayfair.events"
)

// Publisher hands committed events to the live channel. Delivery is
// best-effort; callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

func stamp(env Envelope) Envelope {
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now().UTC()
	}
	return env
}

// LocalPublisher delivers straight to this process's hub.
type LocalPublisher struct {
	hub *Hub
}

func NewLocalPublisher(hub *Hub) *LocalPublisher {
	return &LocalPublisher{hub: hub}
}

func (p *LocalPublisher) Publish(_ context.Context, env Envelope) error {
	p.hub.Deliver(stamp(env))
	return nil
}

// RedisBridge fans events out through a Redis channel so every instance
// delivers them to its own sockets.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	log    *slog.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, log *slog.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log}
}

func (b *RedisBridge) Publish(ctx context.Context, env Envelope) error {
	payload, err := encodeEnvelope(env)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, RedisChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes and delivers until ctx is done. ready, when not nil, is
// closed once the subscription is confirmed.
func (b *RedisBridge) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := b.client.Subscribe(ctx, RedisChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	if ready != nil {
		close(ready)
	}
	b.log.Info("redis event bridge subscribed", slog.String("channel", RedisChannel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				b.log.Warn("dropping malformed bridged event", slog.Any("error", err))
				continue
			}
			b.hub.Deliver(env)
		}
	}
}

// ErrBrokerUnavailable is returned by Publish while the bridge is
// reconnecting.
var ErrBrokerUnavailable = errors.New("event broker unavailable")

// AMQPBridge publishes to a fanout exchange; each instance consumes from its
// own exclusive queue bound to it. Run keeps the connection up, redialing
// with exponential backoff when the broker goes away.
type AMQPBridge struct {
	url  string
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
	hub  *Hub
	log  *slog.Logger

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func DialAMQPBridge(url string, hub *Hub, log *slog.Logger) (*AMQPBridge, error) {
	b := &AMQPBridge{
		url:        url,
		hub:        hub,
		log:        log,
		MinBackoff: time.Second,
		MaxBackoff: 30 * time.Second,
	}
	if err := b.connect(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *AMQPBridge) connect() error {
	conn, err := amqp.Dial(b.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(AMQPExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	b.mu.Lock()
	old := b.conn
	b.conn, b.ch = conn, ch
	b.mu.Unlock()

	if old != nil && !old.IsClosed() {
		_ = old.Close()
	}
	return nil
}

func (b *AMQPBridge) Publish(ctx context.Context, env Envelope) error {
	payload, err := encodeEnvelope(env)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch == nil || b.ch.IsClosed() {
		return ErrBrokerUnavailable
	}
	return b.ch.PublishWithContext(ctx, AMQPExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

// Run consumes until ctx is done. A dropped connection is redialed with
// backoff and the consumer queue is declared again.
func (b *AMQPBridge) Run(ctx context.Context) error {
	backoff := b.MinBackoff
	for {
		started, err := b.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if started {
			backoff = b.MinBackoff
		}
		b.log.Warn("amqp event bridge disconnected",
			slog.Any("error", err),
			slog.Duration("retry_in", backoff))

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = nextBackoff(backoff, b.MaxBackoff)

			if err := b.connect(); err != nil {
				b.log.Warn("amqp reconnect failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
				continue
			}
			b.log.Info("amqp event bridge reconnected")
			break
		}
	}
}

func (b *AMQPBridge) consume(ctx context.Context) (bool, error) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil || conn.IsClosed() {
		return false, ErrBrokerUnavailable
	}

	ch, err := conn.Channel()
	if err != nil {
		return false, fmt.Errorf("amqp consumer channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return false, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", AMQPExchange, false, nil); err != nil {
		return false, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("consume: %w", err)
	}
	b.log.Info("amqp event bridge consuming", slog.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case d, ok := <-deliveries:
			if !ok {
				return true, errors.New("amqp deliveries closed")
			}
			env, err := decodeEnvelope(d.Body)
			if err != nil {
				b.log.Warn("dropping malformed bridged event", slog.Any("error", err))
				continue
			}
			b.hub.Deliver(env)
		}
	}
}

func (b *AMQPBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ch != nil && !b.ch.IsClosed() {
		_ = b.ch.Close()
	}
	if b.conn != nil && !b.conn.IsClosed() {
		return b.conn.Close()
	}
	return nil
}

func (b *AMQPBridge) Name() string { return "rabbitmq" }

// Check fails while the broker connection or publishing channel is down.
func (b *AMQPBridge) Check(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil || b.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if b.ch == nil || b.ch.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	cur *= 2
	if cur > limit {
		return limit
	}
	return cur
}

func encodeEnvelope(env Envelope) ([]byte, error) {
	payload, err := json.Marshal(stamp(env))
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return payload, nil
}

// decodeEnvelope reads a bridged envelope. Data arrives as generic JSON and
// is re-encoded unchanged when delivered.
func decodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, err
	}
	if env.Event == "" {
		return Envelope{}, errors.New("envelope has no event")
	}
	return env, nil
}
