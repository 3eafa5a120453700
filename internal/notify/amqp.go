package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mmynk/splitledger/internal/models"
)

// Message is the JSON body published for each notification.
type Message struct {
	ID        string `json:"id"`
	Member    string `json:"member"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

func newMessage(n models.Notification) Message {
	return Message{
		ID:        n.ID,
		Member:    n.Member,
		Type:      string(n.Type),
		Message:   n.Message,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

// bindingKey binds the notification queue to every notification type.
const bindingKey = "notification.#"

// RoutingKey is the key a notification of type t is published under.
func RoutingKey(t models.NotificationType) string {
	return "notification." + strings.ToLower(string(t))
}

// Publisher publishes notifications to a durable topic exchange, one
// persistent message per notification under RoutingKey(type).
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

// NewPublisher dials url, declares exchange and a durable queue bound to
// every notification type. On any failure the connection is closed.
func NewPublisher(url, exchange, queue string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err == nil {
		err = declare(ch, exchange, queue)
	}
	if err != nil {
		// Closing the connection closes its channels.
		return nil, errors.Join(fmt.Errorf("notify: AMQP setup: %w", err), conn.Close())
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, bindingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", q.Name, exchange, err)
	}
	return nil
}

// Notify publishes notifications in order and stops at the first failure.
func (p *Publisher) Notify(ctx context.Context, notifications []models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range notifications {
		msg, err := publishing(n)
		if err != nil {
			return err
		}
		key := RoutingKey(n.Type)
		if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
			return fmt.Errorf("notify: publish %s: %w", n.ID, err)
		}
		slog.DebugContext(ctx, "Published notification",
			"id", n.ID,
			"member", n.Member,
			"routing_key", key)
	}
	return nil
}

func publishing(n models.Notification) (amqp091.Publishing, error) {
	body, err := json.Marshal(newMessage(n))
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("notify: marshal %s: %w", n.ID, err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    n.ID,
		Timestamp:    time.Unix(n.CreatedAt, 0),
		Type:         string(n.Type),
		Body:         body,
	}, nil
}

// Close closes the connection and its channel.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
