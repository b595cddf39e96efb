// Package rabbitmq carries the order change feed: every order-table write is
// published as a table-wide notification, and storefront instances subscribe
// to trigger a page refresh. The feed is best-effort; the poll timer provides
// eventual correctness when the broker is down.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"

	"topup/internal/models"
)

const changesExchange = "orders.changes"

// reconnectBackoff is the fixed delay before a dropped subscription is
// re-established. The repository's poll timer covers the gap.
const reconnectBackoff = 5 * time.Second

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// Client holds the RabbitMQ connection and channel used for publishing.
type Client struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient connects to RabbitMQ and declares the change-feed exchange.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	// Fanout: every subscribed storefront sees every table change.
	err = ch.ExchangeDeclare(changesExchange, "fanout", true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", changesExchange, err)
	}
	return &Client{url: cfg.URL, conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishOrderChange publishes a table-wide order change notification.
func (c *Client) PublishOrderChange(change models.OrderChange) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal order change: %w", err)
	}
	err = c.channel.Publish(changesExchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish order change: %w", err)
	}
	return nil
}

// ConsumeOrderChanges subscribes to the change feed and invokes handler for
// every notification until ctx is cancelled. A dropped connection is
// re-established after a fixed backoff; subscribers never see the failure,
// only a gap the poll timer covers.
func ConsumeOrderChanges(ctx context.Context, cfg Config, handler func(models.OrderChange)) {
	for {
		if err := consumeOnce(ctx, cfg, handler); err != nil {
			log.Printf("order change feed dropped: %v (reconnecting in %s)", err, reconnectBackoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectBackoff):
		}
	}
}

func consumeOnce(ctx context.Context, cfg Config, handler func(models.OrderChange)) error {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(changesExchange, "fanout", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	// Exclusive auto-delete queue: each subscriber gets its own copy of the feed.
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", changesExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var change models.OrderChange
			if err := json.Unmarshal(msg.Body, &change); err != nil {
				log.Printf("Warning: dropping malformed order change: %v", err)
				continue
			}
			handler(change)
		}
	}
}
