package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"agora/internal/middleware"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the channel.
var ErrDeliveriesClosed = errors.New("mail: delivery channel closed")

// Consumer reads verification emails from a durable queue bound to the mail
// exchange.
type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DialConsumer connects, declares exchange and queue, and binds them.
func DialConsumer(url, exchange, queue string) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = conn.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, VerificationRoutingKey, exchange, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

// Run delivers each queued email to d until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, d Dispatcher) error {
	msgs, err := c.ch.Consume(
		c.queue,
		"",
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	return consume(ctx, msgs, d)
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, d Dispatcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			handleDelivery(ctx, msg, d)
		}
	}
}

// handleDelivery acks delivered emails. Malformed bodies are dropped; a
// failed delivery is requeued once and then dropped.
func handleDelivery(ctx context.Context, msg amqp.Delivery, d Dispatcher) {
	var email VerificationEmail
	if err := json.Unmarshal(msg.Body, &email); err != nil {
		middleware.Logger.WarnContext(ctx, "dropping malformed mail message", slog.String("error", err.Error()))
		_ = msg.Nack(false, false)
		return
	}
	if err := d.SendVerification(ctx, email); err != nil {
		middleware.Logger.ErrorContext(ctx, "mail delivery failed",
			slog.String("to", email.To),
			slog.Bool("redelivered", msg.Redelivered),
			slog.String("error", err.Error()),
		)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}

// Close releases the broker connection.
func (c *Consumer) Close() error {
	return c.conn.Close()
}
