package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agora/internal/observability"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dispatcher hands verification emails to a transport.
type Dispatcher interface {
	SendVerification(ctx context.Context, msg VerificationEmail) error
}

// LogDispatcher writes emails to the log instead of sending them. It serves
// local development and is the delivery step of the mail consumer.
type LogDispatcher struct {
	Logger *slog.Logger
}

// SendVerification logs msg.
func (d LogDispatcher) SendVerification(ctx context.Context, msg VerificationEmail) error {
	d.Logger.InfoContext(ctx, "verification email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("link", msg.Link),
	)
	observability.MailDispatched.WithLabelValues("log", "ok").Inc()
	return nil
}

// publisher is the slice of *amqp.Channel the dispatcher needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPDispatcher publishes verification emails to a topic exchange.
type AMQPDispatcher struct {
	conn     *amqp.Connection
	ch       publisher
	exchange string
}

// NewAMQPDispatcher publishes through ch onto exchange.
func NewAMQPDispatcher(ch publisher, exchange string) *AMQPDispatcher {
	return &AMQPDispatcher{ch: ch, exchange: exchange}
}

// DialAMQP connects to RabbitMQ and declares the durable mail exchange.
func DialAMQP(url, exchange string) (*AMQPDispatcher, error) {
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
	d := NewAMQPDispatcher(ch, exchange)
	d.conn = conn
	return d, nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// SendVerification publishes msg as a persistent JSON message.
func (d *AMQPDispatcher) SendVerification(ctx context.Context, msg VerificationEmail) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}
	err = d.ch.PublishWithContext(ctx,
		d.exchange,
		VerificationRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.QueuedAt,
			Body:         body,
		},
	)
	if err != nil {
		observability.MailDispatched.WithLabelValues("amqp", "error").Inc()
		return fmt.Errorf("failed to publish email: %w", err)
	}
	observability.MailDispatched.WithLabelValues("amqp", "ok").Inc()
	return nil
}

// Close releases the connection opened by DialAMQP.
func (d *AMQPDispatcher) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
