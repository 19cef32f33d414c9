// Copyright (c) 2026 InternPulse. All rights reserved.

package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/internpulse/internpulse/internal/platform/constants"
)

// emailJob is the wire format published to the email queue. A separate
// worker process consumes these jobs and talks to the actual SMTP provider,
// keeping slow network calls off the request path.
type emailJob struct {
	To         string    `json:"to"`
	Subject    string    `json:"subject"`
	HTMLBody   string    `json:"html_body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// AMQPMailer enqueues outbound emails on a durable RabbitMQ queue.
type AMQPMailer struct {
	conn      *amqp.Connection
	queueName string
	log       *slog.Logger
}

// NewAMQPMailer dials the broker and declares the email queue.
//
// The queue is durable and messages are published persistent, so accepted
// jobs survive a broker restart.
func NewAMQPMailer(ctx context.Context, url string, log *slog.Logger) (*AMQPMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp broker: %w", err)
	}

	// Declare once at startup so Send can fail fast on a missing queue.
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	defer channel.Close()

	_, err = channel.QueueDeclare(
		constants.EmailQueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", constants.EmailQueueName, err)
	}

	log.InfoContext(ctx, "amqp mailer connected", slog.String("queue", constants.EmailQueueName))

	return &AMQPMailer{
		conn:      conn,
		queueName: constants.EmailQueueName,
		log:       log,
	}, nil
}

// Send publishes an email job to the queue.
//
// Channels are cheap and not safe for concurrent use, so each publish opens
// its own short-lived channel on the shared connection.
func (mailer *AMQPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	channel, err := mailer.conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(emailJob{
		To:         to,
		Subject:    subject,
		HTMLBody:   htmlBody,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}

	err = channel.PublishWithContext(ctx,
		"",               // default exchange
		mailer.queueName, // routing key == queue name
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}

	mailer.log.DebugContext(ctx, "email job enqueued",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}

// Ping reports broker connectivity for the readiness probe.
func (mailer *AMQPMailer) Ping() error {
	if mailer.conn.IsClosed() {
		return errAMQPClosed
	}
	return nil
}

var errAMQPClosed = errors.New("amqp connection is closed")

// Close releases the broker connection.
func (mailer *AMQPMailer) Close() error {
	return mailer.conn.Close()
}

// LogMailer writes emails to the application log instead of a broker.
// Used in development when no AMQP URL is configured.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer constructs a [LogMailer].
func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send logs the email instead of delivering it.
func (mailer *LogMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	mailer.log.InfoContext(ctx, "email (dev mode, not delivered)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", htmlBody),
	)
	return nil
}
