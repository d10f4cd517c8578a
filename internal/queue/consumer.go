package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinematch/internal/mail"
)

const maxBackoff = 30 * time.Second

// Consumer drains MailQueue and hands each message to a Mailer.
type Consumer struct {
	url     string
	mailer  mail.Mailer
	timeout time.Duration
	logger  *slog.Logger
}

// NewConsumer returns a consumer delivering through mailer, bounding each
// send by timeout.
func NewConsumer(url string, mailer mail.Mailer, timeout time.Duration, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Consumer{url: url, mailer: mailer, timeout: timeout, logger: logger}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled. It always returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("mail consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("mail consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn("mail consumer: set QoS failed", "error", err)
	}
	if _, err := declareMailQueue(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(MailQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			switch err := c.handle(ctx, d.Body); {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, errPoison):
				c.logger.Error("mail consumer: rejecting malformed message", "error", err)
				_ = d.Nack(false, false)
			default:
				c.logger.Warn("mail consumer: delivery failed, requeueing", "error", err)
				_ = d.Nack(false, !d.Redelivered)
			}
		}
	}
}

var errPoison = errors.New("poison message")

// handle decodes one message body and sends it. Undecodable bodies are
// reported as errPoison so they are dropped instead of requeued.
func (c *Consumer) handle(ctx context.Context, body []byte) error {
	env, err := decodeEnvelope(body)
	if err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.mailer.Send(sendCtx, env.Message); err != nil {
		return fmt.Errorf("send to %s: %w", env.Message.To, err)
	}
	c.logger.Info("mail delivered", "to", env.Message.To, "queued_for", time.Since(env.EnqueuedAt).Round(time.Millisecond))
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
