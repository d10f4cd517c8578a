package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinematch/internal/mail"
)

// Publisher is a mail.Mailer that enqueues messages on MailQueue instead of
// sending them. A message is accepted once the broker has it; a dial,
// declare or publish failure is returned to the caller.
type Publisher struct {
	url string
}

var _ mail.Mailer = (*Publisher)(nil)

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Send publishes msg as a persistent JSON message. The dial is bounded by
// the ctx deadline when one is set.
func (p *Publisher) Send(ctx context.Context, msg mail.Message) error {
	body, err := encodeEnvelope(msg, time.Now())
	if err != nil {
		return fmt.Errorf("encode mail: %w", err)
	}

	cfg := amqp.Config{Heartbeat: 10 * time.Second, Locale: "en_US"}
	if dl, ok := ctx.Deadline(); ok {
		cfg.Dial = amqp.DefaultDial(time.Until(dl))
	}
	conn, err := amqp.DialConfig(p.url, cfg)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareMailQueue(ch); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", MailQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// declareMailQueue declares MailQueue as durable. It is idempotent.
func declareMailQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(MailQueue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}
