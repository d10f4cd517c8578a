// Package queue moves outbound email through RabbitMQ: the HTTP process
// publishes, a consumer delivers over SMTP.
package queue

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/cinematch/internal/mail"
)

// MailQueue is the durable queue holding outbound email.
const MailQueue = "mail.outbound"

// MailEnvelope is the JSON body of a message on MailQueue.
type MailEnvelope struct {
	Message    mail.Message `json:"message"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

var errEmptyRecipient = errors.New("mail envelope has no recipient")

func encodeEnvelope(msg mail.Message, now time.Time) ([]byte, error) {
	return json.Marshal(MailEnvelope{Message: msg, EnqueuedAt: now.UTC()})
}

func decodeEnvelope(body []byte) (MailEnvelope, error) {
	var env MailEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return MailEnvelope{}, err
	}
	if env.Message.To == "" {
		return MailEnvelope{}, errEmptyRecipient
	}
	return env, nil
}
