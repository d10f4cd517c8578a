// Package mail delivers outbound email. The auth service depends only on
// the Mailer interface; the transport (SMTP, broker, log) is picked at
// start-up from configuration.
package mail

import (
	"context"
	"fmt"
	"html"
)

// Message is a single email with a plain-text and an HTML body.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Mailer sends a message. Implementations must honour ctx cancellation and
// deadlines; a send that does not complete in time is a failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// PasswordResetMessage builds the reset email carrying link.
func PasswordResetMessage(to, link string) Message {
	esc := html.EscapeString(link)
	return Message{
		To:      to,
		Subject: "CineMatch Password Reset",
		Text:    fmt.Sprintf("You requested a password reset. Click the link to reset your password: %s", link),
		HTML: fmt.Sprintf(`<p>You requested a password reset for CineMatch.</p>
<p>Click the link below to reset your password:</p>
<a href="%s">%s</a>
<p>If you did not request this, you can ignore this email.</p>`, esc, esc),
	}
}
