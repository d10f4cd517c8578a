package mail

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetMessage(t *testing.T) {
	link := "http://localhost:3000/reset-password/abc123"
	msg := PasswordResetMessage("ana@x.com", link)

	assert.Equal(t, "ana@x.com", msg.To)
	assert.Equal(t, "CineMatch Password Reset", msg.Subject)
	assert.Contains(t, msg.Text, link)
	assert.Contains(t, msg.HTML, `<a href="`+link+`">`)
}

func TestLogMailer_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))

	msg := PasswordResetMessage("ana@x.com", "http://x/reset-password/secret-token")
	require.NoError(t, m.Send(context.Background(), msg))

	out := buf.String()
	assert.Contains(t, out, "ana@x.com")
	assert.NotContains(t, out, "secret-token")
}

func TestLogMailer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewLogMailer(nil).Send(ctx, Message{To: "a@b.co"}), context.Canceled)
}

func TestBuildMIME(t *testing.T) {
	body, err := buildMIME("noreply@cinematch.app", Message{
		To: "ana@x.com", Subject: "Hi", Text: "plain body", HTML: "<p>html body</p>",
	})
	require.NoError(t, err)

	s := string(body)
	assert.True(t, strings.HasPrefix(s, "From: noreply@cinematch.app\r\n"))
	assert.Contains(t, s, "Subject: Hi\r\n")
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "plain body")
	assert.Contains(t, s, "<p>html body</p>")
}

func TestSMTPMailer_DialFailureRespectsContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: "1", From: "a@b.co"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, Message{To: "ana@x.com", Subject: "x", Text: "y"})
	require.Error(t, err)
}
