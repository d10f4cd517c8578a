package mail

import (
	"context"
	"log/slog"
)

// LogMailer is the development transport: it records that a message would
// have been sent. Bodies are never logged because they carry reset links.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "mail not delivered (log transport)", "to", msg.To, "subject", msg.Subject)
	return nil
}
