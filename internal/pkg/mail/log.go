package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail that writes every message to slog at debug level.
type Log struct{}

// NewLog returns a Log mailer.
func NewLog() *Log {
	return &Log{}
}

// Send logs the message; the text body is included so codes stay readable in development.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	slog.DebugContext(ctx, "mail not sent, log driver active",
		"to", msg.Recipients(),
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)

	return nil
}

// Close implements io.Closer.
func (l *Log) Close() error {
	return nil
}
