package gateway

import (
	"context"
	"log/slog"
)

// LogNotifier is the development delivery channel: it writes the
// notification to the structured log instead of an email provider. The
// dispatcher only sees the Send contract, so a real provider slots in
// without touching the outbox.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, kind, topic string, payload []byte) error {
	slog.InfoContext(ctx, "notification dispatched",
		"kind", kind,
		"topic", topic,
		"payload", string(payload),
	)
	return nil
}
