package mailer

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("mailer",
	fx.Provide(NewLogMailer),
)

// Mailer delivers transactional email. The default implementation only logs;
// real delivery is a deployment concern behind this interface.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type LogMailer struct{}

func NewLogMailer() Mailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	zap.L().Info("email delivered",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}
