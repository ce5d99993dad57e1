package user

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"trustfund-backend/pkg/mailer"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`Hi {{.FirstName}},

Welcome to TrustFund! Your account is ready. Browse the active campaigns and
make your first donation whenever you like.

The TrustFund Team
`))

var resetTemplate = template.Must(template.New("reset").Parse(`Password Reset Request

Follow the link below to reset your password. The link expires in 10 minutes.

{{.ResetURL}}

If you did not request this, please ignore this email.
`))

type TaskHandler struct {
	mailer mailer.Mailer
}

func NewTaskHandler(m mailer.Mailer) *TaskHandler {
	return &TaskHandler{mailer: m}
}

func (h *TaskHandler) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var payload WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal welcome email payload: %w", err)
	}
	if payload.FirstName == "" {
		payload.FirstName = "there"
	}

	var body bytes.Buffer
	if err := welcomeTemplate.Execute(&body, payload); err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	if err := h.mailer.Send(ctx, payload.Email, "Welcome to TrustFund", body.String()); err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}

	zap.L().Info("welcome email sent", zap.String("to", payload.Email))
	return nil
}

func (h *TaskHandler) HandlePasswordResetEmail(ctx context.Context, t *asynq.Task) error {
	var payload ResetEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal reset email payload: %w", err)
	}

	var body bytes.Buffer
	if err := resetTemplate.Execute(&body, payload); err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	if err := h.mailer.Send(ctx, payload.Email, "Password Reset Request", body.String()); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}

	zap.L().Info("password reset email sent", zap.String("to", payload.Email))
	return nil
}
