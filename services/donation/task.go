package donation

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

type ReceiptEmailPayload struct {
	Email         string  `json:"email"`
	DonorName     string  `json:"donor_name"`
	ReceiptNumber string  `json:"receipt_number"`
	Amount        float64 `json:"amount"`
	CampaignTitle string  `json:"campaign_title"`
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`Dear {{.DonorName}},

Thank you for your generous donation of INR {{printf "%.2f" .Amount}} to "{{.CampaignTitle}}".

Your official receipt number is {{.ReceiptNumber}}. Keep it for your records.

With gratitude,
The TrustFund Team
`))

type TaskHandler struct {
	mailer mailer.Mailer
}

func NewTaskHandler(m mailer.Mailer) *TaskHandler {
	return &TaskHandler{mailer: m}
}

func (h *TaskHandler) HandleReceiptEmail(ctx context.Context, t *asynq.Task) error {
	var payload ReceiptEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal receipt email payload: %w", err)
	}

	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, payload); err != nil {
		return fmt.Errorf("render receipt email: %w", err)
	}

	subject := fmt.Sprintf("Donation Receipt %s", payload.ReceiptNumber)
	if err := h.mailer.Send(ctx, payload.Email, subject, body.String()); err != nil {
		return fmt.Errorf("send receipt email: %w", err)
	}

	zap.L().Info("receipt email sent",
		zap.String("receipt", payload.ReceiptNumber),
		zap.String("to", payload.Email))
	return nil
}
