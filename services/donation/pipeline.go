package donation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"trustfund-backend/pkg/db/option"
	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/repository"
	"trustfund-backend/pkg/sequence"
	"trustfund-backend/pkg/task"
	"trustfund-backend/pkg/taskname"
	"trustfund-backend/services/campaign"
	"trustfund-backend/services/user"
)

// Options selects optional pipeline stages per entry point. The checkout
// endpoint simulates a gateway capture and skips the receipt; the direct
// donation endpoint issues a receipt and skips the gateway.
type Options struct {
	SimulateGateway bool
	IssueReceipt    bool
}

type RecordRequest struct {
	CampaignID  string
	DonorID     string // empty for guest donations
	DonorName   string // snapshot for guests; ignored when DonorID is set
	DonorEmail  string
	Amount      float64
	Message     string
	IsAnonymous bool
	CardNumber  string // only consulted when SimulateGateway is set

	Options Options
}

type Result struct {
	Donation    *Donation    `json:"donation"`
	Transaction *Transaction `json:"transaction"`
	Receipt     *Receipt     `json:"receipt,omitempty"`
}

// Pipeline records donations. Every entry point funnels through Record so the
// aggregate updates happen exactly once, in one order, through one code path.
type Pipeline struct {
	db       *gorm.DB
	node     *snowflake.Node
	gateway  Gateway
	seq      sequence.Generator
	enqueuer task.Enqueuer

	campaigns *campaign.Service
	users     *user.Service

	donations    repository.Repository[Donation]
	transactions repository.Repository[Transaction]
	receipts     repository.Repository[Receipt]
}

type PipelineParams struct {
	fx.In

	DB        *gorm.DB
	Node      *snowflake.Node
	Gateway   Gateway
	Seq       sequence.Generator
	Enqueuer  task.Enqueuer `optional:"true"`
	Campaigns *campaign.Service
	Users     *user.Service
}

func NewPipeline(p PipelineParams) *Pipeline {
	return &Pipeline{
		db:           p.DB,
		node:         p.Node,
		gateway:      p.Gateway,
		seq:          p.Seq,
		enqueuer:     p.Enqueuer,
		campaigns:    p.Campaigns,
		users:        p.Users,
		donations:    repository.ProvideStore[Donation](p.DB),
		transactions: repository.ProvideStore[Transaction](p.DB),
		receipts:     repository.ProvideStore[Receipt](p.DB),
	}
}

// Record runs the donation pipeline: validate, optionally capture through the
// gateway, persist the transaction and donation, bump the campaign and donor
// aggregates, and optionally issue a receipt. Validation happens before any
// write. A failure after the transaction row exists marks that row failed
// rather than deleting it, so every capture attempt stays auditable.
func (p *Pipeline) Record(ctx context.Context, req RecordRequest) (*Result, error) {
	if req.Amount < MinimumAmount {
		return nil, errutil.ValidationFailed(fmt.Sprintf("Minimum donation amount is %d", MinimumAmount))
	}

	cmp, err := p.campaigns.Get(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}

	donorName, donorEmail := req.DonorName, req.DonorEmail
	if req.DonorID != "" {
		donor, err := p.users.Get(ctx, req.DonorID)
		if err != nil {
			return nil, err
		}
		donorName, donorEmail = donor.FullName(), donor.Email
	}
	if donorName == "" {
		donorName = "Valued Donor"
	}

	code, err := p.seq.NextTransactionCode(ctx)
	if err != nil {
		return nil, errutil.Internal("Failed to allocate transaction code", errutil.WithErr(err))
	}

	txn := &Transaction{
		ID:              p.node.Generate().String(),
		Code:            code,
		PaymentProvider: "mock_gateway",
		Amount:          req.Amount,
		Currency:        "INR",
		Status:          TxnCaptured,
	}

	if req.Options.SimulateGateway {
		if mg, ok := p.gateway.(*MockGateway); ok {
			txn.PaymentProvider = mg.Provider()
		}

		capture, err := p.gateway.Capture(ctx, CaptureRequest{
			Amount:     req.Amount,
			CampaignID: req.CampaignID,
			CardNumber: req.CardNumber,
		})
		if err != nil {
			if capture != nil && capture.Status == TxnFailed {
				txn.Status = TxnFailed
				if createErr := p.transactions.Create(ctx, txn); createErr != nil {
					zap.L().Error("record failed capture", zap.Error(createErr))
				}
				return nil, errutil.BadGateway("Payment capture failed", errutil.WithErr(err))
			}
			return nil, err
		}

		txn.Status = capture.Status
		txn.ProviderTxnID = &capture.ProviderTxnID
		txn.Metadata = datatypes.JSON([]byte(`{"demoMode":true}`))
	}

	if err := p.transactions.Create(ctx, txn); err != nil {
		return nil, errutil.Internal("Failed to record transaction", errutil.WithErr(err))
	}

	d := &Donation{
		ID:            p.node.Generate().String(),
		CampaignID:    req.CampaignID,
		DonorID:       req.DonorID,
		Amount:        req.Amount,
		DonorName:     donorName,
		DonorEmail:    donorEmail,
		Message:       req.Message,
		IsAnonymous:   req.IsAnonymous,
		Status:        StatusCompleted,
		TransactionID: txn.ID,
	}
	if err := p.donations.Create(ctx, d); err != nil {
		p.markTransactionFailed(ctx, txn)
		return nil, errutil.Internal("Failed to record donation", errutil.WithErr(err))
	}

	if err := p.transactions.Update(ctx, txn.ID, map[string]any{"donation_id": d.ID}); err != nil {
		p.markTransactionFailed(ctx, txn)
		return nil, errutil.Internal("Failed to link transaction to donation", errutil.WithErr(err))
	}
	txn.DonationID = d.ID

	if err := p.campaigns.ApplyDonation(ctx, cmp.ID, req.Amount); err != nil {
		p.markTransactionFailed(ctx, txn)
		return nil, err
	}

	if req.DonorID != "" {
		if err := p.users.ApplyDonation(ctx, req.DonorID, req.Amount); err != nil {
			p.markTransactionFailed(ctx, txn)
			return nil, err
		}
	}

	res := &Result{Donation: d, Transaction: txn}

	if req.Options.IssueReceipt {
		receipt, err := p.issueReceipt(ctx, d, cmp)
		if err != nil {
			return nil, err
		}
		res.Receipt = receipt
	}

	zap.L().Info("donation recorded",
		zap.String("donation", d.ID),
		zap.String("campaign", cmp.ID),
		zap.Float64("amount", req.Amount),
		zap.Bool("gateway", req.Options.SimulateGateway),
		zap.Bool("receipt", req.Options.IssueReceipt))

	return res, nil
}

func (p *Pipeline) issueReceipt(ctx context.Context, d *Donation, cmp *campaign.Campaign) (*Receipt, error) {
	number, err := p.seq.NextReceiptNumber(ctx)
	if err != nil {
		return nil, errutil.Internal("Failed to allocate receipt number", errutil.WithErr(err))
	}

	receipt := &Receipt{
		ID:            p.node.Generate().String(),
		DonationID:    d.ID,
		ReceiptNumber: number,
		Amount:        d.Amount,
		IssuedTo:      d.DonorName,
	}
	if err := p.receipts.Create(ctx, receipt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict("Receipt number already issued", errutil.WithErr(err))
		}
		return nil, errutil.Internal("Failed to issue receipt", errutil.WithErr(err))
	}

	if err := p.donations.Update(ctx, d.ID, map[string]any{"receipt_number": number}); err != nil {
		return nil, errutil.Internal("Failed to stamp receipt number", errutil.WithErr(err))
	}
	d.ReceiptNumber = &number

	p.enqueueReceiptEmail(d, receipt, cmp)

	return receipt, nil
}

func (p *Pipeline) markTransactionFailed(ctx context.Context, txn *Transaction) {
	if err := p.transactions.Update(ctx, txn.ID, map[string]any{"status": TxnFailed}); err != nil {
		zap.L().Error("mark transaction failed", zap.String("transaction", txn.ID), zap.Error(err))
		return
	}
	txn.Status = TxnFailed
}

func (p *Pipeline) enqueueReceiptEmail(d *Donation, receipt *Receipt, cmp *campaign.Campaign) {
	if p.enqueuer == nil || d.DonorEmail == "" {
		return
	}

	payload, err := json.Marshal(ReceiptEmailPayload{
		Email:         d.DonorEmail,
		DonorName:     d.DonorName,
		ReceiptNumber: receipt.ReceiptNumber,
		Amount:        d.Amount,
		CampaignTitle: cmp.Title,
	})
	if err != nil {
		return
	}

	if _, err := p.enqueuer.Enqueue(asynq.NewTask(taskname.EmailReceipt, payload), asynq.Queue("default")); err != nil {
		zap.L().Warn("enqueue receipt email", zap.String("donation", d.ID), zap.Error(err))
	}
}

// ListByCampaign satisfies campaign.DonationLister. Anonymous donations are
// surfaced with the donor name masked.
func (p *Pipeline) ListByCampaign(ctx context.Context, campaignID string) ([]campaign.DonationSummary, error) {
	rows, err := p.donations.Find(ctx,
		&Donation{CampaignID: campaignID, Status: StatusCompleted},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "DESC"}))
	if err != nil {
		return nil, errutil.Internal("Failed to list donations", errutil.WithErr(err))
	}

	summaries := make([]campaign.DonationSummary, 0, len(rows))
	for _, d := range rows {
		name := d.DonorName
		if d.IsAnonymous {
			name = "Anonymous"
		}
		summaries = append(summaries, campaign.DonationSummary{
			DonorName: name,
			Amount:    d.Amount,
			Message:   d.Message,
			CreatedAt: d.CreatedAt,
		})
	}
	return summaries, nil
}
