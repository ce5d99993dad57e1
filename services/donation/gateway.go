package donation

import (
	"context"
	"fmt"
	"time"

	"trustfund-backend/pkg/config"
	"trustfund-backend/pkg/util"
)

// CaptureRequest carries the fields the gateway needs to authorize and
// capture a payment. CardNumber is never persisted.
type CaptureRequest struct {
	Amount     float64
	CampaignID string
	CardNumber string
}

type CaptureResult struct {
	ProviderTxnID string
	Status        TransactionStatus
}

// Gateway captures payments. Implementations must honor ctx cancellation.
type Gateway interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
}

// MockGateway simulates an external payment processor: a fixed processing
// latency followed by an unconditional success. FailFunc, when set, is
// consulted before success and turns the capture into a failure. It is nil
// in production wiring.
type MockGateway struct {
	provider string
	latency  time.Duration

	FailFunc func(req CaptureRequest) error
}

func NewMockGateway(cfg *config.Config) *MockGateway {
	latency := cfg.Gateway.Latency
	if latency <= 0 {
		latency = 1500 * time.Millisecond
	}

	provider := cfg.Gateway.Provider
	if provider == "" {
		provider = "mock_gateway"
	}

	return &MockGateway{
		provider: provider,
		latency:  latency,
	}
}

func (g *MockGateway) Provider() string { return g.provider }

func (g *MockGateway) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if g.FailFunc != nil {
		if err := g.FailFunc(req); err != nil {
			return &CaptureResult{Status: TxnFailed}, err
		}
	}

	return &CaptureResult{
		ProviderTxnID: fmt.Sprintf("mock_%s", util.RandomHex(5)),
		Status:        TxnSucceeded,
	}, nil
}
