package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trustfund-backend/pkg/config"
)

func TestMockGatewayCapture(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gateway.Latency = 20 * time.Millisecond
	gw := NewMockGateway(cfg)

	start := time.Now()
	res, err := gw.Capture(context.Background(), CaptureRequest{Amount: 100})
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Equal(t, TxnSucceeded, res.Status)
	require.Contains(t, res.ProviderTxnID, "mock_")
	require.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestMockGatewayDefaults(t *testing.T) {
	gw := NewMockGateway(&config.Config{})
	require.Equal(t, "mock_gateway", gw.Provider())
	require.Equal(t, 1500*time.Millisecond, gw.latency)
}

func TestMockGatewayContextCancelled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gateway.Latency = 5 * time.Second
	gw := NewMockGateway(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.Capture(ctx, CaptureRequest{Amount: 100})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockGatewayFailFunc(t *testing.T) {
	cfg := &config.Config{}
	cfg.Gateway.Latency = time.Millisecond
	gw := NewMockGateway(cfg)
	gw.FailFunc = func(req CaptureRequest) error {
		if req.Amount > 1000 {
			return errors.New("amount over limit")
		}
		return nil
	}

	res, err := gw.Capture(context.Background(), CaptureRequest{Amount: 5000})
	require.Error(t, err)
	require.Equal(t, TxnFailed, res.Status)

	res, err = gw.Capture(context.Background(), CaptureRequest{Amount: 500})
	require.NoError(t, err)
	require.Equal(t, TxnSucceeded, res.Status)
}
