package donation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/middleware"
)

type Handler struct {
	pipeline *Pipeline
}

func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

type donateRequest struct {
	Amount      float64 `json:"amount" binding:"required"`
	Message     string  `json:"message"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// Donate records an authenticated donation against the campaign in the path
// and issues a receipt.
func (h *Handler) Donate(c *gin.Context) {
	donorID := middleware.UserID(c)
	if donorID == "" {
		_ = c.Error(errutil.Unauthorized("Authentication required"))
		return
	}

	var req donateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("Invalid donation payload", errutil.WithErr(err)))
		return
	}

	result, err := h.pipeline.Record(c.Request.Context(), RecordRequest{
		CampaignID:  c.Param("campaignId"),
		DonorID:     donorID,
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
		Options:     Options{IssueReceipt: true},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Donation successful",
		"donation":    result.Donation,
		"transaction": result.Transaction,
		"receipt":     result.Receipt,
	})
}

type mockPaymentRequest struct {
	CampaignID  string  `json:"campaignId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	CardNumber  string  `json:"cardNumber"`
	Message     string  `json:"message"`
	IsAnonymous bool    `json:"isAnonymous"`
}

// MockPayment runs the simulated-gateway checkout path. No receipt is issued
// on this path.
func (h *Handler) MockPayment(c *gin.Context) {
	donorID := middleware.UserID(c)
	if donorID == "" {
		_ = c.Error(errutil.Unauthorized("Authentication required"))
		return
	}

	var req mockPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("Invalid payment payload", errutil.WithErr(err)))
		return
	}

	_, err := h.pipeline.Record(c.Request.Context(), RecordRequest{
		CampaignID:  req.CampaignID,
		DonorID:     donorID,
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
		CardNumber:  req.CardNumber,
		Options:     Options{SimulateGateway: true},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment Successful",
	})
}
