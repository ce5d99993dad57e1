package campaign

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/middleware"
)

// DonationSummary is the projection of a donation shown on a campaign page.
type DonationSummary struct {
	DonorName string    `json:"donorName"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DonationLister is implemented by the donation service; declared here so the
// campaign package does not depend on it.
type DonationLister interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]DonationSummary, error)
}

// RoleResolver answers whether the caller holds the admin role; implemented by
// the user service.
type RoleResolver interface {
	IsAdmin(ctx context.Context, userID string) bool
}

type Handler struct {
	svc       *Service
	donations DonationLister
	roles     RoleResolver
}

type HandlerParams struct {
	fx.In

	Svc       *Service
	Donations DonationLister `optional:"true"`
	Roles     RoleResolver   `optional:"true"`
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{svc: p.Svc, donations: p.Donations, roles: p.Roles}
}

func (h *Handler) isAdmin(c *gin.Context) bool {
	if h.roles == nil {
		return false
	}
	return h.roles.IsAdmin(c.Request.Context(), middleware.UserID(c))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid campaign payload", errutil.WithErr(err)))
		return
	}

	campaign, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": campaign})
}

func (h *Handler) List(c *gin.Context) {
	campaigns, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(campaigns), "data": campaigns})
}

func (h *Handler) Get(c *gin.Context) {
	campaign, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	donations := []DonationSummary{}
	if h.donations != nil {
		donations, err = h.donations.ListByCampaign(c.Request.Context(), campaign.ID)
		if err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"campaign": campaign, "donations": donations}})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid campaign payload", errutil.WithErr(err)))
		return
	}

	campaign, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), h.isAdmin(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": campaign})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c), h.isAdmin(c)); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}
