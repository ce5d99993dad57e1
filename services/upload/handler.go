package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/middleware"
	"trustfund-backend/services/campaign"
	"trustfund-backend/services/user"
)

type Handler struct {
	svc       *Service
	campaigns *campaign.Service
	users     *user.Service
}

func NewHandler(svc *Service, campaigns *campaign.Service, users *user.Service) *Handler {
	return &Handler{svc: svc, campaigns: campaigns, users: users}
}

// CampaignImage uploads a cover image for a campaign owned by the caller.
func (h *Handler) CampaignImage(c *gin.Context) {
	callerID := middleware.UserID(c)
	if callerID == "" {
		_ = c.Error(errutil.Unauthorized("Authentication required"))
		return
	}

	campaignID := c.Param("id")
	cmp, err := h.campaigns.Get(c.Request.Context(), campaignID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if cmp.CreatorID != callerID {
		_ = c.Error(errutil.Forbidden("Only the campaign creator can change its image"))
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(errutil.ValidationFailed("Missing image file", errutil.WithErr(err)))
		return
	}

	url, err := h.svc.StoreCampaignImage(c.Request.Context(), campaignID, header)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.campaigns.SetImageURL(c.Request.Context(), campaignID, url); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": url,
	})
}

// ProfileImage uploads and sets the caller's avatar.
func (h *Handler) ProfileImage(c *gin.Context) {
	callerID := middleware.UserID(c)
	if callerID == "" {
		_ = c.Error(errutil.Unauthorized("Authentication required"))
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(errutil.ValidationFailed("Please upload a file", errutil.WithErr(err)))
		return
	}

	url, err := h.svc.StoreProfileImage(c.Request.Context(), callerID, header)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.users.SetProfileImage(c.Request.Context(), callerID, url); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Image uploaded",
		"imageUrl": url,
	})
}
