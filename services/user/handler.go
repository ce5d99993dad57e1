package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trustfund-backend/pkg/errutil"
	"trustfund-backend/pkg/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid registration payload", errutil.WithErr(err)))
		return
	}

	u, token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": u})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("Please provide email and password", errutil.WithErr(err)))
		return
	}

	u, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid profile payload", errutil.WithErr(err)))
		return
	}

	u, err := h.svc.UpdateProfile(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": u})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("Please provide an email", errutil.WithErr(err)))
		return
	}

	if _, err := h.svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent to " + req.Email})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=8,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("Please provide a new password", errutil.WithErr(err)))
		return
	}

	_, token, err := h.svc.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "message": "Password has been reset"})
}
