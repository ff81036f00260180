package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-service/internal/usecase/auth"
	"auth-service/pkg/utils"
)

type PasswordHandler struct {
	service *auth.Service
}

func NewPasswordHandler(service *auth.Service) *PasswordHandler {
	return &PasswordHandler{service: service}
}

// Forgot always reports success so the endpoint cannot be used to probe
// which emails are registered.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req auth.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		"If the email exists, you will receive password reset instructions.", nil)
}

func (h *PasswordHandler) Reset(c *gin.Context) {
	var req auth.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		"Password reset successfully. You can now log in.", nil)
}

// ValidateToken is a pre-flight check for the frontend reset form; it never
// consumes the secret.
func (h *PasswordHandler) ValidateToken(c *gin.Context) {
	var req auth.ValidateResetTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ValidateResetToken(c.Request.Context(), req.Token); err != nil {
		utils.SuccessResponse(c, http.StatusOK, "", gin.H{
			"valid":   false,
			"message": "Reset token is invalid or has expired",
		})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{
		"valid":   true,
		"message": "Token is valid",
	})
}
