package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-service/internal/middleware"
	"auth-service/internal/usecase/auth"
	"auth-service/pkg/utils"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Sanitize input
	req.Email = utils.SanitizeEmail(req.Email)
	req.Name = utils.SanitizeString(req.Name)

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated,
		"User registered successfully. Please verify your email.",
		gin.H{"user": user},
	)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	loginResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", loginResponse)
}

// Refresh runs behind the refresh-token middleware, which has already
// resolved the user and re-checked is_active.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	refreshResponse, err := h.service.RefreshAccessToken(c.Request.Context(), user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", refreshResponse)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	secret := c.Param("token")
	if secret == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Verification token required")
		return
	}

	if _, err := h.service.VerifyEmail(c.Request.Context(), secret); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		"Email verified successfully. You can now log in.",
		gin.H{"email_verified": true},
	)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req auth.ResendVerificationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		"Verification email sent. Please check your inbox.", nil)
}

// Logout is stateless: there is no revocation list, the client discards its
// tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}
