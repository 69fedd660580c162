// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func authPayload(message string, resp *services.AuthResponse) gin.H {
	return gin.H{
		"message":       message,
		"user":          resp.User,
		"papeis":        resp.Papeis,
		"token":         resp.AccessToken,
		"refresh_token": resp.RefreshToken,
		"token_type":    resp.TokenType,
		"expires_in":    resp.ExpiresIn,
	}
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthLoginSuccess), authResponse))
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, authPayload(i18n.T(lang, i18n.KeyAuthTokenRefreshed), authResponse))
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	a := ator(c)
	user, err := h.authService.GetUsuario(c.Request.Context(), a.UsuarioID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user":   user,
		"papeis": a.Papeis.List(),
	})
}
