// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

const AtorKey = "ator"

// UsuarioLoader resolves the user behind a token.
type UsuarioLoader interface {
	GetUsuario(ctx context.Context, id uint) (*models.Usuario, error)
}

// AuthRequired validates the bearer token and loads the caller's current
// roles and unit, so role changes apply without a new login.
func AuthRequired(loader UsuarioLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		usuario, err := loader.GetUsuario(c.Request.Context(), claims.UserID)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}
		if !usuario.IsActive {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthUserInactive))
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user_id", usuario.ID)
		c.Set("username", usuario.Username)
		c.Set(AtorKey, models.NewAtor(usuario))
		c.Next()
	}
}

// GestorRequired must run after AuthRequired.
func GestorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAtor(c).IsGestor() {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetAtor(c *gin.Context) *models.Ator {
	if v, exists := c.Get(AtorKey); exists {
		if ator, ok := v.(*models.Ator); ok {
			return ator
		}
	}
	return nil
}
