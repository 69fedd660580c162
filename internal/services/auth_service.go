// internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/config"
	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type AuthService struct {
	store store.Store
	cfg   *config.Config
}

type LoginRequest struct {
	// Login accepts the username or the email.
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	User         *models.Usuario `json:"user"`
	Papeis       []models.Papel  `json:"papeis"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // in seconds
}

func NewAuthService(st store.Store, cfg *config.Config) *AuthService {
	return &AuthService{
		store: st,
		cfg:   cfg,
	}
}

func papeisString(rs models.RoleSet) []string {
	out := make([]string, 0, len(rs))
	for _, p := range rs.List() {
		out = append(out, string(p))
	}
	return out
}

func (s *AuthService) tokens(user *models.Usuario) (*AuthResponse, error) {
	papeis := user.Papeis()
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, papeisString(papeis), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		Papeis:       papeis.List(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	var user *models.Usuario
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUsuarioByLogin(ctx, strings.TrimSpace(req.Login))
		if err != nil {
			if store.IsNotFound(err) {
				return newError(ErrInvalidCredentials, i18n.KeyAuthInvalidCredentials)
			}
			return err
		}
		if err := user.CheckPassword(req.Password); err != nil {
			return newError(ErrInvalidCredentials, i18n.KeyAuthInvalidCredentials)
		}
		if !user.IsActive {
			return newError(ErrForbidden, i18n.KeyAuthUserInactive)
		}

		now := time.Now()
		user.LastLoginAt = &now
		return tx.SaveUsuario(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("usuario_id", user.ID).Info("User logged in")
	return s.tokens(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userID, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, newError(ErrInvalidCredentials, i18n.KeyAuthInvalidToken)
	}

	user, err := s.GetUsuario(ctx, userID)
	if err != nil {
		return nil, newError(ErrInvalidCredentials, i18n.KeyAuthInvalidToken)
	}
	if !user.IsActive {
		return nil, newError(ErrForbidden, i18n.KeyAuthUserInactive)
	}
	return s.tokens(user)
}

func (s *AuthService) GetUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	var user *models.Usuario
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUsuario(ctx, id)
		return err
	})
	return user, err
}
