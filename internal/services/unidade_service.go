// internal/services/unidade_service.go
package services

import (
	"context"
	"strings"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type UnidadeService struct {
	store store.Store
}

type UnidadeRequest struct {
	Codigo string `json:"codigo" validate:"omitempty,max=50"`
	Sigla  string `json:"sigla" validate:"omitempty,max=50"`
	Nome   string `json:"nome" validate:"required,max=255"`
}

func NewUnidadeService(st store.Store) *UnidadeService {
	return &UnidadeService{store: st}
}

func exigirGestor(ator *models.Ator) error {
	if !ator.IsGestor() {
		return newError(ErrForbidden, i18n.KeyAuthForbidden)
	}
	return nil
}

func unidadeNaoEncontrada(err error) error {
	if store.IsNotFound(err) {
		return newError(ErrNotFound, i18n.KeyUnidadeNotFound)
	}
	return err
}

// PodeInativar reports whether no asset is currently assigned to the unit.
func PodeInativar(ctx context.Context, tx store.Tx, unidadeID uint) (bool, error) {
	count, err := tx.CountBensPorUnidade(ctx, unidadeID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (s *UnidadeService) Listar(ctx context.Context, filtro store.UnidadeFiltro) ([]models.UnidadeAdministrativa, int64, error) {
	var (
		unidades []models.UnidadeAdministrativa
		total    int64
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		unidades, total, err = tx.ListUnidades(ctx, filtro)
		return err
	})
	return unidades, total, err
}

func (s *UnidadeService) Obter(ctx context.Context, id uint) (*models.UnidadeAdministrativa, error) {
	var unidade *models.UnidadeAdministrativa
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		unidade, err = tx.GetUnidade(ctx, id)
		return unidadeNaoEncontrada(err)
	})
	return unidade, err
}

func aplicarUnidade(u *models.UnidadeAdministrativa, req UnidadeRequest) {
	u.Nome = strings.TrimSpace(req.Nome)
	u.Sigla = strings.TrimSpace(req.Sigla)
	u.Codigo = nil
	if codigo := strings.TrimSpace(req.Codigo); codigo != "" {
		u.Codigo = &codigo
	}
}

func traduzirDuplicadoUnidade(err error) error {
	if store.IsDuplicate(err) {
		return fieldError("codigo", i18n.KeyUnidadeCodigoDuplicado)
	}
	return err
}

func (s *UnidadeService) Criar(ctx context.Context, ator *models.Ator, req UnidadeRequest) (*models.UnidadeAdministrativa, error) {
	if err := exigirGestor(ator); err != nil {
		return nil, err
	}

	unidade := &models.UnidadeAdministrativa{Status: models.StatusUnidadeAtiva}
	aplicarUnidade(unidade, req)
	if unidade.Nome == "" {
		return nil, fieldError("nome", i18n.KeyValidationRequired)
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		return traduzirDuplicadoUnidade(tx.CreateUnidade(ctx, unidade))
	})
	if err != nil {
		return nil, err
	}
	return unidade, nil
}

func (s *UnidadeService) Atualizar(ctx context.Context, ator *models.Ator, id uint, req UnidadeRequest) (*models.UnidadeAdministrativa, error) {
	if err := exigirGestor(ator); err != nil {
		return nil, err
	}

	var unidade *models.UnidadeAdministrativa
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		unidade, err = tx.GetUnidade(ctx, id)
		if err != nil {
			return unidadeNaoEncontrada(err)
		}
		aplicarUnidade(unidade, req)
		if unidade.Nome == "" {
			return fieldError("nome", i18n.KeyValidationRequired)
		}
		return traduzirDuplicadoUnidade(tx.SaveUnidade(ctx, unidade))
	})
	if err != nil {
		return nil, err
	}
	return unidade, nil
}

// Inativar refuses while any asset is assigned to the unit.
func (s *UnidadeService) Inativar(ctx context.Context, ator *models.Ator, id uint) (*models.UnidadeAdministrativa, error) {
	return s.alterarStatus(ctx, ator, id, models.StatusUnidadeInativa)
}

func (s *UnidadeService) Ativar(ctx context.Context, ator *models.Ator, id uint) (*models.UnidadeAdministrativa, error) {
	return s.alterarStatus(ctx, ator, id, models.StatusUnidadeAtiva)
}

func (s *UnidadeService) alterarStatus(ctx context.Context, ator *models.Ator, id uint, status models.StatusUnidade) (*models.UnidadeAdministrativa, error) {
	if err := exigirGestor(ator); err != nil {
		return nil, err
	}

	var unidade *models.UnidadeAdministrativa
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		unidade, err = tx.GetUnidade(ctx, id)
		if err != nil {
			return unidadeNaoEncontrada(err)
		}
		if unidade.Status == status {
			return nil
		}

		if status == models.StatusUnidadeInativa {
			ok, err := PodeInativar(ctx, tx, unidade.ID)
			if err != nil {
				return err
			}
			if !ok {
				return fieldError("status", i18n.KeyUnidadePossuiBens)
			}
		}

		unidade.Status = status
		return tx.SaveUnidade(ctx, unidade)
	})
	if err != nil {
		return nil, err
	}
	return unidade, nil
}
