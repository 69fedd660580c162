// internal/services/bem_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type BemPatrimonialService struct {
	store         store.Store
	notifications *NotificationService
}

type BemRequest struct {
	Nome                    string           `json:"nome" validate:"required,max=255"`
	Descricao               string           `json:"descricao" validate:"required"`
	Marca                   string           `json:"marca" validate:"max=255"`
	Modelo                  string           `json:"modelo" validate:"max=255"`
	Quantidade              int              `json:"quantidade" validate:"omitempty,min=1"`
	ValorUnitario           decimal.Decimal  `json:"valor_unitario"`
	DataCompraEntrega       string           `json:"data_compra_entrega" validate:"omitempty,datetime=2006-01-02"`
	Origem                  models.OrigemBem `json:"origem" validate:"omitempty,origem_bem"`
	NumeroProcesso          string           `json:"numero_processo" validate:"max=100"`
	Localizacao             string           `json:"localizacao" validate:"max=255"`
	UnidadeAdministrativaID *uint            `json:"unidade_administrativa_id"`
	NumeroPatrimonial       string           `json:"numero_patrimonial"`
	NumeroFormatoAntigo     bool             `json:"numero_formato_antigo"`
	SemNumeracao            bool             `json:"sem_numeracao"`
}

type ReprovarRequest struct {
	Observacao string `json:"observacao" validate:"required"`
}

func NewBemPatrimonialService(st store.Store, notifications *NotificationService) *BemPatrimonialService {
	return &BemPatrimonialService{store: st, notifications: notifications}
}

func bemNaoEncontrado(err error) error {
	if store.IsNotFound(err) {
		return newError(ErrNotFound, i18n.KeyBemNotFound)
	}
	return err
}

func traduzirDuplicadoBem(err error) error {
	if store.IsDuplicate(err) {
		return fieldError(CampoNumeroPatrimonial, i18n.KeyBemNumeroDuplicado)
	}
	return err
}

// registrarStatus appends a history row and pushes its status onto bem.
// An approved asset is never moved back to awaiting approval.
func registrarStatus(ctx context.Context, tx store.Tx, bem *models.BemPatrimonial, status models.StatusBem, observacao string, atorID *uint) error {
	row := &models.StatusBemPatrimonial{
		BemPatrimonialID: bem.ID,
		Status:           status,
		Observacao:       observacao,
		AtualizadoPorID:  atorID,
	}
	if err := tx.CreateStatus(ctx, row); err != nil {
		return fmt.Errorf("create status: %w", err)
	}

	if bem.Status == models.StatusBemAprovado && status == models.StatusBemAguardandoAprovacao {
		return nil
	}
	if bem.Status == status {
		return nil
	}
	bem.Status = status
	return tx.SaveBem(ctx, bem)
}

func podeVerBem(ator *models.Ator, bem *models.BemPatrimonial) bool {
	if ator.IsGestor() {
		return true
	}
	return bem.UnidadeAdministrativaID != nil && ator.PertenceA(*bem.UnidadeAdministrativaID)
}

func exigirPapel(ator *models.Ator) error {
	if ator == nil || len(ator.Papeis) == 0 {
		return newError(ErrForbidden, i18n.KeyAuthForbidden)
	}
	return nil
}

// validarBem checks the fields common to create and update.
func (s *BemPatrimonialService) validarBem(ctx context.Context, tx store.Tx, req BemRequest, errs *ValidationErrors) (*time.Time, *models.UnidadeAdministrativa) {
	if strings.TrimSpace(req.Nome) == "" {
		errs.Add("nome", i18n.KeyValidationRequired)
	}
	if strings.TrimSpace(req.Descricao) == "" {
		errs.Add("descricao", i18n.KeyValidationRequired)
	}
	if req.ValorUnitario.IsNegative() {
		errs.Add("valor_unitario", i18n.KeyBemValorNegativo)
	}

	var data *time.Time
	if req.DataCompraEntrega != "" {
		t, err := time.Parse("2006-01-02", req.DataCompraEntrega)
		if err != nil {
			errs.Add("data_compra_entrega", i18n.KeyValidationInvalid, "data_compra_entrega")
		} else {
			data = &t
		}
	}

	if req.UnidadeAdministrativaID == nil {
		errs.Add("unidade_administrativa_id", i18n.KeyBemUnidadeObrigatoria)
		return data, nil
	}
	unidade, err := tx.GetUnidade(ctx, *req.UnidadeAdministrativaID)
	if err != nil {
		errs.Add("unidade_administrativa_id", i18n.KeyUnidadeNotFound)
		return data, nil
	}
	return data, unidade
}

func aplicarBem(bem *models.BemPatrimonial, req BemRequest, data *time.Time) {
	bem.Nome = strings.TrimSpace(req.Nome)
	bem.Descricao = strings.TrimSpace(req.Descricao)
	bem.Marca = req.Marca
	bem.Modelo = req.Modelo
	bem.Quantidade = req.Quantidade
	if bem.Quantidade == 0 {
		bem.Quantidade = 1
	}
	bem.ValorUnitario = req.ValorUnitario.Round(2)
	bem.DataCompraEntrega = data
	bem.Origem = req.Origem
	bem.NumeroProcesso = req.NumeroProcesso
	bem.Localizacao = req.Localizacao
}

func (s *BemPatrimonialService) checarNumeroDuplicado(ctx context.Context, tx store.Tx, numero string, exceptID uint, errs *ValidationErrors) error {
	if numero == "" || errs.Has(CampoNumeroPatrimonial) {
		return nil
	}
	emUso, err := tx.NumeroPatrimonialEmUso(ctx, numero, exceptID)
	if err != nil {
		return err
	}
	if emUso {
		errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroDuplicado)
	}
	return nil
}

// Criar registers an asset awaiting approval. Operators always register
// into their own unit.
func (s *BemPatrimonialService) Criar(ctx context.Context, ator *models.Ator, req BemRequest) (*models.BemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}
	if !ator.IsGestor() {
		req.UnidadeAdministrativaID = ator.UnidadeAdministrativaID
	}

	numero := strings.TrimSpace(req.NumeroPatrimonial)
	var bem *models.BemPatrimonial

	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		errs := &ValidationErrors{}
		validarNumeracao(numero, req.NumeroFormatoAntigo, req.SemNumeracao, errs)
		data, unidade := s.validarBem(ctx, tx, req, errs)
		if unidade != nil && !unidade.Ativa() {
			errs.Add("unidade_administrativa_id", i18n.KeyUnidadeInativa, unidade.Nome)
		}
		if err := s.checarNumeroDuplicado(ctx, tx, numero, 0, errs); err != nil {
			return err
		}
		if err := errs.Err(); err != nil {
			return err
		}

		bem = &models.BemPatrimonial{
			UnidadeAdministrativaID: &unidade.ID,
			Status:                  models.StatusBemAguardandoAprovacao,
			NumeroFormatoAntigo:     req.NumeroFormatoAntigo,
			SemNumeracao:            req.SemNumeracao,
			CriadoPorID:             ator.UsuarioID,
		}
		aplicarBem(bem, req, data)
		if numero != "" {
			bem.NumeroPatrimonial = &numero
		}

		if err := tx.CreateBem(ctx, bem); err != nil {
			return traduzirDuplicadoBem(err)
		}
		if err := atribuirNumeroSemNumeracao(ctx, tx, bem); err != nil {
			return traduzirDuplicadoBem(err)
		}

		atorID := ator.UsuarioID
		return registrarStatus(ctx, tx, bem, models.StatusBemAguardandoAprovacao,
			i18n.T(i18n.DefaultLang, i18n.KeyBemCadastroInicial), &atorID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"bem_id":     bem.ID,
		"usuario_id": ator.UsuarioID,
	}).Info("Bem patrimonial cadastrado")

	s.notifications.NovoBemCadastrado(ctx, bem)
	return bem, nil
}

// Atualizar edits an asset. The numbering flags are fixed after creation and
// a generated number never changes.
func (s *BemPatrimonialService) Atualizar(ctx context.Context, ator *models.Ator, id uint, req BemRequest) (*models.BemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}

	var bem *models.BemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		bem, err = tx.LockBem(ctx, id)
		if err != nil {
			return bemNaoEncontrado(err)
		}
		if !podeVerBem(ator, bem) {
			return newError(ErrForbidden, i18n.KeyBemForaDaUnidade)
		}
		if bem.Status == models.StatusBemBloqueado {
			return newError(ErrStateConflict, i18n.KeyBemStatusBloqueado)
		}

		if !ator.IsGestor() || req.UnidadeAdministrativaID == nil {
			req.UnidadeAdministrativaID = bem.UnidadeAdministrativaID
		}

		errs := &ValidationErrors{}
		campos := FieldVisibility(FormState{SemNumeracao: bem.SemNumeracao, NumeroFormatoAntigo: bem.NumeroFormatoAntigo})
		if req.SemNumeracao != bem.SemNumeracao && !campos[CampoSemNumeracao].Editable {
			errs.Add(CampoSemNumeracao, i18n.KeyBemCampoBloqueado)
		}
		if req.NumeroFormatoAntigo != bem.NumeroFormatoAntigo && !campos[CampoNumeroFormatoAntigo].Editable {
			errs.Add(CampoNumeroFormatoAntigo, i18n.KeyBemCampoBloqueado)
		}

		numero := strings.TrimSpace(req.NumeroPatrimonial)
		if campos[CampoNumeroPatrimonial].Editable {
			validarNumeracao(numero, bem.NumeroFormatoAntigo, false, errs)
		} else if numero != "" && numero != bem.Numero() {
			errs.Add(CampoNumeroPatrimonial, i18n.KeyBemCampoBloqueado)
		}

		data, unidade := s.validarBem(ctx, tx, req, errs)
		if unidade != nil && !unidade.Ativa() && (bem.UnidadeAdministrativaID == nil || *bem.UnidadeAdministrativaID != unidade.ID) {
			errs.Add("unidade_administrativa_id", i18n.KeyUnidadeInativa, unidade.Nome)
		}
		if campos[CampoNumeroPatrimonial].Editable {
			if err := s.checarNumeroDuplicado(ctx, tx, numero, bem.ID, errs); err != nil {
				return err
			}
		}
		if err := errs.Err(); err != nil {
			return err
		}

		aplicarBem(bem, req, data)
		bem.UnidadeAdministrativaID = &unidade.ID
		if campos[CampoNumeroPatrimonial].Editable {
			bem.NumeroPatrimonial = &numero
		}

		if err := tx.SaveBem(ctx, bem); err != nil {
			return traduzirDuplicadoBem(err)
		}

		// a corrected rejected registration goes back to review
		if bem.Status == models.StatusBemNaoAprovado {
			atorID := ator.UsuarioID
			return registrarStatus(ctx, tx, bem, models.StatusBemAguardandoAprovacao, "", &atorID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bem, nil
}

func (s *BemPatrimonialService) Obter(ctx context.Context, ator *models.Ator, id uint) (*models.BemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}

	var bem *models.BemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		bem, err = tx.GetBem(ctx, id)
		if err != nil {
			return bemNaoEncontrado(err)
		}
		if !podeVerBem(ator, bem) {
			return newError(ErrForbidden, i18n.KeyBemForaDaUnidade)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bem, nil
}

// Listar restricts operators to their own unit.
func (s *BemPatrimonialService) Listar(ctx context.Context, ator *models.Ator, filtro store.BemFiltro) ([]models.BemPatrimonial, int64, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, 0, err
	}
	if !ator.IsGestor() {
		if ator.UnidadeAdministrativaID == nil {
			return []models.BemPatrimonial{}, 0, nil
		}
		filtro.UnidadeID = ator.UnidadeAdministrativaID
	}

	var (
		bens  []models.BemPatrimonial
		total int64
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		bens, total, err = tx.ListBens(ctx, filtro)
		return err
	})
	return bens, total, err
}

func (s *BemPatrimonialService) Historico(ctx context.Context, ator *models.Ator, id uint) ([]models.StatusBemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}

	var historico []models.StatusBemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		bem, err := tx.GetBem(ctx, id)
		if err != nil {
			return bemNaoEncontrado(err)
		}
		if !podeVerBem(ator, bem) {
			return newError(ErrForbidden, i18n.KeyBemForaDaUnidade)
		}
		historico, err = tx.ListStatus(ctx, id)
		return err
	})
	return historico, err
}

// Campos returns the numbering field states of an existing asset's form.
func (s *BemPatrimonialService) Campos(ctx context.Context, ator *models.Ator, id uint) (map[string]FieldState, error) {
	bem, err := s.Obter(ctx, ator, id)
	if err != nil {
		return nil, err
	}
	return FieldVisibility(FormState{
		SemNumeracao:        bem.SemNumeracao,
		NumeroFormatoAntigo: bem.NumeroFormatoAntigo,
	}), nil
}

func (s *BemPatrimonialService) avaliar(ctx context.Context, ator *models.Ator, id uint, status models.StatusBem, observacao string) (*models.BemPatrimonial, error) {
	if err := exigirGestor(ator); err != nil {
		return nil, err
	}

	var bem *models.BemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		bem, err = tx.LockBem(ctx, id)
		if err != nil {
			return bemNaoEncontrado(err)
		}
		if bem.Status != models.StatusBemAguardandoAprovacao {
			return newError(ErrStateConflict, i18n.KeyBemCadastroJaAvaliado)
		}
		atorID := ator.UsuarioID
		return registrarStatus(ctx, tx, bem, status, observacao, &atorID)
	})
	if err != nil {
		return nil, err
	}
	return bem, nil
}

func (s *BemPatrimonialService) AprovarCadastro(ctx context.Context, ator *models.Ator, id uint) (*models.BemPatrimonial, error) {
	return s.avaliar(ctx, ator, id, models.StatusBemAprovado, "")
}

// ReprovarCadastro requires the reason, which is emailed to the creator.
func (s *BemPatrimonialService) ReprovarCadastro(ctx context.Context, ator *models.Ator, id uint, observacao string) (*models.BemPatrimonial, error) {
	observacao = strings.TrimSpace(observacao)
	if observacao == "" {
		return nil, fieldError("observacao", i18n.KeyBemObservacaoObrigatoria)
	}

	bem, err := s.avaliar(ctx, ator, id, models.StatusBemNaoAprovado, observacao)
	if err != nil {
		return nil, err
	}
	s.notifications.CadastroNaoAprovado(ctx, bem, observacao)
	return bem, nil
}
