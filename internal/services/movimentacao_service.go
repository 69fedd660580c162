// internal/services/movimentacao_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

type MovimentacaoService struct {
	store         store.Store
	cimbpm        *CIMBPMService
	documentos    *DocumentoService
	notifications *NotificationService
	now           func() time.Time
	background    func(func())
}

type MovimentacaoRequest struct {
	BemPatrimonialID uint   `json:"bem_patrimonial_id" validate:"required"`
	UnidadeDestinoID uint   `json:"unidade_destino_id" validate:"required"`
	Observacao       string `json:"observacao" validate:"max=2000"`
}

type Acao string

const (
	AcaoAprovar  Acao = "aprovar"
	AcaoRejeitar Acao = "rejeitar"
	AcaoCancelar Acao = "cancelar"
)

func NewMovimentacaoService(st store.Store, cimbpm *CIMBPMService, documentos *DocumentoService, notifications *NotificationService) *MovimentacaoService {
	return &MovimentacaoService{
		store:         st,
		cimbpm:        cimbpm,
		documentos:    documentos,
		notifications: notifications,
		now:           time.Now,
		background:    func(f func()) { go f() },
	}
}

func movimentacaoNaoEncontrada(err error) error {
	if store.IsNotFound(err) {
		return newError(ErrNotFound, i18n.KeyMovimentacaoNotFound)
	}
	return err
}

func (s *MovimentacaoService) carregar(ctx context.Context, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	var mov *models.MovimentacaoBemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		mov, err = tx.GetMovimentacao(ctx, id)
		return movimentacaoNaoEncontrada(err)
	})
	return mov, err
}

// Criar opens a transfer of an approved asset from its current unit and
// blocks the asset until the movement is finished.
func (s *MovimentacaoService) Criar(ctx context.Context, ator *models.Ator, req MovimentacaoRequest) (*models.MovimentacaoBemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}

	var movID uint
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		bem, err := tx.LockBem(ctx, req.BemPatrimonialID)
		if err != nil {
			if store.IsNotFound(err) {
				return fieldError("bem_patrimonial_id", i18n.KeyBemNotFound)
			}
			return err
		}

		pendente, err := tx.ExisteMovimentacaoPendente(ctx, bem.ID)
		if err != nil {
			return err
		}
		if pendente {
			return newError(ErrStateConflict, i18n.KeyMovimentacaoPendenteExistente)
		}

		errs := &ValidationErrors{}
		if bem.Status != models.StatusBemAprovado {
			errs.Add("bem_patrimonial_id", i18n.KeyMovimentacaoBemNaoAprovado)
		}
		if bem.UnidadeAdministrativaID == nil {
			errs.Add("bem_patrimonial_id", i18n.KeyMovimentacaoBemSemUnidade)
			return errs.Err()
		}
		origemID := *bem.UnidadeAdministrativaID

		if !ator.IsGestor() && !ator.PertenceA(origemID) {
			return newError(ErrForbidden, i18n.KeyBemForaDaUnidade)
		}

		if req.UnidadeDestinoID == origemID {
			errs.Add("unidade_destino_id", i18n.KeyMovimentacaoMesmaUnidade)
		}
		origem, err := tx.GetUnidade(ctx, origemID)
		if err != nil {
			return err
		}
		if !origem.Ativa() {
			errs.Add("unidade_origem_id", i18n.KeyMovimentacaoOrigemInativa, origem.Nome)
		}
		destino, err := tx.GetUnidade(ctx, req.UnidadeDestinoID)
		switch {
		case store.IsNotFound(err):
			errs.Add("unidade_destino_id", i18n.KeyUnidadeNotFound)
		case err != nil:
			return err
		case !destino.Ativa():
			errs.Add("unidade_destino_id", i18n.KeyMovimentacaoDestinoInativa, destino.Nome)
		}
		if err := errs.Err(); err != nil {
			return err
		}

		mov := &models.MovimentacaoBemPatrimonial{
			BaseModel:        models.BaseModel{CriadoEm: s.now()},
			BemPatrimonialID: bem.ID,
			UnidadeOrigemID:  origem.ID,
			UnidadeDestinoID: destino.ID,
			Status:           models.StatusMovimentacaoEnviada,
			Observacao:       strings.TrimSpace(req.Observacao),
			SolicitadoPorID:  ator.UsuarioID,
		}
		if err := tx.CreateMovimentacao(ctx, mov); err != nil {
			if store.IsDuplicate(err) {
				return newError(ErrStateConflict, i18n.KeyMovimentacaoPendenteExistente)
			}
			return err
		}

		atorID := ator.UsuarioID
		if err := registrarStatus(ctx, tx, bem, models.StatusBemBloqueado,
			i18n.T(i18n.DefaultLang, i18n.KeyBemBloqueadoPor, mov.ID), &atorID); err != nil {
			return err
		}

		numero, err := s.cimbpm.GerarNumero(ctx, tx, mov, origem, destino)
		if err != nil {
			return err
		}
		mov.NumeroCIMBPM = &numero
		if err := tx.SaveMovimentacao(ctx, mov); err != nil {
			return err
		}

		movID = mov.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	mov, err := s.carregar(ctx, movID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"movimentacao_id": mov.ID,
		"bem_id":          mov.BemPatrimonialID,
		"numero_cimbpm":   mov.Numero(),
	}).Info("Movimentação solicitada")

	s.background(func() { s.documentos.gerarEmSegundoPlano(mov.ID, false) })
	s.notifications.MovimentacaoRecebida(ctx, mov)
	return mov, nil
}

// checarAceite applies the approve/reject rules for ator on mov.
func checarAceite(ator *models.Ator, mov *models.MovimentacaoBemPatrimonial) error {
	if mov.SolicitadoPorID == ator.UsuarioID {
		return newError(ErrForbidden, i18n.KeyMovimentacaoProprioSolicitante)
	}
	if ator.IsGestor() {
		return nil
	}
	if ator.PertenceA(mov.UnidadeDestinoID) {
		return nil
	}
	if ator.PertenceA(mov.UnidadeOrigemID) {
		return newError(ErrForbidden, i18n.KeyMovimentacaoOperadorOrigem)
	}
	return newError(ErrForbidden, i18n.KeyMovimentacaoForaDestino)
}

func checarCancelamento(ator *models.Ator, mov *models.MovimentacaoBemPatrimonial) error {
	if ator.IsGestor() || mov.SolicitadoPorID == ator.UsuarioID {
		return nil
	}
	return newError(ErrForbidden, i18n.KeyMovimentacaoCancelarNaoPermitido)
}

func checarUnidadesAtivas(ctx context.Context, tx store.Tx, mov *models.MovimentacaoBemPatrimonial) error {
	origem, err := tx.GetUnidade(ctx, mov.UnidadeOrigemID)
	if err != nil {
		return err
	}
	destino, err := tx.GetUnidade(ctx, mov.UnidadeDestinoID)
	if err != nil {
		return err
	}

	errs := &ValidationErrors{}
	if !origem.Ativa() {
		errs.Add("unidade_origem_id", i18n.KeyMovimentacaoOrigemInativa, origem.Nome)
	}
	if !destino.Ativa() {
		errs.Add("unidade_destino_id", i18n.KeyMovimentacaoDestinoInativa, destino.Nome)
	}
	return errs.Err()
}

var statusPorAcao = map[Acao]models.StatusMovimentacao{
	AcaoAprovar:  models.StatusMovimentacaoAceita,
	AcaoRejeitar: models.StatusMovimentacaoRejeitada,
	AcaoCancelar: models.StatusMovimentacaoCancelada,
}

// transitar finishes a pending movement. A finished movement is returned
// unchanged together with ErrJaFinalizada.
func (s *MovimentacaoService) transitar(ctx context.Context, ator *models.Ator, id uint, acao Acao, observacao string) (*models.MovimentacaoBemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}
	novoStatus := statusPorAcao[acao]

	var finalizada error
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		mov, err := tx.LockMovimentacao(ctx, id)
		if err != nil {
			return movimentacaoNaoEncontrada(err)
		}
		if mov.Status.Finalizada() {
			finalizada = newError(ErrJaFinalizada, i18n.KeyMovimentacaoJaFinalizada, mov.ID, string(mov.Status))
			return nil
		}

		if acao == AcaoCancelar {
			err = checarCancelamento(ator, mov)
		} else {
			err = checarAceite(ator, mov)
		}
		if err != nil {
			return err
		}
		if acao != AcaoCancelar {
			if err := checarUnidadesAtivas(ctx, tx, mov); err != nil {
				return err
			}
		}

		bem, err := tx.LockBem(ctx, mov.BemPatrimonialID)
		if err != nil {
			return err
		}

		atorID := ator.UsuarioID
		mov.Status = novoStatus
		switch acao {
		case AcaoAprovar:
			mov.AprovadoPorID = &atorID
			destino := mov.UnidadeDestinoID
			bem.UnidadeAdministrativaID = &destino
		case AcaoRejeitar:
			mov.RejeitadoPorID = &atorID
		case AcaoCancelar:
			mov.CanceladoPorID = &atorID
		}
		if err := tx.SaveMovimentacao(ctx, mov); err != nil {
			return err
		}

		nota := i18n.T(i18n.DefaultLang, i18n.KeyBemDesbloqueadoPor, mov.ID, string(novoStatus))
		if observacao != "" {
			nota += " " + observacao
		}
		if err := registrarStatus(ctx, tx, bem, models.StatusBemAprovado, nota, &atorID); err != nil {
			return err
		}
		// the unit moves even when the status row did not change the status
		return tx.SaveBem(ctx, bem)
	})
	if err != nil {
		return nil, err
	}

	mov, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if finalizada != nil {
		return mov, finalizada
	}

	logrus.WithFields(logrus.Fields{
		"movimentacao_id": mov.ID,
		"status":          mov.Status,
		"usuario_id":      ator.UsuarioID,
	}).Info("Movimentação finalizada")

	switch acao {
	case AcaoAprovar:
		s.background(func() { s.documentos.gerarEmSegundoPlano(mov.ID, true) })
		s.notifications.MovimentacaoAceita(ctx, mov)
	case AcaoRejeitar:
		s.notifications.MovimentacaoRejeitada(ctx, mov, observacao)
	case AcaoCancelar:
		s.notifications.MovimentacaoCancelada(ctx, mov)
	}
	return mov, nil
}

// Aprovar accepts the transfer and moves the asset to the destination unit.
func (s *MovimentacaoService) Aprovar(ctx context.Context, ator *models.Ator, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	return s.transitar(ctx, ator, id, AcaoAprovar, "")
}

func (s *MovimentacaoService) Rejeitar(ctx context.Context, ator *models.Ator, id uint, observacao string) (*models.MovimentacaoBemPatrimonial, error) {
	return s.transitar(ctx, ator, id, AcaoRejeitar, strings.TrimSpace(observacao))
}

func (s *MovimentacaoService) Cancelar(ctx context.Context, ator *models.Ator, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	return s.transitar(ctx, ator, id, AcaoCancelar, "")
}

func podeVerMovimentacao(ator *models.Ator, mov *models.MovimentacaoBemPatrimonial) bool {
	return ator.IsGestor() || ator.PertenceA(mov.UnidadeOrigemID) || ator.PertenceA(mov.UnidadeDestinoID)
}

func (s *MovimentacaoService) Obter(ctx context.Context, ator *models.Ator, id uint) (*models.MovimentacaoBemPatrimonial, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, err
	}
	mov, err := s.carregar(ctx, id)
	if err != nil {
		return nil, err
	}
	if !podeVerMovimentacao(ator, mov) {
		return nil, newError(ErrForbidden, i18n.KeyAuthForbidden)
	}
	return mov, nil
}

// Listar restricts operators to movements from or to their unit.
func (s *MovimentacaoService) Listar(ctx context.Context, ator *models.Ator, filtro store.MovimentacaoFiltro) ([]models.MovimentacaoBemPatrimonial, int64, error) {
	if err := exigirPapel(ator); err != nil {
		return nil, 0, err
	}
	if !ator.IsGestor() {
		if ator.UnidadeAdministrativaID == nil {
			return []models.MovimentacaoBemPatrimonial{}, 0, nil
		}
		filtro.UnidadeID = ator.UnidadeAdministrativaID
	}

	var (
		movs  []models.MovimentacaoBemPatrimonial
		total int64
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		movs, total, err = tx.ListMovimentacoes(ctx, filtro)
		return err
	})
	return movs, total, err
}

// ItemLote is the outcome of one movement in a bulk action.
type ItemLote struct {
	ID  uint
	Err error
}

type ResumoLote struct {
	Sucesso   int
	Falhas    int
	Ignorados int
	Itens     []ItemLote
}

// Mensagens translates the per-item outcomes that were not successful.
func (r *ResumoLote) Mensagens(lang string) []string {
	var msgs []string
	for _, item := range r.Itens {
		if item.Err == nil {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("#%d: %s", item.ID, MessageOf(item.Err, lang)))
	}
	return msgs
}

func (r *ResumoLote) Resumo(lang string) string {
	return i18n.T(lang, i18n.KeyMovimentacaoLoteResumo, r.Sucesso, r.Falhas, r.Ignorados)
}

// ExecutarLote applies acao to every id, continuing after failures.
func (s *MovimentacaoService) ExecutarLote(ctx context.Context, ator *models.Ator, acao Acao, ids []uint, observacao string) *ResumoLote {
	resumo := &ResumoLote{}
	vistos := make(map[uint]bool, len(ids))

	for _, id := range ids {
		if vistos[id] {
			continue
		}
		vistos[id] = true

		_, err := s.transitar(ctx, ator, id, acao, strings.TrimSpace(observacao))
		resumo.Itens = append(resumo.Itens, ItemLote{ID: id, Err: err})
		switch {
		case err == nil:
			resumo.Sucesso++
		case errors.Is(err, ErrJaFinalizada):
			resumo.Ignorados++
		default:
			resumo.Falhas++
			logrus.WithError(err).WithFields(logrus.Fields{
				"movimentacao_id": id,
				"acao":            acao,
			}).Warn("Bulk action item failed")
		}
	}
	return resumo
}
