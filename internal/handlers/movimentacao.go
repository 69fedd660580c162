// internal/handlers/movimentacao.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type MovimentacaoHandler struct {
	movimentacaoService *services.MovimentacaoService
}

type TransicaoRequest struct {
	Observacao string `json:"observacao" validate:"max=2000"`
}

type LoteRequest struct {
	IDs        []uint `json:"ids" validate:"required,min=1"`
	Observacao string `json:"observacao" validate:"max=2000"`
}

func NewMovimentacaoHandler(movimentacaoService *services.MovimentacaoService) *MovimentacaoHandler {
	return &MovimentacaoHandler{movimentacaoService: movimentacaoService}
}

// GET /movimentacoes
func (h *MovimentacaoHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filtro := store.MovimentacaoFiltro{
		Page:      store.Page{Offset: params.Offset(), Limit: params.Limit},
		Status:    models.StatusMovimentacao(c.Query("status")),
		BemID:     queryUint(c, "bem_patrimonial_id"),
		UnidadeID: queryUint(c, "unidade_id"),
	}

	movs, total, err := h.movimentacaoService.Listar(c.Request.Context(), ator(c), filtro)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(movs, total, params))
}

// GET /movimentacoes/:id
func (h *MovimentacaoHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	mov, err := h.movimentacaoService.Obter(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"movimentacao": mov})
}

// POST /movimentacoes
func (h *MovimentacaoHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.MovimentacaoRequest
	if !bindJSON(c, &req) {
		return
	}

	mov, err := h.movimentacaoService.Criar(c.Request.Context(), ator(c), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyMovimentacaoCreated),
		"movimentacao": mov,
	})
}

var mensagemTransicao = map[services.Acao]string{
	services.AcaoAprovar:  i18n.KeyMovimentacaoAceita,
	services.AcaoRejeitar: i18n.KeyMovimentacaoRejeitada,
	services.AcaoCancelar: i18n.KeyMovimentacaoCancelada,
}

func (h *MovimentacaoHandler) transicao(c *gin.Context, acao services.Acao) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req TransicaoRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	var (
		mov *models.MovimentacaoBemPatrimonial
		err error
	)
	ctx := c.Request.Context()
	switch acao {
	case services.AcaoAprovar:
		mov, err = h.movimentacaoService.Aprovar(ctx, ator(c), id)
	case services.AcaoRejeitar:
		mov, err = h.movimentacaoService.Rejeitar(ctx, ator(c), id, req.Observacao)
	default:
		mov, err = h.movimentacaoService.Cancelar(ctx, ator(c), id)
	}

	if errors.Is(err, services.ErrJaFinalizada) {
		utils.WarningResponse(c, services.MessageOf(err, lang), gin.H{"movimentacao": mov})
		return
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, mensagemTransicao[acao]),
		"movimentacao": mov,
	})
}

// POST /movimentacoes/:id/aprovar
func (h *MovimentacaoHandler) Aprovar(c *gin.Context) {
	h.transicao(c, services.AcaoAprovar)
}

// POST /movimentacoes/:id/rejeitar
func (h *MovimentacaoHandler) Rejeitar(c *gin.Context) {
	h.transicao(c, services.AcaoRejeitar)
}

// POST /movimentacoes/:id/cancelar
func (h *MovimentacaoHandler) Cancelar(c *gin.Context) {
	h.transicao(c, services.AcaoCancelar)
}

func (h *MovimentacaoHandler) lote(c *gin.Context, acao services.Acao) {
	lang := utils.GetLangFromContext(c)

	var req LoteRequest
	if !bindJSON(c, &req) {
		return
	}

	resumo := h.movimentacaoService.ExecutarLote(c.Request.Context(), ator(c), acao, req.IDs, req.Observacao)
	utils.SuccessResponse(c, gin.H{
		"message":   resumo.Resumo(lang),
		"sucesso":   resumo.Sucesso,
		"falhas":    resumo.Falhas,
		"ignorados": resumo.Ignorados,
		"mensagens": resumo.Mensagens(lang),
	})
}

// POST /movimentacoes/acoes/aprovar
func (h *MovimentacaoHandler) AprovarLote(c *gin.Context) {
	h.lote(c, services.AcaoAprovar)
}

// POST /movimentacoes/acoes/rejeitar
func (h *MovimentacaoHandler) RejeitarLote(c *gin.Context) {
	h.lote(c, services.AcaoRejeitar)
}

// POST /movimentacoes/acoes/cancelar
func (h *MovimentacaoHandler) CancelarLote(c *gin.Context) {
	h.lote(c, services.AcaoCancelar)
}
