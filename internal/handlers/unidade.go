// internal/handlers/unidade.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type UnidadeHandler struct {
	unidadeService *services.UnidadeService
}

func NewUnidadeHandler(unidadeService *services.UnidadeService) *UnidadeHandler {
	return &UnidadeHandler{unidadeService: unidadeService}
}

// GET /unidades
func (h *UnidadeHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filtro := store.UnidadeFiltro{
		Page:   store.Page{Offset: params.Offset(), Limit: params.Limit},
		Status: models.StatusUnidade(c.Query("status")),
		Search: params.Search,
	}

	unidades, total, err := h.unidadeService.Listar(c.Request.Context(), filtro)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(unidades, total, params))
}

// GET /unidades/:id
func (h *UnidadeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	unidade, err := h.unidadeService.Obter(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"unidade": unidade})
}

// POST /unidades
func (h *UnidadeHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UnidadeRequest
	if !bindJSON(c, &req) {
		return
	}

	unidade, err := h.unidadeService.Criar(c.Request.Context(), ator(c), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUnidadeCreated),
		"unidade": unidade,
	})
}

// PUT /unidades/:id
func (h *UnidadeHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.UnidadeRequest
	if !bindJSON(c, &req) {
		return
	}

	unidade, err := h.unidadeService.Atualizar(c.Request.Context(), ator(c), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUnidadeUpdated),
		"unidade": unidade,
	})
}

// POST /unidades/:id/inativar
func (h *UnidadeHandler) Inativar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	unidade, err := h.unidadeService.Inativar(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUnidadeInativada),
		"unidade": unidade,
	})
}

// POST /unidades/:id/ativar
func (h *UnidadeHandler) Ativar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	unidade, err := h.unidadeService.Ativar(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUnidadeAtivada),
		"unidade": unidade,
	})
}
