// internal/handlers/bem.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type BemHandler struct {
	bemService *services.BemPatrimonialService
}

func NewBemHandler(bemService *services.BemPatrimonialService) *BemHandler {
	return &BemHandler{bemService: bemService}
}

// GET /bens
func (h *BemHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filtro := store.BemFiltro{
		Page:      store.Page{Offset: params.Offset(), Limit: params.Limit},
		Status:    models.StatusBem(c.Query("status")),
		UnidadeID: queryUint(c, "unidade_administrativa_id"),
		Search:    params.Search,
	}

	bens, total, err := h.bemService.Listar(c.Request.Context(), ator(c), filtro)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(bens, total, params))
}

// GET /bens/:id
func (h *BemHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	bem, err := h.bemService.Obter(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"bem": bem})
}

// POST /bens
func (h *BemHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.BemRequest
	if !bindJSON(c, &req) {
		return
	}

	bem, err := h.bemService.Criar(c.Request.Context(), ator(c), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBemCreated),
		"bem":     bem,
	})
}

// PUT /bens/:id
func (h *BemHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.BemRequest
	if !bindJSON(c, &req) {
		return
	}

	bem, err := h.bemService.Atualizar(c.Request.Context(), ator(c), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBemUpdated),
		"bem":     bem,
	})
}

// GET /bens/:id/historico
func (h *BemHandler) Historico(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	historico, err := h.bemService.Historico(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"historico": historico})
}

// GET /bens/campos?sem_numeracao=&numero_formato_antigo=
func (h *BemHandler) CamposCadastro(c *gin.Context) {
	sem, _ := strconv.ParseBool(c.Query("sem_numeracao"))
	antigo, _ := strconv.ParseBool(c.Query("numero_formato_antigo"))
	utils.SuccessResponse(c, gin.H{
		"campos": services.FieldVisibility(services.FormState{
			Creating:            true,
			SemNumeracao:        sem,
			NumeroFormatoAntigo: antigo,
		}),
	})
}

// GET /bens/:id/campos
func (h *BemHandler) Campos(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	campos, err := h.bemService.Campos(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"campos": campos})
}

// POST /bens/:id/aprovar
func (h *BemHandler) Aprovar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	bem, err := h.bemService.AprovarCadastro(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBemAprovado),
		"bem":     bem,
	})
}

// POST /bens/:id/reprovar
func (h *BemHandler) Reprovar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.ReprovarRequest
	if !bindJSON(c, &req) {
		return
	}

	bem, err := h.bemService.ReprovarCadastro(c.Request.Context(), ator(c), id, req.Observacao)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBemReprovado),
		"bem":     bem,
	})
}
