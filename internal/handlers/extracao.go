// internal/handlers/extracao.go
package handlers

import (
	"bytes"

	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type ExtracaoHandler struct {
	extracaoService *services.ExtracaoService
}

func NewExtracaoHandler(extracaoService *services.ExtracaoService) *ExtracaoHandler {
	return &ExtracaoHandler{extracaoService: extracaoService}
}

// GET /bens/extracao/simular
func (h *ExtracaoHandler) Simular(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.extracaoService.Simular(c.Request.Context(), ator(c), &buf); err != nil {
		handleServiceError(c, err)
		return
	}
	utils.AttachmentResponse(c, services.NomeArquivoSimulacao, "text/csv; charset=utf-8", buf.Bytes())
}

// POST /bens/extracao/aplicar
func (h *ExtracaoHandler) Aplicar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AplicarExtracaoRequest
	if !bindJSON(c, &req) {
		return
	}

	resumo, err := h.extracaoService.Aplicar(c.Request.Context(), ator(c), req.IDs, req.Confirmar)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": resumo.Mensagem(lang),
		"resumo":  resumo,
	})
}
