// internal/handlers/documento.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

type DocumentoHandler struct {
	documentoService *services.DocumentoService
}

func NewDocumentoHandler(documentoService *services.DocumentoService) *DocumentoHandler {
	return &DocumentoHandler{documentoService: documentoService}
}

// GET /documento-cimbpm/:id/download/
func (h *DocumentoHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	filename, data, err := h.documentoService.Download(c.Request.Context(), ator(c), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	utils.AttachmentResponse(c, filename, "application/pdf", data)
}
