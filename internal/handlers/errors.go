// internal/handlers/errors.go
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/middleware"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/services"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

// handleServiceError maps the service error kinds onto HTTP statuses.
func handleServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var fields *services.ValidationErrors
	if errors.As(err, &fields) {
		details := make([]utils.ValidationError, 0, len(fields.Fields))
		for _, f := range fields.Fields {
			details = append(details, utils.ValidationError{Field: f.Field, Tag: f.Key, Message: f.Message(lang)})
		}
		utils.ValidationErrorResponse(c, details)
		return
	}

	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
		return
	}

	message := svcErr.Message(lang)
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ValidationErrorResponse(c, []utils.ValidationError{{Field: svcErr.Field, Tag: svcErr.Key, Message: message}})
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, message)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, message)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
	case errors.Is(err, services.ErrStateConflict):
		utils.ConflictResponse(c, message)
	case errors.Is(err, services.ErrJaFinalizada):
		utils.WarningResponse(c, message, nil)
	default:
		utils.InternalErrorResponse(c, message)
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be absent,
// including chunked requests without a Content-Length.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		if !errors.Is(err, io.EOF) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return false
		}
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "id"), nil)
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) *uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || v == 0 {
		return nil
	}
	id := uint(v)
	return &id
}

func ator(c *gin.Context) *models.Ator {
	return middleware.GetAtor(c)
}
