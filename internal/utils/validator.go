// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

var validate *validator.Validate

var (
	numeroPatrimonialRE      = regexp.MustCompile(`^\d{3}\.\d{9}-\d$`)
	numeroPatrimonialLongoRE = regexp.MustCompile(`^\d{3}\.\d{12}-\d$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("numero_patrimonial", validateNumeroPatrimonial)
	validate.RegisterValidation("origem_bem", validateOrigemBem)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

// NumeroPatrimonialValido accepts 000.000000000-0 and the generated
// 000.000000000000-0 layout.
func NumeroPatrimonialValido(numero string) bool {
	return numeroPatrimonialRE.MatchString(numero) || numeroPatrimonialLongoRE.MatchString(numero)
}

func validateNumeroPatrimonial(fl validator.FieldLevel) bool {
	return NumeroPatrimonialValido(fl.Field().String())
}

func validateOrigemBem(fl validator.FieldLevel) bool {
	origem := models.OrigemBem(fl.Field().String())
	for _, o := range models.Origens {
		if o == origem {
			return true
		}
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   toSnakeCase(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo é obrigatório."
	case "email":
		return "Informe um e-mail válido."
	case "min":
		return "O valor mínimo é " + e.Param() + "."
	case "max":
		return "O valor máximo é " + e.Param() + "."
	case "gt", "gtfield":
		return "Informe um valor válido."
	case "numero_patrimonial":
		return "Número Patrimonial inválido. Use o formato 000.000000000-0."
	case "origem_bem":
		return "Origem inválida."
	default:
		return "Valor inválido."
	}
}
