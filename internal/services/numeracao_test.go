package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var formatoSemNumeracao = regexp.MustCompile(`^\d{3}\.\d{12}-\d$`)

func TestGerarNumeroSemNumeracao(t *testing.T) {
	numero := GerarNumeroSemNumeracao(42)
	assert.Equal(t, "000.000000000042-0", numero)
	assert.Len(t, numero, 18)
	assert.Regexp(t, formatoSemNumeracao, numero)
}

func TestValidarNumeracao(t *testing.T) {
	cases := []struct {
		name          string
		numero        string
		formatoAntigo bool
		semNumeracao  bool
		campo         string
	}{
		{name: "flags exclusivas", formatoAntigo: true, semNumeracao: true, campo: CampoSemNumeracao},
		{name: "sem numeracao com numero", numero: "123.456789012-3", semNumeracao: true, campo: CampoNumeroPatrimonial},
		{name: "formato antigo vazio", formatoAntigo: true, campo: CampoNumeroPatrimonial},
		{name: "numero obrigatorio", campo: CampoNumeroPatrimonial},
		{name: "formato invalido", numero: "123.456", campo: CampoNumeroPatrimonial},
		{name: "formato atual", numero: "123.456789012-3"},
		{name: "formato antigo livre", numero: "45/2019", formatoAntigo: true},
		{name: "sem numeracao vazio", semNumeracao: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := &ValidationErrors{}
			validarNumeracao(tc.numero, tc.formatoAntigo, tc.semNumeracao, errs)
			if tc.campo == "" {
				assert.NoError(t, errs.Err())
				return
			}
			assert.True(t, errs.Has(tc.campo), errs.Error())
			assert.ErrorIs(t, errs.Err(), ErrValidation)
		})
	}
}

func TestFieldVisibilityCreating(t *testing.T) {
	campos := FieldVisibility(FormState{Creating: true})
	assert.Equal(t, FieldState{Editable: true, Required: true}, campos[CampoNumeroPatrimonial])
	assert.True(t, campos[CampoSemNumeracao].Editable)
	assert.True(t, campos[CampoNumeroFormatoAntigo].Editable)

	campos = FieldVisibility(FormState{Creating: true, SemNumeracao: true})
	assert.Equal(t, FieldState{}, campos[CampoNumeroPatrimonial])
	assert.True(t, campos[CampoSemNumeracao].Editable)
	assert.False(t, campos[CampoNumeroFormatoAntigo].Editable)
}

func TestFieldVisibilityEditing(t *testing.T) {
	campos := FieldVisibility(FormState{NumeroFormatoAntigo: true})
	assert.Equal(t, FieldState{Editable: true, Required: true}, campos[CampoNumeroPatrimonial])
	assert.False(t, campos[CampoSemNumeracao].Editable)
	assert.False(t, campos[CampoNumeroFormatoAntigo].Editable)

	campos = FieldVisibility(FormState{SemNumeracao: true})
	assert.False(t, campos[CampoNumeroPatrimonial].Editable)
	assert.False(t, campos[CampoNumeroPatrimonial].Required)
}
