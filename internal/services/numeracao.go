// internal/services/numeracao.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
	"github.com/sme-sp/bens-fisicos-backend/internal/utils"
)

const (
	CampoNumeroPatrimonial   = "numero_patrimonial"
	CampoSemNumeracao        = "sem_numeracao"
	CampoNumeroFormatoAntigo = "numero_formato_antigo"
)

// GerarNumeroSemNumeracao builds the 000.<12 digits>-0 number of an asset
// registered without numbering.
func GerarNumeroSemNumeracao(base uint) string {
	return fmt.Sprintf("000.%012d-0", base)
}

// validarNumeracao checks the exclusivity of the numbering flags and the
// number format they imply.
func validarNumeracao(numero string, formatoAntigo, semNumeracao bool, errs *ValidationErrors) {
	numero = strings.TrimSpace(numero)

	switch {
	case formatoAntigo && semNumeracao:
		errs.Add(CampoSemNumeracao, i18n.KeyBemFlagsExclusivas)
	case semNumeracao:
		if numero != "" {
			errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroDeveEstarVazio)
		}
	case formatoAntigo:
		if numero == "" {
			errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroObrigatorio)
		}
	case numero == "":
		errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroObrigatorio)
	case utils.ValidateVar(numero, "numero_patrimonial") != nil:
		errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroInvalido)
	}
}

// atribuirNumeroSemNumeracao assigns the generated number once the asset has
// an id, probing id+1, id+2, ... while the candidate is taken.
func atribuirNumeroSemNumeracao(ctx context.Context, tx store.Tx, bem *models.BemPatrimonial) error {
	if !bem.SemNumeracao || bem.Numero() != "" {
		return nil
	}

	base := bem.ID
	for {
		candidato := GerarNumeroSemNumeracao(base)
		emUso, err := tx.NumeroPatrimonialEmUso(ctx, candidato, bem.ID)
		if err != nil {
			return fmt.Errorf("check numero patrimonial: %w", err)
		}
		if !emUso {
			bem.NumeroPatrimonial = &candidato
			break
		}
		base++
	}

	return tx.SaveBem(ctx, bem)
}

// FieldState describes one numbering field of the asset form.
type FieldState struct {
	Editable bool `json:"editable"`
	Required bool `json:"required"`
}

// FormState is the input of FieldVisibility. On edit, SemNumeracao and
// NumeroFormatoAntigo are the stored flags.
type FormState struct {
	Creating            bool `json:"creating"`
	SemNumeracao        bool `json:"sem_numeracao"`
	NumeroFormatoAntigo bool `json:"numero_formato_antigo"`
}

// FieldVisibility returns which numbering fields the form may change.
func FieldVisibility(state FormState) map[string]FieldState {
	if state.Creating {
		return map[string]FieldState{
			CampoNumeroPatrimonial: {
				Editable: !state.SemNumeracao,
				Required: !state.SemNumeracao,
			},
			CampoSemNumeracao:        {Editable: true},
			CampoNumeroFormatoAntigo: {Editable: !state.SemNumeracao},
		}
	}

	return map[string]FieldState{
		CampoNumeroPatrimonial: {
			Editable: !state.SemNumeracao,
			Required: !state.SemNumeracao,
		},
		CampoSemNumeracao:        {Editable: false},
		CampoNumeroFormatoAntigo: {Editable: false},
	}
}
