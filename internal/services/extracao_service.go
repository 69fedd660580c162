// internal/services/extracao_service.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

const NomeArquivoSimulacao = "simulacao_extracao_numeros.csv"

var cabecalhoSimulacao = []string{
	"id",
	"nome_atual",
	"descricao_atual",
	"numero_patrimonial_atual",
	"numero_extraido",
	"classificacao",
	"fonte",
	"posicao",
	"match_bruto",
	"nome_sugerido",
	"aplicar_auto",
	"elegivel_aplicacao",
}

type ExtracaoService struct {
	store store.Store
}

type AplicarExtracaoRequest struct {
	IDs       []uint `json:"ids" validate:"required,min=1"`
	Confirmar bool   `json:"confirmar"`
}

type ResumoExtracao struct {
	Atualizados int `json:"atualizados"`
	Erros       int `json:"erros"`
	Ignorados   int `json:"ignorados"`
}

func (r *ResumoExtracao) Mensagem(lang string) string {
	return i18n.T(lang, i18n.KeyExtracaoAplicada, r.Atualizados, r.Erros, r.Ignorados)
}

func NewExtracaoService(st store.Store) *ExtracaoService {
	return &ExtracaoService{store: st}
}

func boolCSV(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func linhaSimulacao(bem *models.BemPatrimonial) []string {
	ext := ExtrairNumero(bem.Nome, bem.Descricao)
	posicao := ""
	if ext.Posicao >= 0 {
		posicao = strconv.Itoa(ext.Posicao)
	}
	numeroAtual := bem.Numero()
	return []string{
		strconv.FormatUint(uint64(bem.ID), 10),
		bem.Nome,
		bem.Descricao,
		numeroAtual,
		ext.Numero,
		string(ext.Classificacao),
		ext.Fonte,
		posicao,
		ext.MatchBruto,
		ext.NomeSugerido,
		boolCSV(ext.AplicarAuto),
		boolCSV(numeroAtual == "" && ext.AplicarAuto),
	}
}

// Simular writes the extraction preview of every asset visible to ator as a
// semicolon separated CSV. Nothing is changed.
func (s *ExtracaoService) Simular(ctx context.Context, ator *models.Ator, w io.Writer) error {
	if err := exigirPapel(ator); err != nil {
		return err
	}

	filtro := store.BemFiltro{}
	if !ator.IsGestor() {
		if ator.UnidadeAdministrativaID == nil {
			return newError(ErrForbidden, i18n.KeyBemForaDaUnidade)
		}
		filtro.UnidadeID = ator.UnidadeAdministrativaID
	}

	var bens []models.BemPatrimonial
	err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
		var err error
		bens, _, err = tx.ListBens(ctx, filtro)
		return err
	})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	cw.UseCRLF = true
	if err := cw.Write(cabecalhoSimulacao); err != nil {
		return err
	}
	for i := range bens {
		if err := cw.Write(linhaSimulacao(&bens[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// aplicarExtracao sets the numbering of bem from its extraction. It returns
// false, before writing anything, when the resulting asset fails validation.
func aplicarExtracao(ctx context.Context, tx store.Tx, bem *models.BemPatrimonial) (bool, error) {
	ext := ExtrairNumero(bem.Nome, bem.Descricao)

	if !ext.AplicarAuto && (ext.Classificacao == SemNumero || ext.Numero == "") {
		bem.SemNumeracao = true
		bem.NumeroFormatoAntigo = false
		bem.NumeroPatrimonial = nil
		if err := tx.SaveBem(ctx, bem); err != nil {
			return false, err
		}
		if err := atribuirNumeroSemNumeracao(ctx, tx, bem); err != nil {
			return false, err
		}
		return true, nil
	}

	var numero string
	switch ext.Classificacao {
	case PadraoAtual:
		numero = ext.Numero
		bem.NumeroFormatoAntigo = false
		bem.SemNumeracao = false
	case PadraoAnterior:
		numero = ext.MatchBruto
		bem.NumeroFormatoAntigo = true
		bem.SemNumeracao = false
	default:
		bem.SemNumeracao = true
	}

	if ext.NomeSugerido != "" && ext.NomeSugerido != bem.Nome {
		bem.Nome = ext.NomeSugerido
	}

	errs := &ValidationErrors{}
	if bem.SemNumeracao {
		validarNumeracao("", false, true, errs)
	} else {
		validarNumeracao(numero, bem.NumeroFormatoAntigo, false, errs)
	}
	if len([]rune(bem.Nome)) > 255 {
		errs.Add("nome", i18n.KeyValidationInvalid, "nome")
	}
	if numero != "" && !errs.Has(CampoNumeroPatrimonial) {
		emUso, err := tx.NumeroPatrimonialEmUso(ctx, numero, bem.ID)
		if err != nil {
			return false, err
		}
		if emUso {
			errs.Add(CampoNumeroPatrimonial, i18n.KeyBemNumeroDuplicado)
		}
	}
	if errs.Err() != nil {
		logrus.WithFields(logrus.Fields{
			"bem_id": bem.ID,
			"erros":  errs.Error(),
		}).Warn("Extracao rejected")
		return false, nil
	}

	if numero != "" {
		bem.NumeroPatrimonial = &numero
	}
	if err := tx.SaveBem(ctx, bem); err != nil {
		return false, err
	}
	if bem.SemNumeracao {
		if err := atribuirNumeroSemNumeracao(ctx, tx, bem); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Aplicar writes the extracted numbers into the selected assets that still
// have none. Each asset is processed in its own transaction; assets locked
// elsewhere or already numbered are skipped.
func (s *ExtracaoService) Aplicar(ctx context.Context, ator *models.Ator, ids []uint, confirmar bool) (*ResumoExtracao, error) {
	if err := exigirGestor(ator); err != nil {
		return nil, err
	}
	if !confirmar {
		return nil, fieldError("confirmar", i18n.KeyExtracaoConfirmacao)
	}

	resumo := &ResumoExtracao{}
	vistos := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if vistos[id] {
			continue
		}
		vistos[id] = true

		var (
			aplicado   bool
			bloqueados int
		)
		err := s.store.RunInTransaction(ctx, func(tx store.Tx) error {
			bens, err := tx.LockBensSemNumero(ctx, []uint{id})
			if err != nil {
				return err
			}
			bloqueados = len(bens)
			if bloqueados == 0 {
				return nil
			}
			bem := &bens[0]
			aplicado, err = aplicarExtracao(ctx, tx, bem)
			if err != nil {
				return err
			}
			if aplicado {
				atorID := ator.UsuarioID
				row := &models.StatusBemPatrimonial{
					BemPatrimonialID: bem.ID,
					Status:           bem.Status,
					Observacao:       fmt.Sprintf("Número patrimonial extraído: %s.", bem.Numero()),
					AtualizadoPorID:  &atorID,
				}
				return tx.CreateStatus(ctx, row)
			}
			return nil
		})

		switch {
		case err != nil:
			resumo.Erros++
			logrus.WithError(err).WithField("bem_id", id).Error("Failed to apply extracao")
		case bloqueados == 0:
			resumo.Ignorados++
		case aplicado:
			resumo.Atualizados++
		default:
			resumo.Erros++
		}
	}

	logrus.WithFields(logrus.Fields{
		"usuario_id":  ator.UsuarioID,
		"atualizados": resumo.Atualizados,
		"erros":       resumo.Erros,
		"ignorados":   resumo.Ignorados,
	}).Info("Extracao de numeros aplicada")
	return resumo, nil
}
