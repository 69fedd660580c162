// internal/services/cimbpm.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
	"github.com/sme-sp/bens-fisicos-backend/internal/store"
)

var naoDigitos = regexp.MustCompile(`\D`)

// ExtrairCodigoUA reduces a unit code such as 01.16.10.379 to the three
// digits used in CIMBPM numbers.
func ExtrairCodigoUA(codigo string) string {
	apenasNumeros := naoDigitos.ReplaceAllString(codigo, "")
	if apenasNumeros == "" {
		return "000"
	}

	var ultimo string
	if strings.Contains(codigo, ".") {
		grupos := strings.Split(codigo, ".")
		ultimo = naoDigitos.ReplaceAllString(grupos[len(grupos)-1], "")
	} else {
		ultimo = apenasNumeros
	}
	ultimo = strings.TrimLeft(ultimo, "0")
	if ultimo == "" {
		ultimo = "0"
	}

	if len(ultimo) < 3 {
		ultimo = strings.Repeat("0", 3-len(ultimo)) + ultimo
	}
	return ultimo[len(ultimo)-3:]
}

// FormatarMoedaBrasileira renders R$ 1.234.567,89.
func FormatarMoedaBrasileira(valor decimal.Decimal) string {
	texto := valor.StringFixed(2)

	negativo := strings.HasPrefix(texto, "-")
	texto = strings.TrimPrefix(texto, "-")

	inteiro, centavos, _ := strings.Cut(texto, ".")

	var b strings.Builder
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sinal := ""
	if negativo {
		sinal = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sinal, b.String(), centavos)
}

// NomeArquivoCIMBPM is the download file name of a CIMBPM document.
func NomeArquivoCIMBPM(numero string) string {
	return "CIMBPM_" + strings.ReplaceAll(numero, ".", "_") + ".pdf"
}

type CIMBPMService struct{}

func NewCIMBPMService() *CIMBPMService {
	return &CIMBPMService{}
}

// GerarNumero returns origem.destino.sequencial.ano for mov. It must run in
// the transaction that stores the number: the year's numbered rows stay
// locked until it commits.
func (s *CIMBPMService) GerarNumero(ctx context.Context, tx store.Tx, mov *models.MovimentacaoBemPatrimonial, origem, destino *models.UnidadeAdministrativa) (string, error) {
	ano := mov.CriadoEm.Year()

	ultimo, err := tx.MaxSequencialCIMBPM(ctx, ano)
	if err != nil {
		return "", fmt.Errorf("max sequencial cimbpm %d: %w", ano, err)
	}

	return fmt.Sprintf("%s.%s.%07d.%d",
		ExtrairCodigoUA(origem.CodigoOuVazio()),
		ExtrairCodigoUA(destino.CodigoOuVazio()),
		ultimo+1,
		ano,
	), nil
}

// Numerar assigns a number to a movement that has none and saves it.
func (s *CIMBPMService) Numerar(ctx context.Context, tx store.Tx, mov *models.MovimentacaoBemPatrimonial) error {
	if mov.Numero() != "" {
		return nil
	}

	origem, err := tx.GetUnidade(ctx, mov.UnidadeOrigemID)
	if err != nil {
		return fmt.Errorf("unidade origem: %w", err)
	}
	destino, err := tx.GetUnidade(ctx, mov.UnidadeDestinoID)
	if err != nil {
		return fmt.Errorf("unidade destino: %w", err)
	}

	numero, err := s.GerarNumero(ctx, tx, mov, origem, destino)
	if err != nil {
		return err
	}
	mov.NumeroCIMBPM = &numero
	return tx.SaveMovimentacao(ctx, mov)
}
