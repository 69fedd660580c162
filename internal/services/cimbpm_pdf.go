// internal/services/cimbpm_pdf.go
package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sme-sp/bens-fisicos-backend/internal/models"
)

// Page layout in millimetres.
const (
	pdfMargemEsquerda = 15.0
	pdfMargemDireita  = 15.0
	pdfMargemSuperior = 30.0
	pdfMargemInferior = 45.0
	pdfAlturaA4       = 297.0
	pdfLarguraA4      = 210.0

	pdfFonte       = 7.0
	pdfFonteTitulo = 8.0
	pdfLinha       = 3.3
	pdfPadding     = 1.0
)

var pdfColunasBens = []float64{35, 95, 20, 30}

var fusoSaoPaulo = carregarFuso("America/Sao_Paulo")

func carregarFuso(nome string) *time.Location {
	loc, err := time.LoadLocation(nome)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// DocumentoCIMBPM holds everything printed on a CIMBPM.
type DocumentoCIMBPM struct {
	Numero      string
	DataEmissao time.Time
	DataAceite  *time.Time
	Origem      *models.UnidadeAdministrativa
	Destino     *models.UnidadeAdministrativa
	Bens        []models.BemPatrimonial
	Entrega     *models.Usuario
	Recebimento *models.Usuario
	GeradoPor   string
	GeradoEm    time.Time
}

// NovoDocumentoCIMBPM collects the printable data of a hydrated movement.
func NovoDocumentoCIMBPM(mov *models.MovimentacaoBemPatrimonial, geradoEm time.Time) *DocumentoCIMBPM {
	doc := &DocumentoCIMBPM{
		Numero:      mov.Numero(),
		DataEmissao: mov.CriadoEm,
		Origem:      mov.UnidadeOrigem,
		Destino:     mov.UnidadeDestino,
		Entrega:     mov.SolicitadoPor,
		GeradoPor:   mov.SolicitadoPor.NomeExibicao(),
		GeradoEm:    geradoEm,
	}
	if mov.BemPatrimonial != nil {
		doc.Bens = []models.BemPatrimonial{*mov.BemPatrimonial}
	}
	if mov.Status == models.StatusMovimentacaoAceita {
		aceite := mov.AtualizadoEm
		doc.DataAceite = &aceite
		doc.Recebimento = mov.AprovadoPor
	}
	return doc
}

type CIMBPMRenderer struct{}

func NewCIMBPMRenderer() *CIMBPMRenderer {
	return &CIMBPMRenderer{}
}

// pdfDoc is the state of one Render call. A Caser must not be shared
// between goroutines, so each document builds its own.
type pdfDoc struct {
	*fpdf.Fpdf
	tr    func(string) string
	upper cases.Caser
}

func (pdf *pdfDoc) up(s string) string {
	return pdf.upper.String(s)
}

// Render lays out the document on A4 pages and returns the PDF bytes.
func (r *CIMBPMRenderer) Render(doc *DocumentoCIMBPM) ([]byte, error) {
	if doc.Origem == nil || doc.Destino == nil {
		return nil, fmt.Errorf("cimbpm %s: unidades not loaded", doc.Numero)
	}

	f := fpdf.New("P", "mm", "A4", "")
	pdf := &pdfDoc{
		Fpdf:  f,
		tr:    f.UnicodeTranslatorFromDescriptor(""),
		upper: cases.Upper(language.BrazilianPortuguese),
	}

	pdf.SetTitle("CIMBPM "+doc.Numero, true)
	pdf.SetAuthor("Sistema de Bens Físicos - SME", true)
	pdf.SetMargins(pdfMargemEsquerda, pdfMargemSuperior, pdfMargemDireita)
	pdf.SetAutoPageBreak(false, pdfMargemInferior)
	pdf.SetHeaderFunc(func() { r.cabecalho(pdf, doc) })
	pdf.SetFooterFunc(func() { r.rodape(pdf, doc) })

	pdf.AddPage()
	r.informacoesGerais(pdf, doc)
	pdf.Ln(2)
	r.tabelaBens(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render cimbpm %s: %w", doc.Numero, err)
	}
	return buf.Bytes(), nil
}

func dataBR(t time.Time) string {
	return t.In(fusoSaoPaulo).Format("02/01/2006")
}

func (r *CIMBPMRenderer) cabecalho(pdf *pdfDoc, doc *DocumentoCIMBPM) {
	x, y := pdfMargemEsquerda, 10.0

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetLineWidth(0.35)
	pdf.Rect(x, y, 111, 20, "D")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(x, y)
	pdf.CellFormat(25, 20, "PMSP", "", 0, "CM", false, 0, "")

	pdf.SetXY(x+25, y+4)
	pdf.SetFont("Helvetica", "B", pdfFonteTitulo)
	pdf.CellFormat(86, 3.5, pdf.tr("PREFEITURA MUNICIPAL DE SÃO PAULO"), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(86, 3.5, pdf.tr("SECRETARIA MUNICIPAL DE EDUCAÇÃO"), "", 2, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	for _, linha := range pdf.quebrar("CONTROLE INTERNO DA MOVIMENTAÇÃO DE BENS PATRIMONIAIS MÓVEIS E INTANGÍVEIS (CIMBPM)", 84) {
		pdf.CellFormat(86, 3, pdf.tr(linha), "", 2, "C", false, 0, "")
	}

	// REGISTRO DA CIMBPM box
	rx := x + 111
	emissao := ""
	if !doc.DataEmissao.IsZero() {
		emissao = dataBR(doc.DataEmissao)
	}
	aceite := ""
	if doc.DataAceite != nil {
		aceite = dataBR(*doc.DataAceite)
	}

	pdf.SetLineWidth(0.2)
	pdf.SetFont("Helvetica", "B", pdfFonteTitulo)
	pdf.SetFillColor(0xE0, 0xE0, 0xE0)
	pdf.SetXY(rx, y)
	pdf.CellFormat(69, 5.5, "REGISTRO DA CIMBPM", "1", 2, "CM", true, 0, "")

	pdf.SetFont("Helvetica", "B", pdfFonte)
	pdf.SetFillColor(0xF5, 0xF5, 0xF5)
	pdf.CellFormat(36, 4.5, "DATA", "1", 0, "CM", true, 0, "")
	pdf.CellFormat(33, 9, pdf.tr("NÚMERO CIMBPM"), "1", 0, "CM", true, 0, "")
	pdf.SetXY(rx, y+10)
	pdf.SetFillColor(0xF0, 0xF0, 0xF0)
	pdf.CellFormat(18, 4.5, pdf.tr("EMISSÃO"), "1", 0, "CM", true, 0, "")
	pdf.CellFormat(18, 4.5, "ACEITE", "1", 0, "CM", true, 0, "")

	pdf.SetXY(rx, y+14.5)
	pdf.SetFont("Helvetica", "", pdfFonteTitulo)
	pdf.CellFormat(18, 5.5, emissao, "1", 0, "CM", false, 0, "")
	pdf.CellFormat(18, 5.5, aceite, "1", 0, "CM", false, 0, "")
	pdf.CellFormat(33, 5.5, doc.Numero, "1", 0, "CM", false, 0, "")

	pdf.SetXY(pdfMargemEsquerda, pdfMargemSuperior)
}

func (r *CIMBPMRenderer) informacoesGerais(pdf *pdfDoc, doc *DocumentoCIMBPM) {
	larguras := []float64{25, 125, 30}

	linhas := [][2][]string{
		{{"PREFIXO", "ÓRGÃO", "CÓDIGO"}, {"SME", "SECRETARIA MUNICIPAL DE EDUCAÇÃO", "16"}},
		{
			{"PREFIXO", "UNIDADE ORÇAMENTÁRIA / UNIDADE ADMINISTRATIVA QUE ENTREGA", "CÓDIGO"},
			{pdf.up(doc.Origem.Sigla), pdf.up(doc.Origem.Nome), doc.Origem.CodigoOuVazio()},
		},
		{
			{"PREFIXO", "UNIDADE ORÇAMENTÁRIA / UNIDADE ADMINISTRATIVA QUE RECEBE", "CÓDIGO"},
			{pdf.up(doc.Destino.Sigla), pdf.up(doc.Destino.Nome), doc.Destino.CodigoOuVazio()},
		},
	}

	for _, l := range linhas {
		pdf.SetFont("Helvetica", "B", pdfFonte)
		pdf.SetFillColor(0xF5, 0xF5, 0xF5)
		pdf.linha(larguras, l[0], []string{"L", "L", "L"}, true)
		pdf.SetFont("Helvetica", "", pdfFonte)
		pdf.linha(larguras, l[1], []string{"L", "L", "L"}, false)
	}
}

func (r *CIMBPMRenderer) cabecalhoBens(pdf *pdfDoc) {
	pdf.SetFont("Helvetica", "B", pdfFonte)
	pdf.SetFillColor(0xE0, 0xE0, 0xE0)
	pdf.linha(pdfColunasBens,
		[]string{"NÚMERO DE CHAPA DE IDENTIFICAÇÃO", "DISCRIMINAÇÃO", "QUANTIDADE", "VALOR UNITÁRIO"},
		[]string{"C", "C", "C", "C"}, true)
	pdf.SetFont("Helvetica", "", pdfFonte)
}

func (r *CIMBPMRenderer) tabelaBens(pdf *pdfDoc, doc *DocumentoCIMBPM) {
	r.cabecalhoBens(pdf)

	total := decimal.Zero
	alinhamento := []string{"C", "L", "C", "C"}
	for i, bem := range doc.Bens {
		numero := bem.Numero()
		if numero == "" {
			numero = "-"
		}
		descricao := "-"
		if bem.Descricao != "" {
			descricao = pdf.up(bem.Descricao)
		}
		celulas := []string{numero, descricao, "1", FormatarMoedaBrasileira(bem.ValorUnitario)}

		if pdf.GetY()+pdf.alturaLinha(pdfColunasBens, celulas) > pdfAlturaA4-pdfMargemInferior {
			pdf.AddPage()
			r.cabecalhoBens(pdf)
		}

		zebra := i%2 == 1
		if zebra {
			pdf.SetFillColor(0xFA, 0xFA, 0xFA)
		}
		pdf.linha(pdfColunasBens, celulas, alinhamento, zebra)
		total = total.Add(bem.ValorUnitario)
	}

	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", pdfFonte)
	pdf.SetFillColor(0xF5, 0xF5, 0xF5)
	pdf.linha(pdfColunasBens,
		[]string{"", "TOTAL GERAL", fmt.Sprintf("%d", len(doc.Bens)), FormatarMoedaBrasileira(total)},
		[]string{"C", "R", "C", "C"}, true)
}

func responsavel(u *models.Usuario, upper func(string) string) string {
	if u == nil {
		return ""
	}
	rf := u.RF
	if rf == "" {
		rf = "-"
	}
	return fmt.Sprintf("%s - RF: %s", upper(u.NomeExibicao()), rf)
}

func (r *CIMBPMRenderer) rodape(pdf *pdfDoc, doc *DocumentoCIMBPM) {
	y := pdfAlturaA4 - pdfMargemInferior

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(pdfMargemEsquerda, y)
	pdf.SetFont("Helvetica", "B", pdfFonte)
	pdf.SetFillColor(0xE0, 0xE0, 0xE0)
	pdf.CellFormat(90, 5, pdf.tr("RESPONSÁVEL PELA ENTREGA"), "1", 0, "CM", true, 0, "")
	pdf.CellFormat(90, 5, pdf.tr("RESPONSÁVEL PELO RECEBIMENTO"), "1", 1, "CM", true, 0, "")

	recebimento := ""
	if doc.DataAceite != nil {
		recebimento = responsavel(doc.Recebimento, pdf.up)
	}
	pdf.SetX(pdfMargemEsquerda)
	pdf.SetFont("Helvetica", "", pdfFonte)
	pdf.CellFormat(90, 5, pdf.tr(responsavel(doc.Entrega, pdf.up)), "1", 0, "CM", false, 0, "")
	pdf.CellFormat(90, 5, pdf.tr(recebimento), "1", 1, "CM", false, 0, "")
	pdf.SetX(pdfMargemEsquerda)
	pdf.CellFormat(90, 12, "", "1", 0, "", false, 0, "")
	pdf.CellFormat(90, 12, "", "1", 1, "", false, 0, "")

	pdf.SetTextColor(128, 128, 128)
	pdf.SetXY(pdfMargemEsquerda, pdfAlturaA4-17)
	geradoEm := doc.GeradoEm.In(fusoSaoPaulo)
	info := fmt.Sprintf("Gerado por %s em %s às %s", doc.GeradoPor, geradoEm.Format("02/01/2006"), geradoEm.Format("15:04"))
	pdf.CellFormat(120, 4, pdf.tr(info), "", 0, "L", false, 0, "")

	pdf.SetXY(pdfLarguraA4-pdfMargemDireita-40, pdfAlturaA4-17)
	pdf.CellFormat(40, 4, pdf.tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// quebrar word-wraps text to the given width in the current font.
func (pdf *pdfDoc) quebrar(texto string, largura float64) []string {
	palavras := strings.Fields(texto)
	if len(palavras) == 0 {
		return []string{""}
	}

	var linhas []string
	atual := palavras[0]
	for _, p := range palavras[1:] {
		candidata := atual + " " + p
		if pdf.GetStringWidth(pdf.tr(candidata)) > largura {
			linhas = append(linhas, atual)
			atual = p
			continue
		}
		atual = candidata
	}
	return append(linhas, atual)
}

func (pdf *pdfDoc) alturaLinha(larguras []float64, celulas []string) float64 {
	maxLinhas := 1
	for i, c := range celulas {
		if n := len(pdf.quebrar(c, larguras[i]-2*pdfPadding)); n > maxLinhas {
			maxLinhas = n
		}
	}
	return float64(maxLinhas)*pdfLinha + 2*pdfPadding
}

// linha draws one bordered table row, wrapping each cell.
func (pdf *pdfDoc) linha(larguras []float64, celulas, alinhamento []string, preencher bool) {
	altura := pdf.alturaLinha(larguras, celulas)
	x, y := pdfMargemEsquerda, pdf.GetY()

	estilo := "D"
	if preencher {
		estilo = "FD"
	}

	for i, c := range celulas {
		pdf.Rect(x, y, larguras[i], altura, estilo)
		for j, l := range pdf.quebrar(c, larguras[i]-2*pdfPadding) {
			pdf.SetXY(x+pdfPadding, y+pdfPadding+float64(j)*pdfLinha)
			pdf.CellFormat(larguras[i]-2*pdfPadding, pdfLinha, pdf.tr(l), "", 0, alinhamento[i], false, 0, "")
		}
		x += larguras[i]
	}
	pdf.SetXY(pdfMargemEsquerda, y+altura)
}
