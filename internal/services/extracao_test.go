package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtrairNumeroFimDoNome(t *testing.T) {
	ext := ExtrairNumero("Cadeira giratória 123.456789012-3", "Cadeira")

	assert.Equal(t, "123.456789012-3", ext.Numero)
	assert.Equal(t, PadraoAtual, ext.Classificacao)
	assert.Equal(t, "Cadeira giratória", ext.NomeSugerido)
	assert.Equal(t, FonteNomeFim, ext.Fonte)
	// offset counts characters, not bytes
	assert.Equal(t, 18, ext.Posicao)
	assert.True(t, ext.AplicarAuto)
}

func TestExtrairNumeroInicioDoNome(t *testing.T) {
	ext := ExtrairNumero("1234567890123 Mesa de escritório", "")

	assert.Equal(t, "123.456789012-3", ext.Numero)
	assert.Equal(t, PadraoAtual, ext.Classificacao)
	assert.Equal(t, "1234567890123", ext.MatchBruto)
	assert.Equal(t, "Mesa de escritório", ext.NomeSugerido)
	assert.Equal(t, FonteNome, ext.Fonte)
	assert.Equal(t, 0, ext.Posicao)
}

func TestExtrairNumeroFimDaDescricao(t *testing.T) {
	ext := ExtrairNumero("Armário", "Armário de aço 45/2019")

	assert.Equal(t, "45/2019", ext.Numero)
	assert.Equal(t, PadraoAnterior, ext.Classificacao)
	assert.Equal(t, "Armário", ext.NomeSugerido)
	assert.Equal(t, FonteDescricaoFim, ext.Fonte)
	assert.Equal(t, 15, ext.Posicao)
	assert.True(t, ext.AplicarAuto)
}

func TestExtrairNumeroColapsaEspacos(t *testing.T) {
	ext := ExtrairNumero("Monitor  LG   456.789", "")

	assert.Equal(t, "456.789", ext.Numero)
	assert.Equal(t, PadraoAnterior, ext.Classificacao)
	assert.Equal(t, "Monitor LG", ext.NomeSugerido)
}

func TestExtrairNumeroInicioDaDescricao(t *testing.T) {
	ext := ExtrairNumero("", "987.654321098-7 notebook")

	assert.Equal(t, "987.654321098-7", ext.Numero)
	assert.Equal(t, PadraoAtual, ext.Classificacao)
	assert.Equal(t, FonteDescricao, ext.Fonte)
}

func TestExtrairNumeroSemNumero(t *testing.T) {
	ext := ExtrairNumero("Mesa", "Sem informação")

	assert.Equal(t, SemNumero, ext.Classificacao)
	assert.Empty(t, ext.Numero)
	assert.Equal(t, "Mesa", ext.NomeSugerido)
	assert.Equal(t, -1, ext.Posicao)
	assert.False(t, ext.AplicarAuto)
}

func TestExtrairNumeroIgnoraTokenComLetras(t *testing.T) {
	// the trailing number run never starts inside "2 lugares"
	ext := ExtrairNumero("Sofá 2 lugares 778", "")

	assert.Equal(t, "778", ext.Numero)
	assert.Equal(t, "Sofá 2 lugares", ext.NomeSugerido)
}
