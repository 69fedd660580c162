package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestExtrairCodigoUA(t *testing.T) {
	cases := map[string]string{
		"01.16.10.379": "379",
		"01.16.10.008": "008",
		"01.16.10.000": "000",
		"12":           "012",
		"108400":       "400",
		"UA-7":         "007",
		"":             "000",
		"SEM CODIGO":   "000",
	}
	for codigo, esperado := range cases {
		assert.Equal(t, esperado, ExtrairCodigoUA(codigo), codigo)
	}
}

func TestFormatarMoedaBrasileira(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatarMoedaBrasileira(decimal.Zero))
	assert.Equal(t, "R$ 999,00", FormatarMoedaBrasileira(decimal.NewFromInt(999)))
	assert.Equal(t, "R$ 1.234.567,89", FormatarMoedaBrasileira(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "R$ 1.000,50", FormatarMoedaBrasileira(decimal.RequireFromString("1000.5")))
	assert.Equal(t, "R$ -1.500,50", FormatarMoedaBrasileira(decimal.RequireFromString("-1500.5")))
}

func TestNomeArquivoCIMBPM(t *testing.T) {
	assert.Equal(t, "CIMBPM_379_408_0000001_2024.pdf", NomeArquivoCIMBPM("379.408.0000001.2024"))
}
