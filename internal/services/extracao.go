// internal/services/extracao.go
package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

type Classificacao string

const (
	PadraoAtual    Classificacao = "PADRAO_ATUAL"
	PadraoAnterior Classificacao = "PADRAO_ANTERIOR"
	SemNumero      Classificacao = "SEM_NUMERO"
)

const (
	FonteNome         = "nome"
	FonteDescricao    = "descricao"
	FonteNomeFim      = "nome_fim"
	FonteDescricaoFim = "descricao_fim"
)

var (
	padraoAtualRE     = regexp.MustCompile(`^\d{3}\.\d{9}-\d$`)
	letrasRE          = regexp.MustCompile(`[A-Za-zÁ-ú]`)
	tokenFinalRE      = regexp.MustCompile(`([0-9][0-9.\-\s/]*[0-9])\s*$`)
	espacosRE         = regexp.MustCompile(`\s{2,}`)
	comecaSemDigitoRE = regexp.MustCompile(`^[^\d]+`)
)

// Extracao is the number found in an asset's free text.
type Extracao struct {
	Numero        string
	Classificacao Classificacao
	NomeSugerido  string
	Fonte         string
	// Posicao is a character offset, -1 when nothing was found.
	Posicao     int
	MatchBruto  string
	AplicarAuto bool
}

func coagirPadraoAtual(token string) (string, bool) {
	d := naoDigitos.ReplaceAllString(token, "")
	if len(d) != 13 {
		return "", false
	}
	return d[:3] + "." + d[3:12] + "-" + d[12:], true
}

// classificar maps a token to its numbering pattern and normalized value.
func classificar(token string) (Classificacao, string) {
	if token == "" || letrasRE.MatchString(token) {
		return SemNumero, ""
	}
	if padraoAtualRE.MatchString(token) {
		return PadraoAtual, token
	}
	if coagido, ok := coagirPadraoAtual(token); ok {
		return PadraoAtual, coagido
	}
	return PadraoAnterior, token
}

// primeiroToken returns the leading token up to a space or '/' and the byte
// offset where it ends.
func primeiroToken(texto string) (string, int) {
	t := strings.TrimLeft(texto, " \t\n\r\v\f")
	fim := strings.IndexAny(t, " /")
	if fim < 0 {
		fim = len(t)
	}
	return strings.TrimSpace(strings.TrimRight(t[:fim], "/")), fim
}

// ultimoTokenNumerico returns the trailing run of digits, dots, dashes,
// spaces and slashes ending in a digit, with its byte offset in base.
func ultimoTokenNumerico(texto string) (token string, base string, inicio int) {
	base = strings.TrimSpace(texto)
	if base == "" {
		return "", base, -1
	}
	m := tokenFinalRE.FindStringSubmatchIndex(base)
	if m == nil {
		return "", base, -1
	}
	token = strings.TrimSpace(strings.TrimRight(base[m[2]:m[3]], "/"))
	if token == "" || letrasRE.MatchString(token) {
		return "", base, -1
	}
	return token, base, m[2]
}

func colapsarEspacos(s string) string {
	return strings.TrimSpace(espacosRE.ReplaceAllString(strings.TrimSpace(s), " "))
}

func semNumero(nome string) Extracao {
	return Extracao{Classificacao: SemNumero, NomeSugerido: nome, Posicao: -1}
}

// ExtrairNumero finds a patrimonial number written into nome or descricao.
// Names starting with a non-digit are searched at the end of nome and then
// of descricao; otherwise at the start of nome and then of descricao.
func ExtrairNumero(nome, descricao string) Extracao {
	if comecaSemDigitoRE.MatchString(nome) {
		fontes := []struct{ fonte, texto string }{
			{FonteNomeFim, nome},
			{FonteDescricaoFim, descricao},
		}
		for _, f := range fontes {
			token, base, inicio := ultimoTokenNumerico(f.texto)
			if token == "" {
				continue
			}
			cls, normalizado := classificar(token)
			if normalizado == "" {
				normalizado = token
			}

			sugerido := nome
			if f.fonte == FonteNomeFim {
				if s := colapsarEspacos(base[:inicio]); s != "" {
					sugerido = s
				}
			}
			return Extracao{
				Numero:        normalizado,
				Classificacao: cls,
				NomeSugerido:  sugerido,
				Fonte:         f.fonte,
				Posicao:       utf8.RuneCountInString(base[:inicio]),
				MatchBruto:    token,
				AplicarAuto:   true,
			}
		}
		return semNumero(nome)
	}

	if token, fim := primeiroToken(nome); token != "" && !letrasRE.MatchString(token) {
		cls, normalizado := classificar(token)
		if normalizado == "" {
			normalizado = token
		}
		sugerido := colapsarEspacos(strings.TrimLeft(strings.TrimLeft(nome, " \t\n\r\v\f")[fim:], " /-_;\t"))
		if sugerido == "" {
			sugerido = nome
		}
		return Extracao{
			Numero:        normalizado,
			Classificacao: cls,
			NomeSugerido:  sugerido,
			Fonte:         FonteNome,
			Posicao:       0,
			MatchBruto:    token,
			AplicarAuto:   true,
		}
	}

	if token, _ := primeiroToken(descricao); token != "" && !letrasRE.MatchString(token) {
		cls, normalizado := classificar(token)
		if normalizado == "" {
			normalizado = token
		}
		return Extracao{
			Numero:        normalizado,
			Classificacao: cls,
			NomeSugerido:  nome,
			Fonte:         FonteDescricao,
			Posicao:       0,
			MatchBruto:    token,
			AplicarAuto:   true,
		}
	}

	return semNumero(nome)
}
