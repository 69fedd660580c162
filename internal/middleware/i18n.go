// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/sme-sp/bens-fisicos-backend/internal/i18n"
)

// Index order matches localeNames.
var supportedLocales = language.NewMatcher([]language.Tag{
	language.BrazilianPortuguese,
	language.English,
})

var localeNames = []string{i18n.DefaultLang, "en"}

// ResolveLang picks the locale for an Accept-Language header, defaulting to
// Brazilian Portuguese.
func ResolveLang(header string) string {
	if header == "" {
		return i18n.DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return i18n.DefaultLang
	}
	_, index, confidence := supportedLocales.Match(tags...)
	if confidence == language.No {
		return i18n.DefaultLang
	}
	return localeNames[index]
}

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", ResolveLang(c.GetHeader("Accept-Language")))
		c.Next()
	}
}
