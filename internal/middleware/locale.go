package middleware

import (
	"housie/internal/pkg/i18n"

	"github.com/gin-gonic/gin"
)

const localeHeader = "X-Locale"

// Locale negotiates en/fr from ?lang=, the client's stored preference sent
// as X-Locale, then Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.Match(
			c.Query("lang"),
			c.GetHeader(localeHeader),
			c.GetHeader("Accept-Language"),
		)
		c.Set("locale", locale)
		c.Writer.Header().Set("Content-Language", locale)
		c.Next()
	}
}

// LocaleFrom reads the negotiated locale, defaulting to English.
func LocaleFrom(c *gin.Context) string {
	if l := c.GetString("locale"); l != "" {
		return l
	}
	return i18n.Default
}
