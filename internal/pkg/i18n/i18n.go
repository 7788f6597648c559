package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	EN = "en"
	FR = "fr"

	Default = EN
)

var supported = []language.Tag{language.English, language.French}

var (
	matcher = language.NewMatcher(supported)
	builder = catalog.NewBuilder(catalog.Fallback(language.English))
)

// Message keys. The English text doubles as the key.
const (
	MsgValidationFailed   = "Validation failed"
	MsgInternalError      = "Something went wrong, please try again"
	MsgUnauthorized       = "Authentication required"
	MsgPasswordMismatch   = "Passwords don't match"
	MsgMissingField       = "Please fill in: %s"
	MsgBookingCreated     = "New booking request"
	MsgBookingCreatedBody = "%s requested %s on %s at %s"
	MsgNewMessage         = "New message from %s"
	MsgPasswordReset      = "Reset your HOUSIE password"
	MsgPasswordResetBody  = "Use this code to reset your password: %s"
)

var french = map[string]string{
	MsgValidationFailed:   "La validation a échoué",
	MsgInternalError:      "Une erreur est survenue, veuillez réessayer",
	MsgUnauthorized:       "Authentification requise",
	MsgPasswordMismatch:   "Les mots de passe ne correspondent pas",
	MsgMissingField:       "Veuillez remplir : %s",
	MsgBookingCreated:     "Nouvelle demande de réservation",
	MsgBookingCreatedBody: "%s a demandé %s le %s à %s",
	MsgNewMessage:         "Nouveau message de %s",
	MsgPasswordReset:      "Réinitialisez votre mot de passe HOUSIE",
	MsgPasswordResetBody:  "Utilisez ce code pour réinitialiser votre mot de passe : %s",
}

func init() {
	for key, fr := range french {
		_ = builder.SetString(language.English, key, key)
		_ = builder.SetString(language.French, key, fr)
	}
}

// Match picks the best supported locale for the given candidates. Each
// candidate may be a bare tag ("fr-CA") or a full Accept-Language header.
// Empty candidates are skipped; the first one that parses wins.
func Match(candidates ...string) string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(candidate)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf == language.No {
			continue
		}
		return localeOf(supported[idx])
	}
	return Default
}

func IsSupported(locale string) bool {
	return locale == EN || locale == FR
}

// T formats key in the given locale.
func T(locale, key string, args ...any) string {
	return printer(locale).Sprintf(key, args...)
}

func printer(locale string) *message.Printer {
	tag := language.English
	if locale == FR {
		tag = language.French
	}
	return message.NewPrinter(tag, message.Catalog(builder))
}

func localeOf(tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == FR {
		return FR
	}
	return EN
}
