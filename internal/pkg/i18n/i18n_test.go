package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"empty", nil, EN},
		{"bare french", []string{"fr"}, FR},
		{"canadian french", []string{"fr-CA"}, FR},
		{"accept header", []string{"de-DE,fr;q=0.8,en;q=0.5"}, FR},
		{"first non-empty wins", []string{"", "en-CA", "fr"}, EN},
		{"unsupported falls back", []string{"ja"}, EN},
		{"garbage skipped", []string{"!!", "fr"}, FR},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Match(tc.candidates...))
		})
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "Passwords don't match", T(EN, MsgPasswordMismatch))
	assert.Equal(t, "Les mots de passe ne correspondent pas", T(FR, MsgPasswordMismatch))
	assert.Equal(t, "Nouveau message de Marie", T(FR, MsgNewMessage, "Marie"))
	assert.Equal(t, "New message from Marie", T("xx", MsgNewMessage, "Marie"))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("fr"))
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("es"))
}
