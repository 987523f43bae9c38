package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestLocaleTag(t *testing.T) {
	tests := []struct {
		locale   string
		expected language.Tag
	}{
		{"en_US.UTF-8", language.English},
		{"de_DE.UTF-8", language.German},
		{"de_AT@euro", language.German},
		{"fr_FR.UTF-8", language.English}, // Fallback
		{"C", language.English},
		{"POSIX", language.English},
		{"", language.English},
		{"!!", language.English},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LocaleTag(tt.locale), "locale: %s", tt.locale)
	}
}

func TestNewCLIPrinter_Env(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "en_US.UTF-8")

	p := NewCLIPrinter()
	assert.Equal(t, "12,345 ranges", p.Sprintf("%d ranges", 12345))
}

func TestNewCLIPrinter_LCAllWins(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	t.Setenv("LANG", "en_US.UTF-8")

	p := NewCLIPrinter()
	assert.Equal(t, "12.345", p.Sprintf("%d", 12345))
}
