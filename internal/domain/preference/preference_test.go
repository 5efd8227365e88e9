package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carhub/service-rental/pkg/domain"
)

func TestPreferences_Apply(t *testing.T) {
	p := Default()
	require.NoError(t, p.Apply(LanguageArabic, ""))
	assert.Equal(t, LanguageArabic, p.Language)
	assert.Equal(t, ThemeLight, p.Theme)

	require.NoError(t, p.Apply("", ThemeDark))
	assert.Equal(t, ThemeDark, p.Theme)

	err := p.Apply("de", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, LanguageArabic, p.Language)

	assert.Error(t, p.Apply("", "sepia"))
}

func TestPreferences_Normalize(t *testing.T) {
	p := Preferences{Language: "xx", Theme: ThemeDark}.Normalize()
	assert.Equal(t, LanguageEnglish, p.Language)
	assert.Equal(t, ThemeDark, p.Theme)
}

func TestBanners_DismissIsIdempotent(t *testing.T) {
	var b Banners
	assert.False(t, b.IsDismissed("promo"))

	assert.True(t, b.Dismiss("promo"))
	assert.False(t, b.Dismiss("promo"))
	assert.True(t, b.IsDismissed("promo"))
	assert.Equal(t, Banners{"promo"}, b)
}
