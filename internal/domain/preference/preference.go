// Package preference holds per-user display settings and dismissed banners.
package preference

import (
	"context"
	"fmt"

	"github.com/carhub/service-rental/pkg/domain"
)

// Language is a supported UI language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageArabic  Language = "ar"
)

// IsValid returns true if the language is supported.
func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageFrench || l == LanguageArabic
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid returns true if the theme is supported.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Preferences are the settings of one user.
type Preferences struct {
	Language Language `json:"language"`
	Theme    Theme    `json:"theme"`
}

// Default returns the settings of a user who never changed anything.
func Default() Preferences {
	return Preferences{Language: LanguageEnglish, Theme: ThemeLight}
}

// Apply sets the non-empty fields of patch after validating them.
func (p *Preferences) Apply(language Language, theme Theme) error {
	if language != "" {
		if !language.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("unsupported language: %s", language))
		}
		p.Language = language
	}
	if theme != "" {
		if !theme.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("unsupported theme: %s", theme))
		}
		p.Theme = theme
	}
	return nil
}

// Normalize replaces unknown stored values with the defaults.
func (p Preferences) Normalize() Preferences {
	def := Default()
	if !p.Language.IsValid() {
		p.Language = def.Language
	}
	if !p.Theme.IsValid() {
		p.Theme = def.Theme
	}
	return p
}

// Banners is the ordered list of banner IDs a user dismissed.
type Banners []string

// Dismiss records id. Dismissing twice is a no-op that returns false.
func (b *Banners) Dismiss(id string) bool {
	if b.IsDismissed(id) {
		return false
	}
	*b = append(*b, id)
	return true
}

// IsDismissed reports whether id was dismissed.
func (b Banners) IsDismissed(id string) bool {
	for _, v := range b {
		if v == id {
			return true
		}
	}
	return false
}

// Repository persists preferences and dismissed banners per user.
type Repository interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Save(ctx context.Context, userID string, p Preferences) error
	Banners(ctx context.Context, userID string) (Banners, error)
	UpdateBanners(ctx context.Context, userID string, fn func(*Banners) (bool, error)) error
	ResetBanners(ctx context.Context, userID string) error
}
