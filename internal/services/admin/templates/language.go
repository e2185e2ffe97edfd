package templates

import (
	admini18n "github.com/offerboat/admin/internal/services/admin/i18n"
)

// LanguageOption represents a supported language option in the dashboard.
type LanguageOption = admini18n.LanguageOption

// LanguageOptions returns supported language options with active selection.
func LanguageOptions(page PageContext) []LanguageOption {
	return admini18n.LanguageOptions(page.Lang, page.Loc)
}

// LanguageURL returns the current URL with the language param updated.
func LanguageURL(page PageContext, tag string) string {
	return admini18n.LanguageURL(page.CurrentPath, page.CurrentQuery, tag)
}
