package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/thedivyam/noon-sde3/api/responses"
	"github.com/thedivyam/noon-sde3/api/validators"
	"github.com/thedivyam/noon-sde3/pkg/enums"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

// colorSchemeHeader lets clients report the system scheme without a query string.
const colorSchemeHeader = "X-Color-Scheme"

type themeStore interface {
	Preference() enums.ThemePreference
	Effective(system string) enums.ColorScheme
	Set(ctx context.Context, pref enums.ThemePreference) error
	Toggle(ctx context.Context, system string) (enums.ThemePreference, error)
}

type themeRequest struct {
	Preference string `json:"preference" validate:"required,oneof=light dark auto"`
}

type themeView struct {
	Preference  enums.ThemePreference `json:"preference"`
	ColorScheme enums.ColorScheme     `json:"color_scheme"`
}

func systemScheme(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("system")); v != "" {
		return v
	}
	return r.Header.Get(colorSchemeHeader)
}

func newThemeView(store themeStore, system string) themeView {
	return themeView{Preference: store.Preference(), ColorScheme: store.Effective(system)}
}

func ThemeFetch(store themeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newThemeView(store, systemScheme(r)))
	}
}

func ThemeUpdate(store themeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload themeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Set(r.Context(), enums.ThemePreference(payload.Preference)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThemeView(store, systemScheme(r)))
	}
}

func ThemeToggle(store themeStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		system := systemScheme(r)
		if _, err := store.Toggle(r.Context(), system); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newThemeView(store, system))
	}
}
