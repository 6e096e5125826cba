package enums

import (
	"fmt"
	"strings"
)

// ThemePreference is the persisted appearance choice; auto follows the system scheme.
type ThemePreference string

const (
	ThemePreferenceLight ThemePreference = "light"
	ThemePreferenceDark  ThemePreference = "dark"
	ThemePreferenceAuto  ThemePreference = "auto"
)

var validThemePreferences = []ThemePreference{
	ThemePreferenceLight,
	ThemePreferenceDark,
	ThemePreferenceAuto,
}

// String implements fmt.Stringer.
func (t ThemePreference) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ThemePreference.
func (t ThemePreference) IsValid() bool {
	for _, candidate := range validThemePreferences {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseThemePreference converts raw input into a ThemePreference.
func ParseThemePreference(value string) (ThemePreference, error) {
	for _, candidate := range validThemePreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid theme preference %q", value)
}

// ColorScheme is the resolved scheme actually rendered.
type ColorScheme string

const (
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

// ParseColorScheme maps a reported system scheme to a ColorScheme; unknown values yield ok=false.
func ParseColorScheme(value string) (ColorScheme, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ColorSchemeLight):
		return ColorSchemeLight, true
	case string(ColorSchemeDark):
		return ColorSchemeDark, true
	}
	return "", false
}
