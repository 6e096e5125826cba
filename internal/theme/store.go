package theme

import (
	"context"
	"errors"
	"sync"

	"github.com/thedivyam/noon-sde3/pkg/enums"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/kv"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/metrics"
)

const DefaultStorageKey = "@noon_theme_preference"

// Store holds the appearance preference and persists it under its own key.
type Store struct {
	storage kv.Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	key     string

	mu         sync.RWMutex
	preference enums.ThemePreference
	loading    bool
}

func NewStore(storage kv.Store, logg *logger.Logger, m *metrics.StorefrontMetrics, key string) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	if key == "" {
		key = DefaultStorageKey
	}
	return &Store{
		storage:    storage,
		logg:       logg,
		metrics:    m,
		key:        key,
		preference: enums.ThemePreferenceAuto,
		loading:    true,
	}
}

// Initialize reads the saved preference. Missing, unreadable or unrecognised
// values keep the default of auto.
func (s *Store) Initialize(ctx context.Context) {
	ctx = s.logg.WithStorageKey(ctx, s.key)
	loaded := enums.ThemePreferenceAuto

	raw, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logg.Debug(ctx, "no saved theme preference")
	case err != nil:
		s.logg.Error(ctx, "failed to load theme preference", err)
	default:
		if pref, perr := enums.ParseThemePreference(raw); perr == nil {
			loaded = pref
		} else {
			s.logg.Warn(s.logg.WithField(ctx, "value", raw), "ignoring unrecognised theme preference")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.preference = loaded
	s.loading = false
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Preference() enums.ThemePreference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preference
}

// Set persists pref and only then adopts it; a failed write leaves the current
// preference in place.
func (s *Store) Set(ctx context.Context, pref enums.ThemePreference) error {
	if !pref.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid theme preference").
			WithDetails(map[string]any{"preference": pref.String()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = s.logg.WithStorageKey(ctx, s.key)
	if err := s.storage.Set(ctx, s.key, pref.String()); err != nil {
		s.logg.Error(ctx, "failed to save theme preference", err)
		s.metrics.IncStorageFailure(s.key)
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "saving theme preference")
	}
	s.preference = pref
	return nil
}

// Effective resolves the preference against the system scheme; an unknown
// system scheme counts as light.
func (s *Store) Effective(system string) enums.ColorScheme {
	return Resolve(s.Preference(), system)
}

// Toggle flips the effective scheme and stores the result as an explicit
// light or dark preference.
func (s *Store) Toggle(ctx context.Context, system string) (enums.ThemePreference, error) {
	next := enums.ThemePreferenceLight
	if s.Effective(system) == enums.ColorSchemeLight {
		next = enums.ThemePreferenceDark
	}
	if err := s.Set(ctx, next); err != nil {
		return s.Preference(), err
	}
	return next, nil
}

func Resolve(pref enums.ThemePreference, system string) enums.ColorScheme {
	switch pref {
	case enums.ThemePreferenceLight:
		return enums.ColorSchemeLight
	case enums.ThemePreferenceDark:
		return enums.ColorSchemeDark
	}
	if scheme, ok := enums.ParseColorScheme(system); ok {
		return scheme
	}
	return enums.ColorSchemeLight
}
