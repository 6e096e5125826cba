package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/thedivyam/noon-sde3/pkg/enums"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/kv"
	"github.com/thedivyam/noon-sde3/pkg/logger"
)

type failingStore struct {
	*kv.Memory
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

func TestInitializeDefaultsToAuto(t *testing.T) {
	s := NewStore(kv.NewMemory(), logger.Nop(), nil, "")
	if !s.Loading() {
		t.Fatal("expected store to start loading")
	}
	s.Initialize(context.Background())
	if s.Loading() {
		t.Fatal("expected loading to end after initialize")
	}
	if got := s.Preference(); got != enums.ThemePreferenceAuto {
		t.Fatalf("expected auto, got %q", got)
	}
}

func TestInitializeRestoresSavedPreference(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	if err := mem.Set(ctx, DefaultStorageKey, "dark"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(mem, logger.Nop(), nil, "")
	s.Initialize(ctx)
	if got := s.Preference(); got != enums.ThemePreferenceDark {
		t.Fatalf("expected dark, got %q", got)
	}
}

func TestInitializeIgnoresInvalidAndUnreadableValues(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	_ = mem.Set(ctx, DefaultStorageKey, "sepia")
	s := NewStore(mem, logger.Nop(), nil, "")
	s.Initialize(ctx)
	if got := s.Preference(); got != enums.ThemePreferenceAuto {
		t.Fatalf("expected invalid value to be ignored, got %q", got)
	}

	broken := &failingStore{Memory: kv.NewMemory(), getErr: errors.New("disk gone")}
	s = NewStore(broken, logger.Nop(), nil, "")
	s.Initialize(ctx)
	if got := s.Preference(); got != enums.ThemePreferenceAuto || s.Loading() {
		t.Fatalf("expected auto after read failure, got %q loading=%v", got, s.Loading())
	}
}

func TestSetPersistsPreference(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := NewStore(mem, logger.Nop(), nil, "")
	s.Initialize(ctx)

	if err := s.Set(ctx, enums.ThemePreferenceLight); err != nil {
		t.Fatalf("set: %v", err)
	}
	raw, err := mem.Get(ctx, DefaultStorageKey)
	if err != nil || raw != "light" {
		t.Fatalf("expected persisted light, got %q err=%v", raw, err)
	}
}

func TestSetFailureKeepsPreference(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Memory: kv.NewMemory(), setErr: errors.New("read-only")}
	s := NewStore(store, logger.Nop(), nil, "")
	s.Initialize(ctx)

	err := s.Set(ctx, enums.ThemePreferenceDark)
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStorage {
		t.Fatalf("expected storage error, got %v", err)
	}
	if got := s.Preference(); got != enums.ThemePreferenceAuto {
		t.Fatalf("preference must not change on failed write, got %q", got)
	}
}

func TestSetRejectsUnknownPreference(t *testing.T) {
	s := NewStore(kv.NewMemory(), logger.Nop(), nil, "")
	err := s.Set(context.Background(), enums.ThemePreference("sepia"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		pref   enums.ThemePreference
		system string
		want   enums.ColorScheme
	}{
		{enums.ThemePreferenceLight, "dark", enums.ColorSchemeLight},
		{enums.ThemePreferenceDark, "light", enums.ColorSchemeDark},
		{enums.ThemePreferenceAuto, "dark", enums.ColorSchemeDark},
		{enums.ThemePreferenceAuto, "light", enums.ColorSchemeLight},
		{enums.ThemePreferenceAuto, "", enums.ColorSchemeLight},
		{enums.ThemePreferenceAuto, "no-preference", enums.ColorSchemeLight},
	}
	for _, tt := range tests {
		if got := Resolve(tt.pref, tt.system); got != tt.want {
			t.Fatalf("Resolve(%q, %q) = %q, want %q", tt.pref, tt.system, got, tt.want)
		}
	}
}

func TestToggleFlipsEffectiveScheme(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory(), logger.Nop(), nil, "")
	s.Initialize(ctx)

	next, err := s.Toggle(ctx, "dark")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if next != enums.ThemePreferenceLight {
		t.Fatalf("auto over a dark system should toggle to light, got %q", next)
	}

	next, err = s.Toggle(ctx, "dark")
	if err != nil || next != enums.ThemePreferenceDark {
		t.Fatalf("expected dark, got %q err=%v", next, err)
	}
	if s.Effective("light") != enums.ColorSchemeDark {
		t.Fatal("explicit preference must ignore the system scheme")
	}
}
