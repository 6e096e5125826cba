package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
)

type queryPayload struct {
	Query string `json:"query" validate:"max=5"`
}

type preferencePayload struct {
	Preference string `json:"preference" validate:"required,oneof=light dark auto"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"query":"x","extra":1}`))
	var dest queryPayload
	err := DecodeJSONBody(req, &dest)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"preference":"sepia"}`))
	var dest preferencePayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["preference"] != "must be one of light dark auto" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeOptionalJSONBodyAllowsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var dest queryPayload
	if err := DecodeOptionalJSONBody(req, &dest); err != nil {
		t.Fatalf("expected empty body to be accepted, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10&bad=x&big=500", nil)
	if v, err := ParseQueryInt(req, "limit", 25, 1, 100); err != nil || v != 10 {
		t.Fatalf("expected 10, got %d err=%v", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 25, 1, 100); err != nil || v != 25 {
		t.Fatalf("expected default, got %d err=%v", v, err)
	}
	if _, err := ParseQueryInt(req, "bad", 25, 1, 100); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if _, err := ParseQueryInt(req, "big", 25, 1, 100); err == nil {
		t.Fatal("expected error for out of range value")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  x-wing  ", 3); got != "x-w" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	got := SanitizeString("Ñañé wing", 3)
	if got != "Ñañ" {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("sanitized value is not valid utf-8: %q", got)
	}
}
