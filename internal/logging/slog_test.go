package logging

import (
	"log/slog"
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "regular email", email: "jane@example.com"},
		{name: "uppercase email", email: "JANE@EXAMPLE.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)
			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if strings.Contains(got, "@") {
				t.Errorf("AnonymizeEmail(%q) = %q, leaks the address", tt.email, got)
			}
		})
	}
}

func TestAnonymizeEmail_Empty(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty", got)
	}
}

func TestAnonymizeEmail_Deterministic(t *testing.T) {
	a := AnonymizeEmail("jane@example.com")
	b := AnonymizeEmail("jane@example.com")
	if a != b {
		t.Errorf("AnonymizeEmail is not deterministic: %q != %q", a, b)
	}
	c := AnonymizeEmail("john@example.com")
	if a == c {
		t.Error("different emails should not collide")
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "regular email", email: "jane@example.com", want: "example.com"},
		{name: "empty", email: "", want: ""},
		{name: "no at sign", email: "not-an-email", want: ""},
		{name: "multiple at signs", email: "a@b@c", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDomain(tt.email); got != tt.want {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestErr_Nil(t *testing.T) {
	attr := Err(nil)
	// A nil error should produce an empty group that slog omits
	if attr.Value.Kind() != slog.KindGroup {
		t.Errorf("Err(nil) kind = %v, want group", attr.Value.Kind())
	}
	if len(attr.Value.Group()) != 0 {
		t.Error("Err(nil) should produce an empty group")
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken(""); got != "<empty>" {
		t.Errorf("SanitizeToken(\"\") = %q", got)
	}
	got := SanitizeToken("secret-token")
	if strings.Contains(got, "secret") {
		t.Errorf("SanitizeToken leaked content: %q", got)
	}
}

func TestWithOperation(t *testing.T) {
	logger := WithOperation(slog.Default(), "enrich")
	if logger == nil {
		t.Fatal("WithOperation returned nil")
	}
}

func TestWithBackend(t *testing.T) {
	logger := WithBackend(slog.Default(), "exa")
	if logger == nil {
		t.Fatal("WithBackend returned nil")
	}
}
