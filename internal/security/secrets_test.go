package security

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	b, _ := GenerateSecret()
	if a == b {
		t.Fatal("two secrets should differ")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("secret is not base64url: %v", err)
	}
	if len(raw) < 48 {
		t.Errorf("secret has %d bytes of entropy, want >= 48", len(raw))
	}
	if strings.ContainsAny(a, "+/=") {
		t.Errorf("secret %q is not URL safe", a)
	}
	if !WellFormedSecret(a) {
		t.Error("generated secret should be well formed")
	}
}

func TestHashSecret(t *testing.T) {
	h1 := HashSecret("token")
	h2 := HashSecret("token")
	if h1 != h2 {
		t.Error("HashSecret should be deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}
	if HashSecret("token-2") == h1 {
		t.Error("different secrets should hash differently")
	}
	if strings.Contains(h1, "token") {
		t.Error("hash should not contain the secret")
	}
}

func TestWellFormedSecret(t *testing.T) {
	for _, s := range []string{"", "short", strings.Repeat("!", 64), strings.Repeat("A", 63)} {
		if WellFormedSecret(s) {
			t.Errorf("WellFormedSecret(%q) = true", s)
		}
	}
}
