package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShodmonX/taskflow-backend/internal/security"
)

func protected(t *testing.T, codec *security.TokenCodec) (http.Handler, *string) {
	t.Helper()
	var seen string
	h := Authenticate(codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestAuthenticate_NoToken(t *testing.T) {
	h, seen := protected(t, security.NewTestCodec())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if *seen != "" {
		t.Error("handler should not run without a token")
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	codec := security.NewTestCodec()
	token, _, err := codec.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	for _, scheme := range []string{"Bearer ", "bearer ", "BEARER "} {
		h, seen := protected(t, codec)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", scheme+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("%q: status = %d, want %d", scheme, rec.Code, http.StatusNoContent)
		}
		if *seen != "user-1" {
			t.Errorf("%q: user_id = %q, want user-1", scheme, *seen)
		}
	}
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	codec := security.NewTestCodec()
	other := security.NewHMACCodec([]byte("another-secret-with-at-least-32-bytes"), "test-issuer", "test-audience", time.Minute)
	forged, _, _ := other.Issue("user-1")

	for name, header := range map[string]string{
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + forged,
		"basic scheme": "Basic dXNlcjpwYXNz",
		"empty bearer": "Bearer ",
	} {
		h, seen := protected(t, codec)
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusUnauthorized)
		}
		if *seen != "" {
			t.Errorf("%s: handler should not run", name)
		}
	}
}

func TestExtractBearer(t *testing.T) {
	testCases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer", ""},
		{"Bearer abc", "abc"},
		{"  bearer   abc  ", "abc"},
		{"Token abc", ""},
	}
	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := extractBearer(req); got != tc.want {
			t.Errorf("extractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
