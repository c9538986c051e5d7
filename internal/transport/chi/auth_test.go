package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_NoKeys_PassThrough(t *testing.T) {
	for name, keys := range map[string][]string{"nil": nil, "empty strings": {"", ""}} {
		t.Run(name, func(t *testing.T) {
			handler := BearerAuthMiddleware(keys, PublicPaths...)(okHandler())

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/tuples", http.NoBody))

			if rr.Code != http.StatusOK {
				t.Errorf("got %d, want %d", rr.Code, http.StatusOK)
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"key1", "key2"}, PublicPaths...)(okHandler())

	tests := []struct {
		name   string
		path   string
		header string
		want   int
		reason string
	}{
		{"missing header", "/v1/tuples", "", http.StatusUnauthorized, "missing authorization header"},
		{"basic scheme", "/v1/tuples", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "authorization header must use Bearer scheme"},
		{"scheme only", "/v1/tuples", "Bearer", http.StatusUnauthorized, "authorization header must use Bearer scheme"},
		{"empty token", "/v1/tuples", "Bearer   ", http.StatusUnauthorized, "empty bearer token"},
		{"unknown key", "/v1/sentences", "Bearer wrong-key", http.StatusUnauthorized, "invalid api key"},
		{"prefix of a key", "/v1/sentences", "Bearer key", http.StatusUnauthorized, "invalid api key"},
		{"first key", "/v1/tuples", "Bearer key1", http.StatusOK, ""},
		{"second key", "/v1/configuration", "Bearer key2", http.StatusOK, ""},
		{"lower-case scheme", "/v1/tuples", "bearer key1", http.StatusOK, ""},
		{"health is public", "/health", "", http.StatusOK, ""},
		{"metrics is public", "/metrics", "Bearer wrong-key", http.StatusOK, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("got %d, want %d", rr.Code, tc.want)
			}
			if tc.want != http.StatusUnauthorized {
				return
			}
			if got := rr.Header().Get("WWW-Authenticate"); got == "" {
				t.Error("expected WWW-Authenticate challenge")
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorCodeUnauthorized || errResp.Message != tc.reason {
				t.Errorf("error = %s %q, want %s %q", errResp.Code, errResp.Message, ErrorCodeUnauthorized, tc.reason)
			}
		})
	}
}

func TestAuthMiddleware_NoPublicPaths(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret"})(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
