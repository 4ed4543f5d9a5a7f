package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyHeader is accepted as an alternative to a Bearer token.
const APIKeyHeader = "X-API-Key"

func hashAPIKey(key string) []byte {
	h := sha256.Sum256([]byte(key))
	return h[:]
}

func presentedKey(r *http.Request) (string, bool) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, true
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// APIKeyAuth rejects requests that do not present apiKey.
// An empty apiKey disables the check.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	if apiKey == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	want := hashAPIKey(apiKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := presentedKey(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}
			if subtle.ConstantTimeCompare(hashAPIKey(key), want) != 1 {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
