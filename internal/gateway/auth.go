package gateway

import (
	"crypto/subtle"
	"net/http"
)

// authHeader carries the shared secret that internal callers present.
const authHeader = "X-Internal-Auth"

// InternalAuth rejects requests whose auth header does not match token.
func InternalAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(authHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
