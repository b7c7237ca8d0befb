// Package internal carries cross-cutting HTTP middleware.
package internal

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/beautyvilla/server/internal/auth"
)

func deny(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Middleware validates the client's JWT from the x-auth-token header
// and attaches the resolved identity to the request context.
func Middleware(next http.Handler, tokenSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("x-auth-token")
		if token == "" {
			deny(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		identity, err := auth.Admit(token, tokenSecret)
		if err != nil {
			deny(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), auth.IdentityKey, identity))
		next.ServeHTTP(w, r)
	}
}
