// Package middleware provides HTTP middleware for bearer identity, request
// IDs, and rate limiting.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"lumina/internal/domain"
)

// HS256Verifier validates bearer tokens signed with a shared HS256 secret
// and extracts the caller identity. The identity-provider login flow that
// issues these tokens is external.
type HS256Verifier struct {
	secret []byte
}

// NewHS256Verifier creates a verifier. An empty secret is refused.
func NewHS256Verifier(secret string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &HS256Verifier{secret: []byte(secret)}, nil
}

// Verify parses the token and returns the identity carried in its claims.
func (v *HS256Verifier) Verify(tokenString string) (domain.Identity, error) {
	tok, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("token verification failed: %w", err)
	}

	raw, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, fmt.Errorf("parse claims: unsupported claim type %T", tok.Claims)
	}

	var id domain.Identity
	if email, ok := raw["email"].(string); ok {
		id.Email = domain.NormalizeEmail(email)
	}
	if id.Email == "" {
		// Fall back to sub for tokens carrying the email there.
		if sub, ok := raw["sub"].(string); ok && domain.ValidEmail(sub) {
			id.Email = domain.NormalizeEmail(sub)
		}
	}
	if id.Email == "" {
		return domain.Identity{}, fmt.Errorf("token carries no email claim")
	}
	if name, ok := raw["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func Authenticate(verifier *HS256Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), id)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}
