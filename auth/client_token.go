package auth

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Client portal users authenticate with bearer tokens instead of admin
// cookie sessions, so a logged-in client never carries admin privileges.

const clientIDCtxKey = ctxKey("clientID")

// ClientClaims is the JWT payload minted for approved portal clients.
type ClientClaims struct {
	ClientID uint   `json:"client_id"`
	Type     string `json:"type"` // always "client"
	jwt.RegisteredClaims
}

// JWTSecret returns JWT_SECRET or a default dev value.
func JWTSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "devjwtsecret"
}

// MintClientToken signs a 30-day bearer token for a client user.
func MintClientToken(clientID uint) (string, time.Time, error) {
	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	claims := ClientClaims{
		ClientID: clientID,
		Type:     "client",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(JWTSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseClientToken validates a bearer token string and returns the client id.
func ParseClientToken(tokenString string) (uint, bool) {
	claims := &ClientClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(JWTSecret()), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Type != "client" || claims.ClientID == 0 {
		return 0, false
	}
	return claims.ClientID, true
}

// WithClientID stores the portal client id in context.
func WithClientID(ctx context.Context, clientID uint) context.Context {
	return context.WithValue(ctx, clientIDCtxKey, clientID)
}

// ClientIDFromContext extracts the portal client id.
func ClientIDFromContext(ctx context.Context) (uint, bool) {
	v := ctx.Value(clientIDCtxKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// BearerToken pulls the token out of an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireClient rejects requests without a valid client bearer token and
// stores the client id in the request context.
func RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := BearerToken(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if _, err := w.Write([]byte(`{"error":"unauthorized"}`)); err != nil {
				_ = err
			}
			return
		}
		cid, ok := ParseClientToken(tok)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			if _, err := w.Write([]byte(`{"error":"unauthorized"}`)); err != nil {
				_ = err
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), cid)))
	})
}
