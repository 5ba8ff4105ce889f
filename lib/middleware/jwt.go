// Package middleware holds the HTTP middleware shared by the bot's HTTP
// surfaces.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/logger"
)

type contextKey string

const callerKey contextKey = "caller"

var errBadAuthHeader = errors.New("authorization header must be \"Bearer <token>\"")

// VerifyJWT requires an HS256 bearer token signed with secret and carrying
// an expiry. The token subject is stored as the caller.
func VerifyJWT(secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context())

			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				log.DebugContext(r.Context(), "rejected request without bearer token", "error", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}

			claims := jwt.RegisteredClaims{}
			if _, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			}); err != nil {
				log.WarnContext(r.Context(), "rejected invalid token", "error", err)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey, claims.Subject)
			ctx = logger.AddToContext(ctx, log.With("caller", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errBadAuthHeader
	}
	return strings.TrimSpace(token), nil
}

// CallerFromContext returns the authenticated token subject, if any.
func CallerFromContext(ctx context.Context) string {
	caller, _ := ctx.Value(callerKey).(string)
	return caller
}

// Error is the JSON body of every error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes an Error as JSON with status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Error{Code: code, Message: message})
}
