package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"loan-servicing/internal/models"
	"loan-servicing/pkg/utils"
)

type contextKey string

// Context keys set by the auth middleware
const (
	ContextUserID         = contextKey("user_id")
	ContextOrganizationID = contextKey("organization_id")
	ContextRole           = contextKey("role")
)

// AuthMiddleware checks if the request has a valid JWT token and puts the
// user ID, organization ID and role into the request context
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "no authorization header provided")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})

			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, ok := numberClaim(claims, "user_id")
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing user_id claim")
				return
			}

			organizationID, ok := numberClaim(claims, "organization_id")
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing organization_id claim")
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !models.ValidRole(models.Role(role)) {
				utils.RespondWithError(w, http.StatusUnauthorized, "invalid token: missing role claim")
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, userID)
			ctx = context.WithValue(ctx, ContextOrganizationID, organizationID)
			ctx = context.WithValue(ctx, ContextRole, models.Role(role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// numberClaim reads an integer claim; JSON numbers decode as float64
func numberClaim(claims jwt.MapClaims, name string) (int, bool) {
	value, ok := claims[name]
	if !ok {
		return 0, false
	}
	f, ok := value.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// RequireRole rejects requests whose authenticated role is not one of the
// allowed roles. Read-only users pass only where explicitly listed.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(ContextRole).(models.Role)
			if !ok {
				utils.RespondWithError(w, http.StatusUnauthorized, "role not found in context")
				return
			}

			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			utils.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
