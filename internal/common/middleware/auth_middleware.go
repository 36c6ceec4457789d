package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ServiceContextKey contextKey = "service"

// AuthMiddleware validates service tokens on internal endpoints.
// Tokens are signed with the shared secret and carry a "service" claim.
type AuthMiddleware struct {
	accessSecret string
}

func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		accessSecret: accessSecret,
	}
}

func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Empty JWT-Token", http.StatusUnauthorized)
			return
		}

		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			return []byte(am.accessSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))

		if err != nil {
			http.Error(w, "Failed to parse JWT-Token", http.StatusUnauthorized)
			return
		}

		if !token.Valid {
			http.Error(w, "Invalid JWT-Token", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Invalid claims", http.StatusUnauthorized)
			return
		}

		service, ok := claims["service"].(string)
		if !ok {
			http.Error(w, "Service not found in token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ServiceContextKey, service)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper function to get the calling service from context
func GetServiceFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(ServiceContextKey)
	if value == nil {
		return "", false
	}

	service, ok := value.(string)
	if !ok {
		return "", false
	}

	return service, true
}
