package middleware

import (
	"context"
	"fmt"
	"net/http"

	"tattootime/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

// Chain composes middleware right to left around a handler.
func Chain(mws ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if websocket.IsWebSocketUpgrade(r) {
			// Allow WebSocket through without setting body/headers yet
			next(w, r, ps)
			return
		}

		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			http.Error(w, "Invalid token format", http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		// Store identity in context
		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RolesKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRoles rejects requests whose token carries none of the given roles.
// Must run after Authenticate.
func RequireRoles(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			have, _ := r.Context().Value(globals.RolesKey).([]string)
			for _, want := range roles {
				for _, role := range have {
					if role == want {
						next(w, r, ps)
						return
					}
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
		return nil, fmt.Errorf("invalid token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
