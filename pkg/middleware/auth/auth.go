// middleware/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const userKey ctxKey = 0

// Middleware authenticates requests from a bearer JWT. Authentication
// is best-effort here; enforcement happens in the per-route guard.
type Middleware struct {
	secret    []byte
	adminRole string
	devBypass bool
}

type claims struct {
	Role     string `json:"role"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// Middleware returns the HTTP middleware that resolves the caller and
// stashes it in the request context.
func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.devBypass {
				u := User{Username: "dev", Role: Role{Name: m.adminRole},
					AuthenticationSource: AuthenticationSource{Provider: "dev-bypass"}}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
				return
			}
			raw := bearerToken(r)
			if raw == "" || len(m.secret) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			var cl claims
			tok, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return m.secret, nil
			})
			if err != nil || !tok.Valid || cl.Subject == "" {
				next.ServeHTTP(w, r)
				return
			}
			u := User{
				Username:             cl.Subject,
				Role:                 Role{Name: cl.Role},
				AuthenticationSource: AuthenticationSource{Provider: cl.Provider},
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (m *Middleware) IsAuthenticated(ctx context.Context) bool {
	_, ok := ctx.Value(userKey).(User)
	return ok
}

func (m *Middleware) GetUser(ctx context.Context) User {
	u, _ := ctx.Value(userKey).(User)
	return u
}

func (m *Middleware) IsAdmin(ctx context.Context) bool {
	if m.adminRole == "" {
		return false
	}
	return m.GetUser(ctx).Role.Name == m.adminRole
}
