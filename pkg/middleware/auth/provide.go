package auth

import (
	"os"
	"strings"
)

// ProvideAuthentication wires defaults and env config:
//
//	AUTH_JWT_SECRET  = HMAC secret for bearer tokens (empty: auth off)
//	ADMIN_ROLE_NAME  = role that passes every role guard
//	AUTH_DEV_BYPASS  = "true" treats every request as an admin (dev only)
func ProvideAuthentication() *Middleware {
	return &Middleware{
		secret:    []byte(strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET"))),
		adminRole: strings.TrimSpace(os.Getenv("ADMIN_ROLE_NAME")),
		devBypass: os.Getenv("AUTH_DEV_BYPASS") == "true",
	}
}

// NewForTest builds a middleware with explicit settings.
func NewForTest(secret, adminRole string) *Middleware {
	return &Middleware{secret: []byte(secret), adminRole: adminRole}
}
