package globals

import (
	"context"
	"os"
)

var (
	JwtSecret  = secretFromEnv("JWT_SECRET", "change-me-in-production")
	QRSecret   = secretFromEnv("QR_SECRET", "change-me-too")
	AdminEmail = envOr("ADMIN_EMAIL", "studio@tattootime.app")
	StudioName = envOr("STUDIO_NAME", "TattooTime")
)

func secretFromEnv(key, fallback string) []byte {
	if v := os.Getenv(key); v != "" {
		return []byte(v)
	}
	return []byte(fallback)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Context keys
type ContextKey string

const RolesKey ContextKey = "roles"
const UserIDKey ContextKey = "userId"

var Ctx = context.Background()
