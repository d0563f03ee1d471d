package config

import (
	"os"
	"time"
)

// Server captures process-level configuration. The master key is the one
// shared secret of the whole subsystem: it is decoded once at startup and
// passed by reference into the codec, never read from ambient global state
// afterwards.
type Server struct {
	Addr            string
	Environment     string
	MasterKey       string
	TokenSigningKey string
	TokenIssuer     string
	TokenTTL        time.Duration
	AuditDSN        string
	AuditBuffer     int
}

const defaultTokenTTL = 8 * time.Hour

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:        envOr("HEALTHPASS_ADDR", ":8080"),
		Environment: envOr("HEALTHPASS_ENV", "dev"),
		// Dev defaults - must be overridden in production.
		MasterKey:       envOr("HEALTHPASS_MASTER_KEY", "ZGV2LW1hc3Rlci1rZXktY2hhbmdlLWluLXByb2R1Y3Rpb24"),
		TokenSigningKey: envOr("HEALTHPASS_TOKEN_KEY", "dev-secret-key-change-in-production"),
		TokenIssuer:     envOr("HEALTHPASS_TOKEN_ISSUER", "http://localhost:8080"),
		TokenTTL:        defaultTokenTTL,
		AuditDSN:        os.Getenv("HEALTHPASS_AUDIT_DSN"),
		AuditBuffer:     256,
	}
	if ttl := os.Getenv("HEALTHPASS_TOKEN_TTL"); ttl != "" {
		if duration, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = duration
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
