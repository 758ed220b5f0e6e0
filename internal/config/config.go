package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	// PublicBaseURL is the externally reachable base embedded in QR codes,
	// e.g. https://docs.example.org. The core only ever appends
	// /verify?token=<opaque token> to it.
	PublicBaseURL string

	KeyDir        string
	KeyPassphrase string

	ArtifactDir string

	JWTSecret       string
	SessionTTLHours int

	AuthzPolicyPath string

	PushQueueSize int

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitMaxKeys       int
	// RateLimitFailOpen lets verification proceed when the limiter backend
	// is unreachable. Off means limiter outages reject verify requests.
	RateLimitFailOpen bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		PublicBaseURL:          envDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		KeyDir:                 envDefault("KEY_DIR", "keys"),
		KeyPassphrase:          os.Getenv("KEY_PASSPHRASE"),
		ArtifactDir:            envDefault("ARTIFACT_DIR", "uploads"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		SessionTTLHours:        envIntDefault("SESSION_TTL_HOURS", 8),
		AuthzPolicyPath:        os.Getenv("AUTHZ_POLICY_PATH"),
		PushQueueSize:          envIntDefault("PUSH_QUEUE_SIZE", 256),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RateLimitFailOpen:      envBoolDefault("RATE_LIMIT_FAIL_OPEN", true),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// envIntDefault keeps an explicit zero; only unset, unparsable or negative
// values fall back to the default.
func envIntDefault(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}
