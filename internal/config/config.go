// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health endpoint; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL locates the ephemeral store for refresh sessions and invites.
	RedisURL string `mapstructure:"REDIS_URL"`

	// JWTSecret signs access tokens with HS256 when no key pair is configured.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAudience  string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "60m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// RefreshTokenTTL is the refresh session lifetime and cookie max-age (e.g. "168h").
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`

	RefreshCookieName     string `mapstructure:"REFRESH_COOKIE_NAME"`
	RefreshCookiePath     string `mapstructure:"REFRESH_COOKIE_PATH"`
	RefreshCookieSecure   bool   `mapstructure:"REFRESH_COOKIE_SECURE"`
	RefreshCookieSameSite string `mapstructure:"REFRESH_COOKIE_SAMESITE"`

	// Invite TTL window. Caller-supplied TTLs are clamped to [min, max].
	InviteTTLDefault string `mapstructure:"INVITE_DEFAULT_TTL"`
	InviteTTLMin     string `mapstructure:"INVITE_MIN_TTL"`
	InviteTTLMax     string `mapstructure:"INVITE_MAX_TTL"`

	// PasswordHashAlgo selects the algorithm for new hashes: bcrypt or argon2id.
	PasswordHashAlgo string `mapstructure:"PASSWORD_HASH_ALGO"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTel (optional). Export is disabled when the endpoint is empty.
	OTELEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTELServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	// ServiceVersion is reported as service.version on exported telemetry.
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`

	// Audit pipeline (optional). When Kafka brokers are set, audit events go to
	// Kafka and cmd/worker persists them; otherwise they are written directly.
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	KafkaGroupID    string `mapstructure:"KAFKA_GROUP_ID"`

	// Per-IP token bucket applied to /auth routes.
	AuthRateLimitRPS   float64 `mapstructure:"AUTH_RATE_LIMIT_RPS"`
	AuthRateLimitBurst int     `mapstructure:"AUTH_RATE_LIMIT_BURST"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_ADDR", ":8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "taskflow-auth")
	v.SetDefault("JWT_AUDIENCE", "taskflow-api")
	v.SetDefault("JWT_ACCESS_TTL", "60m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("REFRESH_COOKIE_NAME", "refresh_token")
	v.SetDefault("REFRESH_COOKIE_PATH", "/auth")
	v.SetDefault("REFRESH_COOKIE_SECURE", false)
	v.SetDefault("REFRESH_COOKIE_SAMESITE", "lax")
	v.SetDefault("INVITE_DEFAULT_TTL", "72h")
	v.SetDefault("INVITE_MIN_TTL", "5m")
	v.SetDefault("INVITE_MAX_TTL", "168h")
	v.SetDefault("PASSWORD_HASH_ALGO", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "taskflow-api")
	v.SetDefault("SERVICE_VERSION", "dev")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "taskflow-audit")
	v.SetDefault("KAFKA_GROUP_ID", "taskflow-audit-worker")
	v.SetDefault("AUTH_RATE_LIMIT_RPS", 5)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	hasKeyPair := c.JWTPrivateKey != "" && c.JWTPublicKey != ""
	if (c.JWTPrivateKey != "") != (c.JWTPublicKey != "") {
		return errors.New("config: JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set together")
	}
	if !hasKeyPair && len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes when no JWT key pair is set")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	c.PasswordHashAlgo = strings.ToLower(strings.TrimSpace(c.PasswordHashAlgo))
	if c.PasswordHashAlgo != "bcrypt" && c.PasswordHashAlgo != "argon2id" {
		return errors.New("config: PASSWORD_HASH_ALGO must be bcrypt or argon2id")
	}
	if c.InviteMinTTL() > c.InviteDefaultTTL() || c.InviteDefaultTTL() > c.InviteMaxTTL() {
		return errors.New("config: invite TTLs must satisfy INVITE_MIN_TTL <= INVITE_DEFAULT_TTL <= INVITE_MAX_TTL")
	}
	if c.CookieSameSite() == http.SameSiteNoneMode && !c.RefreshCookieSecure {
		return errors.New("config: REFRESH_COOKIE_SAMESITE=none requires REFRESH_COOKIE_SECURE=true")
	}
	if c.AuthRateLimitRPS < 0 || c.AuthRateLimitBurst < 0 {
		return errors.New("config: AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must not be negative")
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// AccessTTL parses JWTAccessTTL. Returns 60m if unset or invalid.
func (c *Config) AccessTTL() time.Duration { return parseDuration(c.JWTAccessTTL, 60*time.Minute) }

// RefreshTTL parses RefreshTokenTTL. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration { return parseDuration(c.RefreshTokenTTL, 168*time.Hour) }

// InviteDefaultTTL is used when the caller does not choose an invite lifetime.
func (c *Config) InviteDefaultTTL() time.Duration {
	return parseDuration(c.InviteTTLDefault, 72*time.Hour)
}

func (c *Config) InviteMinTTL() time.Duration { return parseDuration(c.InviteTTLMin, 5*time.Minute) }

func (c *Config) InviteMaxTTL() time.Duration { return parseDuration(c.InviteTTLMax, 168*time.Hour) }

// CookieSameSite maps RefreshCookieSameSite to its net/http value; unknown values mean Lax.
func (c *Config) CookieSameSite() http.SameSite {
	switch strings.ToLower(c.RefreshCookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// UsesKeyPair reports whether access tokens are signed with RS256/ES256.
func (c *Config) UsesKeyPair() bool { return c.JWTPrivateKey != "" && c.JWTPublicKey != "" }

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables the Kafka audit sink.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
