// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"posgate/internal/domain"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// JWTSecret signs session tokens issued by login and the CLI (HS256).
	JWTSecret string
	// SessionTTL is the lifetime of issued session tokens (default: 12h).
	SessionTTL time.Duration

	// OIDC configuration. Optional; when set, bearer tokens from this
	// issuer are accepted alongside locally signed ones.
	IssuerURL      string
	Audience       string        // required JWT audience claim when IssuerURL is set
	AllowedIssuers []string      // accepted issuers (defaults to [IssuerURL])
	JWKSCacheTTL   time.Duration // JWKS cache duration (default: 1h)
	UsernameClaim  string        // JWT claim carrying the username (default: "email")

	// API key settings
	APIKeyEnabled bool   // enable API key auth (default: true)
	APIKeyHeader  string // header name for API keys (default: X-API-Key)
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != ""
}

// ArchiveConfig holds the optional snapshot archive destination.
type ArchiveConfig struct {
	Type     string // "s3", "azure" or "gcs"; empty disables archiving
	Prefix   string // object key prefix (default: "snapshots")
	CronSpec string // snapshot schedule (default: "0 3 * * *")

	// S3
	S3KeyID    string
	S3Secret   string
	S3Endpoint string
	S3Region   string
	S3Bucket   string

	// Azure
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	// GCS
	GCSKeyFilePath string
	GCSBucket      string
}

// Enabled returns true when an archive destination is configured.
func (a *ArchiveConfig) Enabled() bool {
	return a.Type != ""
}

// Credential converts the archive settings to a domain credential.
func (a *ArchiveConfig) Credential() (domain.ArchiveCredential, error) {
	switch strings.ToLower(a.Type) {
	case "s3":
		if a.S3KeyID == "" || a.S3Secret == "" || a.S3Bucket == "" {
			return domain.ArchiveCredential{}, fmt.Errorf("ARCHIVE_S3_KEY_ID, ARCHIVE_S3_SECRET and ARCHIVE_S3_BUCKET are required for s3 archiving")
		}
		return domain.ArchiveCredential{
			CredentialType: domain.CredentialTypeS3,
			KeyID:          a.S3KeyID,
			Secret:         a.S3Secret,
			Endpoint:       a.S3Endpoint,
			Region:         a.S3Region,
			Bucket:         a.S3Bucket,
		}, nil
	case "azure":
		if a.AzureAccountName == "" || a.AzureAccountKey == "" || a.AzureContainer == "" {
			return domain.ArchiveCredential{}, fmt.Errorf("ARCHIVE_AZURE_ACCOUNT_NAME, ARCHIVE_AZURE_ACCOUNT_KEY and ARCHIVE_AZURE_CONTAINER are required for azure archiving")
		}
		return domain.ArchiveCredential{
			CredentialType:   domain.CredentialTypeAzure,
			AzureAccountName: a.AzureAccountName,
			AzureAccountKey:  a.AzureAccountKey,
			AzureContainer:   a.AzureContainer,
		}, nil
	case "gcs":
		if a.GCSKeyFilePath == "" || a.GCSBucket == "" {
			return domain.ArchiveCredential{}, fmt.Errorf("ARCHIVE_GCS_KEY_FILE and ARCHIVE_GCS_BUCKET are required for gcs archiving")
		}
		return domain.ArchiveCredential{
			CredentialType: domain.CredentialTypeGCS,
			GCSKeyFilePath: a.GCSKeyFilePath,
			GCSBucket:      a.GCSBucket,
		}, nil
	default:
		return domain.ArchiveCredential{}, fmt.Errorf("unsupported ARCHIVE_TYPE %q (want s3, azure or gcs)", a.Type)
	}
}

// Config holds the configuration for the identity service.
type Config struct {
	DBPath            string // path to SQLite database file (default "posgate.sqlite")
	ListenAddr        string // HTTP listen address (default ":8080")
	TLSCertFile       string // TLS certificate file path (optional)
	TLSKeyFile        string // TLS private key file path (optional)
	AllowInsecureHTTP bool   // allow non-TLS listener in production (for trusted TLS termination)
	LogLevel          string // log level: debug, info, warn, error (default "info")
	Env               string // environment: "development" (default) or "production"

	// StoreName appears on rendered receipts (default "posgate").
	StoreName string

	// Account policy
	LockoutThreshold  int // failed logins before lockout (default 5)
	CredentialMaxDays int // password age limit in days; 0 disables expiry checks

	// Initial admin account, created on first start if missing.
	AdminUsername string
	AdminPassword string

	// SeedDir is an optional declarative seed tree applied at startup.
	SeedDir string

	// Audit retention
	AuditRetentionDays int    // entries older than this are pruned (default 90)
	AuditPruneCron     string // prune schedule (default "30 3 * * *")

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// Auth holds authentication configuration.
	Auth AuthConfig

	// Archive holds the optional snapshot archive destination.
	Archive ArchiveConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

const devJWTSecret = "dev-secret-change-in-production"

// LoadFromEnv loads configuration from POSGATE_* environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:        os.Getenv("POSGATE_DB_PATH"),
		ListenAddr:    os.Getenv("POSGATE_LISTEN_ADDR"),
		TLSCertFile:   os.Getenv("POSGATE_TLS_CERT_FILE"),
		TLSKeyFile:    os.Getenv("POSGATE_TLS_KEY_FILE"),
		LogLevel:      os.Getenv("POSGATE_LOG_LEVEL"),
		Env:           os.Getenv("POSGATE_ENV"),
		AdminUsername: os.Getenv("POSGATE_ADMIN_USERNAME"),
		AdminPassword: os.Getenv("POSGATE_ADMIN_PASSWORD"),
		SeedDir:       os.Getenv("POSGATE_SEED_DIR"),
		StoreName:     os.Getenv("POSGATE_STORE_NAME"),
	}

	if v := os.Getenv("POSGATE_LOCKOUT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LockoutThreshold = n
		}
	}
	if v := os.Getenv("POSGATE_CREDENTIAL_MAX_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CredentialMaxDays = n
		}
	}
	if v := os.Getenv("POSGATE_AUDIT_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AuditRetentionDays = n
		}
	}
	cfg.AuditPruneCron = os.Getenv("POSGATE_AUDIT_PRUNE_CRON")

	// Rate limiting
	if v := os.Getenv("POSGATE_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("POSGATE_RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("POSGATE_CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}
	if strings.EqualFold(os.Getenv("POSGATE_ALLOW_INSECURE_HTTP"), "true") {
		cfg.AllowInsecureHTTP = true
	}

	// Auth config
	cfg.Auth = AuthConfig{
		JWTSecret:     os.Getenv("POSGATE_JWT_SECRET"),
		IssuerURL:     os.Getenv("POSGATE_AUTH_ISSUER_URL"),
		Audience:      os.Getenv("POSGATE_AUTH_AUDIENCE"),
		APIKeyEnabled: true,
		APIKeyHeader:  os.Getenv("POSGATE_API_KEY_HEADER"),
		UsernameClaim: os.Getenv("POSGATE_AUTH_USERNAME_CLAIM"),
	}
	if v := os.Getenv("POSGATE_AUTH_ALLOWED_ISSUERS"); v != "" {
		cfg.Auth.AllowedIssuers = strings.Split(v, ",")
	}
	if v := os.Getenv("POSGATE_AUTH_JWKS_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.JWKSCacheTTL = d
		}
	}
	if v := os.Getenv("POSGATE_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.SessionTTL = d
		}
	}
	if os.Getenv("POSGATE_API_KEY_ENABLED") == "false" {
		cfg.Auth.APIKeyEnabled = false
	}

	// Archive config
	cfg.Archive = ArchiveConfig{
		Type:             os.Getenv("POSGATE_ARCHIVE_TYPE"),
		Prefix:           os.Getenv("POSGATE_ARCHIVE_PREFIX"),
		CronSpec:         os.Getenv("POSGATE_ARCHIVE_CRON"),
		S3KeyID:          os.Getenv("POSGATE_ARCHIVE_S3_KEY_ID"),
		S3Secret:         os.Getenv("POSGATE_ARCHIVE_S3_SECRET"),
		S3Endpoint:       os.Getenv("POSGATE_ARCHIVE_S3_ENDPOINT"),
		S3Region:         os.Getenv("POSGATE_ARCHIVE_S3_REGION"),
		S3Bucket:         os.Getenv("POSGATE_ARCHIVE_S3_BUCKET"),
		AzureAccountName: os.Getenv("POSGATE_ARCHIVE_AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("POSGATE_ARCHIVE_AZURE_ACCOUNT_KEY"),
		AzureContainer:   os.Getenv("POSGATE_ARCHIVE_AZURE_CONTAINER"),
		GCSKeyFilePath:   os.Getenv("POSGATE_ARCHIVE_GCS_KEY_FILE"),
		GCSBucket:        os.Getenv("POSGATE_ARCHIVE_GCS_BUCKET"),
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "posgate.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return nil, fmt.Errorf("both POSGATE_TLS_CERT_FILE and POSGATE_TLS_KEY_FILE must be set together")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StoreName == "" {
		cfg.StoreName = "posgate"
	}
	if cfg.LockoutThreshold == 0 {
		cfg.LockoutThreshold = domain.DefaultLockoutThreshold
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.AuditRetentionDays == 0 {
		cfg.AuditRetentionDays = 90
	}
	if cfg.AuditPruneCron == "" {
		cfg.AuditPruneCron = "30 3 * * *"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
		cfg.Warnings = append(cfg.Warnings, "POSGATE_JWT_SECRET not set — using insecure default. Set POSGATE_JWT_SECRET in production!")
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 12 * time.Hour
	}
	if cfg.Auth.JWKSCacheTTL == 0 {
		cfg.Auth.JWKSCacheTTL = time.Hour
	}
	if cfg.Auth.APIKeyHeader == "" {
		cfg.Auth.APIKeyHeader = "X-API-Key"
	}
	if cfg.Auth.UsernameClaim == "" {
		cfg.Auth.UsernameClaim = "email"
	}
	if cfg.Auth.OIDCEnabled() && cfg.Auth.Audience == "" {
		return nil, fmt.Errorf("POSGATE_AUTH_AUDIENCE is required when POSGATE_AUTH_ISSUER_URL is set")
	}
	if cfg.Archive.Enabled() {
		if _, err := cfg.Archive.Credential(); err != nil {
			return nil, err
		}
		if cfg.Archive.Prefix == "" {
			cfg.Archive.Prefix = "snapshots"
		}
		if cfg.Archive.CronSpec == "" {
			cfg.Archive.CronSpec = "0 3 * * *"
		}
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.Auth.JWTSecret == devJWTSecret {
			return nil, fmt.Errorf("POSGATE_JWT_SECRET must be set in production (POSGATE_ENV=production)")
		}
		if cfg.AdminPassword == "" {
			return nil, fmt.Errorf("POSGATE_ADMIN_PASSWORD must be set in production (POSGATE_ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (POSGATE_ENV=production)")
		}
		if cfg.TLSCertFile == "" && !cfg.AllowInsecureHTTP {
			return nil, fmt.Errorf("POSGATE_TLS_CERT_FILE/POSGATE_TLS_KEY_FILE must be set in production unless POSGATE_ALLOW_INSECURE_HTTP=true")
		}
	}

	return cfg, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
