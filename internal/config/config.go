package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is loaded from an optional .env, an optional TOML file named by
// CONFIG_FILE, and finally the environment.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Auth     AuthConfig     `toml:"auth"`
	PDF      PDFConfig      `toml:"pdf"`
	Seed     SeedConfig     `toml:"seed"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type ServerConfig struct {
	Port            string        `toml:"port"`
	Environment     string        `toml:"environment"`
	LogLevel        string        `toml:"log_level"`
	RequestTimeout  time.Duration `toml:"request_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	MaxConns      int    `toml:"max_conns"`
	MinConns      int    `toml:"min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

type RedisConfig struct {
	Addr        string        `toml:"addr"`
	Password    string        `toml:"password"`
	DB          int           `toml:"db"`
	PDFCacheTTL time.Duration `toml:"pdf_cache_ttl"`
}

type StorageConfig struct {
	Endpoint      string        `toml:"endpoint"`
	AccessKey     string        `toml:"access_key"`
	SecretKey     string        `toml:"secret_key"`
	UseSSL        bool          `toml:"use_ssl"`
	LogoBucket    string        `toml:"logo_bucket"`
	PresignExpiry time.Duration `toml:"presign_expiry"`
	MaxLogoBytes  int64         `toml:"max_logo_bytes"`
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
	Issuer    string        `toml:"issuer"`
	// JWKSURL switches token verification to an external key set.
	JWKSURL          string        `toml:"jwks_url"`
	MaxLoginAttempts int64         `toml:"max_login_attempts"`
	LoginWindow      time.Duration `toml:"login_window"`
}

type PDFConfig struct {
	MaxConcurrentRenders int64 `toml:"max_concurrent_renders"`
}

type SeedConfig struct {
	SuperAdminEmail    string `toml:"super_admin_email"`
	SuperAdminPassword string `toml:"super_admin_password"`
}

type JobsConfig struct {
	LogoGCInterval     time.Duration `toml:"logo_gc_interval"`
	LogoGCGrace        time.Duration `toml:"logo_gc_grace"`
	CacheStatsInterval time.Duration `toml:"cache_stats_interval"`
	AuditPurgeInterval time.Duration `toml:"audit_purge_interval"`
	AuditRetention     time.Duration `toml:"audit_retention"`
}

// Default returns the built-in values every other source overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Environment:     "development",
			LogLevel:        "info",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:      10,
			MinConns:      2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			PDFCacheTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Endpoint:      "localhost:9000",
			LogoBucket:    "company-logos",
			PresignExpiry: 15 * time.Minute,
			MaxLogoBytes:  2 << 20,
		},
		Auth: AuthConfig{
			TokenTTL:         24 * time.Hour,
			Issuer:           "acta",
			MaxLoginAttempts: 5,
			LoginWindow:      15 * time.Minute,
		},
		PDF: PDFConfig{MaxConcurrentRenders: 4},
		Seed: SeedConfig{
			SuperAdminEmail: "admin@acta.com",
		},
		Jobs: JobsConfig{
			LogoGCInterval:     6 * time.Hour,
			LogoGCGrace:        24 * time.Hour,
			CacheStatsInterval: 5 * time.Minute,
			AuditPurgeInterval: 24 * time.Hour,
			AuditRetention:     90 * 24 * time.Hour,
		},
	}
}

// Load builds the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("APP_ENV", c.Server.Environment)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)
	c.Server.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.DSN = getEnv("DATABASE_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.RunMigrations = getEnvAsBool("DB_RUN_MIGRATIONS", c.Database.RunMigrations)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.PDFCacheTTL = getEnvAsDuration("PDF_CACHE_TTL", c.Redis.PDFCacheTTL)

	c.Storage.Endpoint = getEnv("MINIO_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("MINIO_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.UseSSL = getEnvAsBool("MINIO_USE_SSL", c.Storage.UseSSL)
	c.Storage.LogoBucket = getEnv("MINIO_LOGO_BUCKET", c.Storage.LogoBucket)
	c.Storage.PresignExpiry = getEnvAsDuration("MINIO_PRESIGN_EXPIRY", c.Storage.PresignExpiry)
	c.Storage.MaxLogoBytes = getEnvAsInt64("MAX_LOGO_BYTES", c.Storage.MaxLogoBytes)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Auth.JWKSURL = getEnv("AUTH_JWKS_URL", c.Auth.JWKSURL)
	c.Auth.MaxLoginAttempts = getEnvAsInt64("MAX_LOGIN_ATTEMPTS", c.Auth.MaxLoginAttempts)
	c.Auth.LoginWindow = getEnvAsDuration("LOGIN_WINDOW", c.Auth.LoginWindow)

	c.PDF.MaxConcurrentRenders = getEnvAsInt64("PDF_MAX_CONCURRENT", c.PDF.MaxConcurrentRenders)

	c.Seed.SuperAdminEmail = getEnv("SEED_SUPER_ADMIN_EMAIL", c.Seed.SuperAdminEmail)
	c.Seed.SuperAdminPassword = getEnv("SEED_SUPER_ADMIN_PASSWORD", c.Seed.SuperAdminPassword)

	c.Jobs.LogoGCInterval = getEnvAsDuration("LOGO_GC_INTERVAL", c.Jobs.LogoGCInterval)
	c.Jobs.LogoGCGrace = getEnvAsDuration("LOGO_GC_GRACE", c.Jobs.LogoGCGrace)
	c.Jobs.CacheStatsInterval = getEnvAsDuration("PDF_CACHE_STATS_INTERVAL", c.Jobs.CacheStatsInterval)
	c.Jobs.AuditPurgeInterval = getEnvAsDuration("AUDIT_PURGE_INTERVAL", c.Jobs.AuditPurgeInterval)
	c.Jobs.AuditRetention = getEnvAsDuration("AUDIT_RETENTION", c.Jobs.AuditRetention)
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return errors.New("JWT_SECRET is required when AUTH_JWKS_URL is not set")
	}
	if c.PDF.MaxConcurrentRenders < 1 {
		return errors.New("PDF_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(getEnv(key, ""), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
