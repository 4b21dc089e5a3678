package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file loaded in development when no other
// file is given.
const DefaultEnvFile = ".env.local"

type Config struct {
	Env string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	// HTTP
	HTTPAddr         string
	HTTPBodyLimit    string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	CORSOrigins      []string
	FrontendURL      string

	// Authentication
	JWTSecret      string
	// JWTSecretGenerated is set when JWTSecret was generated for this
	// process; tokens stop verifying after a restart.
	JWTSecretGenerated bool
	JWTSessionTTL  time.Duration
	JWTRememberTTL time.Duration
	ResetTokenTTL  time.Duration
	// AuthRateLimit is the number of requests per minute each client IP may
	// send to the login and password-reset routes.
	AuthRateLimit  float64

	RecaptchaEnabled  bool
	RecaptchaSecret   string
	RecaptchaEndpoint string

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	LogLevel  string
	LogFormat string
}

// IsDevelopment reports whether APP_ENV is explicitly "development".
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the environment, optionally seeded from envFile, and validates
// the result.
func Load(envFile string) (*Config, error) {
	// load .env in dev; a missing file is not an error
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Env: strings.ToLower(os.Getenv("APP_ENV")),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:     getEnv("DB_PATH", "db.sqlite"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "America/Bogota"),

		HTTPAddr:      getEnv("HTTP_ADDR", ":3001"),
		HTTPBodyLimit: getEnv("HTTP_BODY_LIMIT", "50M"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RecaptchaSecret:   os.Getenv("RECAPTCHA_SECRET_KEY"),
		RecaptchaEndpoint: getEnv("RECAPTCHA_ENDPOINT", "https://www.google.com/recaptcha/api/siteverify"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.JWTSessionTTL, err = getDuration("JWT_SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.JWTRememberTTL, err = getDuration("JWT_REMEMBER_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL, err = getDuration("RESET_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RecaptchaEnabled, err = getBool("RECAPTCHA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.AuthRateLimit, err = getFloat("AUTH_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the required settings for the chosen driver and
// mode are present.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "postgres", "mysql":
		if c.DBHost == "" || c.DBPort == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("database environment variables not set for driver %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER: %q", c.DBDriver)
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required unless APP_ENV=development")
		}
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.JWTSecret = secret
		c.JWTSecretGenerated = true
	}
	if c.RecaptchaEnabled && c.RecaptchaSecret == "" {
		return fmt.Errorf("RECAPTCHA_SECRET_KEY is required when RECAPTCHA_ENABLED=true")
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return b, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
