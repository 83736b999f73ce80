package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "tripsify.db"
	defaultRedisAddr      = "127.0.0.1:6379"
	defaultJWTSecret      = "change-me-jwt-secret"
	defaultJWTAccessTTL   = "24h"
	defaultOTPCodeTTL     = "5m"
	defaultOTPResend      = "60s"
	defaultOTPMaxAttempts = "5"
	defaultMinBuild       = "1"
	defaultLatestBuild    = "1"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	JWTAccessTTL time.Duration

	OTPCodeTTL        time.Duration
	OTPResendCooldown time.Duration
	OTPMaxAttempts    int

	SMSGatewayURL      string
	WhatsAppGatewayURL string
	CallGatewayURL     string

	MinSupportedBuild int
	LatestBuild       int
	UpdateURL         string
}

// Load reads .env (when present) and the process environment. It fails
// on malformed values and on default secrets in prod-like environments.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = getEnv("HTTP_ADDR", defaultHTTPAddr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)

	cfg.RedisAddr = getEnv("REDIS_ADDR", defaultRedisAddr)
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	var err error
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0"); err != nil {
		return nil, err
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}

	if cfg.OTPCodeTTL, err = parseDurationEnv("OTP_CODE_TTL", defaultOTPCodeTTL); err != nil {
		return nil, err
	}
	if cfg.OTPResendCooldown, err = parseDurationEnv("OTP_RESEND_COOLDOWN", defaultOTPResend); err != nil {
		return nil, err
	}
	if cfg.OTPMaxAttempts, err = parseIntEnv("OTP_MAX_ATTEMPTS", defaultOTPMaxAttempts); err != nil {
		return nil, err
	}

	cfg.SMSGatewayURL = os.Getenv("SMS_GATEWAY_URL")
	cfg.WhatsAppGatewayURL = os.Getenv("WHATSAPP_GATEWAY_URL")
	cfg.CallGatewayURL = os.Getenv("CALL_GATEWAY_URL")

	if cfg.MinSupportedBuild, err = parseIntEnv("MIN_SUPPORTED_BUILD", defaultMinBuild); err != nil {
		return nil, err
	}
	if cfg.LatestBuild, err = parseIntEnv("LATEST_BUILD", defaultLatestBuild); err != nil {
		return nil, err
	}
	cfg.UpdateURL = os.Getenv("UPDATE_URL")

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.OTPCodeTTL <= 0 {
		return fmt.Errorf("OTP_CODE_TTL must be > 0")
	}
	if cfg.OTPResendCooldown <= 0 {
		return fmt.Errorf("OTP_RESEND_COOLDOWN must be > 0")
	}
	if cfg.OTPMaxAttempts <= 0 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be > 0")
	}
	if cfg.LatestBuild < cfg.MinSupportedBuild {
		return fmt.Errorf("LATEST_BUILD must be >= MIN_SUPPORTED_BUILD")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}
	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
