package config

import (
	"os"
	"strconv"
)

// Config holds all process-level settings. It is built once at startup from
// the environment and never mutated afterwards.
type Config struct {
	Environment string
	ServerPort  string
	GinMode     string

	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DebugSQL   bool

	JWTSecret      string
	JWTExpireHours int

	UploadPath string

	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPFrom          string
	SMTPSkipTLSVerify bool
}

// App is the process configuration, set once by Load.
var App *Config

// Load reads the configuration from environment variables and stores it in
// App. Call after godotenv has loaded the .env file.
func Load() *Config {
	cfg := &Config{
		Environment: os.Getenv("ENVIRONMENT"),
		ServerPort:  envOr("SERVER_PORT", "8080"),
		GinMode:     os.Getenv("GIN_MODE"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOr("DB_PORT", "3306"),
		DBDatabase: os.Getenv("DB_DATABASE"),
		DBUsername: os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DebugSQL:   os.Getenv("DEBUG_SQL") == "true",

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpireHours: envIntOr("JWT_EXPIRE_HOURS", 24),

		UploadPath: envOr("UPLOAD_PATH", "./uploads"),

		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          envIntOr("SMTP_PORT", 587),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFrom:          os.Getenv("SMTP_FROM"),
		SMTPSkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
	App = cfg
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v == 0 {
		return fallback
	}
	return v
}
