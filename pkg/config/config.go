package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// ReservedAccountPrefixes are account-number prefixes denoting accounts
	// operated by automated system processes; manual staging against them is
	// refused. Configured, not hardcoded, so the rule is auditable.
	ReservedAccountPrefixes []string

	// ReservedEventCodes are system event codes whose chart positions are
	// likewise off limits for manual staging (e.g. mobile-money tills).
	ReservedEventCodes []string

	// ServiceTokenSecret signs the tokens that mark trusted system callers.
	ServiceTokenSecret string

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RESERVED_ACCOUNT_PREFIXES", "")
	viper.SetDefault("RESERVED_EVENT_CODES", "")
	viper.SetDefault("SERVICE_TOKEN_SECRET", "")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.ReservedAccountPrefixes = splitCSV(viper.GetString("RESERVED_ACCOUNT_PREFIXES"))
	cfg.ReservedEventCodes = splitCSV(viper.GetString("RESERVED_EVENT_CODES"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.ServiceTokenSecret = viper.GetString("SERVICE_TOKEN_SECRET")
	if cfg.ServiceTokenSecret == "" {
		log.Println("Warning: SERVICE_TOKEN_SECRET not set; system-caller tokens are disabled.")
	}

	return cfg, nil
}

// splitCSV parses a comma separated env value into trimmed, non-empty parts.
func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
