package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds ledger configuration.
type Config struct {
	DatabasePath    string
	DatabaseTimeout time.Duration
	// BaseCurrency is the reporting currency used when a session does not carry one.
	BaseCurrency string
	// BridgeCurrency is the currency cross rates are composed through.
	BridgeCurrency string
	// DefaultUserID is the user the maintenance CLI acts as.
	DefaultUserID  string
	LogLevel       string
	IsProduction   bool
	SeedCurrencies bool
	RatesSeedFile  string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("LEDGER_DB_PATH", "ledger.db")
	viper.SetDefault("LEDGER_DB_TIMEOUT", "1s")
	viper.SetDefault("LEDGER_BASE_CURRENCY", "USD")
	viper.SetDefault("LEDGER_BRIDGE_CURRENCY", "")
	viper.SetDefault("LEDGER_USER_ID", "local")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LEDGER_SEED_CURRENCIES", true)
	viper.SetDefault("LEDGER_RATES_SEED_FILE", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabasePath:   viper.GetString("LEDGER_DB_PATH"),
		BaseCurrency:   strings.ToUpper(strings.TrimSpace(viper.GetString("LEDGER_BASE_CURRENCY"))),
		BridgeCurrency: strings.ToUpper(strings.TrimSpace(viper.GetString("LEDGER_BRIDGE_CURRENCY"))),
		DefaultUserID:  viper.GetString("LEDGER_USER_ID"),
		LogLevel:       strings.ToLower(viper.GetString("LOG_LEVEL")),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		SeedCurrencies: viper.GetBool("LEDGER_SEED_CURRENCIES"),
		RatesSeedFile:  viper.GetString("LEDGER_RATES_SEED_FILE"),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("LEDGER_DB_PATH must not be empty")
	}

	timeoutStr := viper.GetString("LEDGER_DB_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = time.Second
		log.Printf("Warning: Invalid value for LEDGER_DB_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.DatabaseTimeout = timeout

	if cfg.BaseCurrency == "" {
		return nil, fmt.Errorf("LEDGER_BASE_CURRENCY must not be empty")
	}
	if cfg.BridgeCurrency == "" {
		cfg.BridgeCurrency = cfg.BaseCurrency
	}

	return cfg, nil
}
