package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	ServiceName string
	Version     string
	Environment string
	APIKey      string // API key for authentication

	// TrustedProxies are CIDRs or IPs whose X-Forwarded-For headers are honored
	TrustedProxies []string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	DBMaxConns    int
	DBMaxIdleTime time.Duration
	DBMaxConnLife time.Duration

	// Static reward configuration (phases + milestones), versioned on disk
	DefinitionsPath string

	// Admission policy
	MaxAwardAmount   int64
	AwardCooldown    time.Duration
	AwardWindow      time.Duration
	AwardWindowLimit int

	// Summary projection cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// Notification dead letter file
	DeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:        getEnv(EnvLogLevel, DefaultLogLevel),
		LogFormat:       getEnv(EnvLogFormat, DefaultLogFormat),
		ServiceName:     getEnv(EnvServiceName, DefaultServiceName),
		Version:         getEnv(EnvVersion, DefaultVersion),
		Environment:     getEnv(EnvEnvironment, DefaultEnvironment),
		APIKey:          getEnv(EnvAPIKey, ""),
		TrustedProxies:  splitList(getEnv(EnvTrustedProxies, "")),
		DBUser:          getEnv(EnvDBUser, DefaultDBUser),
		DBPassword:      getEnv(EnvDBPassword, DefaultDBPassword),
		DBHost:          getEnv(EnvDBHost, DefaultDBHost),
		DBPort:          getEnv(EnvDBPort, DefaultDBPort),
		DBName:          getEnv(EnvDBName, DefaultDBName),
		DefinitionsPath: getEnv(EnvDefinitionsPath, DefaultDefinitionsPath),
		DeadLetterPath:  getEnv(EnvDeadLetterPath, DefaultDeadLetterPath),
	}

	var err error
	if cfg.Port, err = getEnvInt(EnvPort, DefaultPort); err != nil {
		return nil, err
	}
	if cfg.DBMaxConns, err = getEnvInt(EnvDBMaxConns, DefaultDBMaxConns); err != nil {
		return nil, err
	}
	if cfg.AwardWindowLimit, err = getEnvInt(EnvAwardWindowLimit, DefaultAwardWindowLimit); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheSize, err = getEnvInt(EnvSummaryCacheSize, DefaultSummaryCacheSize); err != nil {
		return nil, err
	}

	maxAward, err := getEnvInt(EnvMaxAwardAmount, DefaultMaxAwardAmount)
	if err != nil {
		return nil, err
	}
	cfg.MaxAwardAmount = int64(maxAward)

	if cfg.AwardCooldown, err = getEnvDuration(EnvAwardCooldown, DefaultAwardCooldown); err != nil {
		return nil, err
	}
	if cfg.AwardWindow, err = getEnvDuration(EnvAwardWindow, DefaultAwardWindow); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheTTL, err = getEnvDuration(EnvSummaryCacheTTL, DefaultSummaryCacheTTL); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleTime, err = getEnvDuration(EnvDBMaxIdleTime, DefaultDBMaxIdleTime); err != nil {
		return nil, err
	}
	if cfg.DBMaxConnLife, err = getEnvDuration(EnvDBMaxConnLife, DefaultDBMaxConnLife); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the system relies on
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%s environment variable must be set for security", EnvAPIKey)
	}
	if c.MaxAwardAmount <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvMaxAwardAmount, c.MaxAwardAmount)
	}
	if c.AwardCooldown < 0 || c.AwardWindow <= 0 || c.AwardWindowLimit <= 0 {
		return fmt.Errorf("award rate limit settings must be positive")
	}
	if c.SummaryCacheSize <= 0 || c.SummaryCacheTTL <= 0 {
		return fmt.Errorf("summary cache settings must be positive")
	}
	return nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// splitList parses a comma-separated env value into trimmed entries
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}
