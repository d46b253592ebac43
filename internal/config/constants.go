package config

import "time"

// Environment variable names
const (
	EnvPort             = "PORT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogFormat        = "LOG_FORMAT"
	EnvServiceName      = "SERVICE_NAME"
	EnvVersion          = "VERSION"
	EnvEnvironment      = "ENVIRONMENT"
	EnvAPIKey           = "API_KEY"
	EnvTrustedProxies   = "TRUSTED_PROXIES"
	EnvDBUser           = "DB_USER"
	EnvDBPassword       = "DB_PASSWORD"
	EnvDBHost           = "DB_HOST"
	EnvDBPort           = "DB_PORT"
	EnvDBName           = "DB_NAME"
	EnvDBMaxConns       = "DB_MAX_CONNS"
	EnvDBMaxIdleTime    = "DB_MAX_IDLE_TIME"
	EnvDBMaxConnLife    = "DB_MAX_CONN_LIFETIME"
	EnvDefinitionsPath  = "DEFINITIONS_PATH"
	EnvMaxAwardAmount   = "MAX_AWARD_AMOUNT"
	EnvAwardCooldown    = "AWARD_COOLDOWN"
	EnvAwardWindow      = "AWARD_WINDOW"
	EnvAwardWindowLimit = "AWARD_WINDOW_LIMIT"
	EnvSummaryCacheSize = "SUMMARY_CACHE_SIZE"
	EnvSummaryCacheTTL  = "SUMMARY_CACHE_TTL"
	EnvDeadLetterPath   = "DEAD_LETTER_PATH"
)

// Defaults
const (
	DefaultPort             = 8080
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultServiceName      = "progression-engine"
	DefaultVersion          = "dev"
	DefaultEnvironment      = "dev"
	DefaultDBUser           = "postgres"
	DefaultDBPassword       = "postgres"
	DefaultDBHost           = "localhost"
	DefaultDBPort           = "5432"
	DefaultDBName           = "progression"
	DefaultDBMaxConns       = 25
	DefaultDefinitionsPath  = "configs/progression.json"
	DefaultMaxAwardAmount   = 10_000
	DefaultAwardWindowLimit = 10
	DefaultSummaryCacheSize = 4096
	DefaultDeadLetterPath   = "deadletter.jsonl"
)

// Duration defaults
const (
	DefaultAwardCooldown   = 1500 * time.Millisecond
	DefaultAwardWindow     = 60 * time.Second
	DefaultSummaryCacheTTL = 2 * time.Minute
	DefaultDBMaxIdleTime   = 5 * time.Minute
	DefaultDBMaxConnLife   = 30 * time.Minute
)
