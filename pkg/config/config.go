package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers accepted by STORE_DRIVER.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Credential modes accepted by CREDENTIAL_MODE.
const (
	CredentialPlaintext = "plaintext"
	CredentialBcrypt    = "bcrypt"
)

type Config struct {
	Env string

	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	Credentials CredentialsConfig
	Workouts    WorkoutsConfig
	Session     SessionConfig
	Recovery    RecoveryConfig
}

// StoreConfig selects where storage units live.
type StoreConfig struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

type LogConfig struct {
	Level  string
	Format string
}

// CredentialsConfig controls how passwords are stored and generated.
type CredentialsConfig struct {
	Mode               string
	TempPasswordLength int
}

// WorkoutsConfig tunes the trainer advisory.
type WorkoutsConfig struct {
	AdvisoryThreshold int
}

// SessionConfig signs caller-held session tokens.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// RecoveryConfig enables delivery of temporary passwords by email.
type RecoveryConfig struct {
	ResendAPIKey string
	FromEmail    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Store = StoreConfig{
		Driver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		DataDir:    v.GetString("DATA_DIR"),
		SQLitePath: v.GetString("SQLITE_PATH"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:      v.GetString("REDIS_HOST"),
		Port:      v.GetInt("REDIS_PORT"),
		Password:  v.GetString("REDIS_PASSWORD"),
		DB:        v.GetInt("REDIS_DB"),
		KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	tempLen := v.GetInt("TEMP_PASSWORD_LENGTH")
	if tempLen <= 0 {
		tempLen = 8
	}
	cfg.Credentials = CredentialsConfig{
		Mode:               strings.ToLower(v.GetString("CREDENTIAL_MODE")),
		TempPasswordLength: tempLen,
	}

	threshold := v.GetInt("ADVISORY_THRESHOLD")
	if threshold <= 0 {
		threshold = 5
	}
	cfg.Workouts = WorkoutsConfig{AdvisoryThreshold: threshold}

	cfg.Session = SessionConfig{
		Secret: v.GetString("SESSION_SECRET"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
	}

	cfg.Recovery = RecoveryConfig{
		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		FromEmail:    v.GetString("RECOVERY_FROM_EMAIL"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("STORE_DRIVER", DriverFile)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SQLITE_PATH", "./data/plano.db")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "plano_treino")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "plano")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CREDENTIAL_MODE", CredentialPlaintext)
	v.SetDefault("TEMP_PASSWORD_LENGTH", 8)
	v.SetDefault("ADVISORY_THRESHOLD", 5)

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "12h")

	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RECOVERY_FROM_EMAIL", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
