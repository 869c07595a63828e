package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Directory DirectoryConfig
	Listing   ListingConfig
	Exports   ExportsConfig
	CORS      CORSConfig
	Log       LogConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig guards mutating dashboard routes with admin bearer tokens.
type AuthConfig struct {
	Enabled bool
	Secret  string
}

// DirectoryConfig points at the external identity provider that owns user
// records. The API never stores users itself.
type DirectoryConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// ListingConfig tunes the paginated listing subsystem.
type ListingConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	CacheTTL        time.Duration
}

// ExportsConfig toggles CSV/PDF table exports.
type ExportsConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled: v.GetBool("AUTH_ENABLED"),
		Secret:  v.GetString("AUTH_TOKEN_SECRET"),
	}

	cfg.Directory = DirectoryConfig{
		BaseURL:   v.GetString("DIRECTORY_BASE_URL"),
		SecretKey: v.GetString("DIRECTORY_SECRET_KEY"),
		Timeout:   parseDuration(v.GetString("DIRECTORY_TIMEOUT"), 5*time.Second),
	}

	pageSize := v.GetInt("LISTING_DEFAULT_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 10
	}
	maxPageSize := v.GetInt("LISTING_MAX_PAGE_SIZE")
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	cfg.Listing = ListingConfig{
		DefaultPageSize: pageSize,
		MaxPageSize:     maxPageSize,
		CacheTTL:        parseDuration(v.GetString("LISTING_CACHE_TTL"), time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_TOKEN_SECRET", "dev_secret")

	v.SetDefault("DIRECTORY_BASE_URL", "http://localhost:9000")
	v.SetDefault("DIRECTORY_SECRET_KEY", "")
	v.SetDefault("DIRECTORY_TIMEOUT", "5s")

	v.SetDefault("LISTING_DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("LISTING_MAX_PAGE_SIZE", 100)
	v.SetDefault("LISTING_CACHE_TTL", "1s")

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
