// backend-go/internal/config/config.go
package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Cache   CacheConfig
	Storage StorageConfig
	Drive   DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int
}

type AppConfig struct {
	UseSample           bool
	SampleSeed          uint64
	CurrencySymbol      string
	OverstockMultiplier float64
	LogFormat           string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// StorageConfig points at an S3-compatible bucket holding dataset files.
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	Enabled         bool
	CredentialsJSON string
}

var (
	once     sync.Once
	instance *Config
)

// Load returns the process-wide configuration, reading .env and the
// environment on first use.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()
		instance = LoadFresh(viper.New())
	})

	return instance
}

// LoadFresh builds a Config from the given viper instance without touching
// the singleton.
func LoadFresh(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: splitList(v.GetStringSlice("SERVER_ALLOWED_ORIGINS")),
			MaxUploadMB:    v.GetInt("SERVER_MAX_UPLOAD_MB"),
		},
		App: AppConfig{
			UseSample:           v.GetBool("APP_USE_SAMPLE"),
			SampleSeed:          v.GetUint64("APP_SAMPLE_SEED"),
			CurrencySymbol:      v.GetString("APP_CURRENCY_SYMBOL"),
			OverstockMultiplier: v.GetFloat64("APP_OVERSTOCK_MULTIPLIER"),
			LogFormat:           v.GetString("APP_LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			KeyPrefix:     v.GetString("CACHE_KEY_PREFIX"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
		},
		Drive: DriveConfig{
			Enabled:         v.GetBool("DRIVE_ENABLED"),
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 32)
	v.SetDefault("APP_USE_SAMPLE", true)
	v.SetDefault("APP_SAMPLE_SEED", 42)
	v.SetDefault("APP_CURRENCY_SYMBOL", "R$")
	v.SetDefault("APP_OVERSTOCK_MULTIPLIER", 3.0)
	v.SetDefault("APP_LOG_FORMAT", "console")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_KEY_PREFIX", "retailbi")
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("DRIVE_ENABLED", false)
}

// splitList flattens comma separated entries coming from a single env var.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
