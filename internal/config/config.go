package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort          int           `mapstructure:"APP_PORT"`
	BackendURL       string        `mapstructure:"BACKEND_URL"`
	AuthSecret       string        `mapstructure:"AUTH_SECRET"`
	SessionStore     string        `mapstructure:"SESSION_STORE"` // "memory" or "sqlite"
	SessionDBPath    string        `mapstructure:"SESSION_DB_PATH"`
	MaxUploadSize    int64         `mapstructure:"MAX_UPLOAD_SIZE"`
	SessionListTTL   time.Duration `mapstructure:"SESSION_LIST_TTL"`
	SessionItemTTL   time.Duration `mapstructure:"SESSION_ITEM_TTL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	LogFile          string        `mapstructure:"LOG_FILE"`
	TelemetryDir     string        `mapstructure:"TELEMETRY_DIR"`
	TitleMaxLen      int           `mapstructure:"TITLE_MAX_LEN"`
	AllowedFileTypes []string      `mapstructure:"ALLOWED_FILE_TYPES"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 3000)
	viper.SetDefault("BACKEND_URL", "http://localhost:8000")
	viper.SetDefault("AUTH_SECRET", "")
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_DB_PATH", "/data/gateway.db")
	viper.SetDefault("MAX_UPLOAD_SIZE", int64(50*1024*1024))
	viper.SetDefault("SESSION_LIST_TTL", "30s")
	viper.SetDefault("SESSION_ITEM_TTL", "5m")
	viper.SetDefault("REQUEST_TIMEOUT", "60s")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("TELEMETRY_DIR", "logs")
	viper.SetDefault("TITLE_MAX_LEN", 50)
	viper.SetDefault("ALLOWED_FILE_TYPES", []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"image/jpeg",
		"image/png",
	})

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
