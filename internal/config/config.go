package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile = "file"
	BackendHTTP = "http"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	Port             string        `mapstructure:"PORT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	CORSAllowed      string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AdminKey         string        `mapstructure:"ADMIN_KEY"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	SourceBackend    string        `mapstructure:"SOURCE_BACKEND"`
	SourceDir        string        `mapstructure:"SOURCE_DIR"`
	ConnectorURL     string        `mapstructure:"CONNECTOR_URL"`
	QualityIndex     string        `mapstructure:"QUALITY_INDEX"`
	ProductionIndex  string        `mapstructure:"PRODUCTION_INDEX"`
	IndexSheet       string        `mapstructure:"INDEX_SHEET"`
	QualitySheet     string        `mapstructure:"QUALITY_SHEET"`
	CompanyFilter    string        `mapstructure:"COMPANY_FILTER"`
	FetchConcurrency int           `mapstructure:"FETCH_CONCURRENCY"`
	ReloadCron       string        `mapstructure:"RELOAD_CRON"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("ADMIN_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SOURCE_BACKEND", BackendFile)
	v.SetDefault("SOURCE_DIR", "./data")
	v.SetDefault("CONNECTOR_URL", "")
	v.SetDefault("QUALITY_INDEX", "quality_index.xlsx")
	v.SetDefault("PRODUCTION_INDEX", "production_index.xlsx")
	v.SetDefault("INDEX_SHEET", "ARQUIVOS")
	v.SetDefault("QUALITY_SHEET", "GERAL")
	v.SetDefault("COMPANY_FILTER", "STARCHECK")
	v.SetDefault("FETCH_CONCURRENCY", 4)
	v.SetDefault("RELOAD_CRON", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.SourceBackend {
	case BackendFile:
	case BackendHTTP:
		if c.ConnectorURL == "" {
			return fmt.Errorf("SOURCE_BACKEND=http requires CONNECTOR_URL")
		}
	default:
		return fmt.Errorf("unknown SOURCE_BACKEND %q", c.SourceBackend)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	}
	return nil
}
