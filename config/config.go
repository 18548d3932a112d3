package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AnalyzeURL     string        `env:"ANALYZE_URL" envDefault:"http://localhost:5000/analyze"`
	HealthURL      string        `env:"ANALYZER_HEALTH_URL"`
	AnalyzeTimeout time.Duration `env:"ANALYZE_TIMEOUT" envDefault:"0s"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxUploadMB    int64         `env:"MAX_UPLOAD_MB" envDefault:"20"`
	PreviewMaxSide int           `env:"PREVIEW_MAX_SIDE" envDefault:"320"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	u, err := url.Parse(c.AnalyzeURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("ANALYZE_URL must be an absolute URL, got %q", c.AnalyzeURL)
	}
	if c.AnalyzeTimeout < 0 {
		return errors.New("ANALYZE_TIMEOUT must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.PreviewMaxSide <= 0 {
		return errors.New("PREVIEW_MAX_SIDE must be positive")
	}
	return nil
}

// MaxUploadBytes возвращает лимит загрузки в байтах
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
