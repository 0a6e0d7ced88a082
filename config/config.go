// Package config loads API and worker settings from config.yaml with
// environment variable overrides. Secrets only come from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"paletteapi/models"
	"paletteapi/season"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port    string `yaml:"port" env:"PORT" env-default:"8083"`
	Env     string `yaml:"env" env:"ENV" env-default:"local"`
	Release string `yaml:"release" env:"RELEASE" env-default:"paletteapi@1.0.0"`

	JWTSecret string `yaml:"-" env:"JWT_SECRET"`
	SentryDSN string `yaml:"-" env:"SENTRY_DSN"`

	Database      DatabaseConfig      `yaml:"database"`
	Broker        BrokerConfig        `yaml:"broker"`
	Storage       StorageConfig       `yaml:"storage"`
	AI            AIConfig            `yaml:"ai"`
	Uploads       UploadConfig        `yaml:"uploads"`
	Style         StyleConfig         `yaml:"style"`
	Audit         AuditConfig         `yaml:"audit"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User         string `yaml:"user" env:"DB_USERNAME" env-default:"palette"`
	Password     string `yaml:"-" env:"DB_PASSWORD"`
	Name         string `yaml:"name" env:"DB_NAME" env-default:"palette"`
	SSLMode      string `yaml:"ssl_mode" env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"300"`
	MaxIdleConns int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type BrokerConfig struct {
	Addr        string `yaml:"addr" env:"ASYNC_BROKER_ADDRESS" env-default:"localhost:6379"`
	Concurrency int    `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"10"`
}

type StorageConfig struct {
	Bucket          string `yaml:"bucket" env:"R2_BUCKET_NAME"`
	AccountID       string `yaml:"account_id" env:"R2_ACCOUNT_ID"`
	AccessKeyID     string `yaml:"-" env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `yaml:"-" env:"R2_ACCESS_KEY_SECRET"`
	PresignMinutes  int    `yaml:"presign_minutes" env:"R2_PRESIGN_MINUTES" env-default:"15"`
}

type AIConfig struct {
	GeminiAPIKey string `yaml:"-" env:"GEMINI_API_KEY"`
	VisionModel  string `yaml:"vision_model" env:"GEMINI_VISION_MODEL" env-default:"gemini-2.5-flash"`
	ChatModel    string `yaml:"chat_model" env:"GEMINI_CHAT_MODEL" env-default:"gemini-2.5-flash"`
	// ChatBackend is "gemini" or "openai" (any OpenAI-compatible endpoint).
	ChatBackend       string `yaml:"chat_backend" env:"CHAT_BACKEND" env-default:"gemini"`
	OpenAIBaseURL     string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.x.ai/v1"`
	OpenAIAPIKey      string `yaml:"-" env:"OPENAI_API_KEY"`
	OpenAIModel       string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"grok-3-mini"`
	ExtractionTimeout int    `yaml:"extraction_timeout_seconds" env:"EXTRACTION_TIMEOUT_SECONDS" env-default:"60"`
}

type UploadConfig struct {
	MaxUploadMB int `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB" env-default:"10"`
}

func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxUploadMB) << 20
}

type StyleConfig struct {
	PaletteFile      string            `yaml:"palette_file" env:"PALETTE_FILE"`
	OutfitCategories []string          `yaml:"outfit_categories" env:"OUTFIT_CATEGORIES" env-separator:","`
	Thresholds       season.Thresholds `yaml:"season"`
}

// Categories returns the configured outfit categories, or nil to use the
// composer default. A category listed twice is an error.
func (s StyleConfig) Categories() ([]models.Category, error) {
	var out []models.Category
	seen := map[models.Category]bool{}
	for _, raw := range s.OutfitCategories {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c := models.NormalizeCategory(raw, "")
		if c == models.CategoryUnknown {
			return nil, fmt.Errorf("unknown outfit category %q", raw)
		}
		if seen[c] {
			return nil, fmt.Errorf("outfit category %q listed twice", raw)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

type AuditConfig struct {
	Cron      string `yaml:"cron" env:"AUDIT_CRON" env-default:"@every 30m"`
	BatchSize int    `yaml:"batch_size" env:"AUDIT_BATCH_SIZE" env-default:"200"`
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled" env:"NOTIFICATIONS_ENABLED" env-default:"true"`
}

// Load reads path when it exists and the environment otherwise. Either way
// environment variables win.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else if path != "" && !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", path, statErr)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if _, err := cfg.Style.Categories(); err != nil {
		return nil, err
	}
	return cfg, nil
}
