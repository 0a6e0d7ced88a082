package config

import (
	"os"
	"path/filepath"
	"testing"

	"paletteapi/models"
	"paletteapi/season"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MAX_UPLOAD_MB", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, "8083", cfg.Port)
	assert.EqualValues(t, 4<<20, cfg.Uploads.MaxBytes())
	assert.Equal(t, "gemini", cfg.AI.ChatBackend)
	assert.Equal(t, season.DefaultThresholds(), cfg.Style.Thresholds)

	categories, err := cfg.Style.Categories()
	require.NoError(t, err)
	assert.Nil(t, categories)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
port: "9000"
style:
  outfit_categories: [top, bottom, footwear]
  season:
    low_contrast_max: 18
audit:
  batch_size: 50
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("AUDIT_BATCH_SIZE", "75")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 75, cfg.Audit.BatchSize)
	assert.Equal(t, 18.0, cfg.Style.Thresholds.LowContrastMax)
	assert.Equal(t, 40.0, cfg.Style.Thresholds.HighContrastMin)

	categories, err := cfg.Style.Categories()
	require.NoError(t, err)
	assert.Equal(t, []models.Category{models.CategoryTop, models.CategoryBottom, models.CategoryFootwear}, categories)
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	t.Setenv("OUTFIT_CATEGORIES", "top,zzz")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsRepeatedCategory(t *testing.T) {
	t.Setenv("OUTFIT_CATEGORIES", "top,Tops,bottom")
	_, err := Load("")
	assert.ErrorContains(t, err, "listed twice")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5433, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", d.DSN())
}
