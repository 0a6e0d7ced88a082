package services

import (
	"context"
	"fmt"
	"time"

	"paletteapi/config"
	"paletteapi/outfits"
	"paletteapi/palette"
	"paletteapi/repository"
	"paletteapi/season"

	"github.com/rs/zerolog/log"
)

// NewStyleServiceFromConfig wires the production collaborators. The Gemini
// client is returned as well since the worker tags clothing with it.
func NewStyleServiceFromConfig(ctx context.Context, cfg *config.Config, repo repository.Repository) (*StyleService, *GeminiService, error) {
	storage, err := NewR2Storage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	urls, err := NewURLCacheService(storage, storage.PresignTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("url cache: %w", err)
	}
	gemini, err := NewGeminiService(ctx, cfg.AI)
	if err != nil {
		return nil, nil, err
	}
	stylist, err := NewChatResponder(cfg.AI, gemini)
	if err != nil {
		return nil, nil, err
	}

	kb, err := palette.Default()
	if cfg.Style.PaletteFile != "" {
		kb, err = palette.LoadFile(cfg.Style.PaletteFile)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("palette knowledge base: %w", err)
	}
	categories, err := cfg.Style.Categories()
	if err != nil {
		return nil, nil, err
	}

	log.Info().
		Str("vision_model", gemini.VisionModel.String()).
		Str("chat_backend", cfg.AI.ChatBackend).
		Dur("presign_ttl", storage.PresignTTL.Round(time.Second)).
		Msg("style service ready")

	return &StyleService{
		Repo:       repo,
		Storage:    storage,
		URLs:       urls,
		Extractor:  gemini,
		Stylist:    stylist,
		Classifier: season.NewClassifier(cfg.Style.Thresholds),
		Palettes:   palette.NewGenerator(kb),
		Composer:   outfits.NewComposer(categories),
	}, gemini, nil
}
