package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paletteapi/config"
	"paletteapi/models"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// LLMModelName is the Gemini model a request is sent to.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.5-flash"
	}
}

// ParseLLMModelName resolves a configured model name. Unknown names fall
// back to Flash25.
func ParseLLMModelName(name string) LLMModelName {
	for _, m := range []LLMModelName{Pro25, Flash25, FlashLite25, Flash20} {
		if strings.EqualFold(strings.TrimSpace(name), m.String()) {
			return m
		}
	}
	return Flash25
}

func floatPointer(f float32) *float32 {
	return &f
}

func boolPointer(b bool) *bool {
	return &b
}

// FeatureExtractor reads skin, eye and hair color samples from a portrait.
type FeatureExtractor interface {
	ExtractFeatures(ctx context.Context, image []byte, mimeType string) (models.FeatureSet, error)
}

// ClothingTagger describes a single garment photo.
type ClothingTagger interface {
	TagClothing(ctx context.Context, image []byte, mimeType string) (*ClothingTags, error)
}

// ChatResponder answers a stylist chat turn. History is oldest first.
type ChatResponder interface {
	Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error)
}

type GeminiService struct {
	Client      *genai.Client
	VisionModel LLMModelName
	ChatModel   LLMModelName
	Timeout     time.Duration
}

func NewGeminiService(ctx context.Context, cfg config.AIConfig) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiService{
		Client:      client,
		VisionModel: ParseLLMModelName(cfg.VisionModel),
		ChatModel:   ParseLLMModelName(cfg.ChatModel),
		Timeout:     time.Duration(cfg.ExtractionTimeout) * time.Second,
	}, nil
}

const maxGenerateAttempts = 3

// generate retries rate limited calls with a doubling delay.
func (g *GeminiService) generate(ctx context.Context, model LLMModelName, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	delay := 2 * time.Second
	for attempt := 1; ; attempt++ {
		result, err := g.Client.Models.GenerateContent(ctx, model.String(), contents, cfg)
		var apiErr genai.APIError
		if err == nil || attempt == maxGenerateAttempts || !errors.As(err, &apiErr) || apiErr.Code != http.StatusTooManyRequests {
			if err == nil {
				logUsage(model, result)
			}
			return result, err
		}
		log.Warn().Str("model", model.String()).Dur("retry_in", delay).Msg("gemini rate limited")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func logUsage(model LLMModelName, result *genai.GenerateContentResponse) {
	if result == nil || result.UsageMetadata == nil {
		return
	}
	log.Info().
		Str("model", model.String()).
		Int32("input_tokens", result.UsageMetadata.PromptTokenCount).
		Int32("output_tokens", result.UsageMetadata.CandidatesTokenCount).
		Int32("total_tokens", result.UsageMetadata.TotalTokenCount).
		Msg("gemini usage")
}

// responseText returns the first candidate's text or explains why there is
// none.
func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("content blocked: %s %s", result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response candidates")
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response text")
	}
	return text, nil
}

// decodeJSON tolerates markdown fences around an otherwise plain JSON body.
func decodeJSON(text string, out any) error {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return nil
}

func (g *GeminiService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.Timeout)
}
