package services

import (
	"context"
	"fmt"
	"strings"

	"paletteapi/config"
	"paletteapi/models"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func (g *GeminiService) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == models.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(m.Content)}, role))
	}
	contents = append(contents, genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(message)}, genai.RoleUser))

	result, err := g.generate(ctx, g.ChatModel, contents, &genai.GenerateContentConfig{
		Temperature:    floatPointer(0.7),
		CandidateCount: 1,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("stylist reply: %w", err)
	}
	return responseText(result)
}

// OpenAIChat talks to any OpenAI compatible chat completion endpoint.
type OpenAIChat struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIChat(cfg config.AIConfig) *OpenAIChat {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
	return &OpenAIChat{
		Client: openai.NewClientWithConfig(clientConfig),
		Model:  cfg.OpenAIModel,
	}
}

func (o *OpenAIChat) Reply(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.Model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("stylist reply: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("stylist reply: no choices in response")
	}
	log.Info().
		Str("model", o.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion")
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// NewChatResponder picks the configured chat backend.
func NewChatResponder(cfg config.AIConfig, gemini *GeminiService) (ChatResponder, error) {
	switch strings.ToLower(cfg.ChatBackend) {
	case "", "gemini":
		if gemini == nil {
			return nil, fmt.Errorf("gemini chat backend selected without a Gemini client")
		}
		return gemini, nil
	case "openai":
		return NewOpenAIChat(cfg), nil
	}
	return nil, fmt.Errorf("unknown chat backend %q", cfg.ChatBackend)
}
