// Package repository persists users, analyses, wardrobes and stylist
// conversations.
package repository

import (
	"context"

	"paletteapi/models"
)

// Repository is the persistence boundary of the API and the worker. Lookups
// of missing rows fail with apperrors.ErrNotFound.
type Repository interface {
	GetOrCreateUser(ctx context.Context, externalID, name, email string) (models.UserAccount, error)
	GetUser(ctx context.Context, id uint) (models.UserAccount, error)
	UpdateProfile(ctx context.Context, userID uint, update models.ProfileUpdate) (models.UserAccount, error)

	LoadAnalysis(ctx context.Context, userID uint) (models.Analysis, error)
	// SaveAnalysis replaces the user's analysis and stores the match levels
	// of items in one step.
	SaveAnalysis(ctx context.Context, row *models.StyleAnalysis, items []models.WardrobeItem) error

	LoadWardrobe(ctx context.Context, userID uint) ([]models.WardrobeItem, error)
	GetWardrobeItem(ctx context.Context, id uint) (models.WardrobeItem, error)
	SaveWardrobeItem(ctx context.Context, item *models.WardrobeItem) error
	DeleteWardrobeItem(ctx context.Context, userID, id uint) (models.WardrobeItem, error)
	// UpdateMatchLevels writes only the match level and analysis version of
	// the user's items. Items that no longer exist are skipped.
	UpdateMatchLevels(ctx context.Context, userID uint, items []models.WardrobeItem) error
	// StaleWardrobeItems returns tagged items graded against an older
	// analysis than their owner's current one.
	StaleWardrobeItems(ctx context.Context, limit int) ([]models.WardrobeItem, error)

	GetConversation(ctx context.Context, userID uint, publicID string) (models.Conversation, error)
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	AppendMessage(ctx context.Context, conversationID uint, msg *models.ChatMessage) error
	// RecentMessages returns up to limit of the newest messages, oldest first.
	RecentMessages(ctx context.Context, conversationID uint, limit int) ([]models.ChatMessage, error)

	SavePushToken(ctx context.Context, token *models.UserPushToken) error
	ActivePushTokens(ctx context.Context, userID uint) ([]models.UserPushToken, error)
}
