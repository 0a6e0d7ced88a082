package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"paletteapi/apperrors"
	"paletteapi/models"
)

// MemoryRepository keeps everything in process. It backs tests and local
// runs without Postgres; values are copied in and out so callers never
// share memory with the store.
type MemoryRepository struct {
	mu sync.Mutex

	nextID        uint
	users         map[uint]models.UserAccount
	analyses      map[uint]models.StyleAnalysis
	items         map[uint]models.WardrobeItem
	conversations map[uint]models.Conversation
	messages      map[uint][]models.ChatMessage
	tokens        map[uint]models.UserPushToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         map[uint]models.UserAccount{},
		analyses:      map[uint]models.StyleAnalysis{},
		items:         map[uint]models.WardrobeItem{},
		conversations: map[uint]models.Conversation{},
		messages:      map[uint][]models.ChatMessage{},
		tokens:        map[uint]models.UserPushToken{},
	}
}

func (r *MemoryRepository) id() uint {
	r.nextID++
	return r.nextID
}

func stamp(m *models.JsonModel, id uint) {
	now := time.Now().UTC()
	if m.ID == 0 {
		m.ID = id
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

func (r *MemoryRepository) GetOrCreateUser(_ context.Context, externalID, name, email string) (models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ExternalID == externalID {
			return u, nil
		}
	}
	u := models.UserAccount{ExternalID: externalID, Name: name, Email: email, ReceiveNotifications: true}
	stamp(&u.JsonModel, r.id())
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepository) GetUser(_ context.Context, id uint) (models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.UserAccount{}, fmt.Errorf("%w: user", apperrors.ErrNotFound)
	}
	return u, nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, userID uint, update models.ProfileUpdate) (models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.UserAccount{}, fmt.Errorf("%w: user", apperrors.ErrNotFound)
	}
	u.ApplyProfile(update)
	stamp(&u.JsonModel, u.ID)
	r.users[userID] = u
	return u, nil
}

func (r *MemoryRepository) LoadAnalysis(_ context.Context, userID uint) (models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.analyses[userID]
	if !ok {
		return models.Analysis{}, fmt.Errorf("%w: analysis", apperrors.ErrNotFound)
	}
	a := row.Analysis()
	a.Palette = a.Palette.Clone()
	return a, nil
}

func (r *MemoryRepository) SaveAnalysis(_ context.Context, row *models.StyleAnalysis, items []models.WardrobeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.analyses[row.UserAccountID]; ok {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}
	stamp(&row.JsonModel, r.id())
	a := row.Analysis()
	a.Palette = a.Palette.Clone()
	stored := models.NewStyleAnalysis(row.UserAccountID, a)
	stored.JsonModel = row.JsonModel
	if row.SourceImageKey != nil {
		key := *row.SourceImageKey
		stored.SourceImageKey = &key
	}
	r.analyses[row.UserAccountID] = stored

	r.updateMatchLevels(row.UserAccountID, items)
	return nil
}

func (r *MemoryRepository) updateMatchLevels(userID uint, items []models.WardrobeItem) {
	for _, item := range items {
		stored, ok := r.items[item.ID]
		if !ok || stored.UserAccountID != userID {
			continue
		}
		stored.MatchLevel = item.MatchLevel
		stored.AnalysisVersion = item.AnalysisVersion
		r.items[item.ID] = stored
	}
}

func (r *MemoryRepository) UpdateMatchLevels(_ context.Context, userID uint, items []models.WardrobeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateMatchLevels(userID, items)
	return nil
}

func (r *MemoryRepository) LoadWardrobe(_ context.Context, userID uint) ([]models.WardrobeItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []models.WardrobeItem{}
	for _, item := range r.items {
		if item.UserAccountID == userID {
			items = append(items, item.Clone())
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *MemoryRepository) GetWardrobeItem(_ context.Context, id uint) (models.WardrobeItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return models.WardrobeItem{}, fmt.Errorf("%w: wardrobe item", apperrors.ErrNotFound)
	}
	return item.Clone(), nil
}

func (r *MemoryRepository) SaveWardrobeItem(_ context.Context, item *models.WardrobeItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID != 0 {
		if _, ok := r.items[item.ID]; !ok {
			return fmt.Errorf("%w: wardrobe item", apperrors.ErrNotFound)
		}
	}
	if item.MatchLevel == "" {
		item.MatchLevel = models.MatchNeutral
	}
	stamp(&item.JsonModel, r.id())
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MemoryRepository) DeleteWardrobeItem(_ context.Context, userID, id uint) (models.WardrobeItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserAccountID != userID {
		return models.WardrobeItem{}, fmt.Errorf("%w: wardrobe item", apperrors.ErrNotFound)
	}
	delete(r.items, id)
	return item, nil
}

func (r *MemoryRepository) StaleWardrobeItems(_ context.Context, limit int) ([]models.WardrobeItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []models.WardrobeItem
	for _, item := range r.items {
		analysis, ok := r.analyses[item.UserAccountID]
		if !ok || item.TaggingStatus != models.TaggingTagged || item.AnalysisVersion == analysis.Version {
			continue
		}
		stale = append(stale, item.Clone())
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (r *MemoryRepository) GetConversation(_ context.Context, userID uint, publicID string) (models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, conv := range r.conversations {
		if conv.PublicID == publicID && conv.UserAccountID == userID {
			return conv, nil
		}
	}
	return models.Conversation{}, fmt.Errorf("%w: conversation", apperrors.ErrNotFound)
}

func (r *MemoryRepository) CreateConversation(_ context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&conv.JsonModel, r.id())
	stored := *conv
	stored.Messages = nil
	r.conversations[conv.ID] = stored
	return nil
}

func (r *MemoryRepository) AppendMessage(_ context.Context, conversationID uint, msg *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversationID]; !ok {
		return fmt.Errorf("%w: conversation", apperrors.ErrNotFound)
	}
	msg.ConversationID = conversationID
	stamp(&msg.JsonModel, r.id())
	r.messages[conversationID] = append(r.messages[conversationID], *msg)
	return nil
}

func (r *MemoryRepository) RecentMessages(_ context.Context, conversationID uint, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[conversationID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]models.ChatMessage{}, all...), nil
}

func (r *MemoryRepository) SavePushToken(_ context.Context, token *models.UserPushToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.Token != token.Token {
			continue
		}
		if t.UserAccountID == token.UserAccountID {
			token.JsonModel = t.JsonModel
		} else {
			t.Active = false
			r.tokens[id] = t
		}
	}
	token.Active = true
	stamp(&token.JsonModel, r.id())
	r.tokens[token.ID] = *token
	return nil
}

func (r *MemoryRepository) ActivePushTokens(_ context.Context, userID uint) ([]models.UserPushToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserPushToken
	for _, t := range r.tokens {
		if t.UserAccountID == userID && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
