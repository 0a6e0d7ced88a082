package repository

import (
	"context"
	"errors"
	"fmt"

	"paletteapi/apperrors"
	"paletteapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, what)
	}
	return err
}

func (r *GormRepository) GetOrCreateUser(ctx context.Context, externalID, name, email string) (models.UserAccount, error) {
	user := models.UserAccount{ExternalID: externalID, Name: name, Email: email, ReceiveNotifications: true}
	err := r.DB.WithContext(ctx).
		Where(models.UserAccount{ExternalID: externalID}).
		Attrs(user).
		FirstOrCreate(&user).Error
	return user, err
}

func (r *GormRepository) GetUser(ctx context.Context, id uint) (models.UserAccount, error) {
	var user models.UserAccount
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return user, notFound(err, "user")
}

func (r *GormRepository) UpdateProfile(ctx context.Context, userID uint, update models.ProfileUpdate) (models.UserAccount, error) {
	var user models.UserAccount
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error
		if err != nil {
			return notFound(err, "user")
		}
		user.ApplyProfile(update)
		return tx.Model(&user).
			Select("name", "age", "gender_expression", "style_preferences").
			Updates(&user).Error
	})
	return user, err
}

func (r *GormRepository) LoadAnalysis(ctx context.Context, userID uint) (models.Analysis, error) {
	var row models.StyleAnalysis
	err := r.DB.WithContext(ctx).Where("user_account_id = ?", userID).Take(&row).Error
	if err != nil {
		return models.Analysis{}, notFound(err, "analysis")
	}
	return row.Analysis(), nil
}

func (r *GormRepository) SaveAnalysis(ctx context.Context, row *models.StyleAnalysis, items []models.WardrobeItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StyleAnalysis
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_account_id = ?", row.UserAccountID).
			Take(&existing).Error
		switch {
		case err == nil:
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			if err := tx.Save(row).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		default:
			return err
		}

		return updateMatchLevels(tx, row.UserAccountID, items)
	})
}

func updateMatchLevels(tx *gorm.DB, userID uint, items []models.WardrobeItem) error {
	for _, item := range items {
		err := tx.Model(&models.WardrobeItem{}).
			Where("id = ? AND user_account_id = ?", item.ID, userID).
			Updates(map[string]interface{}{
				"match_level":      item.MatchLevel,
				"analysis_version": item.AnalysisVersion,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepository) UpdateMatchLevels(ctx context.Context, userID uint, items []models.WardrobeItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateMatchLevels(tx, userID, items)
	})
}

func (r *GormRepository) LoadWardrobe(ctx context.Context, userID uint) ([]models.WardrobeItem, error) {
	items := []models.WardrobeItem{}
	err := r.DB.WithContext(ctx).Where("user_account_id = ?", userID).Order("id asc").Find(&items).Error
	return items, err
}

func (r *GormRepository) GetWardrobeItem(ctx context.Context, id uint) (models.WardrobeItem, error) {
	var item models.WardrobeItem
	err := r.DB.WithContext(ctx).First(&item, id).Error
	return item, notFound(err, "wardrobe item")
}

// SaveWardrobeItem inserts new items and rewrites existing ones. Unlike
// gorm's Save it never resurrects a deleted row.
func (r *GormRepository) SaveWardrobeItem(ctx context.Context, item *models.WardrobeItem) error {
	db := r.DB.WithContext(ctx)
	if item.ID == 0 {
		return db.Create(item).Error
	}
	res := db.Model(item).Select("*").Omit("created_at").Updates(item)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: wardrobe item", apperrors.ErrNotFound)
	}
	return nil
}

func (r *GormRepository) DeleteWardrobeItem(ctx context.Context, userID, id uint) (models.WardrobeItem, error) {
	var item models.WardrobeItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_account_id = ?", id, userID).Take(&item).Error; err != nil {
			return notFound(err, "wardrobe item")
		}
		return tx.Delete(&item).Error
	})
	return item, err
}

func (r *GormRepository) StaleWardrobeItems(ctx context.Context, limit int) ([]models.WardrobeItem, error) {
	items := []models.WardrobeItem{}
	err := r.DB.WithContext(ctx).
		Joins("JOIN style_analyses ON style_analyses.user_account_id = wardrobe_items.user_account_id").
		Where("wardrobe_items.analysis_version <> style_analyses.version").
		Where("wardrobe_items.tagging_status = ?", models.TaggingTagged).
		Order("wardrobe_items.id asc").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepository) GetConversation(ctx context.Context, userID uint, publicID string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.DB.WithContext(ctx).Where("public_id = ? AND user_account_id = ?", publicID, userID).Take(&conv).Error
	return conv, notFound(err, "conversation")
}

func (r *GormRepository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	return r.DB.WithContext(ctx).Create(conv).Error
}

func (r *GormRepository) AppendMessage(ctx context.Context, conversationID uint, msg *models.ChatMessage) error {
	msg.ConversationID = conversationID
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *GormRepository) RecentMessages(ctx context.Context, conversationID uint, limit int) ([]models.ChatMessage, error) {
	var newest []models.ChatMessage
	err := r.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id desc").
		Limit(limit).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, len(newest))
	for i, m := range newest {
		out[len(newest)-1-i] = m
	}
	return out, nil
}

func (r *GormRepository) SavePushToken(ctx context.Context, token *models.UserPushToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a device token belongs to whoever registered it last
		err := tx.Model(&models.UserPushToken{}).
			Where("token = ? AND user_account_id <> ?", token.Token, token.UserAccountID).
			Update("active", false).Error
		if err != nil {
			return err
		}
		var existing models.UserPushToken
		err = tx.Where("token = ? AND user_account_id = ?", token.Token, token.UserAccountID).Take(&existing).Error
		if err == nil {
			existing.Platform = token.Platform
			existing.Active = true
			*token = existing
			return tx.Save(token).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		token.Active = true
		return tx.Create(token).Error
	})
}

func (r *GormRepository) ActivePushTokens(ctx context.Context, userID uint) ([]models.UserPushToken, error) {
	var tokens []models.UserPushToken
	err := r.DB.WithContext(ctx).Where("user_account_id = ? AND active = ?", userID, true).Find(&tokens).Error
	return tokens, err
}
