package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paletteapi/apperrors"
	"paletteapi/colorspace"
	"paletteapi/languageutil"
	"paletteapi/matching"
	"paletteapi/models"
	"paletteapi/outfits"
	"paletteapi/palette"
	"paletteapi/repository"
	"paletteapi/season"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	chatHistoryLimit  = 10
	presignWorkers    = 8
	conversationTitle = 60
	minProfileAge     = 13
	maxProfileAge     = 120
)

// StyleService ties the color analysis, the wardrobe and the stylist
// together. Every operation that reads or writes a user's analysis and
// match levels holds that user's lock.
type StyleService struct {
	Repo       repository.Repository
	Storage    StorageProvider
	URLs       URLCacheServiceProvider
	Extractor  FeatureExtractor
	Stylist    ChatResponder
	Classifier *season.Classifier
	Palettes   *palette.Generator
	Composer   *outfits.Composer

	locks userLocks
}

// AnalyzePhoto runs a portrait through extraction, classification and
// palette generation, then stores the result as the user's next analysis
// version and regrades the whole wardrobe against it.
func (s *StyleService) AnalyzePhoto(ctx context.Context, userID uint, image []byte, mimeType string) (models.Analysis, error) {
	fs, err := s.Extractor.ExtractFeatures(ctx, image, mimeType)
	if err != nil {
		if !errors.Is(err, apperrors.ErrFeatureExtraction) {
			err = fmt.Errorf("%w: %v", apperrors.ErrFeatureExtraction, err)
		}
		return models.Analysis{}, err
	}
	result, err := s.Classifier.Classify(fs)
	if err != nil {
		return models.Analysis{}, err
	}
	pal, subtype, err := s.Palettes.Generate(result.Season, result.Subtype, result.Undertone)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("generate palette: %w", err)
	}
	sourceKey := s.keepSourcePhoto(ctx, userID, image, mimeType)

	unlock := s.locks.Lock(userID)
	defer unlock()

	version := uint(1)
	prev, err := s.Repo.LoadAnalysis(ctx, userID)
	switch {
	case err == nil:
		version = prev.Version + 1
	case !errors.Is(err, apperrors.ErrNotFound):
		return models.Analysis{}, err
	}

	analysis := models.Analysis{
		Season:          result.Season,
		SeasonSubtype:   subtype,
		Undertone:       result.Undertone,
		Contrast:        string(result.Contrast),
		SkinTone:        result.SkinTone,
		EyeColor:        result.EyeColor,
		HairColor:       result.HairColor,
		ConfidenceScore: result.Confidence,
		Palette:         pal,
		Explanation:     result.Explanation,
		Version:         version,
	}
	items, err := s.Repo.LoadWardrobe(ctx, userID)
	if err != nil {
		return models.Analysis{}, err
	}
	graded := matching.Recompute(items, pal, version)

	row := models.NewStyleAnalysis(userID, analysis)
	row.SourceImageKey = sourceKey
	if err := s.Repo.SaveAnalysis(ctx, &row, graded); err != nil {
		return models.Analysis{}, fmt.Errorf("save analysis: %w", err)
	}
	log.Info().
		Uint("user_id", userID).
		Uint("version", version).
		Str("season", string(analysis.Season)).
		Str("subtype", subtype).
		Float64("confidence", analysis.ConfidenceScore).
		Int("regraded", len(graded)).
		Msg("analysis stored")
	return row.Analysis(), nil
}

// keepSourcePhoto stores the analysed portrait. Failing to keep it does not
// fail the analysis.
func (s *StyleService) keepSourcePhoto(ctx context.Context, userID uint, image []byte, mimeType string) *string {
	if s.Storage == nil {
		return nil
	}
	key := ObjectKey("profile", userID, mimeType)
	if err := s.Storage.Upload(ctx, key, image, mimeType); err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Msg("could not keep analysis photo")
		sentry.CaptureException(err)
		return nil
	}
	return &key
}

func (s *StyleService) GetProfile(ctx context.Context, userID uint) (models.Profile, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *StyleService) UpdateProfile(ctx context.Context, userID uint, update models.ProfileUpdate) (models.Profile, error) {
	if update.Age != nil && (*update.Age < minProfileAge || *update.Age > maxProfileAge) {
		return models.Profile{}, fmt.Errorf("%w: age must be between %d and %d", apperrors.ErrValidation, minProfileAge, maxProfileAge)
	}
	user, err := s.Repo.UpdateProfile(ctx, userID, update)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

func (s *StyleService) GetAnalysis(ctx context.Context, userID uint) (models.Analysis, error) {
	return s.Repo.LoadAnalysis(ctx, userID)
}

type WardrobeEntry struct {
	models.WardrobeItem
	URI string `json:"uri"`
}

// ListWardrobe returns the user's items with short lived read links.
func (s *StyleService) ListWardrobe(ctx context.Context, userID uint) ([]WardrobeEntry, error) {
	items, err := s.Repo.LoadWardrobe(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]WardrobeEntry, len(items))
	g := new(errgroup.Group)
	g.SetLimit(presignWorkers)
	for i, item := range items {
		entries[i].WardrobeItem = item
		if item.FilePath == "" {
			continue
		}
		g.Go(func() error {
			url, err := s.readURL(ctx, item.FilePath)
			if err != nil {
				log.Warn().Err(err).Uint("item_id", item.ID).Msg("presign failed")
				return nil
			}
			entries[i].URI = url
			return nil
		})
	}
	_ = g.Wait()
	return entries, nil
}

func (s *StyleService) readURL(ctx context.Context, key string) (string, error) {
	if s.URLs != nil {
		url, err := s.URLs.GetReadURL(ctx, key)
		if err == nil && url != "" {
			return url, nil
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("url cache failed, presigning directly")
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("failure_type", "cache_system")
				scope.SetExtra("objectKey", key)
				sentry.CaptureException(err)
			})
		}
	}
	if s.Storage == nil {
		return "", fmt.Errorf("no storage configured")
	}
	return s.Storage.GetPresignedReadURL(ctx, key)
}

// UploadHint carries what the uploader already knows about the item.
type UploadHint struct {
	Category    string
	Subcategory string
	ColorHex    string
}

// UploadWardrobeItem stores the photo and a pending item. The item is
// graded right away when its color is known; tagging fills in the rest.
func (s *StyleService) UploadWardrobeItem(ctx context.Context, userID uint, image []byte, mimeType string, hint UploadHint) (models.WardrobeItem, error) {
	item := models.WardrobeItem{
		UserAccountID: userID,
		Category:      models.CategoryUnknown,
		Subcategory:   StrPointer(hint.Subcategory),
		Seasonality:   pq.StringArray{string(models.AllSeason)},
		MatchLevel:    models.MatchNeutral,
		TaggingStatus: models.TaggingPending,
	}
	if strings.TrimSpace(hint.Category) != "" {
		item.Category = models.NormalizeCategory(hint.Category, hint.Subcategory)
		if item.Category == models.CategoryUnknown {
			return models.WardrobeItem{}, fmt.Errorf("%w: unknown category %q", apperrors.ErrValidation, hint.Category)
		}
	}
	if strings.TrimSpace(hint.ColorHex) != "" {
		hex, err := colorspace.Normalize(hint.ColorHex)
		if err != nil {
			return models.WardrobeItem{}, fmt.Errorf("%w: color_hex: %v", apperrors.ErrValidation, err)
		}
		item.ColorHex = &hex
		FillColorName(&item)
	}

	key := ObjectKey("wardrobe", userID, mimeType)
	if err := s.Storage.Upload(ctx, key, image, mimeType); err != nil {
		return models.WardrobeItem{}, fmt.Errorf("store wardrobe photo: %w", err)
	}
	item.FilePath = key

	if err := s.AssignMatch(ctx, &item); err != nil {
		return models.WardrobeItem{}, err
	}
	return item, nil
}

// AssignMatch grades item against its owner's current analysis and saves
// it. Without an analysis the item stays neutral.
func (s *StyleService) AssignMatch(ctx context.Context, item *models.WardrobeItem) error {
	unlock := s.locks.Lock(item.UserAccountID)
	defer unlock()

	analysis, err := s.Repo.LoadAnalysis(ctx, item.UserAccountID)
	switch {
	case err == nil:
		matching.AssignItem(item, analysis.Palette, analysis.Version)
	case errors.Is(err, apperrors.ErrNotFound):
		item.MatchLevel = models.MatchNeutral
		item.AnalysisVersion = 0
	default:
		return err
	}
	return s.Repo.SaveWardrobeItem(ctx, item)
}

func (s *StyleService) DeleteWardrobeItem(ctx context.Context, userID, itemID uint) error {
	item, err := s.Repo.DeleteWardrobeItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if item.FilePath != "" && s.Storage != nil {
		if err := s.Storage.Delete(ctx, item.FilePath); err != nil {
			log.Warn().Err(err).Uint("item_id", itemID).Msg("orphaned wardrobe photo")
			sentry.CaptureException(err)
		}
	}
	return nil
}

// RecomputeStale regrades up to limit items whose match level was computed
// against an older analysis. It returns how many items were updated.
func (s *StyleService) RecomputeStale(ctx context.Context, limit int) (int, error) {
	stale, err := s.Repo.StaleWardrobeItems(ctx, limit)
	if err != nil {
		return 0, err
	}
	byUser := map[uint][]models.WardrobeItem{}
	var users []uint
	for _, item := range stale {
		if _, ok := byUser[item.UserAccountID]; !ok {
			users = append(users, item.UserAccountID)
		}
		byUser[item.UserAccountID] = append(byUser[item.UserAccountID], item)
	}

	updated := 0
	for _, userID := range users {
		n, err := s.regrade(ctx, userID, byUser[userID])
		if err != nil {
			return updated, err
		}
		updated += n
	}
	return updated, nil
}

func (s *StyleService) regrade(ctx context.Context, userID uint, items []models.WardrobeItem) (int, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	analysis, err := s.Repo.LoadAnalysis(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	graded := matching.Recompute(matching.Stale(items, analysis.Version), analysis.Palette, analysis.Version)
	if len(graded) == 0 {
		return 0, nil
	}
	if err := s.Repo.UpdateMatchLevels(ctx, userID, graded); err != nil {
		return 0, err
	}
	return len(graded), nil
}

// GenerateOutfit composes an outfit from the user's wardrobe. Users without
// an analysis get an outfit without the seasonality filter.
func (s *StyleService) GenerateOutfit(ctx context.Context, userID uint, req models.OutfitRequest) (models.OutfitResponse, error) {
	if strings.TrimSpace(req.Occasion) == "" {
		return models.OutfitResponse{}, fmt.Errorf("%w: occasion", apperrors.ErrMissingRequiredField)
	}
	unlock := s.locks.Lock(userID)
	var userSeason models.Season
	analysis, err := s.Repo.LoadAnalysis(ctx, userID)
	switch {
	case err == nil:
		userSeason = analysis.Season
	case !errors.Is(err, apperrors.ErrNotFound):
		unlock()
		return models.OutfitResponse{}, err
	}
	items, err := s.Repo.LoadWardrobe(ctx, userID)
	unlock()
	if err != nil {
		return models.OutfitResponse{}, err
	}
	return s.Composer.Compose(req, userSeason, items)
}

func (s *StyleService) RegisterPushToken(ctx context.Context, userID uint, platform models.Platform, token string) error {
	return s.Repo.SavePushToken(ctx, &models.UserPushToken{
		UserAccountID: userID,
		Platform:      platform,
		Token:         strings.TrimSpace(token),
	})
}

type ChatReply struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
}

// Chat answers one stylist message. An empty conversationID starts a new
// conversation.
func (s *StyleService) Chat(ctx context.Context, userID uint, message, conversationID string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, fmt.Errorf("%w: message", apperrors.ErrMissingRequiredField)
	}

	var conv models.Conversation
	var err error
	if conversationID != "" {
		conv, err = s.Repo.GetConversation(ctx, userID, conversationID)
		if err != nil {
			return ChatReply{}, err
		}
	} else {
		conv = models.Conversation{
			PublicID:      uuid.NewString(),
			UserAccountID: userID,
			Title:         languageutil.Truncate(message, conversationTitle),
		}
		if err := s.Repo.CreateConversation(ctx, &conv); err != nil {
			return ChatReply{}, err
		}
	}

	history, err := s.Repo.RecentMessages(ctx, conv.ID, chatHistoryLimit)
	if err != nil {
		return ChatReply{}, err
	}
	system, err := s.stylistContext(ctx, userID)
	if err != nil {
		return ChatReply{}, err
	}
	reply, err := s.Stylist.Reply(ctx, system, history, message)
	if err != nil {
		return ChatReply{}, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	for _, m := range []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: message},
		{Role: models.ChatRoleAssistant, Content: reply},
	} {
		if err := s.Repo.AppendMessage(ctx, conv.ID, &m); err != nil {
			return ChatReply{}, err
		}
	}
	return ChatReply{Response: reply, ConversationID: conv.PublicID}, nil
}

func (s *StyleService) stylistContext(ctx context.Context, userID uint) (string, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}
	var analysis *models.Analysis
	a, err := s.Repo.LoadAnalysis(ctx, userID)
	switch {
	case err == nil:
		analysis = &a
	case !errors.Is(err, apperrors.ErrNotFound):
		return "", err
	}
	items, err := s.Repo.LoadWardrobe(ctx, userID)
	if err != nil {
		return "", err
	}
	return StylistPrompt(user.Profile(), analysis, items), nil
}
