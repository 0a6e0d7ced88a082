package repository

import (
	"context"
	"os"
	"testing"

	"paletteapi/apperrors"
	"paletteapi/dbhelper"
	"paletteapi/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns the repositories to run the shared cases against.
// Postgres is only exercised when TEST_DB_HOST is set.
func backends(t *testing.T) map[string]func() Repository {
	out := map[string]func() Repository{
		"memory": func() Repository { return NewMemoryRepository() },
	}
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		db := dbhelper.SetupTestDB(host)
		clean := dbhelper.SetupCleaner(db)
		out["gorm"] = func() Repository {
			clean()
			return NewGormRepository(db)
		}
		t.Cleanup(clean)
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

func analysisRow(userID, version uint) *models.StyleAnalysis {
	row := models.NewStyleAnalysis(userID, models.Analysis{
		Season:          models.Autumn,
		SeasonSubtype:   "Soft Autumn",
		Undertone:       models.Warm,
		Contrast:        "Low",
		ConfidenceScore: 0.75,
		Palette: models.Palette{
			Best:    []models.ColorItem{{Hex: "#A0522D", Name: "Sienna"}},
			Neutral: []models.ColorItem{{Hex: "#F5F5DC", Name: "Beige"}},
			Worst:   []models.ColorItem{{Hex: "#FF00FF", Name: "Magenta"}},
			Metals:  []string{"Gold"},
			Version: "t1",
		},
		Explanation: []string{"warm"},
		Version:     version,
	})
	return &row
}

func TestUsers(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			first, err := repo.GetOrCreateUser(ctx, "sub-1", "Ada", "ada@example.com")
			require.NoError(t, err)
			assert.NotZero(t, first.ID)

			again, err := repo.GetOrCreateUser(ctx, "sub-1", "Other", "")
			require.NoError(t, err)
			assert.Equal(t, first.ID, again.ID)
			assert.Equal(t, "Ada", again.Name)

			got, err := repo.GetUser(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "sub-1", got.ExternalID)

			_, err = repo.GetUser(ctx, first.ID+1000)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			user, err := repo.GetOrCreateUser(ctx, "profiled", "Ada", "ada@example.com")
			require.NoError(t, err)

			age := 34
			updated, err := repo.UpdateProfile(ctx, user.ID, models.ProfileUpdate{
				Age:              &age,
				StylePreferences: strPtr("  minimalist, earthy tones "),
			})
			require.NoError(t, err)
			assert.Equal(t, "Ada", updated.Name)
			assert.Equal(t, 34, *updated.Age)
			assert.Equal(t, "minimalist, earthy tones", *updated.StylePreferences)

			_, err = repo.UpdateProfile(ctx, user.ID, models.ProfileUpdate{FullName: strPtr("Ada L."), StylePreferences: strPtr("")})
			require.NoError(t, err)
			got, err := repo.GetUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "Ada L.", got.Name)
			assert.Equal(t, 34, *got.Age)
			assert.Nil(t, got.StylePreferences)
			assert.Equal(t, "ada@example.com", got.Email)

			_, err = repo.UpdateProfile(ctx, user.ID+1000, models.ProfileUpdate{FullName: strPtr("x")})
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestAnalysisReplacementUpdatesItems(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			user, err := repo.GetOrCreateUser(ctx, "sub-2", "", "")
			require.NoError(t, err)

			_, err = repo.LoadAnalysis(ctx, user.ID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			item := models.WardrobeItem{
				UserAccountID: user.ID,
				Category:      models.CategoryTop,
				ColorHex:      strPtr("#A0522D"),
				Seasonality:   pq.StringArray{"AllSeason"},
				TaggingStatus: models.TaggingTagged,
			}
			require.NoError(t, repo.SaveWardrobeItem(ctx, &item))

			require.NoError(t, repo.SaveAnalysis(ctx, analysisRow(user.ID, 1), nil))
			loaded, err := repo.LoadAnalysis(ctx, user.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, loaded.Version)
			assert.Equal(t, "Soft Autumn", loaded.SeasonSubtype)
			assert.Equal(t, "Sienna", loaded.Best[0].Name)

			stale, err := repo.StaleWardrobeItems(ctx, 10)
			require.NoError(t, err)
			require.Len(t, stale, 1)
			assert.Equal(t, item.ID, stale[0].ID)

			graded := item.Clone()
			graded.MatchLevel = models.MatchBest
			graded.AnalysisVersion = 2
			require.NoError(t, repo.SaveAnalysis(ctx, analysisRow(user.ID, 2), []models.WardrobeItem{graded}))

			loaded, err = repo.LoadAnalysis(ctx, user.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 2, loaded.Version)

			wardrobe, err := repo.LoadWardrobe(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, wardrobe, 1)
			assert.Equal(t, models.MatchBest, wardrobe[0].MatchLevel)
			assert.EqualValues(t, 2, wardrobe[0].AnalysisVersion)

			stale, err = repo.StaleWardrobeItems(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, stale)
		})
	}
}

func TestLoadedAnalysisIsACopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.SaveAnalysis(ctx, analysisRow(1, 1), nil))

	a, err := repo.LoadAnalysis(ctx, 1)
	require.NoError(t, err)
	a.Best[0].Hex = "#000000"
	a.Explanation[0] = "changed"

	b, err := repo.LoadAnalysis(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "#A0522D", b.Best[0].Hex)
	assert.Equal(t, "warm", b.Explanation[0])
}

func TestDeleteThenListNeverReturnsItem(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			owner, err := repo.GetOrCreateUser(ctx, "owner", "", "")
			require.NoError(t, err)
			stranger, err := repo.GetOrCreateUser(ctx, "stranger", "", "")
			require.NoError(t, err)

			keep := models.WardrobeItem{UserAccountID: owner.ID, Category: models.CategoryBottom}
			drop := models.WardrobeItem{UserAccountID: owner.ID, Category: models.CategoryTop, FilePath: "wardrobe/x.jpg"}
			require.NoError(t, repo.SaveWardrobeItem(ctx, &keep))
			require.NoError(t, repo.SaveWardrobeItem(ctx, &drop))

			_, err = repo.DeleteWardrobeItem(ctx, stranger.ID, drop.ID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			deleted, err := repo.DeleteWardrobeItem(ctx, owner.ID, drop.ID)
			require.NoError(t, err)
			assert.Equal(t, "wardrobe/x.jpg", deleted.FilePath)

			_, err = repo.DeleteWardrobeItem(ctx, owner.ID, drop.ID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			items, err := repo.LoadWardrobe(ctx, owner.ID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, keep.ID, items[0].ID)

			_, err = repo.GetWardrobeItem(ctx, drop.ID)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			// a late writer must not bring the row back
			assert.ErrorIs(t, repo.SaveWardrobeItem(ctx, &drop), apperrors.ErrNotFound)
			items, err = repo.LoadWardrobe(ctx, owner.ID)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestConversations(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			user, err := repo.GetOrCreateUser(ctx, "chatter", "", "")
			require.NoError(t, err)

			conv := models.Conversation{PublicID: "c-1", UserAccountID: user.ID, Title: "Hi"}
			require.NoError(t, repo.CreateConversation(ctx, &conv))

			for _, content := range []string{"one", "two", "three", "four"} {
				msg := models.ChatMessage{Role: models.ChatRoleUser, Content: content}
				require.NoError(t, repo.AppendMessage(ctx, conv.ID, &msg))
			}

			recent, err := repo.RecentMessages(ctx, conv.ID, 3)
			require.NoError(t, err)
			require.Len(t, recent, 3)
			assert.Equal(t, "two", recent[0].Content)
			assert.Equal(t, "four", recent[2].Content)

			got, err := repo.GetConversation(ctx, user.ID, "c-1")
			require.NoError(t, err)
			assert.Equal(t, conv.ID, got.ID)

			_, err = repo.GetConversation(ctx, user.ID+1, "c-1")
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestPushTokensMoveBetweenUsers(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			a, err := repo.GetOrCreateUser(ctx, "a", "", "")
			require.NoError(t, err)
			b, err := repo.GetOrCreateUser(ctx, "b", "", "")
			require.NoError(t, err)

			require.NoError(t, repo.SavePushToken(ctx, &models.UserPushToken{UserAccountID: a.ID, Token: "tok", Platform: models.PlatformIOS}))
			require.NoError(t, repo.SavePushToken(ctx, &models.UserPushToken{UserAccountID: a.ID, Token: "tok", Platform: models.PlatformIOS}))
			tokens, err := repo.ActivePushTokens(ctx, a.ID)
			require.NoError(t, err)
			assert.Len(t, tokens, 1)

			require.NoError(t, repo.SavePushToken(ctx, &models.UserPushToken{UserAccountID: b.ID, Token: "tok", Platform: models.PlatformAndroid}))
			tokens, err = repo.ActivePushTokens(ctx, a.ID)
			require.NoError(t, err)
			assert.Empty(t, tokens)
			tokens, err = repo.ActivePushTokens(ctx, b.ID)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			assert.Equal(t, models.PlatformAndroid, tokens[0].Platform)
		})
	}
}

func TestUpdateMatchLevelsOnlyTouchesOwnItems(t *testing.T) {
	for name, newRepo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()
			owner, err := repo.GetOrCreateUser(ctx, "grader", "", "")
			require.NoError(t, err)
			other, err := repo.GetOrCreateUser(ctx, "other", "", "")
			require.NoError(t, err)

			mine := models.WardrobeItem{UserAccountID: owner.ID, Category: models.CategoryTop, Subcategory: strPtr("Tee")}
			theirs := models.WardrobeItem{UserAccountID: other.ID, Category: models.CategoryTop}
			require.NoError(t, repo.SaveWardrobeItem(ctx, &mine))
			require.NoError(t, repo.SaveWardrobeItem(ctx, &theirs))

			mine.MatchLevel = models.MatchWorst
			mine.AnalysisVersion = 3
			mine.Subcategory = strPtr("changed")
			theirs.MatchLevel = models.MatchBest
			require.NoError(t, repo.UpdateMatchLevels(ctx, owner.ID, []models.WardrobeItem{mine, theirs}))

			got, err := repo.GetWardrobeItem(ctx, mine.ID)
			require.NoError(t, err)
			assert.Equal(t, models.MatchWorst, got.MatchLevel)
			assert.EqualValues(t, 3, got.AnalysisVersion)
			assert.Equal(t, "Tee", *got.Subcategory)

			got, err = repo.GetWardrobeItem(ctx, theirs.ID)
			require.NoError(t, err)
			assert.NotEqual(t, models.MatchBest, got.MatchLevel)
		})
	}
}
