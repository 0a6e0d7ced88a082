package outfits

import (
	"testing"

	"paletteapi/apperrors"
	"paletteapi/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func item(id uint, category models.Category, level models.MatchLevel, seasons ...string) models.WardrobeItem {
	return models.WardrobeItem{
		JsonModel:   models.JsonModel{ID: id},
		Category:    category,
		MatchLevel:  level,
		Seasonality: pq.StringArray(seasons),
	}
}

func TestComposeEmptyWardrobe(t *testing.T) {
	c := NewComposer(nil)

	resp, err := c.Compose(models.OutfitRequest{Occasion: "Office"}, models.Autumn, nil)
	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Equal(t, []models.Category{
		models.CategoryTop, models.CategoryBottom, models.CategoryOuterwear, models.CategoryFootwear, models.CategoryAccessory,
	}, resp.MissingCategories)
	assert.Contains(t, resp.Explanation, "No eligible items")
	assert.Equal(t, "Office Look", resp.OutfitName)
}

func TestComposeRejectsEmptyOccasion(t *testing.T) {
	c := NewComposer(nil)
	items := []models.WardrobeItem{item(1, models.CategoryTop, models.MatchBest, "AllSeason")}

	for _, occasion := range []string{"", "   "} {
		resp, err := c.Compose(models.OutfitRequest{Occasion: occasion, Vibe: "Chic"}, models.Autumn, items)
		assert.ErrorIs(t, err, apperrors.ErrMissingRequiredField)
		assert.Empty(t, resp.Items)
		assert.Empty(t, resp.OutfitName)
	}
}

func TestComposeFiltersBySeason(t *testing.T) {
	c := NewComposer(nil)
	items := []models.WardrobeItem{
		item(1, models.CategoryTop, models.MatchBest, "Summer"),
		item(2, models.CategoryTop, models.MatchWorst, "Autumn"),
		item(3, models.CategoryBottom, models.MatchNeutral, "AllSeason"),
		item(4, models.CategoryFootwear, models.MatchBest, "Winter"),
	}

	resp, err := c.Compose(models.OutfitRequest{Occasion: "Office"}, models.Autumn, items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.EqualValues(t, 2, resp.Items[0].ItemID)
	assert.EqualValues(t, 3, resp.Items[1].ItemID)
	assert.ElementsMatch(t, []models.Category{models.CategoryOuterwear, models.CategoryFootwear, models.CategoryAccessory}, resp.MissingCategories)

	// without an analysis nothing is filtered out
	resp, err = c.Compose(models.OutfitRequest{Occasion: "Office"}, "", items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.EqualValues(t, 1, resp.Items[0].ItemID)
	assert.Contains(t, resp.Explanation, "No color analysis yet")
}

func TestComposeKeepsUntaggedItems(t *testing.T) {
	items := []models.WardrobeItem{
		item(1, models.CategoryTop, models.MatchBest),
		item(2, models.CategoryBottom, models.MatchBest, "Summer"),
	}
	resp, err := NewComposer(nil).Compose(models.OutfitRequest{Occasion: "Office"}, models.Winter, items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.EqualValues(t, 1, resp.Items[0].ItemID)
	assert.Contains(t, resp.MissingCategories, models.CategoryBottom)
}

func TestComposeRanking(t *testing.T) {
	c := NewComposer(nil)

	office := item(7, models.CategoryTop, models.MatchNeutral, "AllSeason")
	office.OccasionTags = pq.StringArray{"office", "work"}
	plain := item(3, models.CategoryTop, models.MatchNeutral, "AllSeason")
	worstButTagged := item(1, models.CategoryTop, models.MatchWorst, "AllSeason")
	worstButTagged.OccasionTags = pq.StringArray{"office"}

	resp, err := c.Compose(models.OutfitRequest{Occasion: "Office"}, models.Spring, []models.WardrobeItem{plain, worstButTagged, office})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	// match level outranks context, context outranks id
	assert.EqualValues(t, 7, resp.Items[0].ItemID)
	assert.Contains(t, resp.Items[0].Reason, "neutral match")
	assert.Contains(t, resp.Items[0].Reason, "Office")
}

func TestComposeTiesBreakByID(t *testing.T) {
	c := NewComposer([]models.Category{models.CategoryTop})
	items := []models.WardrobeItem{
		item(9, models.CategoryTop, models.MatchBest, "AllSeason"),
		item(4, models.CategoryTop, models.MatchBest, "AllSeason"),
		item(6, models.CategoryTop, models.MatchBest, "AllSeason"),
	}
	resp, err := c.Compose(models.OutfitRequest{Occasion: "Brunch"}, models.Summer, items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.EqualValues(t, 4, resp.Items[0].ItemID)
}

func TestComposeWeatherDeprioritizesOpenFootwear(t *testing.T) {
	c := NewComposer(nil)
	sandals := item(1, models.CategoryFootwear, models.MatchBest, "AllSeason")
	sandals.Subcategory = strPtr("Sandals")
	boots := item(2, models.CategoryFootwear, models.MatchBest, "AllSeason")
	boots.Subcategory = strPtr("Ankle Boots")

	resp, err := c.Compose(models.OutfitRequest{Occasion: "Commute", Weather: "Rainy"}, models.Winter, []models.WardrobeItem{sandals, boots})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.EqualValues(t, 2, resp.Items[0].ItemID)
	assert.Contains(t, resp.Items[0].Reason, "rainy weather")

	resp, err = c.Compose(models.OutfitRequest{Occasion: "Commute", Weather: "Sunny"}, models.Winter, []models.WardrobeItem{sandals, boots})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.Items[0].ItemID)
}

func TestComposePartitionsCategories(t *testing.T) {
	c := NewComposer(nil)
	items := []models.WardrobeItem{
		item(1, models.CategoryTop, models.MatchBest, "AllSeason"),
		item(2, models.CategoryTop, models.MatchNeutral, "AllSeason"),
		item(3, models.CategoryAccessory, models.MatchBest, "AllSeason"),
		item(4, models.CategoryOnePiece, models.MatchBest, "AllSeason"),
		item(5, models.CategoryUnknown, models.MatchBest, "AllSeason"),
	}
	resp, err := c.Compose(models.OutfitRequest{Occasion: "Party", Vibe: "Bold"}, models.Spring, items)
	require.NoError(t, err)

	seen := map[models.Category]int{}
	ids := map[uint]bool{}
	for _, it := range resp.Items {
		seen[it.Category]++
		assert.False(t, ids[it.ItemID], "item %d selected twice", it.ItemID)
		ids[it.ItemID] = true
	}
	for _, cat := range resp.MissingCategories {
		seen[cat]++
	}
	assert.Len(t, seen, len(models.OutfitCategories))
	for _, cat := range models.OutfitCategories {
		assert.Equal(t, 1, seen[cat], cat)
	}
}

func TestComposeNamesCategoriesLeftOut(t *testing.T) {
	items := []models.WardrobeItem{
		item(1, models.CategoryTop, models.MatchBest, "AllSeason"),
		item(2, models.CategoryOnePiece, models.MatchBest, "Spring"),
		item(3, models.CategoryUnknown, models.MatchBest, "AllSeason"),
	}
	resp, err := NewComposer(nil).Compose(models.OutfitRequest{Occasion: "Wedding"}, models.Spring, items)
	require.NoError(t, err)
	assert.Contains(t, resp.Explanation, "Not part of this outfit's categories: onepiece.")
	assert.NotContains(t, resp.Explanation, "unknown")

	dresses := NewComposer([]models.Category{models.CategoryOnePiece, models.CategoryFootwear})
	resp, err = dresses.Compose(models.OutfitRequest{Occasion: "Wedding"}, models.Spring, items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.EqualValues(t, 2, resp.Items[0].ItemID)
	assert.Contains(t, resp.Explanation, "Not part of this outfit's categories: top.")
}

func TestComposerIgnoresRepeatedCategories(t *testing.T) {
	c := NewComposer([]models.Category{models.CategoryTop, models.CategoryTop, models.CategoryBottom, models.CategoryTop})
	assert.Equal(t, []models.Category{models.CategoryTop, models.CategoryBottom}, c.Categories)

	items := []models.WardrobeItem{
		item(1, models.CategoryTop, models.MatchBest, "AllSeason"),
		item(2, models.CategoryTop, models.MatchNeutral, "AllSeason"),
	}
	resp, err := c.Compose(models.OutfitRequest{Occasion: "Office"}, models.Winter, items)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, []models.Category{models.CategoryBottom}, resp.MissingCategories)
}

func TestOutfitName(t *testing.T) {
	assert.Equal(t, "Elegant Date Night Look", outfitName("date night", "Elegant"))
	assert.Equal(t, "Office Look", outfitName("office", ""))
	assert.Equal(t, "Casual Look", outfitName("casual", "CASUAL"))
}

func TestContextScore(t *testing.T) {
	it := item(1, models.CategoryTop, models.MatchBest)
	it.OccasionTags = pq.StringArray{"Date Night", "dinner"}
	it.StyleTags = pq.StringArray{"minimalist"}

	assert.Equal(t, 2, contextScore("date night", it))
	assert.Equal(t, 2, contextScore("Dinner party", it))
	assert.Equal(t, 1, contextScore("minimal", it))
	assert.Equal(t, 0, contextScore("gym", it))
	assert.Equal(t, 0, contextScore("", it))
}
