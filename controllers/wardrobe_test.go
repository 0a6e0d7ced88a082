package controllers

import (
	"encoding/json"
	"fmt"
	"image/color"
	"net/http"
	"testing"

	"paletteapi/models"
	"paletteapi/tasks"
	"paletteapi/test"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coat = test.FakePNG(color.RGBA{R: 193, G: 154, B: 107, A: 255})

func TestUploadWardrobeItem(t *testing.T) {
	f := newAPI(t)

	fields := map[string]string{"category": "Jacket", "color_hex": "c19a6b"}
	rec := f.serve(test.NewMultipartAuthRequest(http.MethodPost, "/api/wardrobe", "wren", fields, coat))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item models.WardrobeItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.NotZero(t, item.ID)
	assert.Equal(t, models.CategoryOuterwear, item.Category)
	assert.Equal(t, "#C19A6B", *item.ColorHex)
	assert.Equal(t, models.TaggingPending, item.TaggingStatus)
	assert.Equal(t, models.MatchNeutral, item.MatchLevel)
	assert.Contains(t, f.storage.Objects, item.FilePath)

	require.Len(t, f.queue.Tasks, 1)
	assert.Equal(t, tasks.TypeTagItem, f.queue.Tasks[0].Type())
}

func TestUploadWardrobeItemValidation(t *testing.T) {
	f := newAPI(t)

	rec := f.serve(test.NewMultipartAuthRequest(http.MethodPost, "/api/wardrobe", "wren", map[string]string{"category": "spaceship"}, coat))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "category")

	rec = f.serve(test.NewMultipartAuthRequest(http.MethodPost, "/api/wardrobe", "wren", map[string]string{"color_hex": "#12"}, coat))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.serve(test.NewMultipartAuthRequest(http.MethodPost, "/api/wardrobe", "wren", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required field: image", decode(t, rec)["error"])

	assert.Empty(t, f.queue.Tasks)
	assert.Empty(t, f.storage.Objects)
}

func TestListWardrobeWithURIsAndSeasonFilter(t *testing.T) {
	f := newAPI(t)
	ctx := t.Context()
	user, err := f.repo.GetOrCreateUser(ctx, "wren", "", "")
	require.NoError(t, err)

	for _, seasons := range []pq.StringArray{{"Winter"}, {"AllSeason"}, {"Summer"}} {
		item := models.WardrobeItem{
			UserAccountID: user.ID,
			Category:      models.CategoryTop,
			FilePath:      fmt.Sprintf("wardrobe/%d/%s.png", user.ID, seasons[0]),
			Seasonality:   seasons,
			TaggingStatus: models.TaggingTagged,
		}
		require.NoError(t, f.repo.SaveWardrobeItem(ctx, &item))
	}

	rec := f.serve(test.NewAuthRequest(http.MethodGet, "/api/wardrobe", "wren"))
	require.Equal(t, http.StatusOK, rec.Code)
	var all WardrobeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all.Items, 3)
	assert.Equal(t, "https://storage.test/"+all.Items[0].FilePath, all.Items[0].URI)

	rec = f.serve(test.NewAuthRequest(http.MethodGet, "/api/wardrobe?season=winter", "wren"))
	require.Equal(t, http.StatusOK, rec.Code)
	var winter WardrobeListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &winter))
	assert.Len(t, winter.Items, 2)

	rec = f.serve(test.NewAuthRequest(http.MethodGet, "/api/wardrobe?season=monsoon", "wren"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.serve(test.NewAuthRequest(http.MethodGet, "/api/wardrobe", "someone-else"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items": []}`, rec.Body.String())
}

func TestDeleteWardrobeItem(t *testing.T) {
	f := newAPI(t)
	rec := f.serve(test.NewMultipartAuthRequest(http.MethodPost, "/api/wardrobe", "wren", nil, coat))
	require.Equal(t, http.StatusCreated, rec.Code)
	var item models.WardrobeItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	path := fmt.Sprintf("/api/wardrobe/%d", item.ID)

	rec = f.serve(test.NewAuthRequest(http.MethodDelete, path, "intruder"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.serve(test.NewAuthRequest(http.MethodDelete, path, "wren"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, f.storage.Deleted, item.FilePath)

	rec = f.serve(test.NewAuthRequest(http.MethodDelete, path, "wren"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.serve(test.NewAuthRequest(http.MethodDelete, "/api/wardrobe/abc", "wren"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
