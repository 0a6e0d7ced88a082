package season

import (
	"testing"

	"paletteapi/apperrors"
	"paletteapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(hex string, source models.SampleSource) models.ColorSample {
	return models.ColorSample{Hex: hex, Source: source, Confidence: 0.9}
}

func features(skin, hair, eye string) models.FeatureSet {
	fs := models.FeatureSet{
		Skin: []models.ColorSample{sample(skin, models.SourceSkin)},
		Hair: []models.ColorSample{sample(hair, models.SourceHair)},
	}
	if eye != "" {
		fs.Eye = []models.ColorSample{sample(eye, models.SourceEye)}
	}
	return fs
}

func TestClassifyArchetypes(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	testCases := []struct {
		name       string
		fs         models.FeatureSet
		season     models.Season
		subtype    string
		undertone  models.Undertone
		contrast   Contrast
		band       Band
		confidence float64
	}{
		{
			name:       "golden light skin with soft features",
			fs:         features("#DDB08D", "#B68E6A", "#8F937F"),
			season:     models.Spring,
			subtype:    "Light Spring",
			undertone:  models.Warm,
			contrast:   ContrastLow,
			band:       BandLight,
			confidence: 1,
		},
		{
			name:       "pink skin with near black hair",
			fs:         features("#C7AAA8", "#1D1B1A", "#372F2C"),
			season:     models.Winter,
			subtype:    "Deep Winter",
			undertone:  models.Cool,
			contrast:   ContrastHigh,
			band:       BandLight,
			confidence: 0.75,
		},
		{
			name:       "deep warm skin with dark hair",
			fs:         features("#815B3C", "#402C22", "#5A4230"),
			season:     models.Autumn,
			subtype:    "Soft Autumn",
			undertone:  models.Warm,
			contrast:   ContrastLow,
			band:       BandDeep,
			confidence: 0.75,
		},
		{
			name:       "neutral skin without eye samples",
			fs:         features("#C19480", "#624F43", ""),
			season:     models.Autumn,
			subtype:    "True Autumn",
			undertone:  models.NeutralUndertone,
			contrast:   ContrastMedium,
			band:       BandMedium,
			confidence: 0.625,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := c.Classify(tc.fs)
			require.NoError(t, err)
			assert.Equal(t, tc.season, res.Season)
			assert.Equal(t, tc.subtype, res.Subtype)
			assert.Equal(t, tc.undertone, res.Undertone)
			assert.Equal(t, tc.contrast, res.Contrast)
			assert.Equal(t, tc.band, res.Band)
			assert.InDelta(t, tc.confidence, res.Confidence, 1e-9)
			assert.Equal(t, "Profile closest to "+tc.subtype+" archetype", res.Explanation[len(res.Explanation)-1])
			assert.Contains(t, subtypeTable[res.Season], res.Contrast)
		})
	}
}

func TestClassifyRichFeatures(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	res, err := c.Classify(features("#DDB08D", "#B68E6A", "#8F937F"))
	require.NoError(t, err)
	assert.Equal(t, "Light", res.SkinTone.Name)
	assert.Equal(t, "#DDB08D", res.SkinTone.Hex)
	assert.Equal(t, "Light", res.SkinTone.Depth)
	assert.Equal(t, "Dark Blonde", res.HairColor.Name)
	assert.Equal(t, "Hazel", res.EyeColor.Name)

	res, err = c.Classify(features("#C7AAA8", "#1D1B1A", "#372F2C"))
	require.NoError(t, err)
	assert.Equal(t, "Black", res.HairColor.Name)
	assert.Equal(t, "Deep Brown", res.EyeColor.Name)

	res, err = c.Classify(features("#C19480", "#624F43", ""))
	require.NoError(t, err)
	assert.Equal(t, "Unknown", res.EyeColor.Name)
	assert.Empty(t, res.EyeColor.Hex)
	assert.Equal(t, "Medium Brown", res.HairColor.Name)
}

func TestClassifyExplainsConflicts(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	res, err := c.Classify(features("#C7AAA8", "#1D1B1A", "#372F2C"))
	require.NoError(t, err)
	assert.Contains(t, res.Explanation, "Light skin is atypical for Winter")

	res, err = c.Classify(features("#C19480", "#624F43", ""))
	require.NoError(t, err)
	assert.Contains(t, res.Explanation, "Neutral undertone could suit either warm or cool palettes")
}

func TestClassifyInsufficientData(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	lowConfidence := features("#DDB08D", "#402C22", "")
	lowConfidence.Skin[0].Confidence = 0.1

	testCases := map[string]models.FeatureSet{
		"no skin":        {Hair: []models.ColorSample{sample("#402C22", models.SourceHair)}},
		"no hair":        {Skin: []models.ColorSample{sample("#DDB08D", models.SourceSkin)}},
		"grey skin":      features("#94908D", "#402C22", ""),
		"bad skin hex":   features("not-a-color", "#402C22", ""),
		"low confidence": lowConfidence,
	}
	for name, fs := range testCases {
		_, err := c.Classify(fs)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientFeatureData, name)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	fs := features("#DDB08D", "#B68E6A", "#8F937F")

	first, err := c.Classify(fs)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Classify(fs)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestClassifyAveragesSamplesByConfidence(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	fs := features("#DDB08D", "#B68E6A", "")
	// a low-confidence outlier is ignored
	fs.Skin = append(fs.Skin, models.ColorSample{Hex: "#1D1B1A", Source: models.SourceSkin, Confidence: 0.1})

	res, err := c.Classify(fs)
	require.NoError(t, err)
	assert.Equal(t, "#DDB08D", res.SkinTone.Hex)
}

func TestDecisionTableIsTotal(t *testing.T) {
	for _, u := range []models.Undertone{models.Warm, models.Cool, models.NeutralUndertone} {
		for _, ct := range []Contrast{ContrastLow, ContrastMedium, ContrastHigh} {
			for _, b := range []Band{BandLight, BandMedium, BandDeep} {
				season, ok := decisionTable[tableKey{u, ct, b}]
				assert.True(t, ok, "%s/%s/%s", u, ct, b)
				assert.True(t, season.Valid())
				assert.NotEmpty(t, subtypeTable[season][ct])
			}
		}
	}
}
