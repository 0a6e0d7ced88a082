package palette

import (
	"encoding/json"
	"testing"

	"paletteapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allSubtypes = []struct {
	season  models.Season
	subtype string
}{
	{models.Spring, "Light Spring"}, {models.Spring, "True Spring"}, {models.Spring, "Bright Spring"},
	{models.Summer, "Light Summer"}, {models.Summer, "Soft Summer"}, {models.Summer, "True Summer"},
	{models.Autumn, "Soft Autumn"}, {models.Autumn, "True Autumn"}, {models.Autumn, "Deep Autumn"},
	{models.Winter, "True Winter"}, {models.Winter, "Bright Winter"}, {models.Winter, "Deep Winter"},
}

func lists(p models.Palette) map[string][]models.ColorItem {
	return map[string][]models.ColorItem{
		"best":          p.Best,
		"neutral":       p.Neutral,
		"worst":         p.Worst,
		"complementary": p.Complementary,
		"accent":        p.Accent,
		"luxury":        p.Luxury,
	}
}

func TestDefaultKnowledgeBaseCoversEverySubtype(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, kb.Version())
	assert.Len(t, kb.Subtypes(), 12)

	g := NewGenerator(kb)
	for _, tc := range allSubtypes {
		p, resolved, err := g.Generate(tc.season, tc.subtype, models.Warm)
		require.NoError(t, err, tc.subtype)
		assert.Equal(t, tc.subtype, resolved)
		assert.NotEmpty(t, p.Best, tc.subtype)
		assert.NotEmpty(t, p.Neutral, tc.subtype)
		assert.NotEmpty(t, p.Worst, tc.subtype)
		assert.NotEmpty(t, p.Metals, tc.subtype)
		assert.NotEmpty(t, p.Stones, tc.subtype)

		owner := map[string]string{}
		for name, list := range lists(p) {
			for _, item := range list {
				other, dup := owner[item.Hex]
				assert.False(t, dup, "%s: %s in %s and %s", tc.subtype, item.Hex, other, name)
				owner[item.Hex] = name
			}
		}
	}
}

func TestGenerateIsPure(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)
	g := NewGenerator(kb)

	first, _, err := g.Generate(models.Winter, "Deep Winter", models.Cool)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	// mutating a result must not leak into the knowledge base
	first.Best[0].Hex = "#123456"
	first.Metals = append(first.Metals, "Tin")

	second, _, err := g.Generate(models.Winter, "Deep Winter", models.Cool)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestGenerateFallsBackToSeasonDefault(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)
	g := NewGenerator(kb)

	_, resolved, err := g.Generate(models.Autumn, "Misty Autumn", models.Warm)
	require.NoError(t, err)
	assert.Equal(t, "True Autumn", resolved)

	// a subtype filed under another season is not borrowed
	_, resolved, err = g.Generate(models.Summer, "Deep Winter", models.Cool)
	require.NoError(t, err)
	assert.Equal(t, "True Summer", resolved)

	_, _, err = g.Generate(models.Season("Monsoon"), "True Winter", models.Cool)
	assert.Error(t, err)
}

func TestGenerateCarriesJewelryStones(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)
	g := NewGenerator(kb)

	p, _, err := g.Generate(models.Autumn, "True Autumn", models.Warm)
	require.NoError(t, err)
	assert.Equal(t, []string{"Amber", "Jasper", "Tiger's Eye"}, p.Stones)

	p.Stones[0] = "changed"
	again, _, err := g.Generate(models.Autumn, "True Autumn", models.Warm)
	require.NoError(t, err)
	assert.Equal(t, "Amber", again.Stones[0])
}

func TestNeutralUndertoneAddsMixedMetals(t *testing.T) {
	kb, err := Default()
	require.NoError(t, err)
	g := NewGenerator(kb)

	p, _, err := g.Generate(models.Summer, "Soft Summer", models.NeutralUndertone)
	require.NoError(t, err)
	assert.Contains(t, p.Metals, "Mixed Metals")

	p, _, err = g.Generate(models.Summer, "Soft Summer", models.Cool)
	require.NoError(t, err)
	assert.NotContains(t, p.Metals, "Mixed Metals")
}

const validDoc = `
version: "t1"
seasons:
  Spring: {fallback: A}
  Summer: {fallback: B}
  Autumn: {fallback: C}
  Winter: {fallback: D}
subtypes:
  - {name: A, season: Spring, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
  - {name: B, season: Summer, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
  - {name: C, season: Autumn, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
  - {name: D, season: Winter, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
`

func TestLoadValidation(t *testing.T) {
	_, err := Load([]byte(validDoc))
	require.NoError(t, err)

	cases := map[string]string{
		"overlap": `
version: "t1"
seasons: {Spring: {fallback: A}, Summer: {fallback: A}, Autumn: {fallback: A}, Winter: {fallback: A}}
subtypes:
  - {name: A, season: Spring, best: [{hex: "#ff0000"}], neutral: [{hex: "#FF0000"}], worst: [{hex: "#000000"}]}
`,
		"empty worst": `
version: "t1"
seasons: {Spring: {fallback: A}}
subtypes:
  - {name: A, season: Spring, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}]}
`,
		"bad hex": `
version: "t1"
subtypes:
  - {name: A, season: Spring, best: [{hex: "#FF00"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
`,
		"missing fallback": `
version: "t1"
seasons: {Spring: {fallback: A}}
subtypes:
  - {name: A, season: Spring, best: [{hex: "#FF0000"}], neutral: [{hex: "#FFFFFF"}], worst: [{hex: "#000000"}]}
`,
		"no version": `
subtypes: []
`,
	}
	for name, doc := range cases {
		_, err := Load([]byte(doc))
		assert.Error(t, err, name)
	}
}
