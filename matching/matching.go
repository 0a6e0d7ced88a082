// Package matching grades wardrobe colors against a user's palette.
package matching

import (
	"paletteapi/colorspace"
	"paletteapi/models"
)

type candidate struct {
	hex   string
	level models.MatchLevel
}

// candidates flattens the palette in desirability order so that, on equal
// distance, the more desirable list wins.
func candidates(p models.Palette) []candidate {
	var out []candidate
	add := func(items []models.ColorItem, level models.MatchLevel) {
		for _, item := range items {
			out = append(out, candidate{hex: item.Hex, level: level})
		}
	}
	add(p.Best, models.MatchBest)
	add(p.Accent, models.MatchBest)
	add(p.Luxury, models.MatchBest)
	add(p.Neutral, models.MatchNeutral)
	add(p.Complementary, models.MatchNeutral)
	add(p.Worst, models.MatchWorst)
	return out
}

// Assign returns the match level of the palette entry nearest to hex.
// A missing or unreadable color is neutral.
func Assign(hex string, p models.Palette) models.MatchLevel {
	if hex == "" {
		return models.MatchNeutral
	}
	cands := candidates(p)
	hexes := make([]string, len(cands))
	for i, c := range cands {
		hexes[i] = c.hex
	}
	idx, _, err := colorspace.Nearest(hex, hexes)
	if err != nil {
		return models.MatchNeutral
	}
	return cands[idx].level
}

// AssignItem sets item's match level from its color against p and stamps
// the analysis version it was computed for.
func AssignItem(item *models.WardrobeItem, p models.Palette, version uint) {
	hex := ""
	if item.ColorHex != nil {
		hex = *item.ColorHex
	}
	item.MatchLevel = Assign(hex, p)
	item.AnalysisVersion = version
}

// Recompute grades every item against p. The input slice is not modified.
func Recompute(items []models.WardrobeItem, p models.Palette, version uint) []models.WardrobeItem {
	out := make([]models.WardrobeItem, len(items))
	for i, item := range items {
		c := item.Clone()
		AssignItem(&c, p, version)
		out[i] = c
	}
	return out
}

// Stale reports the items not yet graded against version.
func Stale(items []models.WardrobeItem, version uint) []models.WardrobeItem {
	var out []models.WardrobeItem
	for _, item := range items {
		if item.AnalysisVersion != version {
			out = append(out, item)
		}
	}
	return out
}
