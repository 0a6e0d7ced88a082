// Package outfits assembles one outfit per request from a user's wardrobe.
package outfits

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"paletteapi/apperrors"
	"paletteapi/languageutil"
	"paletteapi/models"
)

type Composer struct {
	Categories []models.Category
}

// NewComposer keeps the first occurrence of each category, so one item is
// never selected twice.
func NewComposer(categories []models.Category) *Composer {
	if len(categories) == 0 {
		categories = models.OutfitCategories
	}
	seen := map[models.Category]bool{}
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return &Composer{Categories: out}
}

type signal string

const (
	signalNone     signal = ""
	signalOccasion signal = "occasion"
	signalVibe     signal = "vibe"
	signalWeather  signal = "weather"
)

type ranked struct {
	item     models.WardrobeItem
	match    int
	occasion int
	vibe     int
	weather  int
}

func (r ranked) context() int {
	return r.occasion + r.vibe
}

// leadingSignal names the context signal that did the most for the item.
func (r ranked) leadingSignal() signal {
	switch {
	case r.occasion > 0 && r.occasion >= r.vibe:
		return signalOccasion
	case r.vibe > 0:
		return signalVibe
	case r.weather > 0:
		return signalWeather
	}
	return signalNone
}

func less(a, b ranked) bool {
	if a.match != b.match {
		return a.match > b.match
	}
	if a.context() != b.context() {
		return a.context() > b.context()
	}
	if a.weather != b.weather {
		return a.weather > b.weather
	}
	return a.item.ID < b.item.ID
}

// Compose picks at most one item per category. An empty season means the
// user has no analysis yet and skips the seasonality filter.
func (c *Composer) Compose(req models.OutfitRequest, season models.Season, items []models.WardrobeItem) (models.OutfitResponse, error) {
	occasion := strings.TrimSpace(req.Occasion)
	if occasion == "" {
		return models.OutfitResponse{}, fmt.Errorf("%w: occasion", apperrors.ErrMissingRequiredField)
	}
	vibe := strings.TrimSpace(req.Vibe)
	weather := strings.TrimSpace(req.Weather)

	groups := map[models.Category][]ranked{}
	for _, item := range items {
		if season != "" && !item.HasSeason(season) && !item.HasSeason(models.AllSeason) {
			continue
		}
		groups[item.Category] = append(groups[item.Category], ranked{
			item:     item,
			match:    item.MatchLevel.Rank(),
			occasion: contextScore(occasion, item),
			vibe:     contextScore(vibe, item),
			weather:  weatherScore(weather, item),
		})
	}

	resp := models.OutfitResponse{
		OutfitName:        outfitName(occasion, vibe),
		Items:             []models.OutfitItem{},
		MissingCategories: []models.Category{},
	}
	for _, category := range c.Categories {
		group := groups[category]
		if len(group) == 0 {
			resp.MissingCategories = append(resp.MissingCategories, category)
			continue
		}
		sort.SliceStable(group, func(i, j int) bool { return less(group[i], group[j]) })
		top := group[0]
		resp.Items = append(resp.Items, models.OutfitItem{
			ItemID:     top.item.ID,
			Category:   category,
			MatchLevel: top.item.MatchLevel,
			Reason:     reason(top, occasion, vibe, weather),
		})
	}
	resp.Explanation = explain(season, occasion, vibe, weather, resp) + c.leftOut(groups)
	return resp, nil
}

// leftOut names eligible categories the composer does not dress, such as
// one-piece items when only separates are configured.
func (c *Composer) leftOut(groups map[models.Category][]ranked) string {
	var names []string
	for category := range groups {
		if category == models.CategoryUnknown || slices.Contains(c.Categories, category) {
			continue
		}
		names = append(names, string(category))
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return fmt.Sprintf(" Not part of this outfit's categories: %s.", strings.Join(names, ", "))
}

func reason(r ranked, occasion, vibe, weather string) string {
	level := r.item.MatchLevel
	if level == "" {
		level = models.MatchNeutral
	}
	prefix := fmt.Sprintf("A %s match for your palette", level)
	switch r.leadingSignal() {
	case signalOccasion:
		return fmt.Sprintf("%s that suits %s", prefix, occasion)
	case signalVibe:
		return fmt.Sprintf("%s with a %s feel", prefix, strings.ToLower(vibe))
	case signalWeather:
		return fmt.Sprintf("%s that works in %s weather", prefix, strings.ToLower(weather))
	}
	return prefix
}

func explain(season models.Season, occasion, vibe, weather string, resp models.OutfitResponse) string {
	var b strings.Builder
	if len(resp.Items) == 0 {
		b.WriteString(fmt.Sprintf("No eligible items were found in your wardrobe for %s", occasion))
		if season != "" {
			b.WriteString(fmt.Sprintf(" in your %s season", season))
		}
		b.WriteString(".")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Built for %s", occasion))
	if vibe != "" {
		b.WriteString(fmt.Sprintf(" with a %s vibe", strings.ToLower(vibe)))
	}
	if weather != "" {
		b.WriteString(fmt.Sprintf(" in %s weather", strings.ToLower(weather)))
	}
	if season != "" {
		b.WriteString(fmt.Sprintf(", using pieces that flatter your %s coloring.", season))
	} else {
		b.WriteString(". No color analysis yet, so every season's pieces were considered.")
	}
	if len(resp.MissingCategories) > 0 {
		names := make([]string, len(resp.MissingCategories))
		for i, c := range resp.MissingCategories {
			names[i] = string(c)
		}
		b.WriteString(fmt.Sprintf(" Missing: %s.", strings.Join(names, ", ")))
	}
	return b.String()
}

func outfitName(occasion, vibe string) string {
	if vibe == "" || strings.EqualFold(vibe, occasion) {
		return languageutil.Title(occasion + " Look")
	}
	return languageutil.Title(vibe + " " + occasion + " Look")
}
