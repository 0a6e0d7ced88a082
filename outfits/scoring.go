package outfits

import (
	"strings"

	"paletteapi/languageutil"
	"paletteapi/models"
)

// itemTerms collects the free-text attributes context signals match against.
func itemTerms(item models.WardrobeItem) []string {
	var terms []string
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			terms = append(terms, v)
		}
	}
	for _, tag := range item.OccasionTags {
		add(tag)
	}
	for _, tag := range item.StyleTags {
		add(tag)
	}
	for _, p := range []*string{item.Subcategory, item.ItemType} {
		if p != nil {
			add(*p)
		}
	}
	return terms
}

// contextScore is 2 when a term equals the phrase or one of its words, 1
// when they only overlap as substrings, 0 otherwise.
func contextScore(phrase string, item models.WardrobeItem) int {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return 0
	}
	words := languageutil.Tokens(phrase)
	score := 0
	for _, term := range itemTerms(item) {
		if term == phrase {
			return 2
		}
		for _, w := range words {
			if term == w {
				return 2
			}
		}
		if strings.Contains(term, phrase) || strings.Contains(phrase, term) {
			score = 1
			continue
		}
		for _, w := range words {
			if len(w) >= 3 && strings.Contains(term, w) {
				score = 1
			}
		}
	}
	return score
}

type weatherRule struct {
	triggers []string
	favors   []string
	avoids   []string
}

var weatherRules = []weatherRule{
	{
		triggers: []string{"rain", "rainy", "wet", "storm", "stormy", "drizzle", "showers"},
		favors:   []string{"boot", "waterproof", "rain", "trench", "parka", "umbrella"},
		avoids:   []string{"sandal", "open", "suede", "canvas", "flip", "espadrille", "silk"},
	},
	{
		triggers: []string{"snow", "snowy", "icy", "freezing"},
		favors:   []string{"boot", "coat", "wool", "puffer", "knit", "parka", "scarf", "glove", "fleece"},
		avoids:   []string{"sandal", "linen", "short", "tank", "open", "mesh"},
	},
	{
		triggers: []string{"cold", "chilly", "cool", "winter"},
		favors:   []string{"wool", "knit", "coat", "sweater", "boot", "cashmere", "scarf", "turtleneck"},
		avoids:   []string{"linen", "sandal", "short", "tank", "mesh"},
	},
	{
		triggers: []string{"hot", "warm", "sunny", "humid", "summer", "heat"},
		favors:   []string{"linen", "cotton", "sandal", "short", "tank", "sunglass", "hat", "espadrille"},
		avoids:   []string{"wool", "puffer", "coat", "knit", "fleece", "cashmere", "turtleneck", "leather"},
	},
	{
		triggers: []string{"windy", "wind", "breezy"},
		favors:   []string{"windbreaker", "trench", "jacket", "scarf"},
		avoids:   []string{"skirt", "dress", "hat"},
	},
}

// weatherScore is -1, 0 or 1. Anything the weather argues against wins
// over anything it favors.
func weatherScore(weather string, item models.WardrobeItem) int {
	words := languageutil.Tokens(weather)
	if len(words) == 0 {
		return 0
	}
	text := strings.Join(append(itemTerms(item), fabricOf(item)), " ")
	score := 0
	for _, rule := range weatherRules {
		if !anyWord(words, rule.triggers) {
			continue
		}
		if containsAny(text, rule.avoids) {
			return -1
		}
		if containsAny(text, rule.favors) {
			score = 1
		}
	}
	return score
}

func fabricOf(item models.WardrobeItem) string {
	if item.Fabric == nil {
		return ""
	}
	return strings.ToLower(*item.Fabric)
}

func anyWord(words, set []string) bool {
	for _, w := range words {
		for _, s := range set {
			if w == s {
				return true
			}
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
