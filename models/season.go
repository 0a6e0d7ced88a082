package models

import (
	"strings"

	"github.com/go-playground/validator"
)

// Season is the coarse coloring archetype.
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
	Winter Season = "Winter"

	// AllSeason is only valid as a wardrobe seasonality tag.
	AllSeason Season = "AllSeason"
)

var Seasons = []Season{Spring, Summer, Autumn, Winter}

func (s Season) Valid() bool {
	switch s {
	case Spring, Summer, Autumn, Winter:
		return true
	}
	return false
}

// ParseSeasonality maps free text such as "fall", "all season" or "winter"
// onto a seasonality tag.
func ParseSeasonality(raw string) (Season, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.NewReplacer("-", "", "_", "", " ", "").Replace(v)
	switch v {
	case "spring":
		return Spring, true
	case "summer":
		return Summer, true
	case "autumn", "fall":
		return Autumn, true
	case "winter":
		return Winter, true
	case "allseason", "allseasons", "all", "yearround":
		return AllSeason, true
	}
	return "", false
}

func ValidateSeasonality(fl validator.FieldLevel) bool {
	_, ok := ParseSeasonality(fl.Field().String())
	return ok
}

type Undertone string

const (
	Warm             Undertone = "Warm"
	Cool             Undertone = "Cool"
	NeutralUndertone Undertone = "Neutral"
)
