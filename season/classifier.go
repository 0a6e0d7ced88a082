// Package season classifies a person's coloring into a season archetype and
// subtype from skin, eye and hair color samples.
package season

import (
	"fmt"
	"math"

	"paletteapi/apperrors"
	"paletteapi/colorspace"
	"paletteapi/models"
)

type Contrast string

const (
	ContrastLow    Contrast = "Low"
	ContrastMedium Contrast = "Medium"
	ContrastHigh   Contrast = "High"
)

type Band string

const (
	BandLight  Band = "Light"
	BandMedium Band = "Medium"
	BandDeep   Band = "Deep"
)

// Thresholds are on the CIELAB scale (L* 0..100, hue in degrees).
type Thresholds struct {
	WarmHueMin          float64 `yaml:"warm_hue_min" env:"SEASON_WARM_HUE_MIN" env-default:"58"`
	CoolHueMax          float64 `yaml:"cool_hue_max" env:"SEASON_COOL_HUE_MAX" env-default:"45"`
	MinSkinChroma       float64 `yaml:"min_skin_chroma" env:"SEASON_MIN_SKIN_CHROMA" env-default:"5"`
	LowContrastMax      float64 `yaml:"low_contrast_max" env:"SEASON_LOW_CONTRAST_MAX" env-default:"22"`
	HighContrastMin     float64 `yaml:"high_contrast_min" env:"SEASON_HIGH_CONTRAST_MIN" env-default:"40"`
	LightSkinMin        float64 `yaml:"light_skin_min" env:"SEASON_LIGHT_SKIN_MIN" env-default:"68"`
	DeepSkinMax         float64 `yaml:"deep_skin_max" env:"SEASON_DEEP_SKIN_MAX" env-default:"50"`
	MinSampleConfidence float64 `yaml:"min_sample_confidence" env:"SEASON_MIN_SAMPLE_CONFIDENCE" env-default:"0.25"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WarmHueMin:          58,
		CoolHueMax:          45,
		MinSkinChroma:       5,
		LowContrastMax:      22,
		HighContrastMin:     40,
		LightSkinMin:        68,
		DeepSkinMax:         50,
		MinSampleConfidence: 0.25,
	}
}

// Signals are the intermediate values the decision tables are keyed on.
type Signals struct {
	Undertone     models.Undertone
	Contrast      Contrast
	Band          Band
	ContrastScore float64
	Skin          colorspace.Lab
	Hair          colorspace.Lab
	Eye           *colorspace.Lab
}

type Result struct {
	Season      models.Season
	Subtype     string
	Undertone   models.Undertone
	Contrast    Contrast
	Band        Band
	Confidence  float64
	Explanation []string
	SkinTone    models.RichFeature
	EyeColor    models.RichFeature
	HairColor   models.RichFeature
	Signals     Signals
}

type Classifier struct {
	Thresholds Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{Thresholds: t}
}

// Classify is a pure function of the feature set. It fails with
// apperrors.ErrInsufficientFeatureData when the undertone or contrast
// cannot be derived.
func (c *Classifier) Classify(fs models.FeatureSet) (Result, error) {
	skinHex, err := c.combine(fs.Skin)
	if err != nil {
		return Result{}, fmt.Errorf("%w: skin: %v", apperrors.ErrInsufficientFeatureData, err)
	}
	hairHex, err := c.combine(fs.Hair)
	if err != nil {
		return Result{}, fmt.Errorf("%w: hair: %v", apperrors.ErrInsufficientFeatureData, err)
	}
	eyeHex, eyeErr := c.combine(fs.Eye)

	skin, _ := colorspace.LabOf(skinHex)
	hair, _ := colorspace.LabOf(hairHex)
	signals := Signals{Skin: skin, Hair: hair}
	if eyeErr == nil {
		eye, _ := colorspace.LabOf(eyeHex)
		signals.Eye = &eye
	}

	if skin.Chroma() < c.Thresholds.MinSkinChroma {
		return Result{}, fmt.Errorf("%w: skin sample too desaturated to read an undertone", apperrors.ErrInsufficientFeatureData)
	}
	signals.Undertone = c.undertone(skin)
	signals.ContrastScore = contrastScore(signals)
	signals.Contrast = c.contrast(signals.ContrastScore)
	signals.Band = c.band(skin.L)

	season := decisionTable[tableKey{signals.Undertone, signals.Contrast, signals.Band}]
	subtype := subtypeTable[season][signals.Contrast]
	confidence, notes := agreement(season, signals)

	explanation := []string{
		undertoneRule(signals.Undertone, skin),
		fmt.Sprintf("%s contrast between skin, hair and eyes (score %.1f)", signals.Contrast, signals.ContrastScore),
		fmt.Sprintf("Skin lightness L*=%.0f falls in the %s band", skin.L, lowerBand(signals.Band)),
		fmt.Sprintf("%s undertone with %s contrast and %s skin maps to %s", signals.Undertone, lower(string(signals.Contrast)), lowerBand(signals.Band), season),
		fmt.Sprintf("%s contrast within %s gives %s", signals.Contrast, season, subtype),
	}
	explanation = append(explanation, notes...)
	explanation = append(explanation, fmt.Sprintf("Profile closest to %s archetype", subtype))

	result := Result{
		Season:      season,
		Subtype:     subtype,
		Undertone:   signals.Undertone,
		Contrast:    signals.Contrast,
		Band:        signals.Band,
		Confidence:  confidence,
		Explanation: explanation,
		SkinTone:    interpretSkin(skinHex, skin, signals.Band),
		HairColor:   interpretHair(hairHex, hair),
		EyeColor:    models.RichFeature{Name: "Unknown"},
		Signals:     signals,
	}
	if signals.Eye != nil {
		result.EyeColor = interpretEye(eyeHex, *signals.Eye)
	}
	return result, nil
}

// combine averages the usable samples of one source, weighted by confidence.
func (c *Classifier) combine(samples []models.ColorSample) (string, error) {
	var hexes []string
	var weights []float64
	for _, s := range samples {
		if s.Confidence < c.Thresholds.MinSampleConfidence {
			continue
		}
		if _, err := colorspace.Normalize(s.Hex); err != nil {
			continue
		}
		hexes = append(hexes, s.Hex)
		weights = append(weights, s.Confidence)
	}
	if len(hexes) == 0 {
		return "", fmt.Errorf("no usable samples out of %d", len(samples))
	}
	return colorspace.Average(hexes, weights)
}

func (c *Classifier) undertone(skin colorspace.Lab) models.Undertone {
	h := skin.HueAngle()
	switch {
	case h >= c.Thresholds.WarmHueMin && h <= 120:
		return models.Warm
	case h <= c.Thresholds.CoolHueMax || h > 300:
		return models.Cool
	}
	return models.NeutralUndertone
}

func contrastScore(s Signals) float64 {
	skinHair := math.Abs(s.Skin.L - s.Hair.L)
	if s.Eye == nil {
		return skinHair
	}
	return skinHair*0.5 + math.Abs(s.Skin.L-s.Eye.L)*0.3 + math.Abs(s.Hair.L-s.Eye.L)*0.2
}

func (c *Classifier) contrast(score float64) Contrast {
	switch {
	case score < c.Thresholds.LowContrastMax:
		return ContrastLow
	case score >= c.Thresholds.HighContrastMin:
		return ContrastHigh
	}
	return ContrastMedium
}

func (c *Classifier) band(l float64) Band {
	switch {
	case l >= c.Thresholds.LightSkinMin:
		return BandLight
	case l < c.Thresholds.DeepSkinMax:
		return BandDeep
	}
	return BandMedium
}

func undertoneRule(u models.Undertone, skin colorspace.Lab) string {
	switch u {
	case models.Warm:
		return fmt.Sprintf("Skin hue angle %.0f° leans golden, warm undertone", skin.HueAngle())
	case models.Cool:
		return fmt.Sprintf("Skin hue angle %.0f° leans pink, cool undertone", skin.HueAngle())
	}
	return fmt.Sprintf("Skin hue angle %.0f° sits between golden and pink, neutral undertone", skin.HueAngle())
}

func lowerBand(b Band) string {
	return lower(string(b))
}
