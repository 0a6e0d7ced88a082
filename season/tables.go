package season

import (
	"fmt"
	"math"
	"strings"

	"paletteapi/colorspace"
	"paletteapi/models"
)

type tableKey struct {
	undertone models.Undertone
	contrast  Contrast
	band      Band
}

// decisionTable covers every undertone, contrast and band combination.
var decisionTable = map[tableKey]models.Season{
	{models.Warm, ContrastLow, BandLight}:     models.Spring,
	{models.Warm, ContrastLow, BandMedium}:    models.Spring,
	{models.Warm, ContrastLow, BandDeep}:      models.Autumn,
	{models.Warm, ContrastMedium, BandLight}:  models.Spring,
	{models.Warm, ContrastMedium, BandMedium}: models.Autumn,
	{models.Warm, ContrastMedium, BandDeep}:   models.Autumn,
	{models.Warm, ContrastHigh, BandLight}:    models.Spring,
	{models.Warm, ContrastHigh, BandMedium}:   models.Autumn,
	{models.Warm, ContrastHigh, BandDeep}:     models.Autumn,

	{models.Cool, ContrastLow, BandLight}:     models.Summer,
	{models.Cool, ContrastLow, BandMedium}:    models.Summer,
	{models.Cool, ContrastLow, BandDeep}:      models.Winter,
	{models.Cool, ContrastMedium, BandLight}:  models.Summer,
	{models.Cool, ContrastMedium, BandMedium}: models.Summer,
	{models.Cool, ContrastMedium, BandDeep}:   models.Winter,
	{models.Cool, ContrastHigh, BandLight}:    models.Winter,
	{models.Cool, ContrastHigh, BandMedium}:   models.Winter,
	{models.Cool, ContrastHigh, BandDeep}:     models.Winter,

	{models.NeutralUndertone, ContrastLow, BandLight}:     models.Summer,
	{models.NeutralUndertone, ContrastLow, BandMedium}:    models.Summer,
	{models.NeutralUndertone, ContrastLow, BandDeep}:      models.Autumn,
	{models.NeutralUndertone, ContrastMedium, BandLight}:  models.Spring,
	{models.NeutralUndertone, ContrastMedium, BandMedium}: models.Autumn,
	{models.NeutralUndertone, ContrastMedium, BandDeep}:   models.Autumn,
	{models.NeutralUndertone, ContrastHigh, BandLight}:    models.Winter,
	{models.NeutralUndertone, ContrastHigh, BandMedium}:   models.Winter,
	{models.NeutralUndertone, ContrastHigh, BandDeep}:     models.Winter,
}

var subtypeTable = map[models.Season]map[Contrast]string{
	models.Spring: {ContrastLow: "Light Spring", ContrastMedium: "True Spring", ContrastHigh: "Bright Spring"},
	models.Summer: {ContrastLow: "Light Summer", ContrastMedium: "Soft Summer", ContrastHigh: "True Summer"},
	models.Autumn: {ContrastLow: "Soft Autumn", ContrastMedium: "True Autumn", ContrastHigh: "Deep Autumn"},
	models.Winter: {ContrastLow: "True Winter", ContrastMedium: "Bright Winter", ContrastHigh: "Deep Winter"},
}

var (
	undertoneVotes = map[models.Undertone][]models.Season{
		models.Warm: {models.Spring, models.Autumn},
		models.Cool: {models.Summer, models.Winter},
	}
	contrastVotes = map[Contrast][]models.Season{
		ContrastLow:    {models.Spring, models.Summer},
		ContrastMedium: {models.Autumn, models.Spring},
		ContrastHigh:   {models.Winter},
	}
	bandVotes = map[Band][]models.Season{
		BandLight: {models.Spring, models.Summer},
		BandDeep:  {models.Autumn, models.Winter},
	}
)

// agreement scores how well each signal supports the chosen season and
// returns notes for the signals that disagree or are ambiguous.
func agreement(season models.Season, s Signals) (float64, []string) {
	var notes []string

	u := vote(undertoneVotes[s.Undertone], season)
	if u == 0.5 {
		notes = append(notes, "Neutral undertone could suit either warm or cool palettes")
	} else if u == 0 {
		notes = append(notes, fmt.Sprintf("%s undertone usually points away from %s", s.Undertone, season))
	}

	c := vote(contrastVotes[s.Contrast], season)
	if c == 0 {
		notes = append(notes, fmt.Sprintf("%s contrast is atypical for %s", s.Contrast, season))
	}

	b := vote(bandVotes[s.Band], season)
	if b == 0 {
		notes = append(notes, fmt.Sprintf("%s skin is atypical for %s", s.Band, season))
	}

	score := 0.5*u + 0.25*c + 0.25*b
	return math.Max(0, math.Min(1, score)), notes
}

// vote is 1 when the signal supports season, 0 when it opposes it and 0.5
// when the signal has no opinion.
func vote(supports []models.Season, season models.Season) float64 {
	if len(supports) == 0 {
		return 0.5
	}
	for _, s := range supports {
		if s == season {
			return 1
		}
	}
	return 0
}

func lower(s string) string {
	return strings.ToLower(s)
}

func interpretSkin(hex string, lab colorspace.Lab, band Band) models.RichFeature {
	name := "Deep"
	switch {
	case lab.L >= 80:
		name = "Fair"
	case lab.L >= 68:
		name = "Light"
	case lab.L >= 56:
		name = "Medium"
	case lab.L >= 45:
		name = "Tan"
	}
	return models.RichFeature{Name: name, Hex: hex, Depth: string(band)}
}

func interpretHair(hex string, lab colorspace.Lab) models.RichFeature {
	var name string
	switch {
	case lab.Chroma() < 6 && lab.L >= 55:
		name = "Silver Grey"
	case lab.L < 15:
		name = "Black"
	case lab.L < 28:
		name = "Dark Brown"
	case lab.L < 42:
		name = "Medium Brown"
	case lab.L < 60 && lab.Chroma() >= 25 && lab.HueAngle() < 60:
		name = "Auburn"
	case lab.L < 60:
		name = "Light Brown"
	case lab.L < 72:
		name = "Dark Blonde"
	default:
		name = "Light Blonde"
	}
	return models.RichFeature{Name: name, Hex: hex, Depth: depthOf(lab.L)}
}

func interpretEye(hex string, lab colorspace.Lab) models.RichFeature {
	var name string
	switch {
	case lab.B < 0:
		name = "Blue"
		if lab.L < 40 {
			name = "Dark Blue"
		}
	case lab.A < 0:
		name = "Green"
		if lab.B > 10 {
			name = "Hazel"
		}
	case lab.L < 25:
		name = "Deep Brown"
	case lab.L < 40:
		name = "Brown"
	case lab.L < 55:
		name = "Light Brown"
	default:
		name = "Amber"
	}
	return models.RichFeature{Name: name, Hex: hex, Depth: depthOf(lab.L)}
}

func depthOf(l float64) string {
	switch {
	case l >= 60:
		return string(BandLight)
	case l < 30:
		return string(BandDeep)
	}
	return string(BandMedium)
}
