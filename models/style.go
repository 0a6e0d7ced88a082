package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type SampleSource string

const (
	SourceSkin SampleSource = "skin"
	SourceEye  SampleSource = "eye"
	SourceHair SampleSource = "hair"
)

// ColorSample is one color measurement produced by the feature extractor.
type ColorSample struct {
	Hex        string       `json:"hex"`
	Source     SampleSource `json:"source"`
	Confidence float64      `json:"confidence"`
}

// FeatureSet groups the samples of one photo by source.
type FeatureSet struct {
	Skin []ColorSample `json:"skin"`
	Eye  []ColorSample `json:"eye"`
	Hair []ColorSample `json:"hair"`
}

type ColorItem struct {
	Hex      string `json:"hex"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type RichFeature struct {
	Name  string `json:"name"`
	Hex   string `json:"hex"`
	Depth string `json:"depth,omitempty"`
}

type Palette struct {
	Best          []ColorItem `json:"best_colors"`
	Neutral       []ColorItem `json:"neutral_colors"`
	Worst         []ColorItem `json:"worst_colors"`
	Complementary []ColorItem `json:"complementary_colors"`
	Accent        []ColorItem `json:"accent_colors"`
	Luxury        []ColorItem `json:"luxury_colors"`
	Metals        []string    `json:"jewelry_metals"`
	Stones        []string    `json:"jewelry_stones"`
	Version       string      `json:"palette_version"`
}

// Clone returns a copy that shares no slices with p.
func (p Palette) Clone() Palette {
	cp := func(items []ColorItem) []ColorItem {
		return append([]ColorItem{}, items...)
	}
	return Palette{
		Best:          cp(p.Best),
		Neutral:       cp(p.Neutral),
		Worst:         cp(p.Worst),
		Complementary: cp(p.Complementary),
		Accent:        cp(p.Accent),
		Luxury:        cp(p.Luxury),
		Metals:        append([]string{}, p.Metals...),
		Stones:        append([]string{}, p.Stones...),
		Version:       p.Version,
	}
}

// Analysis is a user's season profile as exposed over the API.
type Analysis struct {
	Season          Season      `json:"season"`
	SeasonSubtype   string      `json:"season_subtype"`
	Undertone       Undertone   `json:"undertone"`
	Contrast        string      `json:"contrast"`
	SkinTone        RichFeature `json:"skin_tone"`
	EyeColor        RichFeature `json:"eye_color"`
	HairColor       RichFeature `json:"hair_color"`
	ConfidenceScore float64     `json:"confidence_score"`
	Palette
	Explanation []string  `json:"explanation"`
	Version     uint      `json:"version"`
	// CreatedAt is when this version of the analysis was produced.
	CreatedAt time.Time `json:"created_at"`
}

// StyleAnalysis is the persisted row behind Analysis; one per user.
type StyleAnalysis struct {
	JsonModel
	UserAccountID   uint      `gorm:"uniqueIndex" json:"-"`
	Version         uint      `json:"version"`
	Season          Season    `json:"season"`
	SeasonSubtype   string    `json:"season_subtype"`
	Undertone       Undertone `json:"undertone"`
	Contrast        string    `json:"contrast"`
	ConfidenceScore float64   `json:"confidence_score"`

	SkinTone  datatypes.JSONType[RichFeature] `gorm:"type:jsonb" json:"skin_tone"`
	EyeColor  datatypes.JSONType[RichFeature] `gorm:"type:jsonb" json:"eye_color"`
	HairColor datatypes.JSONType[RichFeature] `gorm:"type:jsonb" json:"hair_color"`
	Palette   datatypes.JSONType[Palette]     `gorm:"type:jsonb" json:"palette"`

	Explanation    pq.StringArray `gorm:"type:text[]" json:"explanation"`
	SourceImageKey *string        `json:"-"`
}

func NewStyleAnalysis(userID uint, a Analysis) StyleAnalysis {
	return StyleAnalysis{
		UserAccountID:   userID,
		Version:         a.Version,
		Season:          a.Season,
		SeasonSubtype:   a.SeasonSubtype,
		Undertone:       a.Undertone,
		Contrast:        a.Contrast,
		ConfidenceScore: a.ConfidenceScore,
		SkinTone:        datatypes.NewJSONType(a.SkinTone),
		EyeColor:        datatypes.NewJSONType(a.EyeColor),
		HairColor:       datatypes.NewJSONType(a.HairColor),
		Palette:         datatypes.NewJSONType(a.Palette),
		Explanation:     pq.StringArray(append([]string{}, a.Explanation...)),
	}
}

func (s StyleAnalysis) Analysis() Analysis {
	return Analysis{
		Season:          s.Season,
		SeasonSubtype:   s.SeasonSubtype,
		Undertone:       s.Undertone,
		Contrast:        s.Contrast,
		SkinTone:        s.SkinTone.Data(),
		EyeColor:        s.EyeColor.Data(),
		HairColor:       s.HairColor.Data(),
		ConfidenceScore: s.ConfidenceScore,
		Palette:         s.Palette.Data(),
		Explanation:     append([]string{}, s.Explanation...),
		Version:         s.Version,
		CreatedAt:       s.UpdatedAt,
	}
}
