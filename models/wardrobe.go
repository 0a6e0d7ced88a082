package models

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuterwear Category = "outerwear"
	CategoryFootwear  Category = "footwear"
	CategoryAccessory Category = "accessory"
	CategoryOnePiece  Category = "onepiece"
	// CategoryUnknown marks an item waiting for the tagger.
	CategoryUnknown Category = "uncategorized"
)

var OutfitCategories = []Category{CategoryTop, CategoryBottom, CategoryOuterwear, CategoryFootwear, CategoryAccessory}

// categoryKeywords are matched as word prefixes so plurals count.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryOnePiece, []string{"onepiece", "dress", "jumpsuit", "romper", "overall", "playsuit"}},
	{CategoryOuterwear, []string{"outerwear", "jacket", "coat", "blazer", "parka", "trench", "cardigan", "vest", "windbreaker", "puffer", "anorak"}},
	{CategoryFootwear, []string{"footwear", "shoe", "sneaker", "boot", "sandal", "heel", "loafer", "flat", "pump", "trainer", "mule", "oxford", "espadrille"}},
	{CategoryBottom, []string{"bottom", "jean", "pant", "trouser", "skirt", "short", "legging", "chino", "jogger", "capri", "culotte"}},
	{CategoryAccessory, []string{"accessory", "accessories", "bag", "belt", "hat", "cap", "scarf", "jewel", "necklace", "earring", "bracelet", "watch", "sunglass", "tie", "glove", "purse", "clutch", "beanie"}},
	{CategoryTop, []string{"top", "shirt", "tshirt", "tee", "blouse", "sweater", "sweatshirt", "hoodie", "polo", "tank", "camisole", "jumper", "pullover", "turtleneck", "knit", "bodysuit"}},
}

// NormalizeCategory maps a free-text category (and optional subcategory)
// onto a known Category by keyword. Exact names win over keywords.
func NormalizeCategory(raw string, subcategory string) Category {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range []Category{CategoryTop, CategoryBottom, CategoryOuterwear, CategoryFootwear, CategoryAccessory, CategoryOnePiece} {
		if v == string(known) {
			return known
		}
	}
	for _, text := range []string{v, strings.ToLower(subcategory)} {
		if c := categoryOfText(text); c != CategoryUnknown {
			return c
		}
	}
	return CategoryUnknown
}

// categoryOfText reads words right to left so the head noun decides:
// "short sleeve shirt" is a top and "flat front trousers" a bottom.
func categoryOfText(text string) Category {
	words := strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	for i := len(words) - 1; i >= 0; i-- {
		if words[i] == "piece" && i > 0 && words[i-1] == "one" {
			return CategoryOnePiece
		}
		for _, group := range categoryKeywords {
			for _, word := range group.words {
				if strings.HasPrefix(words[i], word) {
					return group.category
				}
			}
		}
	}
	return CategoryUnknown
}

func ValidateCategory(fl validator.FieldLevel) bool {
	return NormalizeCategory(fl.Field().String(), "") != CategoryUnknown
}

type MatchLevel string

const (
	MatchBest    MatchLevel = "best"
	MatchNeutral MatchLevel = "neutral"
	MatchWorst   MatchLevel = "worst"
)

// Rank orders match levels by desirability, best highest.
func (m MatchLevel) Rank() int {
	switch m {
	case MatchBest:
		return 2
	case MatchNeutral:
		return 1
	}
	return 0
}

const (
	TaggingPending = "pending"
	TaggingTagged  = "tagged"
	TaggingFailed  = "failed"
)

type WardrobeItem struct {
	JsonModel
	UserAccountID uint     `gorm:"index" json:"-"`
	FilePath      string   `json:"file_path"`
	Category      Category `gorm:"index" json:"category"`
	Subcategory   *string  `json:"subcategory"`
	ItemType      *string  `json:"type"`
	ColorName     *string  `json:"color_name"`
	ColorHex      *string  `json:"color_hex"`
	Pattern       *string  `json:"pattern"`
	Fabric        *string  `json:"fabric"`
	Fit           *string  `json:"fit"`

	Seasonality  pq.StringArray `gorm:"type:text[]" json:"seasonality"`
	OccasionTags pq.StringArray `gorm:"type:text[]" json:"occasion_tags"`
	StyleTags    pq.StringArray `gorm:"type:text[]" json:"style_tags"`

	MatchLevel MatchLevel `gorm:"default:neutral" json:"match_level"`
	// AnalysisVersion is the Analysis version MatchLevel was computed against.
	AnalysisVersion uint `json:"-"`

	TaggingStatus       string         `gorm:"index" json:"tagging_status"`
	TaggingRetryTimes   int            `json:"-"`
	TaggingErrorMessage *string        `json:"-"`
	AIMetadata          datatypes.JSON `gorm:"type:jsonb" json:"-"`
}

// HasSeason reports whether the item is tagged for s. An untagged item
// counts as AllSeason.
func (w WardrobeItem) HasSeason(s Season) bool {
	if len(w.Seasonality) == 0 {
		return s == AllSeason
	}
	for _, tag := range w.Seasonality {
		if Season(tag) == s {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or pointers with w.
func (w WardrobeItem) Clone() WardrobeItem {
	c := w
	c.Subcategory = clonePtr(w.Subcategory)
	c.ItemType = clonePtr(w.ItemType)
	c.ColorName = clonePtr(w.ColorName)
	c.ColorHex = clonePtr(w.ColorHex)
	c.Pattern = clonePtr(w.Pattern)
	c.Fabric = clonePtr(w.Fabric)
	c.Fit = clonePtr(w.Fit)
	c.TaggingErrorMessage = clonePtr(w.TaggingErrorMessage)
	c.Seasonality = append(pq.StringArray(nil), w.Seasonality...)
	c.OccasionTags = append(pq.StringArray(nil), w.OccasionTags...)
	c.StyleTags = append(pq.StringArray(nil), w.StyleTags...)
	c.AIMetadata = append(datatypes.JSON(nil), w.AIMetadata...)
	return c
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
