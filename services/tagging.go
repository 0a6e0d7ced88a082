package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"paletteapi/colorspace"
	"paletteapi/models"

	"github.com/lib/pq"
	"github.com/lithammer/dedent"
	"google.golang.org/genai"
	"gorm.io/datatypes"
)

var clothingPrompt = dedent.Dedent(`
	You are a fashion product classification expert.

	Analyze the single clothing or fashion item in the image and return
	semantic fashion metadata.

	Category rules:
	- Categories are semantic. Never infer them from silhouette, position,
	  orientation or aspect ratio.
	- Dresses, gowns and jumpsuits are OnePiece.
	- Shoes, heels, sandals and boots are Footwear.
	- Hoodies, jackets, blazers and coats are Outerwear.
	- Pants, jeans, skirts and shorts are Bottom.
	- Shirts, tops, blouses, sweaters and crop tops are Top.
	- Belts, bags, jewelry, hats and scarves are Accessory and never Top or Bottom.
	- Return null for category when you are not certain.

	Other fields:
	- subcategory: short human friendly name such as "Denim Jacket".
	- item_type: a more specific type when one applies.
	- color_primary: the common name of the dominant color.
	- color_hex: the dominant color as #RRGGBB, only when confident.
	- seasonality: any of Spring, Summer, Autumn, Winter, AllSeason.
	- occasion_tags and style_tags: short lowercase keywords such as
	  "office", "party", "casual", "minimal".
`)

var nullableString = &genai.Schema{Type: genai.TypeString, Nullable: boolPointer(true)}

var stringList = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

// ClothingTags is the tagger's description of one garment.
type ClothingTags struct {
	Category     *string  `json:"category"`
	Subcategory  *string  `json:"subcategory"`
	ItemType     *string  `json:"item_type"`
	ColorPrimary *string  `json:"color_primary"`
	ColorHex     *string  `json:"color_hex"`
	Pattern      *string  `json:"pattern"`
	Fabric       *string  `json:"fabric"`
	Fit          *string  `json:"fit"`
	Seasonality  []string `json:"seasonality"`
	StyleTags    []string `json:"style_tags"`
	OccasionTags []string `json:"occasion_tags"`
}

func (g *GeminiService) TagClothing(ctx context.Context, image []byte, mimeType string) (*ClothingTags, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText("Describe this fashion item."),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	result, err := g.generate(ctx, g.VisionModel, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, &genai.GenerateContentConfig{
		Temperature:      floatPointer(0.2),
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: clothingPrompt}},
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:     genai.TypeString,
					Nullable: boolPointer(true),
					Enum:     []string{"Top", "Bottom", "OnePiece", "Outerwear", "Footwear", "Accessory"},
				},
				"subcategory":   nullableString,
				"item_type":     nullableString,
				"color_primary": nullableString,
				"color_hex":     nullableString,
				"pattern":       nullableString,
				"fabric":        nullableString,
				"fit":           nullableString,
				"seasonality":   stringList,
				"style_tags":    stringList,
				"occasion_tags": stringList,
			},
			Required: []string{"category", "subcategory", "color_primary", "seasonality", "style_tags", "occasion_tags"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tag clothing: %w", err)
	}
	text, err := responseText(result)
	if err != nil {
		return nil, fmt.Errorf("tag clothing: %w", err)
	}
	var tags ClothingTags
	if err := decodeJSON(text, &tags); err != nil {
		return nil, err
	}
	return &tags, nil
}

// Apply copies the tags onto item. Values the uploader supplied (category
// and color) win over the tagger's.
func (t ClothingTags) Apply(item *models.WardrobeItem) {
	if item.Category == "" || item.Category == models.CategoryUnknown {
		raw, sub := "", ""
		if t.Category != nil {
			raw = *t.Category
		}
		if t.Subcategory != nil {
			sub = *t.Subcategory
		}
		item.Category = models.NormalizeCategory(raw, sub)
	}
	if item.Subcategory == nil {
		item.Subcategory = trimmed(t.Subcategory)
	}
	item.ItemType = trimmed(t.ItemType)
	item.Pattern = trimmed(t.Pattern)
	item.Fabric = trimmed(t.Fabric)
	item.Fit = trimmed(t.Fit)

	if item.ColorHex == nil {
		if t.ColorHex != nil {
			if hex, err := colorspace.Normalize(*t.ColorHex); err == nil {
				item.ColorHex = &hex
			}
		}
		if name := trimmed(t.ColorPrimary); name != nil {
			item.ColorName = name
		}
	}
	FillColorName(item)

	item.Seasonality = seasonality(t.Seasonality)
	item.StyleTags = keywords(t.StyleTags)
	item.OccasionTags = keywords(t.OccasionTags)

	if raw, err := json.Marshal(t); err == nil {
		item.AIMetadata = datatypes.JSON(raw)
	}
}

// FillColorName names the item's color when only the hex is known.
func FillColorName(item *models.WardrobeItem) {
	if item.ColorName != nil || item.ColorHex == nil {
		return
	}
	if name, err := colorspace.NameOf(*item.ColorHex); err == nil {
		item.ColorName = &name
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return StrPointer(*s)
}

// seasonality keeps recognised seasons once each; an item with none is
// treated as wearable all year.
func seasonality(raw []string) pq.StringArray {
	seen := map[models.Season]bool{}
	out := pq.StringArray{}
	for _, r := range raw {
		s, ok := models.ParseSeasonality(r)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, string(s))
	}
	if len(out) == 0 {
		out = append(out, string(models.AllSeason))
	}
	return out
}

func keywords(raw []string) pq.StringArray {
	seen := map[string]bool{}
	out := pq.StringArray{}
	for _, r := range raw {
		k := strings.ToLower(strings.TrimSpace(r))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
