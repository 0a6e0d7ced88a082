// Package palette turns a season subtype into curated color lists using a
// knowledge base that lives in YAML rather than in code.
package palette

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"paletteapi/colorspace"
	"paletteapi/models"

	"gopkg.in/yaml.v3"
)

const mixedMetals = "Mixed Metals"

//go:embed data/palettes.yaml
var defaultKnowledgeBase []byte

type colorEntry struct {
	Hex      string `yaml:"hex"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type subtypeEntry struct {
	Name          string       `yaml:"name"`
	Season        string       `yaml:"season"`
	Metals        []string     `yaml:"metals"`
	Stones        []string     `yaml:"stones"`
	Best          []colorEntry `yaml:"best"`
	Neutral       []colorEntry `yaml:"neutral"`
	Worst         []colorEntry `yaml:"worst"`
	Complementary []colorEntry `yaml:"complementary"`
	Accent        []colorEntry `yaml:"accent"`
	Luxury        []colorEntry `yaml:"luxury"`
}

type document struct {
	Version string `yaml:"version"`
	Seasons map[string]struct {
		Fallback string `yaml:"fallback"`
	} `yaml:"seasons"`
	Subtypes []subtypeEntry `yaml:"subtypes"`
}

// KnowledgeBase is an immutable season subtype to palette table. Build it
// with Load, LoadFile or Default.
type KnowledgeBase struct {
	version   string
	palettes  map[string]models.Palette
	seasonOf  map[string]models.Season
	fallbacks map[models.Season]string
}

func (kb *KnowledgeBase) Version() string {
	return kb.version
}

// Subtypes lists the subtype names the knowledge base knows about.
func (kb *KnowledgeBase) Subtypes() []string {
	names := make([]string, 0, len(kb.palettes))
	for name := range kb.palettes {
		names = append(names, name)
	}
	return names
}

func Default() (*KnowledgeBase, error) {
	return Load(defaultKnowledgeBase)
}

func LoadFile(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette file %s: %w", path, err)
	}
	return Load(data)
}

// Load parses and validates a YAML knowledge base.
func Load(data []byte) (*KnowledgeBase, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse palette knowledge base: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("palette knowledge base has no version")
	}

	kb := &KnowledgeBase{
		version:   doc.Version,
		palettes:  map[string]models.Palette{},
		seasonOf:  map[string]models.Season{},
		fallbacks: map[models.Season]string{},
	}
	for _, entry := range doc.Subtypes {
		season := models.Season(entry.Season)
		if !season.Valid() {
			return nil, fmt.Errorf("subtype %q: unknown season %q", entry.Name, entry.Season)
		}
		if _, dup := kb.palettes[entry.Name]; dup {
			return nil, fmt.Errorf("subtype %q defined twice", entry.Name)
		}
		p, err := buildPalette(entry, doc.Version)
		if err != nil {
			return nil, fmt.Errorf("subtype %q: %w", entry.Name, err)
		}
		kb.palettes[entry.Name] = p
		kb.seasonOf[entry.Name] = season
	}
	for _, season := range models.Seasons {
		fb, ok := doc.Seasons[string(season)]
		if !ok || fb.Fallback == "" {
			return nil, fmt.Errorf("season %s has no fallback subtype", season)
		}
		if kb.seasonOf[fb.Fallback] != season {
			return nil, fmt.Errorf("season %s fallback %q is not one of its subtypes", season, fb.Fallback)
		}
		kb.fallbacks[season] = fb.Fallback
	}
	return kb, nil
}

func buildPalette(entry subtypeEntry, version string) (models.Palette, error) {
	seen := map[string]string{}
	convert := func(list string, entries []colorEntry) ([]models.ColorItem, error) {
		items := make([]models.ColorItem, 0, len(entries))
		for _, e := range entries {
			hex, err := colorspace.Normalize(e.Hex)
			if err != nil {
				return nil, fmt.Errorf("%s list: %w", list, err)
			}
			if other, ok := seen[hex]; ok {
				return nil, fmt.Errorf("%s appears in both %s and %s", hex, other, list)
			}
			seen[hex] = list
			items = append(items, models.ColorItem{Hex: hex, Name: e.Name, Category: e.Category})
		}
		return items, nil
	}

	var p models.Palette
	var err error
	if p.Best, err = convert("best", entry.Best); err != nil {
		return p, err
	}
	if p.Neutral, err = convert("neutral", entry.Neutral); err != nil {
		return p, err
	}
	if p.Worst, err = convert("worst", entry.Worst); err != nil {
		return p, err
	}
	if p.Complementary, err = convert("complementary", entry.Complementary); err != nil {
		return p, err
	}
	if p.Accent, err = convert("accent", entry.Accent); err != nil {
		return p, err
	}
	if p.Luxury, err = convert("luxury", entry.Luxury); err != nil {
		return p, err
	}
	if len(p.Best) == 0 || len(p.Neutral) == 0 || len(p.Worst) == 0 {
		return p, fmt.Errorf("best, neutral and worst lists must not be empty")
	}
	p.Metals = append([]string{}, entry.Metals...)
	p.Stones = append([]string{}, entry.Stones...)
	p.Version = version
	return p, nil
}

// Generator emits palettes from a knowledge base.
type Generator struct {
	KB *KnowledgeBase
}

func NewGenerator(kb *KnowledgeBase) *Generator {
	return &Generator{KB: kb}
}

// Generate returns the palette for subtype. An unknown subtype, or one
// filed under another season, falls back to the season's default subtype.
// Neutral undertones also get mixed metals recommended. The returned
// palette shares no memory with the knowledge base.
func (g *Generator) Generate(season models.Season, subtype string, undertone models.Undertone) (models.Palette, string, error) {
	name := subtype
	if s, ok := g.KB.seasonOf[name]; !ok || s != season {
		fb, ok := g.KB.fallbacks[season]
		if !ok {
			return models.Palette{}, "", fmt.Errorf("no palette for season %q", season)
		}
		name = fb
	}
	p := g.KB.palettes[name].Clone()
	if undertone == models.NeutralUndertone && !slices.Contains(p.Metals, mixedMetals) {
		p.Metals = append(p.Metals, mixedMetals)
	}
	return p, name, nil
}
