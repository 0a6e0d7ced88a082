package services

import (
	"fmt"
	"strings"

	"paletteapi/models"

	"github.com/lithammer/dedent"
)

const promptWardrobeLimit = 40

var stylistPreamble = dedent.Dedent(`
	You are a friendly professional fashion stylist inside a wardrobe app.
	Give concise, practical advice. Only recommend items from the wardrobe
	listed below when you suggest specific pieces, and refer to them by
	their description. If something is missing from the wardrobe, say so
	and describe what to look for instead.
`)

// StylistPrompt builds the chat system instruction from what the user told
// us about themselves, their color profile and a summary of their wardrobe.
// analysis may be nil.
func StylistPrompt(profile models.Profile, analysis *models.Analysis, items []models.WardrobeItem) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(stylistPreamble))
	writeAboutUser(&b, profile)
	b.WriteString("\n\nCOLOR PROFILE:\n")
	if analysis == nil {
		b.WriteString("The user has not completed a color analysis yet. Suggest it when color advice matters.\n")
	} else {
		fmt.Fprintf(&b, "Season: %s (%s)\n", analysis.Season, analysis.SeasonSubtype)
		fmt.Fprintf(&b, "Undertone: %s, contrast: %s\n", analysis.Undertone, analysis.Contrast)
		fmt.Fprintf(&b, "Best colors: %s\n", colorNames(analysis.Best))
		fmt.Fprintf(&b, "Neutrals: %s\n", colorNames(analysis.Neutral))
		fmt.Fprintf(&b, "Avoid: %s\n", colorNames(analysis.Worst))
		if len(analysis.Metals) > 0 {
			fmt.Fprintf(&b, "Jewelry metals: %s\n", strings.Join(analysis.Metals, ", "))
		}
		if len(analysis.Stones) > 0 {
			fmt.Fprintf(&b, "Jewelry stones: %s\n", strings.Join(analysis.Stones, ", "))
		}
	}

	b.WriteString("\nWARDROBE:\n")
	if len(items) == 0 {
		b.WriteString("The wardrobe is empty.\n")
		return b.String()
	}
	for i, item := range items {
		if i == promptWardrobeLimit {
			fmt.Fprintf(&b, "... and %d more items\n", len(items)-promptWardrobeLimit)
			break
		}
		fmt.Fprintf(&b, "- %s\n", describeItem(item))
	}
	return b.String()
}

func writeAboutUser(b *strings.Builder, p models.Profile) {
	var lines []string
	if p.FullName != "" {
		lines = append(lines, "Name: "+p.FullName)
	}
	if p.Age != nil {
		lines = append(lines, fmt.Sprintf("Age: %d", *p.Age))
	}
	if p.GenderExpression != nil {
		lines = append(lines, "Gender expression: "+*p.GenderExpression)
	}
	if p.StylePreferences != nil {
		lines = append(lines, "Style preferences: "+*p.StylePreferences)
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n\nABOUT THE USER:\n")
	b.WriteString(strings.Join(lines, "\n"))
}

func colorNames(items []models.ColorItem) string {
	names := make([]string, 0, len(items))
	for _, c := range items {
		if c.Name != "" {
			names = append(names, c.Name)
		} else {
			names = append(names, c.Hex)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func describeItem(item models.WardrobeItem) string {
	parts := []string{}
	if item.ColorName != nil {
		parts = append(parts, strings.ToLower(*item.ColorName))
	}
	if item.Subcategory != nil {
		parts = append(parts, *item.Subcategory)
	} else {
		parts = append(parts, string(item.Category))
	}
	desc := strings.Join(parts, " ")
	return fmt.Sprintf("%s [%s, %s match]", desc, item.Category, item.MatchLevel)
}
