// Package colorspace compares colors in CIELAB so that matching decisions
// follow perceived difference instead of raw RGB arithmetic.
package colorspace

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidHex = errors.New("invalid hex color")
var ErrNoCandidates = errors.New("no candidate colors")

// Normalize returns the canonical upper-case #RRGGBB form of a hex color.
// Leading '#' is optional and the short #RGB form is expanded.
func Normalize(hex string) (string, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidHex, hex)
		}
	}
	return "#" + strings.ToUpper(s), nil
}

func Parse(hex string) (colorful.Color, error) {
	normalized, err := Normalize(hex)
	if err != nil {
		return colorful.Color{}, err
	}
	c, err := colorful.Hex(normalized)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	return c, nil
}

// Lab holds CIELAB coordinates on the conventional scale (L in 0..100).
type Lab struct {
	L float64
	A float64
	B float64
}

// Chroma is the distance from the neutral axis.
func (l Lab) Chroma() float64 {
	return math.Hypot(l.A, l.B)
}

// HueAngle is atan2(b*, a*) in degrees within [0, 360).
func (l Lab) HueAngle() float64 {
	h := math.Atan2(l.B, l.A) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func LabOf(hex string) (Lab, error) {
	c, err := Parse(hex)
	if err != nil {
		return Lab{}, err
	}
	return labFromColor(c), nil
}

func labFromColor(c colorful.Color) Lab {
	l, a, b := c.Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// FromLab converts conventional CIELAB coordinates back to a #RRGGBB hex,
// clamping to the sRGB gamut.
func FromLab(l Lab) string {
	return toHex(colorful.Lab(l.L/100, l.A/100, l.B/100).Clamped())
}

func toHex(c colorful.Color) string {
	return strings.ToUpper(c.Hex())
}

// Distance is the CIE76 difference (Euclidean distance in Lab). It is
// symmetric and zero only for identical colors.
func Distance(hexA, hexB string) (float64, error) {
	a, err := Parse(hexA)
	if err != nil {
		return 0, err
	}
	b, err := Parse(hexB)
	if err != nil {
		return 0, err
	}
	return a.DistanceLab(b) * 100, nil
}

// Nearest returns the index of the candidate closest to target. On equal
// distance the earlier candidate wins. Unparseable candidates are skipped.
func Nearest(target string, candidates []string) (int, float64, error) {
	t, err := Parse(target)
	if err != nil {
		return -1, 0, err
	}
	best := -1
	bestDist := math.Inf(1)
	for i, candidate := range candidates {
		c, err := Parse(candidate)
		if err != nil {
			continue
		}
		d := t.DistanceLab(c) * 100
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return -1, 0, ErrNoCandidates
	}
	return best, bestDist, nil
}

// Blend mixes two colors in Lab; t=0 returns a, t=1 returns b.
func Blend(hexA, hexB string, t float64) (string, error) {
	a, err := Parse(hexA)
	if err != nil {
		return "", err
	}
	b, err := Parse(hexB)
	if err != nil {
		return "", err
	}
	t = math.Max(0, math.Min(1, t))
	return toHex(a.BlendLab(b, t).Clamped()), nil
}

// Average computes the weighted mean of several colors in Lab. Missing or
// non-positive weights count as 1.
func Average(hexes []string, weights []float64) (string, error) {
	if len(hexes) == 0 {
		return "", ErrNoCandidates
	}
	var sum Lab
	var total float64
	for i, hex := range hexes {
		lab, err := LabOf(hex)
		if err != nil {
			return "", err
		}
		w := 1.0
		if i < len(weights) && weights[i] > 0 {
			w = weights[i]
		}
		sum.L += lab.L * w
		sum.A += lab.A * w
		sum.B += lab.B * w
		total += w
	}
	return FromLab(Lab{L: sum.L / total, A: sum.A / total, B: sum.B / total}), nil
}
