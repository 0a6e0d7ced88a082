package services

import (
	"context"
	"fmt"

	"paletteapi/apperrors"
	"paletteapi/models"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

var featurePrompt = dedent.Dedent(`
	You are a color analyst preparing a seasonal color analysis.

	Look at the face in the photo and sample the natural colors of:
	- skin: cheek, forehead and jawline, avoiding shadows, blush and highlights
	- eye: the iris, not the pupil or the white of the eye
	- hair: the dominant natural hair color at mid length

	Rules:
	- Return each sample as an uppercase #RRGGBB hex.
	- Give every sample a confidence between 0 and 1 reflecting lighting,
	  makeup, filters and how clearly the area is visible.
	- Return up to three samples per area.
	- Leave an area empty when it is not visible (for example covered hair
	  or closed eyes). Never guess.
	- Set face_detected to false and leave every area empty when there is
	  no single clearly visible human face.
`)

var sampleSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"hex":        {Type: genai.TypeString},
			"confidence": {Type: genai.TypeNumber},
		},
		Required: []string{"hex", "confidence"},
	},
}

type sampleResponse struct {
	Hex        string  `json:"hex"`
	Confidence float64 `json:"confidence"`
}

type featureResponse struct {
	FaceDetected bool             `json:"face_detected"`
	Skin         []sampleResponse `json:"skin"`
	Eye          []sampleResponse `json:"eye"`
	Hair         []sampleResponse `json:"hair"`
}

// ExtractFeatures samples the portrait. A photo without a usable face
// yields an empty feature set, which the classifier reports as
// insufficient data; transport and parsing problems are
// apperrors.ErrFeatureExtraction.
func (g *GeminiService) ExtractFeatures(ctx context.Context, image []byte, mimeType string) (models.FeatureSet, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText("Sample the skin, eye and hair colors in this photo."),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
	}
	result, err := g.generate(ctx, g.VisionModel, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, &genai.GenerateContentConfig{
		Temperature:      floatPointer(0.1),
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: featurePrompt}},
		},
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"face_detected": {Type: genai.TypeBoolean},
				"skin":          sampleSchema,
				"eye":           sampleSchema,
				"hair":          sampleSchema,
			},
			Required: []string{"face_detected", "skin", "eye", "hair"},
		},
	})
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("%w: %v", apperrors.ErrFeatureExtraction, err)
	}
	text, err := responseText(result)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("%w: %v", apperrors.ErrFeatureExtraction, err)
	}
	fs, err := parseFeatureResponse(text)
	if err != nil {
		return models.FeatureSet{}, err
	}
	log.Info().Int("skin", len(fs.Skin)).Int("eye", len(fs.Eye)).Int("hair", len(fs.Hair)).Msg("features extracted")
	return fs, nil
}

func parseFeatureResponse(text string) (models.FeatureSet, error) {
	var resp featureResponse
	if err := decodeJSON(text, &resp); err != nil {
		return models.FeatureSet{}, fmt.Errorf("%w: %v", apperrors.ErrFeatureExtraction, err)
	}
	if !resp.FaceDetected {
		return models.FeatureSet{}, nil
	}
	convert := func(in []sampleResponse, source models.SampleSource) []models.ColorSample {
		out := make([]models.ColorSample, 0, len(in))
		for _, s := range in {
			out = append(out, models.ColorSample{Hex: s.Hex, Source: source, Confidence: clamp01(s.Confidence)})
		}
		return out
	}
	return models.FeatureSet{
		Skin: convert(resp.Skin, models.SourceSkin),
		Eye:  convert(resp.Eye, models.SourceEye),
		Hair: convert(resp.Hair, models.SourceHair),
	}, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
