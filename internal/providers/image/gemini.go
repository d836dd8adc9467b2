package image

import (
	"context"

	"contentgate/internal/providers/genai"
	"contentgate/internal/providers/prompt"
)

type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Prompt: prompt.BuildIllustrationInstruction(prompt.Request{
			Topic:      req.Prompt,
			GradeLevel: req.GradeLevel,
			Locale:     req.Locale,
		}),
		AspectRatio: req.AspectRatio,
		GradeLevel:  req.GradeLevel,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	return &Asset{
		Format:       asset.Format,
		Width:        asset.Width,
		Height:       asset.Height,
		Data:         asset.Data,
		GenerationMS: asset.GenerationMS,
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)
