package image

import "context"

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt      string
	AspectRatio string
	GradeLevel  int
	RequestID   string
	Locale      string
}

// Asset represents one generated image.
type Asset struct {
	Format       string
	Width        int
	Height       int
	Data         []byte
	GenerationMS int64
}

// Generator is the contract implemented by all image providers. A quota
// exhaustion must surface as an error wrapping domain.ErrQuotaExhausted; any
// other failure is treated as transient by callers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}
