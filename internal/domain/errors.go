package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrQuotaExhausted  = errors.New("quota exhausted")
	ErrProviderFailure = errors.New("provider failure")
	ErrNoCandidates    = errors.New("no candidates available")
	ErrJobTerminal     = errors.New("job already in terminal state")
)
