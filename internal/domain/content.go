package domain

import "time"

// Category identifies a logical cache store. Each category maps to its own
// table and carries its own retention policy.
type Category string

const (
	CategoryContent Category = "content"
	CategoryImage   Category = "image"
	CategoryChatLog Category = "chat_log"
)

// PayloadType describes what kind of payload a cache entry holds.
type PayloadType string

const (
	PayloadTypeImage    PayloadType = "image/png"
	PayloadTypeGradient PayloadType = "gradient"
	PayloadTypeText     PayloadType = "text"
)

// CacheEntry is one cached generation result, keyed by fingerprint. The same
// fingerprint always refers to the same logical payload; writes to an existing
// fingerprint only touch bookkeeping fields.
type CacheEntry struct {
	Fingerprint    string
	Category       Category
	ContentType    string
	Payload        string
	PayloadType    PayloadType
	OriginalPrompt string
	TopicID        string
	AspectRatio    string
	GradeLevel     int
	EffectID       string
	GradientID     string
	GenerationMS   int64
	CreatedAt      time.Time
	LastUsedAt     time.Time
	UsageCount     int
}

// SelectionResult is the ephemeral outcome of a deterministic daily pick.
// It is computed fresh on every call and never persisted.
type SelectionResult struct {
	UserID      string
	Category    string
	Date        string
	CandidateID string
	Index       int
}
