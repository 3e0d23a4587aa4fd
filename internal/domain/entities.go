package domain

// Message roles as stored by the chat host.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reference block markers. Retrieved passages are wrapped in these before
// injection and stripped between them after generation.
const (
	BoxOpen  = "<txtai_box>"
	BoxClose = "</txtai_box>"
)

// ExtraAugmented marks a chat entry whose turn received retrieved context.
// Informational only, surfaced for UI and debugging.
const ExtraAugmented = "augmented"

// Message is a chat entry owned by the host. The augmenter only reads it
// and, during sanitization, rewrites Text in place.
type Message struct {
	Role   string         `json:"role"`
	Text   string         `json:"text"`
	System bool           `json:"system,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// GenerationKind tags what sort of generation a turn is. Quiet kinds
// (background prompts not shown in chat) are never augmented.
type GenerationKind string

const (
	KindNormal      GenerationKind = "normal"
	KindQuiet       GenerationKind = "quiet"
	KindImpersonate GenerationKind = "impersonate"
)

// Passage is a single retrieved result from the search service.
type Passage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SearchResult is the joined, score-filtered text of the last completed
// query. Only the most recent one is retained, and it is never persisted.
type SearchResult struct {
	Query string `json:"query"`
	Text  string `json:"text"`
}
