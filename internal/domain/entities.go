package domain

// Journal is a scholarly venue stored in the similarity index. Text is the
// exact string that was embedded and is returned verbatim as the match
// description.
type Journal struct {
	ID       string
	Text     string
	Metadata map[string]string
}

// Match is one ranked search result. Score is the raw distance reported by
// the index backend: lower means more similar, and the value is surfaced
// as-is, never inverted or normalized.
type Match struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}
