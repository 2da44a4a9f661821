package model

// Span is a half-open character-offset interval [Start, End) into the
// original input document. Offsets count runes, not bytes, so they are
// stable for downstream consumers regardless of encoding width.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Sentence is one segmented sentence with its position in the source document
type Sentence struct {
	Start int    // rune offset of the first character
	End   int    // rune offset past the last character
	Text  string // trimmed sentence text
}

// MatchedPattern identifies one pattern that fired on a sentence
type MatchedPattern struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Finding is a sentence whose score cleared the threshold.
// Labels is the sorted, deduplicated label set; MatchedPatterns keeps
// pattern-library declaration order and may repeat labels across ids.
type Finding struct {
	Span            Span             `json:"span"`
	Sentence        string           `json:"sentence"`
	Score           float64          `json:"score"`
	Labels          []string         `json:"labels"`
	MatchedPatterns []MatchedPattern `json:"matched_patterns"`
}

// RecordMeta carries run context on every emitted record
type RecordMeta struct {
	Threshold float64 `json:"threshold"`
	Source    string  `json:"source"`
	JSONLLine int     `json:"jsonl_line,omitempty"`
}

// Record is one output line: a Finding plus document/run identity.
// SentenceID is 1-based and resets per document.
type Record struct {
	DocID           string           `json:"doc_id"`
	SentenceID      int              `json:"sentence_id"`
	Span            Span             `json:"span"`
	Sentence        string           `json:"sentence"`
	Score           float64          `json:"score"`
	Labels          []string         `json:"labels"`
	MatchedPatterns []MatchedPattern `json:"matched_patterns"`
	Meta            RecordMeta       `json:"meta"`
}
