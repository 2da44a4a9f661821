package patterns

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultMaxScore  = 1.0
	defaultThreshold = 0.5
)

// Boundary rule: a sentence ends after ., ! or ? followed by whitespace,
// provided the whitespace is followed by an uppercase letter, digit, opening
// quote, or opening bracket. The whitespace run is captured so the segmenter
// can cut around it. Changing this regex changes output offsets; it is
// deliberately not a general-purpose sentence tokenizer.
var sentenceBoundary = regexp.MustCompile(`[.!?](\s+)[A-Z0-9"“(\[]`)

// CompiledPattern pairs a library pattern with its case-insensitive regex
type CompiledPattern struct {
	Pattern
	RX *regexp.Regexp
}

// Compiled is an immutable, ready-to-use pattern library. It is built once
// per process (or retrieved from a Cache) and is safe to share across
// concurrent scoring calls without synchronization.
type Compiled struct {
	Patterns []CompiledPattern

	// Claimy is nil when the library configures no claimy_words, which
	// disables the claiminess boost entirely. Same for Rhetorical.
	Claimy     *regexp.Regexp
	Rhetorical *regexp.Regexp

	Boundary *regexp.Regexp

	Claiminess         float64
	RhetoricalQuestion float64
	MaxScore           float64
	DefaultThreshold   float64
}

// Compile builds a Compiled config from a parsed library. Any pattern rx
// that fails to compile is a ConfigError; nothing is processed after that.
func Compile(lib *Library) (*Compiled, error) {
	c := &Compiled{
		Patterns:           make([]CompiledPattern, 0, len(lib.Patterns)),
		Boundary:           sentenceBoundary,
		Claiminess:         lib.Boosts.Claiminess,
		RhetoricalQuestion: lib.Boosts.RhetoricalQuestion,
		MaxScore:           defaultMaxScore,
		DefaultThreshold:   defaultThreshold,
	}
	if lib.Boosts.MaxScore != nil {
		c.MaxScore = *lib.Boosts.MaxScore
	}
	if lib.Meta.DefaultThreshold != nil {
		c.DefaultThreshold = *lib.Meta.DefaultThreshold
	}

	for _, p := range lib.Patterns {
		rx, err := regexp.Compile("(?i)" + p.Rx)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("pattern %s: compile rx %q: %w", p.ID, p.Rx, err)}
		}
		c.Patterns = append(c.Patterns, CompiledPattern{Pattern: p, RX: rx})
	}

	if len(lib.ClaimyWords) > 0 {
		rx, err := regexp.Compile("(?i)" + strings.Join(lib.ClaimyWords, "|"))
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("claimy_words: %w", err)}
		}
		c.Claimy = rx
	}

	if len(lib.RhetQuestionStems) > 0 {
		rx, err := regexp.Compile(`(?i)^(?:` + strings.Join(lib.RhetQuestionStems, "|") + `)\b`)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("rhet_question_stems: %w", err)}
		}
		c.Rhetorical = rx
	}

	return c, nil
}
