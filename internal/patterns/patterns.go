package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound reports a pattern library path that does not exist.
// The CLI maps it to a distinct exit code.
var ErrNotFound = errors.New("pattern library not found")

// ConfigError reports a pattern library that cannot be parsed or compiled.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pattern library: %v", e.Err)
	}
	return fmt.Sprintf("pattern library %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Pattern is one labeled, weighted regex from the library.
// Declaration order in the document is significant: matched_patterns in the
// output follow it.
type Pattern struct {
	ID     string  `json:"id" yaml:"id"`
	Label  string  `json:"label" yaml:"label"`
	Rx     string  `json:"rx" yaml:"rx"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Boosts are the additive scoring modifiers and the score cap.
// MaxScore is a pointer so an absent key can fall back to 1.0.
type Boosts struct {
	Claiminess         float64  `json:"claiminess" yaml:"claiminess"`
	RhetoricalQuestion float64  `json:"rhetorical_question" yaml:"rhetorical_question"`
	MaxScore           *float64 `json:"max_score" yaml:"max_score"`
}

// Meta holds library metadata
type Meta struct {
	DefaultThreshold *float64 `json:"default_threshold" yaml:"default_threshold"`
}

// Library is the pattern-library document as authored
type Library struct {
	Patterns          []Pattern `json:"patterns" yaml:"patterns"`
	ClaimyWords       []string  `json:"claimy_words" yaml:"claimy_words"`
	RhetQuestionStems []string  `json:"rhet_question_stems" yaml:"rhet_question_stems"`
	Boosts            Boosts    `json:"boosts" yaml:"boosts"`
	Meta              Meta      `json:"meta" yaml:"meta"`
}

// Load reads and parses a pattern library from disk. YAML is accepted for
// .yaml/.yml paths, JSON otherwise.
func Load(path string) (*Library, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path)
}

// Parse parses a pattern-library document. The path is used for format
// selection and error reporting only.
func Parse(data []byte, path string) (*Library, error) {
	var lib Library
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &lib)
	default:
		err = json.Unmarshal(data, &lib)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if lib.Patterns == nil {
		return nil, &ConfigError{Path: path, Err: errors.New("missing required key: patterns")}
	}
	return &lib, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read pattern library: %w", err)
	}
	return data, nil
}
