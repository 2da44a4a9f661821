package patterns

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_ReusesCompiledConfig(t *testing.T) {
	path := writeTempFile(t, "patterns.json", sampleJSON)
	c := NewCache(time.Minute, time.Minute)

	first, err := c.Load(path)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	second, err := c.Load(path)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if first != second {
		t.Error("Expected the cached compiled config to be reused for unchanged content")
	}
}

func TestCache_RecompilesOnContentChange(t *testing.T) {
	path := writeTempFile(t, "patterns.json", sampleJSON)
	c := NewCache(time.Minute, time.Minute)

	first, err := c.Load(path)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	changed := `{"patterns": [{"id": "p9", "label": "NEW", "rx": "word is", "weight": 0.3}]}`
	if err := os.WriteFile(path, []byte(changed), 0644); err != nil {
		t.Fatalf("rewrite patterns: %v", err)
	}

	second, err := c.Load(path)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if first == second {
		t.Error("Expected a recompile after the file content changed")
	}
	if len(second.Patterns) != 1 || second.Patterns[0].ID != "p9" {
		t.Errorf("Expected the new library to be compiled, got %+v", second.Patterns)
	}
}

func TestCache_NotFound(t *testing.T) {
	c := NewCache(time.Minute, time.Minute)

	_, err := c.Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
