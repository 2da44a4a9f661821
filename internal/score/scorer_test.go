package score

import (
	"reflect"
	"testing"

	"github.com/ppiankov/hedgewatch/internal/model"
	"github.com/ppiankov/hedgewatch/internal/patterns"
)

func mustCompile(t *testing.T, lib *patterns.Library) *patterns.Compiled {
	t.Helper()
	cfg, err := patterns.Compile(lib)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return cfg
}

func sentence(text string) model.Sentence {
	return model.Sentence{Start: 0, End: len([]rune(text)), Text: text}
}

func TestScorer_SingleMatch(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.6}},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("I think this works."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if f.Score != 0.6 {
		t.Errorf("Expected score 0.6, got %v", f.Score)
	}
	if !reflect.DeepEqual(f.Labels, []string{"HEDGE"}) {
		t.Errorf("Expected labels [HEDGE], got %v", f.Labels)
	}
	if len(f.MatchedPatterns) != 1 || f.MatchedPatterns[0].ID != "p1" {
		t.Errorf("Unexpected matched patterns: %v", f.MatchedPatterns)
	}
}

func TestScorer_NoMatchNeverEmits(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.6}},
	})
	// Even a zero threshold cannot emit an unmatched sentence.
	scorer := NewScorer(cfg, 0)

	if _, ok := scorer.Score(sentence("It definitely does.")); ok {
		t.Error("Expected no emission without a pattern match")
	}
}

func TestScorer_Capping(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{
			{ID: "p1", Label: "A", Rx: "alpha", Weight: 0.7},
			{ID: "p2", Label: "B", Rx: "beta", Weight: 0.6},
		},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("alpha and beta together."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if f.Score != 1.0 {
		t.Errorf("Expected score capped at 1.0, got %v", f.Score)
	}
}

func TestScorer_BoostOnlyNeverEmits(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns:          []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.6}},
		RhetQuestionStems: []string{"why"},
		Boosts:            patterns.Boosts{RhetoricalQuestion: 0.9},
	})
	scorer := NewScorer(cfg, 0.5)

	// The rhetorical boost alone would clear the threshold, but no pattern
	// matched.
	if _, ok := scorer.Score(sentence("Why would anyone care?")); ok {
		t.Error("Expected no emission for a boost-only sentence")
	}
}

func TestScorer_ClaiminessBoost(t *testing.T) {
	lib := &patterns.Library{
		Patterns:    []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.4}},
		ClaimyWords: []string{"definitely"},
		Boosts:      patterns.Boosts{Claiminess: 0.2},
	}
	scorer := NewScorer(mustCompile(t, lib), 0.5)

	f, ok := scorer.Score(sentence("I think it is definitely broken."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if f.Score != 0.6 {
		t.Errorf("Expected score 0.6 (0.4 + 0.2 boost), got %v", f.Score)
	}

	// Without the claimy word the score stays below the threshold.
	if _, ok := scorer.Score(sentence("I think it is broken.")); ok {
		t.Error("Expected no emission without the claiminess boost")
	}
}

func TestScorer_ClaiminessDisabledWithoutWords(t *testing.T) {
	// An absent claimy_words list disables the boost entirely, no matter
	// what the sentence contains.
	lib := &patterns.Library{
		Patterns: []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.4}},
		Boosts:   patterns.Boosts{Claiminess: 0.2},
	}
	scorer := NewScorer(mustCompile(t, lib), 0.5)

	if _, ok := scorer.Score(sentence("I think it is definitely broken.")); ok {
		t.Error("Expected no boost when claimy_words is not configured")
	}
}

func TestScorer_RhetoricalBoostNeedsQuestionMark(t *testing.T) {
	lib := &patterns.Library{
		Patterns:          []patterns.Pattern{{ID: "p1", Label: "JAQ", Rx: "just asking", Weight: 0.4}},
		RhetQuestionStems: []string{"isn't it", "why"},
		Boosts:            patterns.Boosts{RhetoricalQuestion: 0.2},
	}
	scorer := NewScorer(mustCompile(t, lib), 0.5)

	f, ok := scorer.Score(sentence("Isn't it odd, just asking?"))
	if !ok {
		t.Fatal("Expected the question to be flagged")
	}
	if f.Score != 0.6 {
		t.Errorf("Expected score 0.6 with rhetorical boost, got %v", f.Score)
	}

	// Same stem, no trailing question mark: no boost, below threshold.
	if _, ok := scorer.Score(sentence("Isn't it odd, just asking.")); ok {
		t.Error("Expected no rhetorical boost without a trailing question mark")
	}
}

func TestScorer_PatternFiresOncePerSentence(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "ha", Weight: 0.6}},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("ha ha ha ha."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if f.Score != 0.6 {
		t.Errorf("Expected a single weight contribution 0.6, got %v", f.Score)
	}
	if len(f.MatchedPatterns) != 1 {
		t.Errorf("Expected 1 matched pattern, got %d", len(f.MatchedPatterns))
	}
}

func TestScorer_ThresholdInclusive(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{{ID: "p1", Label: "HEDGE", Rx: "i think", Weight: 0.5}},
	})
	scorer := NewScorer(cfg, 0.5)

	if _, ok := scorer.Score(sentence("I think so.")); !ok {
		t.Error("Expected a score equal to the threshold to be emitted")
	}
}

func TestScorer_RoundedScoreMeetsThreshold(t *testing.T) {
	// 0.3 + 0.199 = 0.499, which rounds to 0.50 and must clear a 0.5
	// threshold: the rounded score is what gets compared.
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{
			{ID: "p1", Label: "A", Rx: "alpha", Weight: 0.3},
			{ID: "p2", Label: "B", Rx: "beta", Weight: 0.199},
		},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("alpha beta."))
	if !ok {
		t.Fatal("Expected the rounded score to clear the threshold")
	}
	if f.Score != 0.5 {
		t.Errorf("Expected rounded score 0.5, got %v", f.Score)
	}
}

func TestScorer_LabelsSortedAndUnique(t *testing.T) {
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{
			{ID: "p1", Label: "ZULU", Rx: "alpha", Weight: 0.3},
			{ID: "p2", Label: "ALPHA", Rx: "beta", Weight: 0.3},
			{ID: "p3", Label: "ZULU", Rx: "gamma", Weight: 0.3},
		},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("alpha beta gamma."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if !reflect.DeepEqual(f.Labels, []string{"ALPHA", "ZULU"}) {
		t.Errorf("Expected sorted unique labels [ALPHA ZULU], got %v", f.Labels)
	}
	// matched_patterns keeps declaration order, including the duplicate label
	wantIDs := []string{"p1", "p2", "p3"}
	for i, m := range f.MatchedPatterns {
		if m.ID != wantIDs[i] {
			t.Errorf("Matched pattern %d: got %s, want %s", i, m.ID, wantIDs[i])
		}
	}
}

func TestScorer_NegativeWeightHonored(t *testing.T) {
	// The scorer does not enforce the non-negativity contract.
	cfg := mustCompile(t, &patterns.Library{
		Patterns: []patterns.Pattern{
			{ID: "p1", Label: "A", Rx: "alpha", Weight: 0.9},
			{ID: "p2", Label: "B", Rx: "beta", Weight: -0.2},
		},
	})
	scorer := NewScorer(cfg, 0.5)

	f, ok := scorer.Score(sentence("alpha beta."))
	if !ok {
		t.Fatal("Expected the sentence to be flagged")
	}
	if f.Score != 0.7 {
		t.Errorf("Expected score 0.7, got %v", f.Score)
	}
}
