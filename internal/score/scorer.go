// Package score evaluates segmented sentences against a compiled pattern
// library. Scoring is deterministic and side-effect free: identical input
// and config always produce identical output.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/hedgewatch/internal/model"
	"github.com/ppiankov/hedgewatch/internal/patterns"
)

// Scorer scores sentences against one compiled library and threshold.
// It holds only read-only state and is safe for concurrent use.
type Scorer struct {
	cfg       *patterns.Compiled
	threshold float64
}

// NewScorer creates a scorer with the given compiled library and active
// threshold.
func NewScorer(cfg *patterns.Compiled, threshold float64) *Scorer {
	return &Scorer{cfg: cfg, threshold: threshold}
}

// Threshold returns the active threshold
func (s *Scorer) Threshold() float64 { return s.threshold }

// Score evaluates one sentence. ok is false when no pattern matched or the
// rounded score falls below the threshold; boosts alone never emit.
//
// Each pattern contributes its weight at most once per sentence, in library
// declaration order. The claiminess boost fires when the claimy regex
// matches the original-case text; the rhetorical boost fires when the
// trimmed sentence ends in '?' and a configured stem matches at its start.
// The sum is clamped to MaxScore, then rounded to 2 decimals. Weights are
// assumed non-negative by configuration contract but are honored as given.
func (s *Scorer) Score(sent model.Sentence) (model.Finding, bool) {
	var matched []model.MatchedPattern
	total := 0.0

	lower := strings.ToLower(sent.Text)
	for _, p := range s.cfg.Patterns {
		if p.RX.MatchString(lower) {
			matched = append(matched, model.MatchedPattern{ID: p.ID, Label: p.Label})
			total += p.Weight
		}
	}

	if s.cfg.Claimy != nil && s.cfg.Claimy.MatchString(sent.Text) {
		total += s.cfg.Claiminess
	}

	if strings.HasSuffix(strings.TrimSpace(sent.Text), "?") &&
		s.cfg.Rhetorical != nil && s.cfg.Rhetorical.MatchString(sent.Text) {
		total += s.cfg.RhetoricalQuestion
	}

	if total > s.cfg.MaxScore {
		total = s.cfg.MaxScore
	}
	total = math.Round(total*100) / 100

	if len(matched) == 0 || total < s.threshold {
		return model.Finding{}, false
	}

	return model.Finding{
		Span:            model.Span{Start: sent.Start, End: sent.End},
		Sentence:        sent.Text,
		Score:           total,
		Labels:          uniqueLabels(matched),
		MatchedPatterns: matched,
	}, true
}

// uniqueLabels returns the sorted, deduplicated labels of the matches
func uniqueLabels(matched []model.MatchedPattern) []string {
	seen := make(map[string]bool, len(matched))
	labels := make([]string, 0, len(matched))
	for _, m := range matched {
		if !seen[m.Label] {
			seen[m.Label] = true
			labels = append(labels, m.Label)
		}
	}
	sort.Strings(labels)
	return labels
}
