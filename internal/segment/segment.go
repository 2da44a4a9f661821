// Package segment splits raw text into sentences with exact character
// offsets into the original document.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/hedgewatch/internal/model"
)

// Split segments text into ordered sentences using the given boundary regex.
// Returned spans are rune offsets into the untrimmed input, non-overlapping
// and strictly increasing. An empty or whitespace-only input yields nil.
//
// Offset recovery is a forward-only literal search: each fragment is looked
// up in the original text starting at a monotonic cursor. When a fragment is
// not found past the cursor (should not happen for well-formed input) the
// sentence is emitted at the cursor position as a best-effort degrade.
// Adjacent duplicate fragments can therefore be misattributed; this is an
// accepted limitation of the heuristic, not a bug to fix with smarter search
// semantics, since consumers depend on the current offsets.
func Split(text string, boundary *regexp.Regexp) []model.Sentence {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	return assemble(text, fragments(trimmed, boundary))
}

// fragments cuts t at each sentence boundary. The boundary regex captures
// the inter-sentence whitespace run in group 1; a fragment ends before it
// and the next fragment starts after it.
func fragments(t string, boundary *regexp.Regexp) []string {
	var frags []string
	prev := 0
	for _, m := range boundary.FindAllStringSubmatchIndex(t, -1) {
		frags = append(frags, t[prev:m[2]])
		prev = m[3]
	}
	return append(frags, t[prev:])
}

// assemble recovers original-document offsets for each fragment with a
// forward-only cursor. Byte positions drive the search; emitted offsets
// count runes.
func assemble(text string, frags []string) []model.Sentence {
	var sentences []model.Sentence
	cursorB := 0 // byte search position in text
	cursorR := 0 // rune offset corresponding to cursorB

	for _, frag := range frags {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		found := -1
		if cursorB <= len(text) {
			if i := strings.Index(text[cursorB:], frag); i >= 0 {
				found = cursorB + i
			}
		}

		n := utf8.RuneCountInString(frag)
		if found >= 0 {
			cursorR += utf8.RuneCountInString(text[cursorB:found])
			sentences = append(sentences, model.Sentence{Start: cursorR, End: cursorR + n, Text: frag})
			cursorR += n
			cursorB = found + len(frag)
		} else {
			// Defensive fallback: emit at the cursor without skipping
			// content that was never matched.
			sentences = append(sentences, model.Sentence{Start: cursorR, End: cursorR + n, Text: frag})
			cursorR += n
			cursorB += len(frag)
		}
	}

	return sentences
}
