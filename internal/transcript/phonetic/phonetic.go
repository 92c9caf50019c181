// Package phonetic matches misrecognized words against a glossary of
// expected terms using Double Metaphone codes with a Jaro-Winkler tiebreak.
//
// A word (or a short run of words) matches a term when the two share a
// metaphone code and their Jaro-Winkler similarity clears the phonetic
// threshold, or, without any code overlap, when plain similarity clears the
// stricter fuzzy threshold. Multi-word terms are compared whole, with
// spaces stripped, and token-pairwise, so "visual studio cod" can still
// reach "Visual Studio Code".
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Matcher resolves words to glossary terms by pronunciation similarity.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// Option configures a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score a term sharing
// a metaphone code with the input must reach. Default 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required of a term
// with no metaphone overlap. Default 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// New returns a [Matcher] with the default thresholds, adjusted by opts.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match returns the glossary term most similar to word. word may be a
// single token or a space-separated run of tokens. Terms with a metaphone
// code overlap are preferred over purely fuzzy candidates regardless of
// score. When matched is false, corrected is word unchanged and confidence
// is 0.
func (m *Matcher) Match(word string, terms []string) (corrected string, confidence float64, matched bool) {
	input := strings.ToLower(strings.TrimSpace(word))
	if input == "" || len(terms) == 0 {
		return word, 0, false
	}
	inputTokens := strings.Fields(input)
	inputCodes := metaphoneSet(inputTokens)

	var (
		bestTerm     string
		bestScore    float64
		bestPhonetic bool
	)
	for _, term := range terms {
		lower := strings.ToLower(strings.TrimSpace(term))
		if lower == "" {
			continue
		}
		termTokens := strings.Fields(lower)
		score := similarity(input, lower, inputTokens, termTokens)

		if sharesCode(inputCodes, metaphoneSet(termTokens)) {
			if score >= m.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				bestTerm, bestScore, bestPhonetic = term, score, true
			}
			continue
		}
		if !bestPhonetic && score >= m.fuzzyThreshold && score > bestScore {
			bestTerm, bestScore = term, score
		}
	}

	if bestTerm == "" {
		return word, 0, false
	}
	return bestTerm, bestScore, true
}

// similarity is the highest Jaro-Winkler score across three views of the
// pair: the full strings, the strings with spaces removed, and every
// token-to-token combination.
func similarity(input, term string, inputTokens, termTokens []string) float64 {
	score := matchr.JaroWinkler(input, term, false)
	if len(inputTokens) > 1 || len(termTokens) > 1 {
		joined := matchr.JaroWinkler(strings.Join(inputTokens, ""), strings.Join(termTokens, ""), false)
		if joined > score {
			score = joined
		}
	}
	for _, it := range inputTokens {
		for _, tt := range termTokens {
			if s := matchr.JaroWinkler(it, tt, false); s > score {
				score = s
			}
		}
	}
	return score
}

// metaphoneSet collects the primary and alternate Double Metaphone codes of
// every token. Tokens too short to produce a code contribute nothing.
func metaphoneSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, 2*len(tokens))
	for _, tok := range tokens {
		primary, alternate := matchr.DoubleMetaphone(tok)
		if primary != "" {
			set[primary] = struct{}{}
		}
		if alternate != "" {
			set[alternate] = struct{}{}
		}
	}
	return set
}

func sharesCode(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
