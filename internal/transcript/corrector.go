// Package transcript corrects recognized text against a user-supplied
// glossary of expected terms.
//
// Speech models reliably mangle proper nouns: product names, people,
// jargon. The [Corrector] walks the transcript in token windows sized to
// the longest glossary term, asks a [Matcher] for the closest term, and
// substitutes it while keeping the window's surrounding punctuation and the
// term's own capitalization. Each substitution is reported as a
// [Correction] so callers can log or audit what changed.
package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vidscribe/vidscribe/internal/transcript/phonetic"
	"github.com/vidscribe/vidscribe/pkg/provider/stt"
)

// Matcher resolves a word or space-separated word run to a glossary term.
// When matched is false, corrected must equal word and confidence must be 0.
type Matcher interface {
	Match(word string, terms []string) (corrected string, confidence float64, matched bool)
}

// Correction records one substitution applied to the transcript.
type Correction struct {
	// Original is the token window as recognized, punctuation included.
	Original string

	// Corrected is the glossary term that replaced it.
	Corrected string

	// Confidence is the matcher's similarity score in [0.0, 1.0].
	Confidence float64
}

// Corrector applies glossary substitutions to transcription results.
// It is read-only after construction and safe for concurrent use.
type Corrector struct {
	glossary []string
	matcher  Matcher
	maxRun   int
}

// Option configures a [Corrector].
type Option func(*Corrector)

// WithMatcher replaces the default phonetic matcher.
func WithMatcher(m Matcher) Option {
	return func(c *Corrector) {
		c.matcher = m
	}
}

// New returns a [Corrector] over the given glossary. Blank terms are
// dropped. The default matcher is [phonetic.New].
func New(glossary []string, opts ...Option) *Corrector {
	c := &Corrector{matcher: phonetic.New()}
	for _, term := range glossary {
		if t := strings.TrimSpace(term); t != "" {
			c.glossary = append(c.glossary, t)
		}
	}
	for _, o := range opts {
		o(c)
	}
	c.maxRun = 1
	for _, term := range c.glossary {
		if n := len(strings.Fields(term)); n > c.maxRun {
			c.maxRun = n
		}
	}
	return c
}

// Correct returns res with glossary substitutions applied to every segment
// text, plus the record of substitutions made. When segments exist the
// result's Text is rebuilt from the corrected segments; otherwise the flat
// text is corrected directly. res is never modified; with an empty glossary
// or no substitutions it is returned as-is.
func (c *Corrector) Correct(res *stt.Result) (*stt.Result, []Correction) {
	if res == nil || len(c.glossary) == 0 {
		return res, nil
	}

	if len(res.Segments) == 0 {
		text, corrections := c.correctText(res.Text)
		if len(corrections) == 0 {
			return res, nil
		}
		out := *res
		out.Text = text
		return &out, corrections
	}

	segments := make([]stt.Segment, len(res.Segments))
	copy(segments, res.Segments)

	var corrections []Correction
	for i := range segments {
		text, applied := c.correctText(segments[i].Text)
		segments[i].Text = text
		corrections = append(corrections, applied...)
	}
	if len(corrections) == 0 {
		return res, nil
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Text); t != "" {
			texts = append(texts, t)
		}
	}

	out := *res
	out.Segments = segments
	out.Text = strings.Join(texts, " ")
	return &out, corrections
}

// correctText substitutes glossary terms in text. Token windows are tried
// longest-first at each position so multi-word terms win over partial
// single-word matches. The original text is returned untouched when nothing
// matched.
func (c *Corrector) correctText(text string) (string, []Correction) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return text, nil
	}

	out := make([]string, 0, len(tokens))
	var corrections []Correction

	i := 0
	for i < len(tokens) {
		run := c.maxRun
		if rem := len(tokens) - i; run > rem {
			run = rem
		}

		consumed := 0
		for n := run; n >= 1; n-- {
			window := tokens[i : i+n]
			core := windowCore(window)
			if core == "" {
				continue
			}
			term, conf, ok := c.matcher.Match(core, c.glossary)
			if !ok {
				continue
			}

			lead, _, _ := splitPunct(window[0])
			_, _, trail := splitPunct(window[n-1])
			replacement := lead + term + trail

			original := strings.Join(window, " ")
			if replacement != original {
				corrections = append(corrections, Correction{
					Original:   original,
					Corrected:  term,
					Confidence: conf,
				})
			}
			out = append(out, replacement)
			consumed = n
			break
		}

		if consumed == 0 {
			out = append(out, tokens[i])
			consumed = 1
		}
		i += consumed
	}

	if len(corrections) == 0 {
		return text, nil
	}
	return strings.Join(out, " "), corrections
}

// windowCore joins the punctuation-stripped cores of the window's tokens.
func windowCore(window []string) string {
	cores := make([]string, 0, len(window))
	for _, tok := range window {
		if _, core, _ := splitPunct(tok); core != "" {
			cores = append(cores, core)
		}
	}
	return strings.Join(cores, " ")
}

// splitPunct splits a token into leading punctuation, a letter-or-digit
// core, and trailing punctuation. A token with no letters or digits has an
// empty core with everything in lead.
func splitPunct(tok string) (lead, core, trail string) {
	start := 0
	for start < len(tok) {
		r, size := utf8.DecodeRuneInString(tok[start:])
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			break
		}
		start += size
	}
	end := len(tok)
	for end > start {
		r, size := utf8.DecodeLastRuneInString(tok[start:end])
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			break
		}
		end -= size
	}
	return tok[:start], tok[start:end], tok[end:]
}
