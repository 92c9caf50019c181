package phonetic_test

import (
	"testing"

	"github.com/vidscribe/vidscribe/internal/transcript/phonetic"
)

func TestMatcher_ExactTermIgnoresCase(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	terms := []string{"Grafana", "Kubernetes"}

	corrected, conf, matched := m.Match("GRAFANA", terms)
	if !matched {
		t.Fatalf("Match(%q): matched=false, want true", "GRAFANA")
	}
	if corrected != "Grafana" {
		t.Errorf("Match(%q): corrected=%q, want term casing %q", "GRAFANA", corrected, "Grafana")
	}
	if conf < 0.9 {
		t.Errorf("Match(%q): confidence=%f, want >= 0.9 for an exact match", "GRAFANA", conf)
	}
}

func TestMatcher_CloseMisspelling(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	terms := []string{"PostgreSQL", "Grafana"}

	// Shares the "postgres" stem, so similarity is high whichever stage fires.
	corrected, conf, matched := m.Match("postgress", terms)
	if !matched {
		t.Fatalf("Match(%q): matched=false, want true", "postgress")
	}
	if corrected != "PostgreSQL" {
		t.Errorf("Match(%q): corrected=%q, want %q", "postgress", corrected, "PostgreSQL")
	}
	if conf < 0.70 {
		t.Errorf("Match(%q): confidence=%f, want >= 0.70", "postgress", conf)
	}
}

func TestMatcher_MultiWordTerm(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	terms := []string{"Visual Studio Code", "Kubernetes"}

	corrected, _, matched := m.Match("visual studio cod", terms)
	if !matched {
		t.Fatalf("Match(%q): matched=false, want true", "visual studio cod")
	}
	if corrected != "Visual Studio Code" {
		t.Errorf("Match(%q): corrected=%q, want %q", "visual studio cod", corrected, "Visual Studio Code")
	}
}

func TestMatcher_UnrelatedWordDoesNotMatch(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	terms := []string{"Kubernetes", "PostgreSQL"}

	corrected, conf, matched := m.Match("hello", terms)
	if matched {
		t.Fatalf("Match(%q): matched=true, want false", "hello")
	}
	if corrected != "hello" {
		t.Errorf("Match(%q): corrected=%q, want the original word", "hello", corrected)
	}
	if conf != 0 {
		t.Errorf("Match(%q): confidence=%f, want 0", "hello", conf)
	}
}

func TestMatcher_ThresholdsRejectNearMatches(t *testing.T) {
	t.Parallel()

	m := phonetic.New(
		phonetic.WithPhoneticThreshold(0.99),
		phonetic.WithFuzzyThreshold(0.99),
	)

	if _, _, matched := m.Match("postgress", []string{"PostgreSQL"}); matched {
		t.Fatal("Match with thresholds 0.99 accepted a near-match, want rejection")
	}
}

func TestMatcher_NoTerms(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	corrected, conf, matched := m.Match("kubernetes", nil)
	if matched {
		t.Fatal("Match with nil terms: matched=true, want false")
	}
	if corrected != "kubernetes" {
		t.Errorf("corrected=%q, want the original word", corrected)
	}
	if conf != 0 {
		t.Errorf("confidence=%f, want 0", conf)
	}
}

func TestMatcher_BlankInput(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	corrected, conf, matched := m.Match("  ", []string{"Kubernetes"})
	if matched {
		t.Fatal("Match with blank input: matched=true, want false")
	}
	if corrected != "  " {
		t.Errorf("corrected=%q, want the input unchanged", corrected)
	}
	if conf != 0 {
		t.Errorf("confidence=%f, want 0", conf)
	}
}

func TestMatcher_BlankTermsSkipped(t *testing.T) {
	t.Parallel()

	m := phonetic.New()

	// Blank glossary entries must never win or panic.
	corrected, _, matched := m.Match("grafana", []string{"", "  ", "Grafana"})
	if !matched {
		t.Fatal("Match: matched=false, want true")
	}
	if corrected != "Grafana" {
		t.Errorf("corrected=%q, want %q", corrected, "Grafana")
	}
}
