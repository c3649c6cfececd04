package relay

import (
	"testing"

	"github.com/relaytap/relaytap/internal/config"
)

func rule(pattern, replacement string) config.Rule {
	return config.Rule{Pattern: []byte(pattern), Replacement: []byte(replacement)}
}

func TestSubstituteEmptyInput(t *testing.T) {
	out := Substitute(nil, []config.Rule{rule("a", "b")})
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestSubstituteNonOverlapping(t *testing.T) {
	out := Substitute([]byte("aaaa"), []config.Rule{rule("aa", "b")})
	if string(out) != "bb" {
		t.Fatalf("Substitute(aaaa, aa->b) = %q, want bb", out)
	}
}

func TestSubstituteOrderMatters(t *testing.T) {
	forward := Substitute([]byte("a"), []config.Rule{rule("a", "b"), rule("b", "c")})
	if string(forward) != "c" {
		t.Fatalf("forward order = %q, want c", forward)
	}

	reversed := Substitute([]byte("a"), []config.Rule{rule("b", "c"), rule("a", "b")})
	if string(reversed) != "b" {
		t.Fatalf("reversed order = %q, want b", reversed)
	}
}

func TestSubstituteEmptyPatternTerminates(t *testing.T) {
	rules := []config.Rule{rule("", ""), rule("a", "z")}
	out := Substitute([]byte("a"), rules)
	if string(out) != "a" {
		t.Fatalf("expected early termination to no-op, got %q", out)
	}
}

func TestSubstituteCascade(t *testing.T) {
	rules := []config.Rule{rule("a", "bb"), rule("b", "c")}
	out := Substitute([]byte("a"), rules)
	if string(out) != "cc" {
		t.Fatalf("Substitute cascade = %q, want cc", out)
	}
}

func TestSubstituteNoRescanOfReplacement(t *testing.T) {
	// A rule replacing "a" with "aa" must not have its own output rescanned.
	out := Substitute([]byte("a"), []config.Rule{rule("a", "aa")})
	if string(out) != "aa" {
		t.Fatalf("Substitute(a, a->aa) = %q, want aa", out)
	}
}

func TestSubstituteDeterministic(t *testing.T) {
	rules := []config.Rule{rule("cat", "dog")}
	input := []byte("the cat sat on the cat mat")
	first := Substitute(input, rules)
	second := Substitute(input, rules)
	if string(first) != string(second) {
		t.Fatalf("Substitute is not deterministic: %q vs %q", first, second)
	}
	if string(first) != "the dog sat on the dog mat" {
		t.Fatalf("Substitute = %q", first)
	}
}

func TestSubstitutePatternLongerThanRemainder(t *testing.T) {
	out := Substitute([]byte("ab"), []config.Rule{rule("abc", "z")})
	if string(out) != "ab" {
		t.Fatalf("expected no match, got %q", out)
	}
}
