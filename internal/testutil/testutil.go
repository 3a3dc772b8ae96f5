package testutil

import (
	"strings"
	"testing"
)

// LanguageCase lists texts a pattern must accept and texts it must reject
// under full-string matching.
type LanguageCase struct {
	Pattern string
	Accepts []string
	Rejects []string
}

// LanguageCases returns the reference acceptance table shared by the
// automaton, façade and service tests.
func LanguageCases() []LanguageCase {
	return []LanguageCase{
		{Pattern: "", Accepts: []string{""}, Rejects: []string{"a", " "}},
		{Pattern: "ab", Accepts: []string{"ab"}, Rejects: []string{"a", "abc", "", "ba"}},
		{Pattern: "a|b", Accepts: []string{"a", "b"}, Rejects: []string{"c", "", "ab"}},
		{Pattern: "a*", Accepts: []string{"", "a", "aaa"}, Rejects: []string{"b", "aab"}},
		{Pattern: "a+", Accepts: []string{"a", "aaaa"}, Rejects: []string{"", "b"}},
		{Pattern: "a?", Accepts: []string{"", "a"}, Rejects: []string{"aa", "b"}},
		{Pattern: "(ab)+", Accepts: []string{"ab", "ababab"}, Rejects: []string{"aba", "", "ba"}},
		{Pattern: "a.c", Accepts: []string{"abc", "a.c", "aßc"}, Rejects: []string{"ac", "abbc"}},
		{Pattern: "a(b|cd|ef)g", Accepts: []string{"abg", "acdg", "aefg"}, Rejects: []string{"efg", "aef", "acd", "ab", "ef"}},
		{Pattern: "(a|b)*abb", Accepts: []string{"abb", "aabb", "babb", "ababb"}, Rejects: []string{"ab", "abba", ""}},
		{Pattern: "colou?r", Accepts: []string{"color", "colour"}, Rejects: []string{"colouur", "colr"}},
		{Pattern: "(a*)*", Accepts: []string{"", "a", "aaaa"}, Rejects: []string{"b"}},
		{Pattern: "(a?)+", Accepts: []string{"", "a", "aa"}, Rejects: []string{"ab"}},
		{Pattern: "()", Accepts: []string{""}, Rejects: []string{"x"}},
		{Pattern: ".*", Accepts: []string{"", "anything", "line\nbreak"}, Rejects: nil},
		{Pattern: `a\*b`, Accepts: []string{"a*b"}, Rejects: []string{"ab", "aab"}},
		{Pattern: "a*4.+hi", Accepts: []string{"aaaaaa4uhi", "a4uhi", "4uhi", "a4ссссhi"}, Rejects: []string{"jdjdb4hi", "meow", "4hi"}},
		{Pattern: "héllo|wörld", Accepts: []string{"héllo", "wörld"}, Rejects: []string{"hello", "world"}},
	}
}

// AssertLanguage checks match against every accept and reject text of c.
func AssertLanguage(t *testing.T, c LanguageCase, match func(text string) bool) {
	t.Helper()
	for _, s := range c.Accepts {
		if !match(s) {
			t.Errorf("pattern %q should accept %q", c.Pattern, s)
		}
	}
	for _, s := range c.Rejects {
		if match(s) {
			t.Errorf("pattern %q should reject %q", c.Pattern, s)
		}
	}
}

// PathologicalPattern returns (a?)^n a^n, the classic input that makes
// backtracking engines take exponential time on a^n.
func PathologicalPattern(n int) (pattern, text string) {
	return strings.Repeat("a?", n) + strings.Repeat("a", n), strings.Repeat("a", n)
}

// NestedStarPattern returns ((a|aa)*)* followed by a literal that never
// appears, for long non-matching input.
func NestedStarPattern() string {
	return "((a|aa)*)*b"
}
