// Package regex matches strings against patterns in a small regular
// expression dialect: literals, concatenation, alternation (|), repetition
// (*, +, ?), grouping and the wildcard (.). Patterns are compiled into a
// Thompson NFA and simulated without backtracking, so matching takes time
// proportional to len(text) times the size of the automaton.
//
// Matching is full-string by default; FindStringIndex and FindAllStringIndex
// search for leftmost-longest substrings. Groups only affect precedence.
package regex

import (
	"nfamatch/internal/automaton"
	"nfamatch/internal/syntax"
)

// LexError reports a malformed escape or illegal character in a pattern.
type LexError = syntax.LexError

// SyntaxError reports a structurally invalid pattern.
type SyntaxError = syntax.SyntaxError

var (
	ErrLex    = syntax.ErrLex
	ErrSyntax = syntax.ErrSyntax
)

// Regexp is a compiled pattern. It is safe for concurrent use.
type Regexp struct {
	pattern string
	nfa     *automaton.NFA
}

// Compile parses a pattern and compiles it into an automaton. The only
// errors are *LexError and *SyntaxError.
func Compile(pattern string) (*Regexp, error) {
	node, err := syntax.Parse(pattern)
	if err != nil {
		return nil, err
	}
	return &Regexp{
		pattern: pattern,
		nfa:     automaton.Compile(node),
	}, nil
}

// MustCompile is like Compile but panics if the pattern is invalid.
func MustCompile(pattern string) *Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic("regex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// Matches reports whether re matches the whole of text.
func Matches(re *Regexp, text string) bool {
	return automaton.Matches(re.nfa, text)
}

// Match compiles pattern and reports whether it matches the whole of text.
func Match(pattern, text string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return Matches(re, text), nil
}

// MatchString reports whether re matches the whole of text.
func (re *Regexp) MatchString(text string) bool {
	return automaton.Matches(re.nfa, text)
}

// FindStringIndex returns the byte offsets [start, end] of the leftmost-longest
// match of re in text, or nil if there is none.
func (re *Regexp) FindStringIndex(text string) []int {
	start, end, ok := automaton.Find(re.nfa, text)
	if !ok {
		return nil
	}
	return []int{start, end}
}

// FindString returns the text of the leftmost-longest match and whether one was found.
func (re *Regexp) FindString(text string) (string, bool) {
	start, end, ok := automaton.Find(re.nfa, text)
	if !ok {
		return "", false
	}
	return text[start:end], true
}

// FindAllStringIndex returns successive non-overlapping matches. If n >= 0
// at most n matches are returned.
func (re *Regexp) FindAllStringIndex(text string, n int) [][]int {
	found := automaton.FindAll(re.nfa, text, n)
	if len(found) == 0 {
		return nil
	}
	out := make([][]int, len(found))
	for i, m := range found {
		out[i] = []int{m[0], m[1]}
	}
	return out
}

// String returns the source pattern.
func (re *Regexp) String() string {
	return re.pattern
}

// NumStates returns the number of states in the compiled automaton.
func (re *Regexp) NumStates() int {
	return re.nfa.NumStates()
}

// NFA exposes the compiled automaton for callers inside this module that
// build derived matchers such as DFAs.
func (re *Regexp) NFA() *automaton.NFA {
	return re.nfa
}
