package regex_test

import (
	"errors"
	"testing"

	"nfamatch/internal/testutil"
	"nfamatch/pkg/regex"
)

func TestRegex(t *testing.T) {
	r := regex.MustCompile("a(b|cd|ef)g")
	assertMatch(t, r, "abg")
	assertMatch(t, r, "acdg")
	assertMatch(t, r, "aefg")
	refuteMatch(t, r, "efg")
	refuteMatch(t, r, "aef")
	refuteMatch(t, r, "acd")
	refuteMatch(t, r, "ab")
	refuteMatch(t, r, "ef")
}

func TestMatch_Properties(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"", "", true},
		{"", "a", false},
		{"ab", "ab", true},
		{"ab", "a", false},
		{"ab", "abc", false},
		{"a|b", "a", true},
		{"a|b", "b", true},
		{"a|b", "c", false},
		{"a*", "", true},
		{"a*", "aaa", true},
		{"a+", "", false},
		{"a+", "a", true},
		{"a?", "", true},
		{"a?", "a", true},
		{"a?", "aa", false},
		{"(ab)+", "ababab", true},
		{"(ab)+", "aba", false},
		{"a.c", "abc", true},
		{"a.c", "ac", false},
	}

	for _, tt := range tests {
		got, err := regex.Match(tt.pattern, tt.text)
		if err != nil {
			t.Fatalf("Match(%q, %q): %v", tt.pattern, tt.text, err)
		}
		if got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.text, got, tt.want)
		}
	}
}

func TestMatches_LanguageCases(t *testing.T) {
	for _, c := range testutil.LanguageCases() {
		re := regex.MustCompile(c.Pattern)
		testutil.AssertLanguage(t, c, func(text string) bool { return regex.Matches(re, text) })
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		target  error
	}{
		{"(a", regex.ErrSyntax},
		{"*a", regex.ErrSyntax},
		{"a|", regex.ErrSyntax},
		{`a\`, regex.ErrLex},
		{"a[", regex.ErrLex},
	}

	for _, tt := range tests {
		re, err := regex.Compile(tt.pattern)
		if err == nil {
			t.Errorf("Compile(%q) = %v, want error", tt.pattern, re)
			continue
		}
		if !errors.Is(err, tt.target) {
			t.Errorf("Compile(%q) err = %v, want %v", tt.pattern, err, tt.target)
		}
	}

	_, err := regex.Compile("(a")
	var synErr *regex.SyntaxError
	if !errors.As(err, &synErr) || synErr.Pos != 0 {
		t.Errorf("Compile(\"(a\") err = %#v, want *SyntaxError at 0", err)
	}
}

func TestMatch_PropagatesError(t *testing.T) {
	ok, err := regex.Match("a**", "aa")
	if ok || !errors.Is(err, regex.ErrSyntax) {
		t.Errorf("Match(a**) = %v, %v; want false, syntax error", ok, err)
	}
}

func TestMustCompile_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile should panic on invalid pattern")
		}
	}()
	regex.MustCompile(")")
}

func TestFind(t *testing.T) {
	re := regex.MustCompile("o+")
	if loc := re.FindStringIndex("foo boooo"); len(loc) != 2 || loc[0] != 1 || loc[1] != 3 {
		t.Errorf("FindStringIndex = %v, want [1 3]", loc)
	}
	if s, ok := re.FindString("xyzooo"); !ok || s != "ooo" {
		t.Errorf("FindString = %q, %v; want ooo, true", s, ok)
	}
	if loc := re.FindStringIndex("xyz"); loc != nil {
		t.Errorf("FindStringIndex = %v, want nil", loc)
	}

	all := re.FindAllStringIndex("foo boooo o", -1)
	want := [][]int{{1, 3}, {5, 9}, {10, 11}}
	if len(all) != len(want) {
		t.Fatalf("FindAllStringIndex = %v, want %v", all, want)
	}
	for i := range want {
		if all[i][0] != want[i][0] || all[i][1] != want[i][1] {
			t.Errorf("FindAllStringIndex[%d] = %v, want %v", i, all[i], want[i])
		}
	}
}

func TestRegexp_Accessors(t *testing.T) {
	re := regex.MustCompile("a|b")
	if re.String() != "a|b" {
		t.Errorf("String() = %q, want a|b", re.String())
	}
	if re.NumStates() != 6 {
		t.Errorf("NumStates() = %d, want 6", re.NumStates())
	}
}

func assertMatch(t *testing.T, r *regex.Regexp, str string) {
	t.Helper()
	if !regex.Matches(r, str) {
		t.Errorf("Expected %#v to match", str)
	}
}

func refuteMatch(t *testing.T, r *regex.Regexp, str string) {
	t.Helper()
	if regex.Matches(r, str) {
		t.Errorf("Expected %#v not to match", str)
	}
}
